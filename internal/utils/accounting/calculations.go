package accounting

import (
	"fmt"

	"github.com/openbooks/ledger-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MaxEntryAmount is the largest amount a single journal entry may carry.
var MaxEntryAmount = decimal.RequireFromString("999999999.99")

// BalanceTolerance is the allowed slack between debit and credit totals,
// covering currency rounding.
var BalanceTolerance = decimal.RequireFromString("0.01")

// NormalBalanceFor returns the side on which increases to the given account
// type are recorded: ASSET and EXPENSE accounts grow on the debit side,
// LIABILITY, EQUITY and REVENUE accounts grow on the credit side.
func NormalBalanceFor(accountType domain.AccountType) (domain.EntrySide, error) {
	switch accountType {
	case domain.Asset, domain.Expense:
		return domain.Debit, nil
	case domain.Liability, domain.Equity, domain.Revenue:
		return domain.Credit, nil
	default:
		return "", fmt.Errorf("unknown account type '%s'", accountType)
	}
}

// BalanceEffect returns the signed change a journal entry applies to an
// account's current balance: positive when the entry's side matches the
// account's normal balance, negative otherwise.
func BalanceEffect(side domain.EntrySide, normalBalance domain.EntrySide, amount decimal.Decimal) decimal.Decimal {
	if side == normalBalance {
		return amount
	}
	return amount.Neg()
}

// ValidateEntryAmount checks that an entry amount is positive and within the
// supported range.
func ValidateEntryAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("amount must be positive, got %s", amount.String())
	}
	if amount.GreaterThan(MaxEntryAmount) {
		return fmt.Errorf("amount %s exceeds the maximum of %s", amount.String(), MaxEntryAmount.String())
	}
	return nil
}

// SumBySide totals the given entries per side.
func SumBySide(entries []domain.JournalEntry) (debitTotal, creditTotal decimal.Decimal) {
	debitTotal = decimal.Zero
	creditTotal = decimal.Zero
	for _, e := range entries {
		if e.Side == domain.Debit {
			debitTotal = debitTotal.Add(e.Amount)
		} else {
			creditTotal = creditTotal.Add(e.Amount)
		}
	}
	return debitTotal, creditTotal
}

// Balanced reports whether the two side totals agree within BalanceTolerance.
func Balanced(debitTotal, creditTotal decimal.Decimal) bool {
	return debitTotal.Sub(creditTotal).Abs().LessThanOrEqual(BalanceTolerance)
}
