package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/openbooks/ledger-backend/internal/apperrors"
	"github.com/openbooks/ledger-backend/internal/core/domain"
	"github.com/openbooks/ledger-backend/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// Built is the in-memory outcome of a successful Build call: a transaction
// header plus its journal entries, ready to hand to the posting service.
type Built struct {
	Transaction domain.Transaction
	Entries     []domain.JournalEntry
}

type draftEntry struct {
	accountID   string
	side        domain.EntrySide
	amount      decimal.Decimal
	description string
}

// Builder assembles one transaction. It is mutable until Build and meant for
// a single attempt; create a fresh Builder per transaction and do not share
// one across goroutines.
type Builder struct {
	entityID     string
	description  string
	reference    string
	currencyCode string
	date         time.Time
	entries      []draftEntry
}

// NewBuilder starts a transaction for the given entity.
func NewBuilder(entityID string) *Builder {
	return &Builder{entityID: entityID}
}

func (b *Builder) SetDescription(description string) *Builder {
	b.description = description
	return b
}

func (b *Builder) SetReference(reference string) *Builder {
	b.reference = reference
	return b
}

func (b *Builder) SetDate(date time.Time) *Builder {
	b.date = date
	return b
}

func (b *Builder) SetCurrency(currencyCode string) *Builder {
	b.currencyCode = currencyCode
	return b
}

// Debit appends a debit line against the given account.
func (b *Builder) Debit(accountID string, amount decimal.Decimal, description string) *Builder {
	b.entries = append(b.entries, draftEntry{accountID: accountID, side: domain.Debit, amount: amount, description: description})
	return b
}

// Credit appends a credit line against the given account.
func (b *Builder) Credit(accountID string, amount decimal.Decimal, description string) *Builder {
	b.entries = append(b.entries, draftEntry{accountID: accountID, side: domain.Credit, amount: amount, description: description})
	return b
}

// Validate checks the draft and returns every problem found as a
// human-readable message. An empty slice means the transaction is postable.
func (b *Builder) Validate() []string {
	var problems []string

	if b.description == "" {
		problems = append(problems, "transaction description is required")
	}

	var hasDebit, hasCredit bool
	debitTotal := decimal.Zero
	creditTotal := decimal.Zero
	for i, e := range b.entries {
		if err := accounting.ValidateEntryAmount(e.amount); err != nil {
			problems = append(problems, fmt.Sprintf("entry %d (account %s): %s", i+1, e.accountID, err.Error()))
			continue
		}
		if e.side == domain.Debit {
			hasDebit = true
			debitTotal = debitTotal.Add(e.amount)
		} else {
			hasCredit = true
			creditTotal = creditTotal.Add(e.amount)
		}
	}

	if !hasDebit || !hasCredit {
		problems = append(problems, "a transaction needs both a debit entry and a credit entry")
	} else if !accounting.Balanced(debitTotal, creditTotal) {
		problems = append(problems, fmt.Sprintf("debits and credits do not balance: debit total is %s, credit total is %s",
			debitTotal.String(), creditTotal.String()))
	}

	return problems
}

// Build materializes the draft into a transaction header and journal entries
// with freshly assigned identifiers. Calling Build on a draft that does not
// pass Validate is a caller bug and returns a validation error instead of a
// partially built result.
func (b *Builder) Build() (Built, error) {
	if problems := b.Validate(); len(problems) > 0 {
		errs := make(apperrors.ValidationErrors, len(problems))
		for i, p := range problems {
			errs[i] = apperrors.NewAccountingValidation(apperrors.CodeTransactionInvalid, p, nil)
		}
		return Built{}, fmt.Errorf("build called on an invalid transaction: %w", errs)
	}

	date := b.date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	txnID := uuid.NewString()
	amount := decimal.Zero
	entries := make([]domain.JournalEntry, 0, len(b.entries))
	for _, e := range b.entries {
		if e.side == domain.Debit {
			amount = amount.Add(e.amount)
		}
		entries = append(entries, domain.JournalEntry{
			EntryID:       uuid.NewString(),
			TransactionID: txnID,
			AccountID:     e.accountID,
			Side:          e.side,
			Amount:        e.amount,
			CurrencyCode:  b.currencyCode,
			Description:   e.description,
		})
	}

	return Built{
		Transaction: domain.Transaction{
			TransactionID:   txnID,
			EntityID:        b.entityID,
			Description:     b.description,
			Reference:       b.reference,
			CurrencyCode:    b.currencyCode,
			TransactionDate: date,
			Status:          domain.Posted,
			Amount:          amount,
		},
		Entries: entries,
	}, nil
}
