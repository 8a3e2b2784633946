package apperrors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the requested state change is not allowed from
// the resource's current state.
var ErrConflict = errors.New("conflicting state")

// Machine-readable codes carried by AccountingValidationError.
const (
	CodeInvalidAccountCode          = "INVALID_ACCOUNT_CODE"
	CodeInvalidAccountName          = "INVALID_ACCOUNT_NAME"
	CodeInvalidAccountType          = "INVALID_ACCOUNT_TYPE"
	CodeNormalBalanceMismatch       = "NORMAL_BALANCE_MISMATCH"
	CodeDuplicateAccountCode        = "DUPLICATE_ACCOUNT_CODE"
	CodeParentAccountNotFound       = "PARENT_ACCOUNT_NOT_FOUND"
	CodeInvalidParentAccountType    = "INVALID_PARENT_ACCOUNT_TYPE"
	CodeAccountNotFound             = "ACCOUNT_NOT_FOUND"
	CodeAccountTransactionsDisabled = "ACCOUNT_TRANSACTIONS_DISABLED"
	CodeAccountInactive             = "ACCOUNT_INACTIVE"
	CodeAccountBalanceNotZero       = "ACCOUNT_BALANCE_NOT_ZERO"
	CodeTransactionInvalid          = "TRANSACTION_INVALID"
	CodeTransactionNotReversible    = "TRANSACTION_NOT_REVERSIBLE"
	CodeCurrencyMismatch            = "CURRENCY_MISMATCH"
)

// AccountingValidationError is a field-level or structural problem detected
// before anything is persisted. It carries a machine-readable code and
// structured details for the HTTP layer to serialize.
type AccountingValidationError struct {
	Code    string
	Message string
	Details map[string]any
}

func (e *AccountingValidationError) Error() string {
	return e.Message
}

// Unwrap lets callers keep using errors.Is(err, ErrValidation).
func (e *AccountingValidationError) Unwrap() error {
	return ErrValidation
}

// NewAccountingValidation builds an AccountingValidationError.
func NewAccountingValidation(code, message string, details map[string]any) *AccountingValidationError {
	return &AccountingValidationError{Code: code, Message: message, Details: details}
}

// ValidationErrors aggregates every problem found in one validation pass, so
// callers see all of them at once instead of fixing one per round trip.
type ValidationErrors []*AccountingValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) Unwrap() error {
	return ErrValidation
}

// DoubleEntryError reports a violation of the fundamental accounting
// invariant: the transaction's debits do not equal its credits.
type DoubleEntryError struct {
	DebitTotal  decimal.Decimal
	CreditTotal decimal.Decimal
	Difference  decimal.Decimal
}

func (e *DoubleEntryError) Error() string {
	return fmt.Sprintf("transaction does not balance: debit total is %s, credit total is %s, difference is %s",
		e.DebitTotal.String(), e.CreditTotal.String(), e.Difference.String())
}

func (e *DoubleEntryError) Unwrap() error {
	return ErrValidation
}

// NewDoubleEntryError builds a DoubleEntryError from the two side totals.
func NewDoubleEntryError(debitTotal, creditTotal decimal.Decimal) *DoubleEntryError {
	return &DoubleEntryError{
		DebitTotal:  debitTotal,
		CreditTotal: creditTotal,
		Difference:  debitTotal.Sub(creditTotal),
	}
}
