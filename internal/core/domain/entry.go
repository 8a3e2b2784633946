package domain

import "github.com/shopspring/decimal"

// EntrySide indicates whether a journal entry is a debit or a credit. It is
// also the type of an account's normal balance.
type EntrySide string

const (
	Debit  EntrySide = "DEBIT"
	Credit EntrySide = "CREDIT"
)

// Opposite returns the other side.
func (s EntrySide) Opposite() EntrySide {
	if s == Debit {
		return Credit
	}
	return Debit
}

// JournalEntry is a single debit-or-credit line within a transaction,
// affecting one account. Amount is always positive; the side carries the
// direction.
type JournalEntry struct {
	EntryID       string          `json:"entryID"`
	TransactionID string          `json:"transactionID"`
	AccountID     string          `json:"accountID"`
	Side          EntrySide       `json:"side"`
	Amount        decimal.Decimal `json:"amount"`
	CurrencyCode  string          `json:"currencyCode"`
	Description   string          `json:"description"`
	AuditFields
}
