package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus indicates the state of a transaction.
type TransactionStatus string

const (
	Pending   TransactionStatus = "PENDING"
	Posted    TransactionStatus = "POSTED"
	Cancelled TransactionStatus = "CANCELLED"
	Reversed  TransactionStatus = "REVERSED"
)

// Transaction is the header of a balanced financial event composed of at
// least two journal entries. Amount equals the sum of its debit entries.
type Transaction struct {
	TransactionID          string            `json:"transactionID"`
	EntityID               string            `json:"entityID"`
	Description            string            `json:"description"`
	Reference              string            `json:"reference"`
	CurrencyCode           string            `json:"currencyCode"`
	TransactionDate        time.Time         `json:"transactionDate"`
	Status                 TransactionStatus `json:"status"`
	ReversedTransactionID  *string           `json:"reversedTransactionID"`  // set on a reversing transaction, points at the original
	ReversingTransactionID *string           `json:"reversingTransactionID"` // set on the original once reversed
	Amount                 decimal.Decimal   `json:"amount"`
	AuditFields
}
