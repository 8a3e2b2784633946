package dto

import (
	"time"

	"github.com/openbooks/ledger-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PostTransactionEntry is one debit or credit line in a posting request.
type PostTransactionEntry struct {
	AccountID   string           `json:"accountID" binding:"required"`
	Side        domain.EntrySide `json:"side" binding:"required,oneof=DEBIT CREDIT"`
	Amount      decimal.Decimal  `json:"amount" binding:"required"`
	Description string           `json:"description"`
}

// PostTransactionRequest defines the data needed to post a balanced transaction.
type PostTransactionRequest struct {
	Description     string                 `json:"description" binding:"required"`
	Reference       string                 `json:"reference"`
	CurrencyCode    string                 `json:"currencyCode" binding:"required,len=3"`
	TransactionDate *time.Time             `json:"transactionDate"` // Defaults to now when omitted
	Entries         []PostTransactionEntry `json:"entries" binding:"required,min=2,dive"`
}

// TransactionResponse defines the data returned for a transaction header.
type TransactionResponse struct {
	TransactionID          string                   `json:"transactionID"`
	EntityID               string                   `json:"entityID"`
	Description            string                   `json:"description"`
	Reference              string                   `json:"reference,omitempty"`
	CurrencyCode           string                   `json:"currencyCode"`
	TransactionDate        time.Time                `json:"transactionDate"`
	Status                 domain.TransactionStatus `json:"status"`
	ReversedTransactionID  *string                  `json:"reversedTransactionID,omitempty"`
	ReversingTransactionID *string                  `json:"reversingTransactionID,omitempty"`
	Amount                 decimal.Decimal          `json:"amount"`
	CreatedAt              time.Time                `json:"createdAt"`
	CreatedBy              string                   `json:"createdBy"`
	LastUpdatedAt          time.Time                `json:"lastUpdatedAt"`
	LastUpdatedBy          string                   `json:"lastUpdatedBy"`
}

// JournalEntryResponse defines the data returned for a single journal entry.
type JournalEntryResponse struct {
	EntryID       string           `json:"entryID"`
	TransactionID string           `json:"transactionID"`
	AccountID     string           `json:"accountID"`
	Side          domain.EntrySide `json:"side"`
	Amount        decimal.Decimal  `json:"amount"`
	CurrencyCode  string           `json:"currencyCode"`
	Description   string           `json:"description,omitempty"`
}

// PostTransactionResponse bundles the persisted transaction with its entries.
type PostTransactionResponse struct {
	Transaction TransactionResponse    `json:"transaction"`
	Entries     []JournalEntryResponse `json:"entries"`
}

// TransactionEntriesReport recomputes the side totals of one transaction for
// display purposes.
type TransactionEntriesReport struct {
	TransactionID string                 `json:"transactionID"`
	Entries       []JournalEntryResponse `json:"entries"`
	DebitTotal    decimal.Decimal        `json:"debitTotal"`
	CreditTotal   decimal.Decimal        `json:"creditTotal"`
	IsBalanced    bool                   `json:"isBalanced"`
}

// ListTransactionsParams defines query parameters for listing transactions.
type ListTransactionsParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ToTransactionResponse converts a domain.Transaction to its DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:          txn.TransactionID,
		EntityID:               txn.EntityID,
		Description:            txn.Description,
		Reference:              txn.Reference,
		CurrencyCode:           txn.CurrencyCode,
		TransactionDate:        txn.TransactionDate,
		Status:                 txn.Status,
		ReversedTransactionID:  txn.ReversedTransactionID,
		ReversingTransactionID: txn.ReversingTransactionID,
		Amount:                 txn.Amount,
		CreatedAt:              txn.CreatedAt,
		CreatedBy:              txn.CreatedBy,
		LastUpdatedAt:          txn.LastUpdatedAt,
		LastUpdatedBy:          txn.LastUpdatedBy,
	}
}

// ToListTransactionResponse converts a slice of transactions to DTOs.
func ToListTransactionResponse(txns []domain.Transaction) []TransactionResponse {
	res := make([]TransactionResponse, len(txns))
	for i := range txns {
		res[i] = ToTransactionResponse(&txns[i])
	}
	return res
}

// ToJournalEntryResponse converts a domain.JournalEntry to its DTO.
func ToJournalEntryResponse(entry *domain.JournalEntry) JournalEntryResponse {
	return JournalEntryResponse{
		EntryID:       entry.EntryID,
		TransactionID: entry.TransactionID,
		AccountID:     entry.AccountID,
		Side:          entry.Side,
		Amount:        entry.Amount,
		CurrencyCode:  entry.CurrencyCode,
		Description:   entry.Description,
	}
}

// ToListJournalEntryResponse converts a slice of journal entries to DTOs.
func ToListJournalEntryResponse(entries []domain.JournalEntry) []JournalEntryResponse {
	res := make([]JournalEntryResponse, len(entries))
	for i := range entries {
		res[i] = ToJournalEntryResponse(&entries[i])
	}
	return res
}
