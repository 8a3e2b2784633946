package repositories

import (
	"context"
	"time"

	"github.com/openbooks/ledger-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerReader defines read operations for transactions and journal entries
type LedgerReader interface {
	// FindTransactionByID retrieves a transaction header by its identifier.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindEntriesByTransactionID retrieves the journal entries of one transaction.
	FindEntriesByTransactionID(ctx context.Context, transactionID string) ([]domain.JournalEntry, error)

	// ListTransactionsByEntity retrieves a paginated list of transactions for an entity.
	ListTransactionsByEntity(ctx context.Context, entityID string, limit int, offset int) ([]domain.Transaction, error)
}

// LedgerWriter defines the mutating ledger operations
type LedgerWriter interface {
	// PostTransaction persists the transaction header, its entries and the
	// resulting balance deltas as one atomic unit. Either everything is
	// written or nothing is.
	PostTransaction(ctx context.Context, txn domain.Transaction, entries []domain.JournalEntry, deltas map[string]decimal.Decimal) error

	// UpdateTransactionStatusAndLinks updates a transaction's status and, when
	// non-nil, its reversing-transaction link.
	UpdateTransactionStatusAndLinks(ctx context.Context, transactionID string, status domain.TransactionStatus, reversingTransactionID *string, updatedBy string, updatedAt time.Time) error
}

// LedgerRepositoryFacade combines all ledger repository interfaces
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}
