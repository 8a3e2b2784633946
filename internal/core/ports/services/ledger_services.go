package services

import (
	"context"

	"github.com/openbooks/ledger-backend/internal/core/domain"
	"github.com/openbooks/ledger-backend/internal/core/ledger"
	"github.com/openbooks/ledger-backend/internal/dto"
)

// LedgerReaderSvc defines read operations for posted transactions
type LedgerReaderSvc interface {
	// GetTransaction retrieves a transaction header within an entity.
	GetTransaction(ctx context.Context, entityID string, transactionID string) (*domain.Transaction, error)

	// GetTransactionJournalEntries fetches a transaction's entries and
	// recomputes its side totals for display. Read-only and idempotent.
	GetTransactionJournalEntries(ctx context.Context, entityID string, transactionID string) (*dto.TransactionEntriesReport, error)

	// ListTransactions retrieves a paginated list of transactions.
	ListTransactions(ctx context.Context, entityID string, params dto.ListTransactionsParams) ([]domain.Transaction, error)
}

// LedgerWriterSvc defines the mutating ledger operations
type LedgerWriterSvc interface {
	// PostTransaction assembles a transaction from the request and persists it
	// through CreateAndPersist.
	PostTransaction(ctx context.Context, entityID string, req dto.PostTransactionRequest, userID string) (*domain.Transaction, []domain.JournalEntry, error)

	// CreateAndPersist turns a built transaction into durable ledger state:
	// account prechecks, balance re-validation, then one atomic write of the
	// header, the entries and the balance deltas.
	CreateAndPersist(ctx context.Context, entityID string, built ledger.Built, userID string) (*domain.Transaction, []domain.JournalEntry, error)

	// ReverseTransaction posts a mirror-image transaction of a posted one and
	// links the two.
	ReverseTransaction(ctx context.Context, entityID string, transactionID string, userID string) (*domain.Transaction, error)
}

// LedgerSvcFacade combines all ledger service interfaces
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}
