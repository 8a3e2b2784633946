package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openbooks/ledger-backend/internal/apperrors"
	"github.com/openbooks/ledger-backend/internal/core/domain"
	portsrepo "github.com/openbooks/ledger-backend/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

const transactionColumns = `transaction_id, entity_id, description, reference, currency_code,
	transaction_date, status, reversed_transaction_id, reversing_transaction_id, amount,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxLedgerRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxLedgerRepository creates a new repository for transaction and journal entry data.
func newPgxLedgerRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

// PostTransaction writes the transaction header, locks the touched accounts,
// applies the balance deltas and inserts every journal entry inside one
// database transaction. Nothing is observable until the commit.
func (r *PgxLedgerRepository) PostTransaction(ctx context.Context, txn domain.Transaction, entries []domain.JournalEntry, deltas map[string]decimal.Decimal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // no-op once committed

	headerQuery := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err = tx.Exec(ctx, headerQuery,
		txn.TransactionID,
		txn.EntityID,
		txn.Description,
		txn.Reference,
		txn.CurrencyCode,
		txn.TransactionDate,
		txn.Status,
		txn.ReversedTransactionID,
		txn.ReversingTransactionID,
		txn.Amount,
		txn.CreatedAt,
		txn.CreatedBy,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction %s: %w", txn.TransactionID, err)
	}

	accountIDs := make([]string, 0, len(deltas))
	for accountID := range deltas {
		accountIDs = append(accountIDs, accountID)
	}
	if _, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs); err != nil {
		return fmt.Errorf("failed to lock accounts for posting: %w", err)
	}
	if err := r.accountRepo.ApplyBalanceDeltasInTx(ctx, tx, deltas, txn.CreatedBy, txn.CreatedAt); err != nil {
		return fmt.Errorf("failed to apply balance deltas: %w", err)
	}

	batch := &pgx.Batch{}
	entryQuery := `
		INSERT INTO journal_entries (entry_id, transaction_id, account_id, side, amount, currency_code, description, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	for _, e := range entries {
		batch.Queue(entryQuery,
			e.EntryID,
			e.TransactionID,
			e.AccountID,
			e.Side,
			e.Amount,
			e.CurrencyCode,
			e.Description,
			e.CreatedAt,
			e.CreatedBy,
			e.LastUpdatedAt,
			e.LastUpdatedBy,
		)
	}
	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert journal entry %s: %w", entries[i].EntryID, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close journal entry batch: %w", err)
	}

	return r.Commit(ctx, tx)
}

func scanTransaction(row pgx.Row) (domain.Transaction, error) {
	var txn domain.Transaction
	var reversedID, reversingID sql.NullString
	err := row.Scan(
		&txn.TransactionID,
		&txn.EntityID,
		&txn.Description,
		&txn.Reference,
		&txn.CurrencyCode,
		&txn.TransactionDate,
		&txn.Status,
		&reversedID,
		&reversingID,
		&txn.Amount,
		&txn.CreatedAt,
		&txn.CreatedBy,
		&txn.LastUpdatedAt,
		&txn.LastUpdatedBy,
	)
	if err != nil {
		return domain.Transaction{}, err
	}
	if reversedID.Valid {
		txn.ReversedTransactionID = &reversedID.String
	}
	if reversingID.Valid {
		txn.ReversingTransactionID = &reversingID.String
	}
	return txn, nil
}

// FindTransactionByID retrieves a transaction header by its ID.
func (r *PgxLedgerRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`

	txn, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	return &txn, nil
}

// FindEntriesByTransactionID retrieves a transaction's journal entries in
// insertion order.
func (r *PgxLedgerRepository) FindEntriesByTransactionID(ctx context.Context, transactionID string) ([]domain.JournalEntry, error) {
	query := `
		SELECT entry_id, transaction_id, account_id, side, amount, currency_code, description,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM journal_entries
		WHERE transaction_id = $1
		ORDER BY entry_id;
	`

	rows, err := r.Pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal entries for transaction %s: %w", transactionID, err)
	}
	defer rows.Close()

	entries := []domain.JournalEntry{}
	for rows.Next() {
		var e domain.JournalEntry
		err := rows.Scan(
			&e.EntryID,
			&e.TransactionID,
			&e.AccountID,
			&e.Side,
			&e.Amount,
			&e.CurrencyCode,
			&e.Description,
			&e.CreatedAt,
			&e.CreatedBy,
			&e.LastUpdatedAt,
			&e.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal entry row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal entry rows: %w", err)
	}
	return entries, nil
}

// ListTransactionsByEntity retrieves a paginated list of transactions, newest first.
func (r *PgxLedgerRepository) ListTransactionsByEntity(ctx context.Context, entityID string, limit int, offset int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE entity_id = $1
		ORDER BY transaction_date DESC, transaction_id DESC
		LIMIT $2 OFFSET $3;
	`

	rows, err := r.Pool.Query(ctx, query, entityID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for entity %s: %w", entityID, err)
	}
	defer rows.Close()

	txns := []domain.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return txns, nil
}

// UpdateTransactionStatusAndLinks updates a transaction's status and, when
// provided, the link to the transaction that reversed it.
func (r *PgxLedgerRepository) UpdateTransactionStatusAndLinks(ctx context.Context, transactionID string, status domain.TransactionStatus, reversingTransactionID *string, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE transactions
		SET status = $2, reversing_transaction_id = COALESCE($3, reversing_transaction_id),
		    last_updated_at = $4, last_updated_by = $5
		WHERE transaction_id = $1;
	`

	cmdTag, err := r.Pool.Exec(ctx, query, transactionID, status, reversingTransactionID, updatedAt, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", transactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
