package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openbooks/ledger-backend/internal/apperrors"
	"github.com/openbooks/ledger-backend/internal/core/domain"
	"github.com/openbooks/ledger-backend/internal/core/ledger"
	portsrepo "github.com/openbooks/ledger-backend/internal/core/ports/repositories"
	portssvc "github.com/openbooks/ledger-backend/internal/core/ports/services"
	"github.com/openbooks/ledger-backend/internal/dto"
	"github.com/openbooks/ledger-backend/internal/middleware"
	"github.com/openbooks/ledger-backend/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// ledgerService posts balanced transactions and reads them back.
type ledgerService struct {
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{ledgerRepo: ledgerRepo, accountRepo: accountRepo}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// PostTransaction assembles a builder from the request, validates it and
// hands the result to CreateAndPersist.
func (s *ledgerService) PostTransaction(ctx context.Context, entityID string, req dto.PostTransactionRequest, userID string) (*domain.Transaction, []domain.JournalEntry, error) {
	b := ledger.NewBuilder(entityID).
		SetDescription(req.Description).
		SetReference(req.Reference).
		SetCurrency(req.CurrencyCode)
	if req.TransactionDate != nil {
		b.SetDate(*req.TransactionDate)
	}
	for _, e := range req.Entries {
		if e.Side == domain.Debit {
			b.Debit(e.AccountID, e.Amount, e.Description)
		} else {
			b.Credit(e.AccountID, e.Amount, e.Description)
		}
	}

	if problems := b.Validate(); len(problems) > 0 {
		errs := make(apperrors.ValidationErrors, len(problems))
		for i, p := range problems {
			errs[i] = apperrors.NewAccountingValidation(apperrors.CodeTransactionInvalid, p, nil)
		}
		return nil, nil, errs
	}

	built, err := b.Build()
	if err != nil {
		return nil, nil, err
	}
	return s.CreateAndPersist(ctx, entityID, built, userID)
}

// CreateAndPersist turns a built transaction into durable ledger state.
// Account prechecks and the balance re-validation run before any write; the
// header, entries and balance deltas are then persisted as one atomic unit.
func (s *ledgerService) CreateAndPersist(ctx context.Context, entityID string, built ledger.Built, userID string) (*domain.Transaction, []domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	accountIDs := make([]string, 0, len(built.Entries))
	seen := make(map[string]struct{}, len(built.Entries))
	for _, e := range built.Entries {
		if _, ok := seen[e.AccountID]; ok {
			continue
		}
		seen[e.AccountID] = struct{}{}
		accountIDs = append(accountIDs, e.AccountID)
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch accounts for posting: %w", err)
	}

	for _, accountID := range accountIDs {
		account, ok := accounts[accountID]
		if !ok || account.EntityID != entityID {
			return nil, nil, apperrors.NewAccountingValidation(
				apperrors.CodeAccountNotFound,
				fmt.Sprintf("account '%s' does not exist", accountID),
				map[string]any{"accountId": accountID},
			)
		}
		if !account.AllowTransactions {
			return nil, nil, apperrors.NewAccountingValidation(
				apperrors.CodeAccountTransactionsDisabled,
				fmt.Sprintf("account '%s' (%s) does not allow transactions", account.Code, account.Name),
				map[string]any{"accountId": accountID, "accountName": account.Name},
			)
		}
		if !account.IsActive {
			return nil, nil, apperrors.NewAccountingValidation(
				apperrors.CodeAccountInactive,
				fmt.Sprintf("account '%s' is inactive", account.Code),
				map[string]any{"accountId": accountID},
			)
		}
	}

	// Defense in depth: re-check the double-entry invariant against the
	// entries about to be persisted, independent of the builder.
	debitTotal, creditTotal := accounting.SumBySide(built.Entries)
	if !accounting.Balanced(debitTotal, creditTotal) {
		return nil, nil, apperrors.NewDoubleEntryError(debitTotal, creditTotal)
	}

	deltas := make(map[string]decimal.Decimal, len(accountIDs))
	for _, e := range built.Entries {
		account := accounts[e.AccountID]
		if e.CurrencyCode != "" && e.CurrencyCode != built.Transaction.CurrencyCode {
			return nil, nil, apperrors.NewAccountingValidation(
				apperrors.CodeCurrencyMismatch,
				fmt.Sprintf("entry currency %s does not match transaction currency %s", e.CurrencyCode, built.Transaction.CurrencyCode),
				map[string]any{"accountId": e.AccountID},
			)
		}
		effect := accounting.BalanceEffect(e.Side, account.NormalBalance, e.Amount)
		deltas[e.AccountID] = deltas[e.AccountID].Add(effect)
	}

	now := time.Now().UTC()
	txn := built.Transaction
	txn.Status = domain.Posted
	txn.AuditFields = domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}
	entries := make([]domain.JournalEntry, len(built.Entries))
	for i, e := range built.Entries {
		e.AuditFields = txn.AuditFields
		entries[i] = e
	}

	if err := s.ledgerRepo.PostTransaction(ctx, txn, entries, deltas); err != nil {
		logger.Error("failed to post transaction",
			slog.String("transaction_id", txn.TransactionID),
			slog.String("error", err.Error()))
		return nil, nil, fmt.Errorf("failed to post transaction: %w", err)
	}

	logger.Info("transaction posted",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("amount", txn.Amount.String()),
		slog.Int("entry_count", len(entries)))
	return &txn, entries, nil
}

// GetTransaction fetches a transaction header and verifies its entity.
func (s *ledgerService) GetTransaction(ctx context.Context, entityID string, transactionID string) (*domain.Transaction, error) {
	txn, err := s.ledgerRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.EntityID != entityID {
		return nil, apperrors.ErrNotFound
	}
	return txn, nil
}

// GetTransactionJournalEntries recomputes one transaction's side totals from
// its stored entries. Read-only; calling it twice returns identical results.
func (s *ledgerService) GetTransactionJournalEntries(ctx context.Context, entityID string, transactionID string) (*dto.TransactionEntriesReport, error) {
	if _, err := s.GetTransaction(ctx, entityID, transactionID); err != nil {
		return nil, err
	}
	entries, err := s.ledgerRepo.FindEntriesByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch journal entries: %w", err)
	}

	debitTotal, creditTotal := accounting.SumBySide(entries)
	return &dto.TransactionEntriesReport{
		TransactionID: transactionID,
		Entries:       dto.ToListJournalEntryResponse(entries),
		DebitTotal:    debitTotal,
		CreditTotal:   creditTotal,
		IsBalanced:    accounting.Balanced(debitTotal, creditTotal),
	}, nil
}

// ListTransactions returns a page of the entity's transactions.
func (s *ledgerService) ListTransactions(ctx context.Context, entityID string, params dto.ListTransactionsParams) ([]domain.Transaction, error) {
	return s.ledgerRepo.ListTransactionsByEntity(ctx, entityID, params.Limit, params.Offset)
}

// ReverseTransaction posts the mirror image of a posted transaction and links
// the pair. The ledger is append-only, so a mistake is undone by a new
// transaction rather than an edit.
func (s *ledgerService) ReverseTransaction(ctx context.Context, entityID string, transactionID string, userID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	original, err := s.GetTransaction(ctx, entityID, transactionID)
	if err != nil {
		return nil, err
	}
	if original.Status != domain.Posted {
		return nil, fmt.Errorf("%w: only POSTED transactions can be reversed, status is %s",
			apperrors.ErrConflict, original.Status)
	}
	if original.ReversedTransactionID != nil {
		return nil, apperrors.NewAccountingValidation(
			apperrors.CodeTransactionNotReversible,
			"a reversing transaction cannot itself be reversed",
			map[string]any{"transactionId": transactionID},
		)
	}

	entries, err := s.ledgerRepo.FindEntriesByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch journal entries: %w", err)
	}

	b := ledger.NewBuilder(entityID).
		SetDescription(fmt.Sprintf("Reversal of: %s", original.Description)).
		SetReference(original.Reference).
		SetCurrency(original.CurrencyCode)
	for _, e := range entries {
		if e.Side.Opposite() == domain.Debit {
			b.Debit(e.AccountID, e.Amount, e.Description)
		} else {
			b.Credit(e.AccountID, e.Amount, e.Description)
		}
	}
	built, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build reversing transaction: %w", err)
	}
	built.Transaction.ReversedTransactionID = &original.TransactionID

	reversing, _, err := s.CreateAndPersist(ctx, entityID, built, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.ledgerRepo.UpdateTransactionStatusAndLinks(ctx, original.TransactionID, domain.Reversed, &reversing.TransactionID, userID, now); err != nil {
		// The reversing transaction is already durable, only the link on the
		// original is missing. Surface the error so the caller can reconcile.
		logger.Error("reversing transaction posted but original could not be marked reversed",
			slog.String("original_id", original.TransactionID),
			slog.String("reversing_id", reversing.TransactionID),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to mark transaction %s as reversed: %w", original.TransactionID, err)
	}

	logger.Info("transaction reversed",
		slog.String("original_id", original.TransactionID),
		slog.String("reversing_id", reversing.TransactionID))
	return reversing, nil
}
