package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/openbooks/ledger-backend/internal/apperrors"
	"github.com/openbooks/ledger-backend/internal/core/chart"
	"github.com/openbooks/ledger-backend/internal/core/domain"
	portsrepo "github.com/openbooks/ledger-backend/internal/core/ports/repositories"
	portssvc "github.com/openbooks/ledger-backend/internal/core/ports/services"
	"github.com/openbooks/ledger-backend/internal/dto"
	"github.com/openbooks/ledger-backend/internal/middleware"
	"github.com/openbooks/ledger-backend/internal/utils/accounting"
)

// accountService manages the chart of accounts.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new account service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount validates the candidate against a fresh registry snapshot of
// the entity's chart and persists it. The registry is rebuilt per call so a
// concurrently created account cannot slip past the duplicate-code check for
// long; the unique constraint on (entity_id, code) is the final arbiter.
func (s *accountService) CreateAccount(ctx context.Context, entityID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	registry, err := chart.Load(ctx, s.accountRepo, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chart of accounts: %w", err)
	}

	now := time.Now().UTC()
	candidate := domain.Account{
		AccountID:         uuid.NewString(),
		EntityID:          entityID,
		Code:              req.Code,
		Name:              req.Name,
		AccountType:       req.AccountType,
		Subtype:           req.Subtype,
		Category:          req.Category,
		IsActive:          true,
		AllowTransactions: true,
		ReportCategory:    req.ReportCategory,
		ReportOrder:       req.ReportOrder,
		Description:       req.Description,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if req.ParentAccountID != nil {
		candidate.ParentAccountID = *req.ParentAccountID
	}
	if req.NormalBalance != nil {
		candidate.NormalBalance = *req.NormalBalance
	}
	if req.AllowTransactions != nil {
		candidate.AllowTransactions = *req.AllowTransactions
	}

	if problems := registry.ValidateNewAccount(candidate); len(problems) > 0 {
		logger.Warn("account creation rejected",
			slog.String("code", req.Code),
			slog.Int("problem_count", len(problems)))
		return nil, apperrors.ValidationErrors(problems)
	}

	// Validation guarantees the type is one of the five known ones.
	candidate.NormalBalance, _ = accounting.NormalBalanceFor(candidate.AccountType)

	if candidate.ParentAccountID != "" {
		parent, _ := registry.ByID(candidate.ParentAccountID)
		candidate.Level = parent.Level + 1
		candidate.Path = parent.Path + "/" + candidate.Code
	} else {
		candidate.Level = 0
		candidate.Path = candidate.Code
	}

	if err := s.accountRepo.SaveAccount(ctx, candidate); err != nil {
		logger.Error("failed to save account", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}
	registry.Register(candidate)

	logger.Info("account created",
		slog.String("account_id", candidate.AccountID),
		slog.String("code", candidate.Code),
		slog.String("account_type", string(candidate.AccountType)))
	return &candidate, nil
}

// GetAccountByID fetches an account and verifies it belongs to the entity.
func (s *accountService) GetAccountByID(ctx context.Context, entityID string, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.EntityID != entityID {
		// Do not reveal that the account exists under another entity.
		return nil, apperrors.ErrNotFound
	}
	return account, nil
}

// ListAccounts returns a page of the entity's accounts.
func (s *accountService) ListAccounts(ctx context.Context, entityID string, params dto.ListAccountsParams) ([]domain.Account, error) {
	if params.AccountType != "" {
		accountType := domain.AccountType(params.AccountType)
		if !accountType.IsValid() {
			return nil, apperrors.NewAccountingValidation(
				apperrors.CodeInvalidAccountType,
				fmt.Sprintf("'%s' is not a valid account type", params.AccountType),
				map[string]any{"accountType": params.AccountType},
			)
		}
		registry, err := chart.Load(ctx, s.accountRepo, entityID)
		if err != nil {
			return nil, fmt.Errorf("failed to load chart of accounts: %w", err)
		}
		return registry.AccountsByType(accountType), nil
	}
	return s.accountRepo.ListAccounts(ctx, entityID, params.Limit, params.Offset)
}

// ListChildren returns the direct children of an account.
func (s *accountService) ListChildren(ctx context.Context, entityID string, accountID string) ([]domain.Account, error) {
	if _, err := s.GetAccountByID(ctx, entityID, accountID); err != nil {
		return nil, err
	}
	registry, err := chart.Load(ctx, s.accountRepo, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chart of accounts: %w", err)
	}
	return registry.Children(accountID), nil
}

// UpdateAccount applies the provided fields to an existing account. Code,
// type and hierarchy are immutable after creation.
func (s *accountService) UpdateAccount(ctx context.Context, entityID string, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	account, err := s.GetAccountByID(ctx, entityID, accountID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Subtype != nil {
		account.Subtype = *req.Subtype
	}
	if req.Category != nil {
		account.Category = *req.Category
	}
	if req.AllowTransactions != nil {
		account.AllowTransactions = *req.AllowTransactions
	}
	if req.IsActive != nil {
		if !*req.IsActive {
			if account.IsSystem {
				return nil, fmt.Errorf("%w: system accounts cannot be deactivated", apperrors.ErrConflict)
			}
			if !account.CurrentBalance.IsZero() {
				return nil, apperrors.NewAccountingValidation(
					apperrors.CodeAccountBalanceNotZero,
					fmt.Sprintf("account '%s' still has a balance of %s", account.Code, account.CurrentBalance.String()),
					map[string]any{"accountId": accountID, "currentBalance": account.CurrentBalance.String()},
				)
			}
		}
		account.IsActive = *req.IsActive
	}
	if req.ReportCategory != nil {
		account.ReportCategory = *req.ReportCategory
	}
	if req.ReportOrder != nil {
		account.ReportOrder = *req.ReportOrder
	}
	if req.Description != nil {
		account.Description = *req.Description
	}
	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = userID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return account, nil
}

// DeactivateAccount marks an account inactive. An account still carrying a
// balance is refused since its history would no longer roll up anywhere.
func (s *accountService) DeactivateAccount(ctx context.Context, entityID string, accountID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.GetAccountByID(ctx, entityID, accountID)
	if err != nil {
		return err
	}
	if account.IsSystem {
		return fmt.Errorf("%w: system accounts cannot be deactivated", apperrors.ErrConflict)
	}
	if !account.CurrentBalance.IsZero() {
		return apperrors.NewAccountingValidation(
			apperrors.CodeAccountBalanceNotZero,
			fmt.Sprintf("account '%s' still has a balance of %s", account.Code, account.CurrentBalance.String()),
			map[string]any{"accountId": accountID, "currentBalance": account.CurrentBalance.String()},
		)
	}

	if err := s.accountRepo.DeactivateAccount(ctx, accountID, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to deactivate account: %w", err)
	}
	logger.Info("account deactivated", slog.String("account_id", accountID))
	return nil
}
