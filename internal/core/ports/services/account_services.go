package services

import (
	"context"

	"github.com/openbooks/ledger-backend/internal/core/domain"
	"github.com/openbooks/ledger-backend/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account within an entity.
	GetAccountByID(ctx context.Context, entityID string, accountID string) (*domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts for an entity,
	// optionally filtered by account type.
	ListAccounts(ctx context.Context, entityID string, params dto.ListAccountsParams) ([]domain.Account, error)

	// ListChildren retrieves the direct children of an account.
	ListChildren(ctx context.Context, entityID string, accountID string) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount validates the candidate against the entity's chart of
	// accounts and persists it.
	CreateAccount(ctx context.Context, entityID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// UpdateAccount updates an existing account's details.
	UpdateAccount(ctx context.Context, entityID string, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// DeactivateAccount marks an account as inactive. Accounts with a non-zero
	// balance are refused.
	DeactivateAccount(ctx context.Context, entityID string, accountID string, userID string) error
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
