package chart

import (
	"context"
	"fmt"
	"regexp"
	"sort"

	"github.com/openbooks/ledger-backend/internal/apperrors"
	"github.com/openbooks/ledger-backend/internal/core/domain"
	"github.com/openbooks/ledger-backend/internal/utils/accounting"
)

// CodePattern is the shape every account code must match.
var CodePattern = regexp.MustCompile(`^[A-Za-z0-9.-]{2,20}$`)

const (
	minNameLength = 3
	maxNameLength = 100
)

// AccountLister supplies the accounts a Registry is loaded from.
type AccountLister interface {
	ListAccountsByEntity(ctx context.Context, entityID string) ([]domain.Account, error)
}

// Registry is an in-memory view of one entity's chart of accounts. It indexes
// accounts by ID and by code and tracks parent/child links, so structural
// validation of a new account never touches the database. A Registry is not
// safe for concurrent mutation; build one per operation.
type Registry struct {
	entityID string
	byID     map[string]domain.Account
	byCode   map[string]string   // code -> accountID
	children map[string][]string // parentAccountID -> child accountIDs
}

// New builds a Registry over the given accounts.
func New(entityID string, accounts []domain.Account) *Registry {
	r := &Registry{
		entityID: entityID,
		byID:     make(map[string]domain.Account, len(accounts)),
		byCode:   make(map[string]string, len(accounts)),
		children: make(map[string][]string),
	}
	for _, a := range accounts {
		r.index(a)
	}
	return r
}

// Load fetches the entity's accounts from the lister and builds a Registry
// over them.
func Load(ctx context.Context, lister AccountLister, entityID string) (*Registry, error) {
	accounts, err := lister.ListAccountsByEntity(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("loading chart of accounts for entity %s: %w", entityID, err)
	}
	return New(entityID, accounts), nil
}

func (r *Registry) index(a domain.Account) {
	r.byID[a.AccountID] = a
	r.byCode[a.Code] = a.AccountID
	if a.ParentAccountID != "" {
		r.children[a.ParentAccountID] = append(r.children[a.ParentAccountID], a.AccountID)
	}
}

// EntityID returns the entity this Registry was loaded for.
func (r *Registry) EntityID() string {
	return r.entityID
}

// ValidateNewAccount checks a candidate account against the loaded chart and
// returns every problem found, not just the first one. An empty slice means
// the candidate can be registered.
func (r *Registry) ValidateNewAccount(candidate domain.Account) []*apperrors.AccountingValidationError {
	var errs []*apperrors.AccountingValidationError

	if !CodePattern.MatchString(candidate.Code) {
		errs = append(errs, apperrors.NewAccountingValidation(
			apperrors.CodeInvalidAccountCode,
			fmt.Sprintf("account code '%s' must be 2-20 characters of letters, digits, dots or dashes", candidate.Code),
			map[string]any{"code": candidate.Code},
		))
	}

	if len(candidate.Name) < minNameLength || len(candidate.Name) > maxNameLength {
		errs = append(errs, apperrors.NewAccountingValidation(
			apperrors.CodeInvalidAccountName,
			fmt.Sprintf("account name must be between %d and %d characters", minNameLength, maxNameLength),
			map[string]any{"name": candidate.Name},
		))
	}

	typeValid := candidate.AccountType.IsValid()
	if !typeValid {
		errs = append(errs, apperrors.NewAccountingValidation(
			apperrors.CodeInvalidAccountType,
			fmt.Sprintf("'%s' is not a valid account type", candidate.AccountType),
			map[string]any{"accountType": string(candidate.AccountType)},
		))
	}

	if typeValid && candidate.NormalBalance != "" {
		expected, _ := accounting.NormalBalanceFor(candidate.AccountType)
		if candidate.NormalBalance != expected {
			errs = append(errs, apperrors.NewAccountingValidation(
				apperrors.CodeNormalBalanceMismatch,
				fmt.Sprintf("%s accounts have a %s normal balance, got %s",
					candidate.AccountType, expected, candidate.NormalBalance),
				map[string]any{"accountType": string(candidate.AccountType), "normalBalance": string(candidate.NormalBalance)},
			))
		}
	}

	if _, exists := r.byCode[candidate.Code]; exists {
		errs = append(errs, apperrors.NewAccountingValidation(
			apperrors.CodeDuplicateAccountCode,
			fmt.Sprintf("account code '%s' is already in use", candidate.Code),
			map[string]any{"code": candidate.Code},
		))
	}

	if candidate.ParentAccountID != "" {
		parent, ok := r.byID[candidate.ParentAccountID]
		if !ok {
			errs = append(errs, apperrors.NewAccountingValidation(
				apperrors.CodeParentAccountNotFound,
				fmt.Sprintf("parent account '%s' does not exist", candidate.ParentAccountID),
				map[string]any{"parentAccountID": candidate.ParentAccountID},
			))
		} else if !parent.AccountType.IsBalanceSheet() {
			errs = append(errs, apperrors.NewAccountingValidation(
				apperrors.CodeInvalidParentAccountType,
				fmt.Sprintf("parent account '%s' is of type %s, only ASSET, LIABILITY and EQUITY accounts can have children",
					parent.Code, parent.AccountType),
				map[string]any{"parentAccountID": candidate.ParentAccountID, "parentAccountType": string(parent.AccountType)},
			))
		}
	}

	return errs
}

// Register adds a validated account to the Registry's indexes. It assumes
// ValidateNewAccount already passed.
func (r *Registry) Register(account domain.Account) {
	r.index(account)
}

// ByID looks an account up by its identifier.
func (r *Registry) ByID(accountID string) (domain.Account, bool) {
	a, ok := r.byID[accountID]
	return a, ok
}

// ByCode looks an account up by its code.
func (r *Registry) ByCode(code string) (domain.Account, bool) {
	id, ok := r.byCode[code]
	if !ok {
		return domain.Account{}, false
	}
	return r.byID[id], true
}

// AccountsByType returns the accounts of the given type, ordered by code.
func (r *Registry) AccountsByType(accountType domain.AccountType) []domain.Account {
	var out []domain.Account
	for _, a := range r.byID {
		if a.AccountType == accountType {
			out = append(out, a)
		}
	}
	sortByCode(out)
	return out
}

// Children returns the direct children of the given account, ordered by code.
func (r *Registry) Children(parentAccountID string) []domain.Account {
	ids := r.children[parentAccountID]
	out := make([]domain.Account, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.byID[id])
	}
	sortByCode(out)
	return out
}

// All returns every account in the Registry, ordered by code.
func (r *Registry) All() []domain.Account {
	out := make([]domain.Account, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	sortByCode(out)
	return out
}

func sortByCode(accounts []domain.Account) {
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Code < accounts[j].Code
	})
}
