package dto

import (
	"time"

	"github.com/openbooks/ledger-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Code              string             `json:"code" binding:"required,accountcode"`
	Name              string             `json:"name" binding:"required,min=3,max=100"`
	AccountType       domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Subtype           string             `json:"subtype"`
	Category          string             `json:"category"`
	ParentAccountID   *string            `json:"parentAccountID"` // Optional, use pointer for nullability
	NormalBalance     *domain.EntrySide  `json:"normalBalance" binding:"omitempty,oneof=DEBIT CREDIT"`
	AllowTransactions *bool              `json:"allowTransactions"` // Defaults to true when omitted
	ReportCategory    string             `json:"reportCategory"`
	ReportOrder       int                `json:"reportOrder"`
	Description       string             `json:"description"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateAccountRequest struct {
	Name              *string `json:"name" binding:"omitempty,min=3,max=100"`
	Subtype           *string `json:"subtype"`
	Category          *string `json:"category"`
	AllowTransactions *bool   `json:"allowTransactions"`
	IsActive          *bool   `json:"isActive"`
	ReportCategory    *string `json:"reportCategory"`
	ReportOrder       *int    `json:"reportOrder"`
	Description       *string `json:"description"`
}

// AccountResponse defines the data returned for an account.
// Mirrors domain.Account.
type AccountResponse struct {
	AccountID         string             `json:"accountID"`
	EntityID          string             `json:"entityID"`
	Code              string             `json:"code"`
	Name              string             `json:"name"`
	AccountType       domain.AccountType `json:"accountType"`
	Subtype           string             `json:"subtype,omitempty"`
	Category          string             `json:"category,omitempty"`
	ParentAccountID   string             `json:"parentAccountID,omitempty"` // Empty string if the account is a root
	Level             int                `json:"level"`
	Path              string             `json:"path"`
	IsActive          bool               `json:"isActive"`
	IsSystem          bool               `json:"isSystem"`
	AllowTransactions bool               `json:"allowTransactions"`
	NormalBalance     domain.EntrySide   `json:"normalBalance"`
	CurrentBalance    decimal.Decimal    `json:"currentBalance"`
	ReportCategory    string             `json:"reportCategory,omitempty"`
	ReportOrder       int                `json:"reportOrder"`
	Description       string             `json:"description,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
	CreatedBy         string             `json:"createdBy"`
	LastUpdatedAt     time.Time          `json:"lastUpdatedAt"`
	LastUpdatedBy     string             `json:"lastUpdatedBy"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:         acc.AccountID,
		EntityID:          acc.EntityID,
		Code:              acc.Code,
		Name:              acc.Name,
		AccountType:       acc.AccountType,
		Subtype:           acc.Subtype,
		Category:          acc.Category,
		ParentAccountID:   acc.ParentAccountID,
		Level:             acc.Level,
		Path:              acc.Path,
		IsActive:          acc.IsActive,
		IsSystem:          acc.IsSystem,
		AllowTransactions: acc.AllowTransactions,
		NormalBalance:     acc.NormalBalance,
		CurrentBalance:    acc.CurrentBalance,
		ReportCategory:    acc.ReportCategory,
		ReportOrder:       acc.ReportOrder,
		Description:       acc.Description,
		CreatedAt:         acc.CreatedAt,
		CreatedBy:         acc.CreatedBy,
		LastUpdatedAt:     acc.LastUpdatedAt,
		LastUpdatedBy:     acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	Limit       int    `form:"limit,default=20"`
	Offset      int    `form:"offset,default=0"`
	AccountType string `form:"accountType"`
}
