package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// AccountTypes lists every valid account type.
var AccountTypes = []AccountType{Asset, Liability, Equity, Revenue, Expense}

// IsValid reports whether t is one of the five account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// IsBalanceSheet reports whether accounts of this type may parent other
// accounts. Revenue and expense accounts are always leaves.
func (t AccountType) IsBalanceSheet() bool {
	switch t {
	case Asset, Liability, Equity:
		return true
	}
	return false
}

// Account represents one node of an entity's chart of accounts.
// Level and Path are computed from the parent relationship at creation and
// never mutated independently of it.
type Account struct {
	AccountID         string          `json:"accountID"`
	EntityID          string          `json:"entityID"`
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	AccountType       AccountType     `json:"accountType"`
	Subtype           string          `json:"subtype"`
	Category          string          `json:"category"`
	ParentAccountID   string          `json:"parentAccountID"` // empty for root accounts
	Level             int             `json:"level"`
	Path              string          `json:"path"` // materialized path, "/"-separated codes
	IsActive          bool            `json:"isActive"`
	IsSystem          bool            `json:"isSystem"`
	AllowTransactions bool            `json:"allowTransactions"`
	NormalBalance     EntrySide       `json:"normalBalance"`
	CurrentBalance    decimal.Decimal `json:"currentBalance"`
	ReportCategory    string          `json:"reportCategory"`
	ReportOrder       int             `json:"reportOrder"`
	Description       string          `json:"description"`
	AuditFields
}
