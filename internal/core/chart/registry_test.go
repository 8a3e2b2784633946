package chart_test

import (
	"context"
	"testing"

	"github.com/openbooks/ledger-backend/internal/apperrors"
	"github.com/openbooks/ledger-backend/internal/core/chart"
	"github.com/openbooks/ledger-backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const testEntityID = "entity-1"

type staticLister struct {
	accounts []domain.Account
}

func (l *staticLister) ListAccountsByEntity(_ context.Context, _ string) ([]domain.Account, error) {
	return l.accounts, nil
}

type RegistryTestSuite struct {
	suite.Suite
	registry *chart.Registry
	cash     domain.Account
	revenue  domain.Account
}

func (s *RegistryTestSuite) SetupTest() {
	s.cash = domain.Account{
		AccountID:     "acc-cash",
		EntityID:      testEntityID,
		Code:          "1000",
		Name:          "Cash",
		AccountType:   domain.Asset,
		NormalBalance: domain.Debit,
		IsActive:      true,
	}
	s.revenue = domain.Account{
		AccountID:     "acc-rev",
		EntityID:      testEntityID,
		Code:          "4000",
		Name:          "Sales Revenue",
		AccountType:   domain.Revenue,
		NormalBalance: domain.Credit,
		IsActive:      true,
	}
	s.registry = chart.New(testEntityID, []domain.Account{s.cash, s.revenue})
}

func (s *RegistryTestSuite) TestLoad() {
	lister := &staticLister{accounts: []domain.Account{s.cash}}
	reg, err := chart.Load(context.Background(), lister, testEntityID)
	s.Require().NoError(err)

	got, ok := reg.ByCode("1000")
	s.True(ok)
	s.Equal("acc-cash", got.AccountID)
	s.Equal(testEntityID, reg.EntityID())
}

func (s *RegistryTestSuite) TestValidateNewAccount_Valid() {
	errs := s.registry.ValidateNewAccount(domain.Account{
		Code:        "1010",
		Name:        "Petty Cash",
		AccountType: domain.Asset,
	})
	s.Empty(errs)
}

func (s *RegistryTestSuite) TestValidateNewAccount_BadCode() {
	errs := s.registry.ValidateNewAccount(domain.Account{
		Code:        "x",
		Name:        "Too Short Code",
		AccountType: domain.Asset,
	})
	s.Require().Len(errs, 1)
	s.Equal(apperrors.CodeInvalidAccountCode, errs[0].Code)
}

func (s *RegistryTestSuite) TestValidateNewAccount_CollectsAllProblems() {
	errs := s.registry.ValidateNewAccount(domain.Account{
		Code:        "bad code!",
		Name:        "ab",
		AccountType: domain.AccountType("GOODWILL"),
	})
	s.Require().Len(errs, 3)

	codes := make([]string, len(errs))
	for i, e := range errs {
		codes[i] = e.Code
	}
	s.Contains(codes, apperrors.CodeInvalidAccountCode)
	s.Contains(codes, apperrors.CodeInvalidAccountName)
	s.Contains(codes, apperrors.CodeInvalidAccountType)
}

func (s *RegistryTestSuite) TestValidateNewAccount_NormalBalanceMismatch() {
	errs := s.registry.ValidateNewAccount(domain.Account{
		Code:          "2000",
		Name:          "Accounts Payable",
		AccountType:   domain.Liability,
		NormalBalance: domain.Debit,
	})
	s.Require().Len(errs, 1)
	s.Equal(apperrors.CodeNormalBalanceMismatch, errs[0].Code)
}

func (s *RegistryTestSuite) TestValidateNewAccount_DuplicateCode() {
	errs := s.registry.ValidateNewAccount(domain.Account{
		Code:        "1000",
		Name:        "Another Cash",
		AccountType: domain.Asset,
	})
	s.Require().Len(errs, 1)
	s.Equal(apperrors.CodeDuplicateAccountCode, errs[0].Code)
}

func (s *RegistryTestSuite) TestValidateNewAccount_ParentMissing() {
	errs := s.registry.ValidateNewAccount(domain.Account{
		Code:            "1010",
		Name:            "Petty Cash",
		AccountType:     domain.Asset,
		ParentAccountID: "acc-nope",
	})
	s.Require().Len(errs, 1)
	s.Equal(apperrors.CodeParentAccountNotFound, errs[0].Code)
}

func (s *RegistryTestSuite) TestValidateNewAccount_ParentNotBalanceSheet() {
	errs := s.registry.ValidateNewAccount(domain.Account{
		Code:            "4010",
		Name:            "Service Revenue",
		AccountType:     domain.Revenue,
		ParentAccountID: "acc-rev",
	})
	s.Require().Len(errs, 1)
	s.Equal(apperrors.CodeInvalidParentAccountType, errs[0].Code)
}

func (s *RegistryTestSuite) TestRegisterAndLookups() {
	child := domain.Account{
		AccountID:       "acc-petty",
		EntityID:        testEntityID,
		Code:            "1010",
		Name:            "Petty Cash",
		AccountType:     domain.Asset,
		ParentAccountID: "acc-cash",
	}
	s.Require().Empty(s.registry.ValidateNewAccount(child))
	s.registry.Register(child)

	got, ok := s.registry.ByID("acc-petty")
	s.True(ok)
	s.Equal("1010", got.Code)

	children := s.registry.Children("acc-cash")
	s.Require().Len(children, 1)
	s.Equal("acc-petty", children[0].AccountID)

	assets := s.registry.AccountsByType(domain.Asset)
	s.Require().Len(assets, 2)
	s.Equal("1000", assets[0].Code)
	s.Equal("1010", assets[1].Code)

	s.Len(s.registry.All(), 3)
}

func TestRegistryTestSuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func TestCodePattern(t *testing.T) {
	valid := []string{"1000", "10.20", "EXP-TRAVEL", "ab"}
	for _, code := range valid {
		assert.True(t, chart.CodePattern.MatchString(code), code)
	}

	invalid := []string{"", "1", "has space", "way-too-long-for-an-account-code", "ca$h"}
	for _, code := range invalid {
		assert.False(t, chart.CodePattern.MatchString(code), code)
	}
}

func TestChildrenOfLeafIsEmpty(t *testing.T) {
	reg := chart.New(testEntityID, []domain.Account{{
		AccountID:   "acc-1",
		Code:        "1000",
		Name:        "Cash",
		AccountType: domain.Asset,
	}})
	require.Empty(t, reg.Children("acc-1"))
}
