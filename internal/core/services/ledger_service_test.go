package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/openbooks/ledger-backend/internal/apperrors"
	"github.com/openbooks/ledger-backend/internal/core/domain"
	"github.com/openbooks/ledger-backend/internal/core/ledger"
	portssvc "github.com/openbooks/ledger-backend/internal/core/ports/services"
	"github.com/openbooks/ledger-backend/internal/core/services"
	"github.com/openbooks/ledger-backend/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	mockLedgerRepo  *MockLedgerRepository
	mockAccountRepo *MockAccountRepository
	service         portssvc.LedgerSvcFacade
	ctx             context.Context
}

func (s *LedgerServiceTestSuite) SetupTest() {
	s.mockLedgerRepo = new(MockLedgerRepository)
	s.mockAccountRepo = new(MockAccountRepository)
	s.service = services.NewLedgerService(s.mockLedgerRepo, s.mockAccountRepo)
	s.ctx = context.Background()
}

func (s *LedgerServiceTestSuite) postableAccounts() map[string]domain.Account {
	return map[string]domain.Account{
		"acc-cash": {
			AccountID:         "acc-cash",
			EntityID:          testEntityID,
			Code:              "1000",
			Name:              "Cash",
			AccountType:       domain.Asset,
			NormalBalance:     domain.Debit,
			IsActive:          true,
			AllowTransactions: true,
		},
		"acc-rev": {
			AccountID:         "acc-rev",
			EntityID:          testEntityID,
			Code:              "4000",
			Name:              "Sales Revenue",
			AccountType:       domain.Revenue,
			NormalBalance:     domain.Credit,
			IsActive:          true,
			AllowTransactions: true,
		},
	}
}

func (s *LedgerServiceTestSuite) cashSaleRequest() dto.PostTransactionRequest {
	return dto.PostTransactionRequest{
		Description:  "Cash Sale",
		CurrencyCode: "USD",
		Entries: []dto.PostTransactionEntry{
			{AccountID: "acc-cash", Side: domain.Debit, Amount: decimal.RequireFromString("500")},
			{AccountID: "acc-rev", Side: domain.Credit, Amount: decimal.RequireFromString("500")},
		},
	}
}

func (s *LedgerServiceTestSuite) TestPostTransaction_Success() {
	s.mockAccountRepo.On("FindAccountsByIDs", s.ctx, mock.AnythingOfType("[]string")).Return(s.postableAccounts(), nil).Once()

	var capturedDeltas map[string]decimal.Decimal
	s.mockLedgerRepo.On("PostTransaction", s.ctx, mock.AnythingOfType("domain.Transaction"), mock.AnythingOfType("[]domain.JournalEntry"), mock.Anything).
		Run(func(args mock.Arguments) {
			capturedDeltas = args.Get(3).(map[string]decimal.Decimal)
		}).
		Return(nil).Once()

	txn, entries, err := s.service.PostTransaction(s.ctx, testEntityID, s.cashSaleRequest(), testUserID)
	s.Require().NoError(err)
	s.Require().NotNil(txn)

	s.Equal(domain.Posted, txn.Status)
	s.True(txn.Amount.Equal(decimal.RequireFromString("500")))
	s.Len(entries, 2)
	s.Equal(txn.TransactionID, entries[0].TransactionID)

	// Debit to an ASSET and credit to a REVENUE both increase their balances.
	s.Require().NotNil(capturedDeltas)
	s.True(capturedDeltas["acc-cash"].Equal(decimal.RequireFromString("500")))
	s.True(capturedDeltas["acc-rev"].Equal(decimal.RequireFromString("500")))
	s.mockLedgerRepo.AssertExpectations(s.T())
}

func (s *LedgerServiceTestSuite) TestPostTransaction_OnlyDebitsRejected() {
	req := dto.PostTransactionRequest{
		Description:  "One sided",
		CurrencyCode: "USD",
		Entries: []dto.PostTransactionEntry{
			{AccountID: "acc-cash", Side: domain.Debit, Amount: decimal.RequireFromString("100")},
			{AccountID: "acc-rev", Side: domain.Debit, Amount: decimal.RequireFromString("100")},
		},
	}

	_, _, err := s.service.PostTransaction(s.ctx, testEntityID, req, testUserID)
	s.Require().Error(err)
	s.True(errors.Is(err, apperrors.ErrValidation))
	s.mockLedgerRepo.AssertNotCalled(s.T(), "PostTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.mockAccountRepo.AssertNotCalled(s.T(), "FindAccountsByIDs", mock.Anything, mock.Anything)
}

func (s *LedgerServiceTestSuite) TestCreateAndPersist_MissingAccount() {
	accounts := s.postableAccounts()
	delete(accounts, "acc-rev")
	s.mockAccountRepo.On("FindAccountsByIDs", s.ctx, mock.AnythingOfType("[]string")).Return(accounts, nil).Once()

	built := s.buildCashSale("500", "500")
	_, _, err := s.service.CreateAndPersist(s.ctx, testEntityID, built, testUserID)
	s.Require().Error(err)

	var verr *apperrors.AccountingValidationError
	s.Require().True(errors.As(err, &verr))
	s.Equal(apperrors.CodeAccountNotFound, verr.Code)
	s.Equal("acc-rev", verr.Details["accountId"])
	s.mockLedgerRepo.AssertNotCalled(s.T(), "PostTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *LedgerServiceTestSuite) TestCreateAndPersist_TransactionsDisabled() {
	accounts := s.postableAccounts()
	summary := accounts["acc-cash"]
	summary.AllowTransactions = false
	accounts["acc-cash"] = summary
	s.mockAccountRepo.On("FindAccountsByIDs", s.ctx, mock.AnythingOfType("[]string")).Return(accounts, nil).Once()

	built := s.buildCashSale("500", "500")
	_, _, err := s.service.CreateAndPersist(s.ctx, testEntityID, built, testUserID)
	s.Require().Error(err)

	var verr *apperrors.AccountingValidationError
	s.Require().True(errors.As(err, &verr))
	s.Equal(apperrors.CodeAccountTransactionsDisabled, verr.Code)
	s.Equal("acc-cash", verr.Details["accountId"])
	s.Equal("Cash", verr.Details["accountName"])
	s.mockLedgerRepo.AssertNotCalled(s.T(), "PostTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *LedgerServiceTestSuite) TestCreateAndPersist_InactiveAccount() {
	accounts := s.postableAccounts()
	closed := accounts["acc-rev"]
	closed.IsActive = false
	accounts["acc-rev"] = closed
	s.mockAccountRepo.On("FindAccountsByIDs", s.ctx, mock.AnythingOfType("[]string")).Return(accounts, nil).Once()

	built := s.buildCashSale("500", "500")
	_, _, err := s.service.CreateAndPersist(s.ctx, testEntityID, built, testUserID)
	s.Require().Error(err)

	var verr *apperrors.AccountingValidationError
	s.Require().True(errors.As(err, &verr))
	s.Equal(apperrors.CodeAccountInactive, verr.Code)
}

func (s *LedgerServiceTestSuite) TestCreateAndPersist_UnbalancedRejected() {
	s.mockAccountRepo.On("FindAccountsByIDs", s.ctx, mock.AnythingOfType("[]string")).Return(s.postableAccounts(), nil).Once()

	// Bypass the builder to simulate misuse: 100 debit against 90 credit.
	built := s.buildCashSale("100.00", "90.00")
	_, _, err := s.service.CreateAndPersist(s.ctx, testEntityID, built, testUserID)
	s.Require().Error(err)

	var derr *apperrors.DoubleEntryError
	s.Require().True(errors.As(err, &derr))
	s.True(derr.DebitTotal.Equal(decimal.RequireFromString("100")))
	s.True(derr.CreditTotal.Equal(decimal.RequireFromString("90")))
	s.True(derr.Difference.Equal(decimal.RequireFromString("10")))
	s.mockLedgerRepo.AssertNotCalled(s.T(), "PostTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// buildCashSale assembles a Built pair directly so tests can feed the poster
// inputs a well-behaved builder would refuse to produce.
func (s *LedgerServiceTestSuite) buildCashSale(debitAmount, creditAmount string) ledger.Built {
	txnID := uuid.NewString()
	return ledger.Built{
		Transaction: domain.Transaction{
			TransactionID:   txnID,
			EntityID:        testEntityID,
			Description:     "Cash Sale",
			CurrencyCode:    "USD",
			TransactionDate: time.Now().UTC(),
			Status:          domain.Posted,
			Amount:          decimal.RequireFromString(debitAmount),
		},
		Entries: []domain.JournalEntry{
			{EntryID: uuid.NewString(), TransactionID: txnID, AccountID: "acc-cash", Side: domain.Debit, Amount: decimal.RequireFromString(debitAmount), CurrencyCode: "USD"},
			{EntryID: uuid.NewString(), TransactionID: txnID, AccountID: "acc-rev", Side: domain.Credit, Amount: decimal.RequireFromString(creditAmount), CurrencyCode: "USD"},
		},
	}
}

func (s *LedgerServiceTestSuite) TestGetTransactionJournalEntries_IdempotentAndBalanced() {
	txnID := "txn-1"
	txn := &domain.Transaction{TransactionID: txnID, EntityID: testEntityID, Status: domain.Posted}
	entries := []domain.JournalEntry{
		{EntryID: "e1", TransactionID: txnID, AccountID: "acc-cash", Side: domain.Debit, Amount: decimal.RequireFromString("500")},
		{EntryID: "e2", TransactionID: txnID, AccountID: "acc-rev", Side: domain.Credit, Amount: decimal.RequireFromString("500")},
	}
	s.mockLedgerRepo.On("FindTransactionByID", s.ctx, txnID).Return(txn, nil).Twice()
	s.mockLedgerRepo.On("FindEntriesByTransactionID", s.ctx, txnID).Return(entries, nil).Twice()

	first, err := s.service.GetTransactionJournalEntries(s.ctx, testEntityID, txnID)
	s.Require().NoError(err)
	second, err := s.service.GetTransactionJournalEntries(s.ctx, testEntityID, txnID)
	s.Require().NoError(err)

	s.True(first.IsBalanced)
	s.True(first.DebitTotal.Equal(decimal.RequireFromString("500")))
	s.True(first.CreditTotal.Equal(decimal.RequireFromString("500")))
	s.Equal(first, second)
}

func (s *LedgerServiceTestSuite) TestReverseTransaction_Success() {
	txnID := "txn-orig"
	original := &domain.Transaction{
		TransactionID:   txnID,
		EntityID:        testEntityID,
		Description:     "Cash Sale",
		CurrencyCode:    "USD",
		TransactionDate: time.Now().UTC(),
		Status:          domain.Posted,
		Amount:          decimal.RequireFromString("500"),
	}
	entries := []domain.JournalEntry{
		{EntryID: "e1", TransactionID: txnID, AccountID: "acc-cash", Side: domain.Debit, Amount: decimal.RequireFromString("500"), CurrencyCode: "USD"},
		{EntryID: "e2", TransactionID: txnID, AccountID: "acc-rev", Side: domain.Credit, Amount: decimal.RequireFromString("500"), CurrencyCode: "USD"},
	}

	s.mockLedgerRepo.On("FindTransactionByID", s.ctx, txnID).Return(original, nil).Once()
	s.mockLedgerRepo.On("FindEntriesByTransactionID", s.ctx, txnID).Return(entries, nil).Once()
	s.mockAccountRepo.On("FindAccountsByIDs", s.ctx, mock.AnythingOfType("[]string")).Return(s.postableAccounts(), nil).Once()

	var capturedDeltas map[string]decimal.Decimal
	var capturedTxn domain.Transaction
	s.mockLedgerRepo.On("PostTransaction", s.ctx, mock.AnythingOfType("domain.Transaction"), mock.AnythingOfType("[]domain.JournalEntry"), mock.Anything).
		Run(func(args mock.Arguments) {
			capturedTxn = args.Get(1).(domain.Transaction)
			capturedDeltas = args.Get(3).(map[string]decimal.Decimal)
		}).
		Return(nil).Once()
	s.mockLedgerRepo.On("UpdateTransactionStatusAndLinks", s.ctx, txnID, domain.Reversed, mock.AnythingOfType("*string"), testUserID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	reversing, err := s.service.ReverseTransaction(s.ctx, testEntityID, txnID, testUserID)
	s.Require().NoError(err)
	s.Require().NotNil(reversing)

	s.Require().NotNil(capturedTxn.ReversedTransactionID)
	s.Equal(txnID, *capturedTxn.ReversedTransactionID)
	s.Contains(capturedTxn.Description, "Reversal of")

	// Sides are mirrored, so both balances move back down.
	s.True(capturedDeltas["acc-cash"].Equal(decimal.RequireFromString("-500")))
	s.True(capturedDeltas["acc-rev"].Equal(decimal.RequireFromString("-500")))
	s.mockLedgerRepo.AssertExpectations(s.T())
}

func (s *LedgerServiceTestSuite) TestReverseTransaction_NotPosted() {
	original := &domain.Transaction{TransactionID: "txn-1", EntityID: testEntityID, Status: domain.Reversed}
	s.mockLedgerRepo.On("FindTransactionByID", s.ctx, "txn-1").Return(original, nil).Once()

	_, err := s.service.ReverseTransaction(s.ctx, testEntityID, "txn-1", testUserID)
	s.Require().Error(err)
	s.True(errors.Is(err, apperrors.ErrConflict))
}

func (s *LedgerServiceTestSuite) TestReverseTransaction_ReversalOfReversalRefused() {
	origID := "txn-0"
	original := &domain.Transaction{
		TransactionID:         "txn-1",
		EntityID:              testEntityID,
		Status:                domain.Posted,
		ReversedTransactionID: &origID,
	}
	s.mockLedgerRepo.On("FindTransactionByID", s.ctx, "txn-1").Return(original, nil).Once()

	_, err := s.service.ReverseTransaction(s.ctx, testEntityID, "txn-1", testUserID)
	s.Require().Error(err)

	var verr *apperrors.AccountingValidationError
	s.Require().True(errors.As(err, &verr))
	s.Equal(apperrors.CodeTransactionNotReversible, verr.Code)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

// --- Concurrent posting ---

// fakeLedgerRepo applies balance deltas to a shared map under a mutex, the
// way the SQL layer's atomic increments behave.
type fakeLedgerRepo struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
}

func (f *fakeLedgerRepo) PostTransaction(_ context.Context, _ domain.Transaction, _ []domain.JournalEntry, deltas map[string]decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for accountID, delta := range deltas {
		f.balances[accountID] = f.balances[accountID].Add(delta)
	}
	return nil
}

func (f *fakeLedgerRepo) FindTransactionByID(context.Context, string) (*domain.Transaction, error) {
	return nil, apperrors.ErrNotFound
}

func (f *fakeLedgerRepo) FindEntriesByTransactionID(context.Context, string) ([]domain.JournalEntry, error) {
	return nil, nil
}

func (f *fakeLedgerRepo) ListTransactionsByEntity(context.Context, string, int, int) ([]domain.Transaction, error) {
	return nil, nil
}

func (f *fakeLedgerRepo) UpdateTransactionStatusAndLinks(context.Context, string, domain.TransactionStatus, *string, string, time.Time) error {
	return nil
}

func TestConcurrentPostings_NoLostUpdate(t *testing.T) {
	accounts := map[string]domain.Account{
		"acc-loan": {
			AccountID:         "acc-loan",
			EntityID:          testEntityID,
			Code:              "2100",
			Name:              "Bank Loan",
			AccountType:       domain.Liability,
			NormalBalance:     domain.Credit,
			IsActive:          true,
			AllowTransactions: true,
		},
		"acc-cash": {
			AccountID:         "acc-cash",
			EntityID:          testEntityID,
			Code:              "1000",
			Name:              "Cash",
			AccountType:       domain.Asset,
			NormalBalance:     domain.Debit,
			IsActive:          true,
			AllowTransactions: true,
		},
	}

	mockAccountRepo := new(MockAccountRepository)
	mockAccountRepo.On("FindAccountsByIDs", mock.Anything, mock.AnythingOfType("[]string")).Return(accounts, nil)

	fake := &fakeLedgerRepo{balances: map[string]decimal.Decimal{}}
	svc := services.NewLedgerService(fake, mockAccountRepo)

	req := dto.PostTransactionRequest{
		Description:  "Loan drawdown",
		CurrencyCode: "USD",
		Entries: []dto.PostTransactionEntry{
			{AccountID: "acc-cash", Side: domain.Debit, Amount: decimal.RequireFromString("50")},
			{AccountID: "acc-loan", Side: domain.Credit, Amount: decimal.RequireFromString("50")},
		},
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = svc.PostTransaction(context.Background(), testEntityID, req, testUserID)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			t.Fatalf("concurrent posting failed: %v", err)
		}
	}

	if got := fake.balances["acc-loan"]; !got.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("expected liability balance to grow by exactly 100, got %s", got.String())
	}
	if got := fake.balances["acc-cash"]; !got.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("expected asset balance to grow by exactly 100, got %s", got.String())
	}
}
