package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/hxfang/bizledger/internal/apperrors"
	"github.com/hxfang/bizledger/internal/core/domain"
	portsrepo "github.com/hxfang/bizledger/internal/core/ports/repositories"
	portssvc "github.com/hxfang/bizledger/internal/core/ports/services"
	"github.com/hxfang/bizledger/internal/core/services"
	"github.com/hxfang/bizledger/internal/dto"
)

// --- Mock TransactionRepository ---
type MockTransactionRepository struct {
	mock.Mock
}

var _ portsrepo.TransactionRepositoryFacade = (*MockTransactionRepository)(nil)

func (m *MockTransactionRepository) CreateTransaction(ctx context.Context, txn domain.Transaction, deltas map[string]decimal.Decimal) error {
	args := m.Called(ctx, txn, deltas)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction, reverseDeltas, forwardDeltas map[string]decimal.Decimal) error {
	args := m.Called(ctx, txn, reverseDeltas, forwardDeltas)
	return args.Error(0)
}

func (m *MockTransactionRepository) DeleteTransaction(ctx context.Context, transactionID string, reverseDeltas map[string]decimal.Decimal) error {
	args := m.Called(ctx, transactionID, reverseDeltas)
	return args.Error(0)
}

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindSplitsByTransactionID(ctx context.Context, transactionID string) ([]domain.Split, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Split), args.Error(1)
}

func (m *MockTransactionRepository) ListTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListSplitDetails(ctx context.Context, transactionID string, limit int) ([]domain.SplitDetail, error) {
	args := m.Called(ctx, transactionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SplitDetail), args.Error(1)
}

// --- Mock AccountReader ---
type MockAccountReader struct {
	mock.Mock
}

var _ portsrepo.AccountReader = (*MockAccountReader)(nil)

func (m *MockAccountReader) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountReader) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountReader) FindAccountByName(ctx context.Context, name string) (*domain.Account, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountReader) ListAccounts(ctx context.Context, includeHidden bool) ([]domain.Account, error) {
	args := m.Called(ctx, includeHidden)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountReader) ListChildAccounts(ctx context.Context, parentID string) ([]domain.Account, error) {
	args := m.Called(ctx, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountReader) HasSplits(ctx context.Context, accountID string) (bool, error) {
	args := m.Called(ctx, accountID)
	return args.Bool(0), args.Error(1)
}

// --- Test Suite Setup ---
type LedgerServiceTestSuite struct {
	suite.Suite
	mockTxnRepo     *MockTransactionRepository
	mockAccountRepo *MockAccountReader
	service         portssvc.LedgerSvcFacade
	cashAccount     domain.Account
	revenueAccount  domain.Account
	expenseAccount  domain.Account
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockAccountRepo = new(MockAccountReader)
	suite.service = services.NewLedgerService(suite.mockTxnRepo, suite.mockAccountRepo)

	suite.cashAccount = domain.Account{
		AccountID:   uuid.NewString(),
		Name:        "Bank",
		AccountType: "BANK",
		IsCash:      true,
	}
	suite.revenueAccount = domain.Account{
		AccountID:   uuid.NewString(),
		Name:        "Sales Revenue",
		AccountType: "REVENUE",
	}
	suite.expenseAccount = domain.Account{
		AccountID:   uuid.NewString(),
		Name:        "Office Supplies",
		AccountType: "EXPENSE",
	}
}

func (suite *LedgerServiceTestSuite) accountsMapFor(accounts ...domain.Account) map[string]domain.Account {
	m := make(map[string]domain.Account, len(accounts))
	for _, a := range accounts {
		m[a.AccountID] = a
	}
	return m
}

// --- Test Cases ---

func (suite *LedgerServiceTestSuite) TestPostTransaction_Success() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{
		PostDate:    time.Now(),
		Description: "Cash sale",
		Splits: []dto.CreateSplitRequest{
			{AccountID: suite.cashAccount.AccountID, Amount: decimal.NewFromInt(100)},
			{AccountID: suite.revenueAccount.AccountID, Amount: decimal.NewFromInt(-100)},
		},
	}

	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, []string{suite.cashAccount.AccountID, suite.revenueAccount.AccountID}).
		Return(suite.accountsMapFor(suite.cashAccount, suite.revenueAccount), nil).Once()
	suite.mockTxnRepo.On("CreateTransaction", ctx, mock.AnythingOfType("domain.Transaction"), mock.AnythingOfType("map[string]decimal.Decimal")).
		Run(func(args mock.Arguments) {
			deltas := args.Get(2).(map[string]decimal.Decimal)
			suite.True(deltas[suite.cashAccount.AccountID].Equal(decimal.NewFromInt(100)))
			suite.True(deltas[suite.revenueAccount.AccountID].Equal(decimal.NewFromInt(-100)))
		}).
		Return(nil).Once()

	txn, err := suite.service.PostTransaction(ctx, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	suite.NotEmpty(txn.TransactionID)
	suite.Len(txn.Splits, 2)
	suite.Equal(domain.ReconcileNone, txn.Splits[0].ReconcileState)
	suite.mockTxnRepo.AssertExpectations(suite.T())
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestPostTransaction_TruncatesPostDateToDay() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{
		PostDate:    time.Date(2026, 1, 31, 10, 0, 0, 0, time.UTC),
		Description: "Posted mid-morning on the month's last day",
		Splits: []dto.CreateSplitRequest{
			{AccountID: suite.cashAccount.AccountID, Amount: decimal.NewFromInt(100)},
			{AccountID: suite.revenueAccount.AccountID, Amount: decimal.NewFromInt(-100)},
		},
	}

	wantDate := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).
		Return(suite.accountsMapFor(suite.cashAccount, suite.revenueAccount), nil).Once()
	suite.mockTxnRepo.On("CreateTransaction", ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			saved := args.Get(1).(domain.Transaction)
			suite.True(saved.PostDate.Equal(wantDate))
		}).
		Return(nil).Once()

	txn, err := suite.service.PostTransaction(ctx, req)

	suite.Require().NoError(err)
	suite.True(txn.PostDate.Equal(wantDate))
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestPostTransaction_AggregatesDeltasPerAccount() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{
		PostDate: time.Now(),
		Splits: []dto.CreateSplitRequest{
			{AccountID: suite.expenseAccount.AccountID, Amount: decimal.NewFromInt(30)},
			{AccountID: suite.expenseAccount.AccountID, Amount: decimal.NewFromInt(20)},
			{AccountID: suite.cashAccount.AccountID, Amount: decimal.NewFromInt(-50)},
		},
	}

	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).
		Return(suite.accountsMapFor(suite.expenseAccount, suite.cashAccount), nil).Once()
	suite.mockTxnRepo.On("CreateTransaction", ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			deltas := args.Get(2).(map[string]decimal.Decimal)
			suite.Len(deltas, 2)
			suite.True(deltas[suite.expenseAccount.AccountID].Equal(decimal.NewFromInt(50)))
			suite.True(deltas[suite.cashAccount.AccountID].Equal(decimal.NewFromInt(-50)))
		}).
		Return(nil).Once()

	_, err := suite.service.PostTransaction(ctx, req)

	suite.Require().NoError(err)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestPostTransaction_Unbalanced() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{
		PostDate: time.Now(),
		Splits: []dto.CreateSplitRequest{
			{AccountID: suite.cashAccount.AccountID, Amount: decimal.NewFromInt(100)},
			{AccountID: suite.revenueAccount.AccountID, Amount: decimal.NewFromInt(-99)},
		},
	}

	_, err := suite.service.PostTransaction(ctx, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), services.ErrUnbalanced.Error())
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "CreateTransaction", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestPostTransaction_SingleSplit() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{
		PostDate: time.Now(),
		Splits: []dto.CreateSplitRequest{
			{AccountID: suite.cashAccount.AccountID, Amount: decimal.NewFromInt(100)},
		},
	}

	_, err := suite.service.PostTransaction(ctx, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), services.ErrMinSplits.Error())
}

func (suite *LedgerServiceTestSuite) TestPostTransaction_AccountNotFound() {
	ctx := context.Background()
	unknownID := uuid.NewString()
	req := dto.CreateTransactionRequest{
		PostDate: time.Now(),
		Splits: []dto.CreateSplitRequest{
			{AccountID: suite.cashAccount.AccountID, Amount: decimal.NewFromInt(100)},
			{AccountID: unknownID, Amount: decimal.NewFromInt(-100)},
		},
	}

	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).
		Return(suite.accountsMapFor(suite.cashAccount), nil).Once()

	_, err := suite.service.PostTransaction(ctx, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), unknownID)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "CreateTransaction", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestUpdateTransaction_TwoPhaseDeltas() {
	ctx := context.Background()
	txnID := uuid.NewString()
	enterDate := time.Now().Add(-48 * time.Hour)
	existing := &domain.Transaction{
		TransactionID: txnID,
		EnterDate:     enterDate,
		Timestamps:    domain.Timestamps{CreatedAt: enterDate},
	}
	oldSplits := []domain.Split{
		{SplitID: uuid.NewString(), TransactionID: txnID, AccountID: suite.cashAccount.AccountID, Amount: decimal.NewFromInt(100)},
		{SplitID: uuid.NewString(), TransactionID: txnID, AccountID: suite.revenueAccount.AccountID, Amount: decimal.NewFromInt(-100)},
	}
	req := dto.CreateTransactionRequest{
		PostDate: time.Now(),
		Splits: []dto.CreateSplitRequest{
			{AccountID: suite.cashAccount.AccountID, Amount: decimal.NewFromInt(150)},
			{AccountID: suite.revenueAccount.AccountID, Amount: decimal.NewFromInt(-150)},
		},
	}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, txnID).Return(existing, nil).Once()
	suite.mockTxnRepo.On("FindSplitsByTransactionID", ctx, txnID).Return(oldSplits, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).
		Return(suite.accountsMapFor(suite.cashAccount, suite.revenueAccount), nil).Once()
	suite.mockTxnRepo.On("UpdateTransaction", ctx, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			reverse := args.Get(2).(map[string]decimal.Decimal)
			forward := args.Get(3).(map[string]decimal.Decimal)
			suite.True(reverse[suite.cashAccount.AccountID].Equal(decimal.NewFromInt(-100)))
			suite.True(reverse[suite.revenueAccount.AccountID].Equal(decimal.NewFromInt(100)))
			suite.True(forward[suite.cashAccount.AccountID].Equal(decimal.NewFromInt(150)))
			suite.True(forward[suite.revenueAccount.AccountID].Equal(decimal.NewFromInt(-150)))
		}).
		Return(nil).Once()

	updated, err := suite.service.UpdateTransaction(ctx, txnID, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(updated)
	suite.Equal(enterDate, updated.EnterDate)
	suite.Equal(enterDate, updated.CreatedAt)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestUpdateTransaction_NotFound() {
	ctx := context.Background()
	txnID := uuid.NewString()
	suite.mockTxnRepo.On("FindTransactionByID", ctx, txnID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.UpdateTransaction(ctx, txnID, dto.CreateTransactionRequest{})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "UpdateTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestDeleteTransaction_ReversesDeltas() {
	ctx := context.Background()
	txnID := uuid.NewString()
	existing := &domain.Transaction{TransactionID: txnID}
	oldSplits := []domain.Split{
		{SplitID: uuid.NewString(), AccountID: suite.expenseAccount.AccountID, Amount: decimal.NewFromInt(75)},
		{SplitID: uuid.NewString(), AccountID: suite.cashAccount.AccountID, Amount: decimal.NewFromInt(-75)},
	}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, txnID).Return(existing, nil).Once()
	suite.mockTxnRepo.On("FindSplitsByTransactionID", ctx, txnID).Return(oldSplits, nil).Once()
	suite.mockTxnRepo.On("DeleteTransaction", ctx, txnID, mock.Anything).
		Run(func(args mock.Arguments) {
			reverse := args.Get(2).(map[string]decimal.Decimal)
			suite.True(reverse[suite.expenseAccount.AccountID].Equal(decimal.NewFromInt(-75)))
			suite.True(reverse[suite.cashAccount.AccountID].Equal(decimal.NewFromInt(75)))
		}).
		Return(nil).Once()

	err := suite.service.DeleteTransaction(ctx, txnID)

	suite.Require().NoError(err)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestListTransactions_DefaultLimit() {
	ctx := context.Background()
	suite.mockTxnRepo.On("ListTransactions", ctx, 50).Return([]domain.Transaction{}, nil).Once()

	txns, err := suite.service.ListTransactions(ctx, 0)

	suite.Require().NoError(err)
	suite.NotNil(txns)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
