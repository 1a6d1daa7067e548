package services_test

import (
	"context"
	"fmt"
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

// --- Mock BusinessRepository ---
type MockBusinessRepository struct {
	mock.Mock
}

var _ portsrepo.BusinessRepositoryFacade = (*MockBusinessRepository)(nil)

func (m *MockBusinessRepository) CountDocumentsByTypeAndDate(ctx context.Context, docType domain.BusinessDocumentType, docDate time.Time) (int, error) {
	args := m.Called(ctx, docType, docDate)
	return args.Int(0), args.Error(1)
}

func (m *MockBusinessRepository) CreateDocumentWithTransaction(ctx context.Context, doc domain.BusinessDocument, txn domain.Transaction, deltas map[string]decimal.Decimal) (*domain.BusinessDocument, error) {
	args := m.Called(ctx, doc, txn, deltas)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BusinessDocument), args.Error(1)
}

func (m *MockBusinessRepository) FindDocumentByID(ctx context.Context, id int64) (*domain.BusinessDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BusinessDocument), args.Error(1)
}

func (m *MockBusinessRepository) ListDocuments(ctx context.Context, docType domain.BusinessDocumentType, limit int) ([]domain.BusinessDocument, error) {
	args := m.Called(ctx, docType, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BusinessDocument), args.Error(1)
}

// --- Mock CashflowTypeReader ---
type MockCashflowTypeReader struct {
	mock.Mock
}

var _ portsrepo.CashflowTypeReader = (*MockCashflowTypeReader)(nil)

func (m *MockCashflowTypeReader) FindCashflowTypesByIDs(ctx context.Context, ids []int64) (map[int64]domain.CashflowType, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]domain.CashflowType), args.Error(1)
}

func (m *MockCashflowTypeReader) ListCashflowTypes(ctx context.Context, activeOnly bool) ([]domain.CashflowType, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CashflowType), args.Error(1)
}

// --- Test Suite Setup ---
type BusinessServiceTestSuite struct {
	suite.Suite
	mockBusinessRepo *MockBusinessRepository
	mockCashflowRepo *MockCashflowTypeReader
	mockAccountRepo  *MockAccountReader
	service          portssvc.BusinessSvcFacade
	bankAccount      domain.Account
	revenueAccount   domain.Account
	receivableAcct   domain.Account
	cashflowTypeID   int64
	docDate          time.Time
}

func (suite *BusinessServiceTestSuite) SetupTest() {
	suite.mockBusinessRepo = new(MockBusinessRepository)
	suite.mockCashflowRepo = new(MockCashflowTypeReader)
	suite.mockAccountRepo = new(MockAccountReader)
	suite.service = services.NewBusinessService(suite.mockBusinessRepo, suite.mockCashflowRepo, suite.mockAccountRepo)

	suite.bankAccount = domain.Account{
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
	suite.receivableAcct = domain.Account{
		AccountID:   uuid.NewString(),
		Name:        "Accounts Receivable",
		AccountType: "RECEIVABLE",
	}
	suite.cashflowTypeID = 1
	suite.docDate = time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
}

func (suite *BusinessServiceTestSuite) mockAccounts(accounts ...domain.Account) {
	m := make(map[string]domain.Account, len(accounts))
	for _, a := range accounts {
		m[a.AccountID] = a
	}
	suite.mockAccountRepo.On("FindAccountsByIDs", mock.Anything, mock.Anything).Return(m, nil)
}

func (suite *BusinessServiceTestSuite) mockCashflowTypes(ids ...int64) {
	m := make(map[int64]domain.CashflowType, len(ids))
	for _, id := range ids {
		m[id] = domain.CashflowType{ID: id, Code: fmt.Sprintf("CT%d", id), FlowType: domain.FlowOperating, Direction: domain.DirectionInflow}
	}
	suite.mockCashflowRepo.On("FindCashflowTypesByIDs", mock.Anything, mock.Anything).Return(m, nil)
}

// --- Test Cases ---

func (suite *BusinessServiceTestSuite) TestPostBusinessDocument_GeneratesDocNo() {
	ctx := context.Background()
	req := dto.CreateBusinessDocumentRequest{
		DocDate:        suite.docDate,
		PartnerName:    "Acme Ltd",
		CashflowTypeID: &suite.cashflowTypeID,
		Items: []dto.CreateBusinessDocumentItemRequest{
			{DebitAccountID: suite.bankAccount.AccountID, CreditAccountID: suite.revenueAccount.AccountID, Amount: decimal.NewFromInt(200)},
		},
	}

	suite.mockAccounts(suite.bankAccount, suite.revenueAccount)
	suite.mockCashflowTypes(suite.cashflowTypeID)
	suite.mockBusinessRepo.On("CountDocumentsByTypeAndDate", ctx, domain.DocSale, suite.docDate).Return(2, nil).Once()
	suite.mockBusinessRepo.On("CreateDocumentWithTransaction", ctx, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			doc := args.Get(1).(domain.BusinessDocument)
			txn := args.Get(2).(domain.Transaction)
			suite.Equal("XS-20260315-003", doc.DocNo)
			suite.Equal("CNY", doc.Currency)
			suite.Equal("POSTED", doc.Status)
			suite.True(doc.TotalAmount.Equal(decimal.NewFromInt(200)))
			suite.Len(txn.Splits, 2)
			suite.True(txn.Splits[0].Amount.Equal(decimal.NewFromInt(200)))
			suite.True(txn.Splits[1].Amount.Equal(decimal.NewFromInt(-200)))
			// Both legs carry the document-level cashflow classification.
			suite.Require().NotNil(txn.Splits[0].CashflowTypeID)
			suite.Require().NotNil(txn.Splits[1].CashflowTypeID)
			suite.Equal(suite.cashflowTypeID, *txn.Splits[0].CashflowTypeID)
			suite.Equal(suite.cashflowTypeID, *txn.Splits[1].CashflowTypeID)
		}).
		Return(&domain.BusinessDocument{DocType: domain.DocSale, DocNo: "XS-20260315-003"}, nil).Once()

	doc, err := suite.service.PostBusinessDocument(ctx, req, domain.DocSale)

	suite.Require().NoError(err)
	suite.Equal("XS-20260315-003", doc.DocNo)
	suite.mockBusinessRepo.AssertExpectations(suite.T())
}

func (suite *BusinessServiceTestSuite) TestPostBusinessDocument_TruncatesDocDate() {
	ctx := context.Background()
	req := dto.CreateBusinessDocumentRequest{
		DocDate: time.Date(2026, 3, 15, 18, 45, 0, 0, time.UTC),
		Items: []dto.CreateBusinessDocumentItemRequest{
			{DebitAccountID: suite.receivableAcct.AccountID, CreditAccountID: suite.revenueAccount.AccountID, Amount: decimal.NewFromInt(80)},
		},
	}

	suite.mockAccounts(suite.receivableAcct, suite.revenueAccount)
	suite.mockBusinessRepo.On("CountDocumentsByTypeAndDate", ctx, domain.DocSale, suite.docDate).Return(0, nil).Once()
	suite.mockBusinessRepo.On("CreateDocumentWithTransaction", ctx, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			doc := args.Get(1).(domain.BusinessDocument)
			txn := args.Get(2).(domain.Transaction)
			suite.True(doc.DocDate.Equal(suite.docDate))
			suite.True(txn.PostDate.Equal(suite.docDate))
			suite.Equal("XS-20260315-001", doc.DocNo)
		}).
		Return(&domain.BusinessDocument{DocType: domain.DocSale, DocNo: "XS-20260315-001"}, nil).Once()

	_, err := suite.service.PostBusinessDocument(ctx, req, domain.DocSale)

	suite.Require().NoError(err)
	suite.mockBusinessRepo.AssertExpectations(suite.T())
}

func (suite *BusinessServiceTestSuite) TestPostBusinessDocument_RetriesOnGeneratedCollision() {
	ctx := context.Background()
	req := dto.CreateBusinessDocumentRequest{
		DocDate: suite.docDate,
		Items: []dto.CreateBusinessDocumentItemRequest{
			{DebitAccountID: suite.receivableAcct.AccountID, CreditAccountID: suite.revenueAccount.AccountID, Amount: decimal.NewFromInt(50)},
		},
	}

	suite.mockAccounts(suite.receivableAcct, suite.revenueAccount)
	suite.mockBusinessRepo.On("CountDocumentsByTypeAndDate", ctx, domain.DocSale, suite.docDate).Return(0, nil)
	suite.mockBusinessRepo.On("CreateDocumentWithTransaction", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrDuplicate).Once()
	suite.mockBusinessRepo.On("CreateDocumentWithTransaction", ctx, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			doc := args.Get(1).(domain.BusinessDocument)
			suite.Equal("XS-20260315-002", doc.DocNo)
		}).
		Return(&domain.BusinessDocument{DocNo: "XS-20260315-002"}, nil).Once()

	doc, err := suite.service.PostBusinessDocument(ctx, req, domain.DocSale)

	suite.Require().NoError(err)
	suite.Equal("XS-20260315-002", doc.DocNo)
	suite.mockBusinessRepo.AssertExpectations(suite.T())
}

func (suite *BusinessServiceTestSuite) TestPostBusinessDocument_ExplicitDuplicateNotRetried() {
	ctx := context.Background()
	req := dto.CreateBusinessDocumentRequest{
		DocNo:   "CG-MANUAL-1",
		DocDate: suite.docDate,
		Items: []dto.CreateBusinessDocumentItemRequest{
			{DebitAccountID: suite.receivableAcct.AccountID, CreditAccountID: suite.revenueAccount.AccountID, Amount: decimal.NewFromInt(50)},
		},
	}

	suite.mockAccounts(suite.receivableAcct, suite.revenueAccount)
	suite.mockBusinessRepo.On("CreateDocumentWithTransaction", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrDuplicate).Once()

	_, err := suite.service.PostBusinessDocument(ctx, req, domain.DocPurchase)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockBusinessRepo.AssertNotCalled(suite.T(), "CountDocumentsByTypeAndDate", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BusinessServiceTestSuite) TestPostBusinessDocument_CashAccountRequiresCashflowType() {
	ctx := context.Background()
	req := dto.CreateBusinessDocumentRequest{
		DocDate: suite.docDate,
		Items: []dto.CreateBusinessDocumentItemRequest{
			{DebitAccountID: suite.bankAccount.AccountID, CreditAccountID: suite.revenueAccount.AccountID, Amount: decimal.NewFromInt(10)},
		},
	}

	suite.mockAccounts(suite.bankAccount, suite.revenueAccount)
	suite.mockBusinessRepo.On("CountDocumentsByTypeAndDate", ctx, domain.DocSale, suite.docDate).Return(0, nil).Once()

	_, err := suite.service.PostBusinessDocument(ctx, req, domain.DocSale)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), suite.bankAccount.Name)
	suite.mockBusinessRepo.AssertNotCalled(suite.T(), "CreateDocumentWithTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BusinessServiceTestSuite) TestPostBusinessDocument_NonPositiveItemAmount() {
	ctx := context.Background()
	req := dto.CreateBusinessDocumentRequest{
		DocDate: suite.docDate,
		Items: []dto.CreateBusinessDocumentItemRequest{
			{DebitAccountID: suite.receivableAcct.AccountID, CreditAccountID: suite.revenueAccount.AccountID, Amount: decimal.Zero},
		},
	}

	suite.mockAccounts(suite.receivableAcct, suite.revenueAccount)
	suite.mockBusinessRepo.On("CountDocumentsByTypeAndDate", ctx, domain.DocExpense, suite.docDate).Return(0, nil).Once()

	_, err := suite.service.PostBusinessDocument(ctx, req, domain.DocExpense)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *BusinessServiceTestSuite) TestPostBusinessDocument_UnknownCashflowType() {
	ctx := context.Background()
	missingID := int64(99)
	req := dto.CreateBusinessDocumentRequest{
		DocDate:        suite.docDate,
		CashflowTypeID: &missingID,
		Items: []dto.CreateBusinessDocumentItemRequest{
			{DebitAccountID: suite.bankAccount.AccountID, CreditAccountID: suite.revenueAccount.AccountID, Amount: decimal.NewFromInt(10)},
		},
	}

	suite.mockAccounts(suite.bankAccount, suite.revenueAccount)
	suite.mockCashflowRepo.On("FindCashflowTypesByIDs", mock.Anything, []int64{missingID}).
		Return(map[int64]domain.CashflowType{}, nil).Once()

	_, err := suite.service.PostBusinessDocument(ctx, req, domain.DocCashflow)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "99")
}

func (suite *BusinessServiceTestSuite) TestPostBusinessDocument_MultiItemTotals() {
	ctx := context.Background()
	req := dto.CreateBusinessDocumentRequest{
		DocDate: suite.docDate,
		Items: []dto.CreateBusinessDocumentItemRequest{
			{DebitAccountID: suite.receivableAcct.AccountID, CreditAccountID: suite.revenueAccount.AccountID, Amount: decimal.NewFromFloat(19.99)},
			{DebitAccountID: suite.receivableAcct.AccountID, CreditAccountID: suite.revenueAccount.AccountID, Amount: decimal.NewFromFloat(5.01)},
		},
	}

	suite.mockAccounts(suite.receivableAcct, suite.revenueAccount)
	suite.mockBusinessRepo.On("CountDocumentsByTypeAndDate", ctx, domain.DocSale, suite.docDate).Return(0, nil).Once()
	suite.mockBusinessRepo.On("CreateDocumentWithTransaction", ctx, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			doc := args.Get(1).(domain.BusinessDocument)
			txn := args.Get(2).(domain.Transaction)
			deltas := args.Get(3).(map[string]decimal.Decimal)
			suite.True(doc.TotalAmount.Equal(decimal.NewFromInt(25)))
			suite.Len(txn.Splits, 4)
			suite.Equal(1, doc.Items[0].LineNo)
			suite.Equal(2, doc.Items[1].LineNo)
			suite.True(deltas[suite.receivableAcct.AccountID].Equal(decimal.NewFromInt(25)))
			suite.True(deltas[suite.revenueAccount.AccountID].Equal(decimal.NewFromInt(-25)))
		}).
		Return(&domain.BusinessDocument{}, nil).Once()

	_, err := suite.service.PostBusinessDocument(ctx, req, domain.DocSale)

	suite.Require().NoError(err)
	suite.mockBusinessRepo.AssertExpectations(suite.T())
}

func TestBusinessServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BusinessServiceTestSuite))
}
