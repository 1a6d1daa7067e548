package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/hxfang/bizledger/internal/apperrors"
	"github.com/hxfang/bizledger/internal/core/domain"
	portssvc "github.com/hxfang/bizledger/internal/core/ports/services"
	"github.com/hxfang/bizledger/internal/dto"
	"github.com/hxfang/bizledger/internal/handlers"
	"github.com/hxfang/bizledger/internal/middleware"
	"github.com/hxfang/bizledger/internal/platform/config"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) ListAccounts(ctx context.Context, includeHidden bool) ([]domain.Account, error) {
	args := m.Called(ctx, includeHidden)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest) (*domain.Account, error) {
	args := m.Called(ctx, accountID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) DeleteAccount(ctx context.Context, accountID string) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

// Ensure mock implements the interface
var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) ListTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) ListSplitDetails(ctx context.Context, transactionID string, limit int) ([]domain.SplitDetail, error) {
	args := m.Called(ctx, transactionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SplitDetail), args.Error(1)
}

func (m *MockLedgerService) PostTransaction(ctx context.Context, req dto.CreateTransactionRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) UpdateTransaction(ctx context.Context, transactionID string, req dto.CreateTransactionRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) DeleteTransaction(ctx context.Context, transactionID string) error {
	args := m.Called(ctx, transactionID)
	return args.Error(0)
}

// Ensure mock implements the interface
var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Test Suite ---
type AccountHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockAccountService *MockAccountService
	mockLedgerService  *MockLedgerService
}

func (suite *AccountHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()

	// Same middleware chain as main, with log output discarded.
	quietLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	suite.router.Use(middleware.StructuredLoggingMiddleware(quietLogger))

	suite.mockAccountService = new(MockAccountService)
	suite.mockLedgerService = new(MockLedgerService)

	handlers.RegisterRoutes(suite.router, &config.Config{}, &portssvc.ServiceContainer{
		Account: suite.mockAccountService,
		Ledger:  suite.mockLedgerService,
	})
}

func (suite *AccountHandlerTestSuite) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *AccountHandlerTestSuite) TestCreateAccount_Success() {
	accountID := uuid.NewString()
	expected := &domain.Account{
		AccountID:   accountID,
		Name:        "Bank of China",
		AccountType: "BANK",
		IsCash:      true,
		Timestamps: domain.Timestamps{
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
	}

	suite.mockAccountService.On("CreateAccount",
		mock.Anything,
		mock.MatchedBy(func(req dto.CreateAccountRequest) bool {
			return req.Name == "Bank of China" && req.AccountType == "BANK" && req.IsCash
		}),
	).Return(expected, nil).Once()

	body := `{"name":"Bank of China","accountType":"BANK","isCash":true}`
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/accounts", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := suite.serve(req)

	suite.Equal(http.StatusCreated, w.Code)

	var got dto.AccountResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &got))
	suite.Equal(accountID, got.AccountID)
	suite.Equal("Bank of China", got.Name)
	suite.True(got.IsCash)

	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_DuplicateName() {
	suite.mockAccountService.On("CreateAccount", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: account name already in use", apperrors.ErrDuplicate)).Once()

	body := `{"name":"Bank of China","accountType":"BANK"}`
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/accounts", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := suite.serve(req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "already in use")
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_MissingRequiredFields() {
	body := `{"name":"No Type"}`
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/accounts", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := suite.serve(req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockAccountService.AssertNotCalled(suite.T(), "CreateAccount", mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestListAccounts_IncludeHidden() {
	accounts := []domain.Account{
		{AccountID: uuid.NewString(), Name: "Cash", AccountType: "CASH", CurrentBalance: decimal.NewFromInt(100)},
		{AccountID: uuid.NewString(), Name: "Old Bank", AccountType: "BANK", Hidden: true},
	}

	suite.mockAccountService.On("ListAccounts", mock.Anything, true).Return(accounts, nil).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/accounts?includeHidden=true", nil)
	w := suite.serve(req)

	suite.Equal(http.StatusOK, w.Code)

	var got []dto.AccountResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &got))
	suite.Len(got, 2)
	suite.Equal("Cash", got[0].Name)
	suite.True(got[1].Hidden)

	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestListAccounts_DefaultExcludesHidden() {
	suite.mockAccountService.On("ListAccounts", mock.Anything, false).
		Return([]domain.Account{}, nil).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	w := suite.serve(req)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestGetAccount_NotFound() {
	accountID := uuid.NewString()
	suite.mockAccountService.On("GetAccountByID", mock.Anything, accountID).
		Return(nil, apperrors.ErrNotFound).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/accounts/"+accountID, nil)
	w := suite.serve(req)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *AccountHandlerTestSuite) TestDeleteAccount_ConflictWithHistory() {
	accountID := uuid.NewString()
	suite.mockAccountService.On("DeleteAccount", mock.Anything, accountID).
		Return(fmt.Errorf("%w: account has transaction history, hide the account instead", apperrors.ErrConflict)).Once()

	req, _ := http.NewRequest(http.MethodDelete, "/api/v1/accounts/"+accountID, nil)
	w := suite.serve(req)

	suite.Equal(http.StatusConflict, w.Code)
	suite.Contains(w.Body.String(), "hide the account instead")
}

func (suite *AccountHandlerTestSuite) TestDeleteAccount_Success() {
	accountID := uuid.NewString()
	suite.mockAccountService.On("DeleteAccount", mock.Anything, accountID).Return(nil).Once()

	req, _ := http.NewRequest(http.MethodDelete, "/api/v1/accounts/"+accountID, nil)
	w := suite.serve(req)

	suite.Equal(http.StatusNoContent, w.Code)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestListTransactions_DefaultLimit() {
	expected := []domain.Transaction{
		{
			TransactionID: uuid.NewString(),
			PostDate:      time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			Description:   "Office supplies",
		},
	}

	suite.mockLedgerService.On("ListTransactions", mock.Anything, 50).Return(expected, nil).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	w := suite.serve(req)

	suite.Equal(http.StatusOK, w.Code)

	var got []dto.TransactionResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &got))
	suite.Len(got, 1)
	suite.Equal(expected[0].TransactionID, got[0].TransactionID)

	suite.mockLedgerService.AssertExpectations(suite.T())
	suite.mockAccountService.AssertNotCalled(suite.T(), "ListAccounts", mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestPostTransaction_UnbalancedRejected() {
	suite.mockLedgerService.On("PostTransaction", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: splits must sum to zero", apperrors.ErrValidation)).Once()

	body := `{
		"postDate": "2026-03-10T00:00:00Z",
		"description": "broken entry",
		"splits": [
			{"accountID": "acc-1", "amount": "100"},
			{"accountID": "acc-2", "amount": "-90"}
		]
	}`
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := suite.serve(req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "sum to zero")
}

func (suite *AccountHandlerTestSuite) TestPostTransaction_SingleSplitFailsBinding() {
	body := `{
		"postDate": "2026-03-10T00:00:00Z",
		"splits": [{"accountID": "acc-1", "amount": "100"}]
	}`
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := suite.serve(req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockLedgerService.AssertNotCalled(suite.T(), "PostTransaction", mock.Anything, mock.Anything)
}

// --- Run Test Suite ---
func TestAccountHandler(t *testing.T) {
	suite.Run(t, new(AccountHandlerTestSuite))
}
