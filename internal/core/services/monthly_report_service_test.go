package services_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/hxfang/bizledger/internal/core/domain"
	portsrepo "github.com/hxfang/bizledger/internal/core/ports/repositories"
	portssvc "github.com/hxfang/bizledger/internal/core/ports/services"
	"github.com/hxfang/bizledger/internal/core/services"
)

// --- Mock MonthlyReportRepository ---
type MockMonthlyReportRepository struct {
	mock.Mock
}

var _ portsrepo.MonthlyReportRepository = (*MockMonthlyReportRepository)(nil)

func (m *MockMonthlyReportRepository) GetReportsForMonth(ctx context.Context, month time.Time) (map[string]json.RawMessage, error) {
	args := m.Called(ctx, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]json.RawMessage), args.Error(1)
}

func (m *MockMonthlyReportRepository) ReplaceReports(ctx context.Context, month time.Time, reports map[string]json.RawMessage, keepMonths int) error {
	args := m.Called(ctx, month, reports, keepMonths)
	return args.Error(0)
}

// --- Mock ReportingService ---
type MockReportingService struct {
	mock.Mock
}

var _ portssvc.ReportingSvcFacade = (*MockReportingService)(nil)

func (m *MockReportingService) BalanceSheet(ctx context.Context, reportDate time.Time) (*domain.BalanceSheet, error) {
	args := m.Called(ctx, reportDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceSheet), args.Error(1)
}

func (m *MockReportingService) IncomeStatement(ctx context.Context, start, end time.Time) (*domain.IncomeStatement, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IncomeStatement), args.Error(1)
}

func (m *MockReportingService) CashflowStatement(ctx context.Context, start, end time.Time) (*domain.CashflowStatement, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CashflowStatement), args.Error(1)
}

// --- Test Suite Setup ---
type MonthlyReportServiceTestSuite struct {
	suite.Suite
	mockSnapshotRepo *MockMonthlyReportRepository
	mockReportingSvc *MockReportingService
	service          portssvc.MonthlyReportSvcFacade
	today            time.Time
	targetMonth      time.Time
	monthEnd         time.Time
}

func (suite *MonthlyReportServiceTestSuite) SetupTest() {
	suite.mockSnapshotRepo = new(MockMonthlyReportRepository)
	suite.mockReportingSvc = new(MockReportingService)
	suite.service = services.NewMonthlyReportService(suite.mockSnapshotRepo, suite.mockReportingSvc, 2)

	suite.today = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	suite.targetMonth = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	suite.monthEnd = time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
}

func (suite *MonthlyReportServiceTestSuite) freshStatements() (*domain.BalanceSheet, *domain.IncomeStatement, *domain.CashflowStatement) {
	bs := &domain.BalanceSheet{ReportDate: suite.monthEnd, AssetTotal: decimal.NewFromInt(100), IsBalanced: true}
	is := &domain.IncomeStatement{StartDate: suite.targetMonth, EndDate: suite.monthEnd, NetIncome: decimal.NewFromInt(40)}
	cf := &domain.CashflowStatement{StartDate: suite.targetMonth, EndDate: suite.monthEnd}
	return bs, is, cf
}

func completeCache(bs *domain.BalanceSheet, is *domain.IncomeStatement, cf *domain.CashflowStatement) map[string]json.RawMessage {
	bsRaw, _ := json.Marshal(bs)
	isRaw, _ := json.Marshal(is)
	cfRaw, _ := json.Marshal(cf)
	return map[string]json.RawMessage{
		domain.ReportBalanceSheet:      bsRaw,
		domain.ReportIncomeStatement:   isRaw,
		domain.ReportCashflowStatement: cfRaw,
	}
}

// --- Test Cases ---

func (suite *MonthlyReportServiceTestSuite) TestGetOrCreate_ServesCompleteCache() {
	ctx := context.Background()
	bs, is, cf := suite.freshStatements()
	suite.mockSnapshotRepo.On("GetReportsForMonth", ctx, suite.targetMonth).
		Return(completeCache(bs, is, cf), nil).Once()

	set, err := suite.service.GetOrCreate(ctx, suite.today)

	suite.Require().NoError(err)
	suite.Equal(suite.targetMonth, set.Month)
	suite.True(set.BalanceSheet.AssetTotal.Equal(decimal.NewFromInt(100)))
	suite.True(set.IncomeStatement.NetIncome.Equal(decimal.NewFromInt(40)))
	suite.mockReportingSvc.AssertNotCalled(suite.T(), "BalanceSheet", mock.Anything, mock.Anything)
	suite.mockSnapshotRepo.AssertNotCalled(suite.T(), "ReplaceReports", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *MonthlyReportServiceTestSuite) TestGetOrCreate_RegeneratesWhenCacheEmpty() {
	ctx := context.Background()
	bs, is, cf := suite.freshStatements()

	suite.mockSnapshotRepo.On("GetReportsForMonth", ctx, suite.targetMonth).
		Return(map[string]json.RawMessage{}, nil).Once()
	suite.mockReportingSvc.On("BalanceSheet", ctx, suite.monthEnd).Return(bs, nil).Once()
	suite.mockReportingSvc.On("IncomeStatement", ctx, suite.targetMonth, suite.monthEnd).Return(is, nil).Once()
	suite.mockReportingSvc.On("CashflowStatement", ctx, suite.targetMonth, suite.monthEnd).Return(cf, nil).Once()
	suite.mockSnapshotRepo.On("ReplaceReports", ctx, suite.targetMonth, mock.Anything, 2).
		Run(func(args mock.Arguments) {
			payloads := args.Get(2).(map[string]json.RawMessage)
			suite.Len(payloads, 3)
			suite.Contains(payloads, domain.ReportBalanceSheet)
			suite.Contains(payloads, domain.ReportIncomeStatement)
			suite.Contains(payloads, domain.ReportCashflowStatement)
		}).
		Return(nil).Once()

	set, err := suite.service.GetOrCreate(ctx, suite.today)

	suite.Require().NoError(err)
	suite.Equal(suite.targetMonth, set.Month)
	suite.mockReportingSvc.AssertExpectations(suite.T())
	suite.mockSnapshotRepo.AssertExpectations(suite.T())
}

func (suite *MonthlyReportServiceTestSuite) TestGetOrCreate_RegeneratesWhenCachePartial() {
	ctx := context.Background()
	bs, is, cf := suite.freshStatements()
	partial := completeCache(bs, is, cf)
	delete(partial, domain.ReportCashflowStatement)

	suite.mockSnapshotRepo.On("GetReportsForMonth", ctx, suite.targetMonth).Return(partial, nil).Once()
	suite.mockReportingSvc.On("BalanceSheet", ctx, suite.monthEnd).Return(bs, nil).Once()
	suite.mockReportingSvc.On("IncomeStatement", ctx, suite.targetMonth, suite.monthEnd).Return(is, nil).Once()
	suite.mockReportingSvc.On("CashflowStatement", ctx, suite.targetMonth, suite.monthEnd).Return(cf, nil).Once()
	suite.mockSnapshotRepo.On("ReplaceReports", ctx, suite.targetMonth, mock.Anything, 2).Return(nil).Once()

	_, err := suite.service.GetOrCreate(ctx, suite.today)

	suite.Require().NoError(err)
	suite.mockReportingSvc.AssertExpectations(suite.T())
}

func (suite *MonthlyReportServiceTestSuite) TestGetOrCreate_RegeneratesWhenCacheCorrupt() {
	ctx := context.Background()
	bs, is, cf := suite.freshStatements()
	corrupt := completeCache(bs, is, cf)
	corrupt[domain.ReportBalanceSheet] = json.RawMessage(`{not json`)

	suite.mockSnapshotRepo.On("GetReportsForMonth", ctx, suite.targetMonth).Return(corrupt, nil).Once()
	suite.mockReportingSvc.On("BalanceSheet", ctx, suite.monthEnd).Return(bs, nil).Once()
	suite.mockReportingSvc.On("IncomeStatement", ctx, suite.targetMonth, suite.monthEnd).Return(is, nil).Once()
	suite.mockReportingSvc.On("CashflowStatement", ctx, suite.targetMonth, suite.monthEnd).Return(cf, nil).Once()
	suite.mockSnapshotRepo.On("ReplaceReports", ctx, suite.targetMonth, mock.Anything, 2).Return(nil).Once()

	_, err := suite.service.GetOrCreate(ctx, suite.today)

	suite.Require().NoError(err)
	suite.mockReportingSvc.AssertExpectations(suite.T())
}

func (suite *MonthlyReportServiceTestSuite) TestGetOrCreate_JanuaryTargetsDecember() {
	ctx := context.Background()
	january := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	december := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	decemberEnd := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	bs, is, cf := suite.freshStatements()

	suite.mockSnapshotRepo.On("GetReportsForMonth", ctx, december).
		Return(map[string]json.RawMessage{}, nil).Once()
	suite.mockReportingSvc.On("BalanceSheet", ctx, decemberEnd).Return(bs, nil).Once()
	suite.mockReportingSvc.On("IncomeStatement", ctx, december, decemberEnd).Return(is, nil).Once()
	suite.mockReportingSvc.On("CashflowStatement", ctx, december, decemberEnd).Return(cf, nil).Once()
	suite.mockSnapshotRepo.On("ReplaceReports", ctx, december, mock.Anything, 2).Return(nil).Once()

	set, err := suite.service.GetOrCreate(ctx, january)

	suite.Require().NoError(err)
	suite.Equal(december, set.Month)
	suite.mockReportingSvc.AssertExpectations(suite.T())
}

func TestMonthlyReportServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MonthlyReportServiceTestSuite))
}
