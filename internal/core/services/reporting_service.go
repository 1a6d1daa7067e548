package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hxfang/bizledger/internal/core/domain"
	portsrepo "github.com/hxfang/bizledger/internal/core/ports/repositories"
	portssvc "github.com/hxfang/bizledger/internal/core/ports/services"
)

// statementBuckets classifies account types into statement sections.
// Lookup is case-insensitive; unmapped types are excluded from statements.
var statementBuckets = map[string]domain.StatementBucket{
	"ASSET":                 domain.BucketAsset,
	"CURRENT_ASSET":         domain.BucketAsset,
	"FIXED_ASSET":           domain.BucketAsset,
	"NON_CURRENT_ASSET":     domain.BucketAsset,
	"CASH":                  domain.BucketAsset,
	"BANK":                  domain.BucketAsset,
	"RECEIVABLE":            domain.BucketAsset,
	"INVENTORY":             domain.BucketAsset,
	"LIABILITY":             domain.BucketLiability,
	"CURRENT_LIABILITY":     domain.BucketLiability,
	"NON_CURRENT_LIABILITY": domain.BucketLiability,
	"PAYABLE":               domain.BucketLiability,
	"EQUITY":                domain.BucketEquity,
	"CAPITAL":               domain.BucketEquity,
	"RETAINED_EARNINGS":     domain.BucketEquity,
	"INCOME":                domain.BucketRevenue,
	"REVENUE":               domain.BucketRevenue,
	"SALES":                 domain.BucketRevenue,
	"EXPENSE":               domain.BucketExpense,
	"COST":                  domain.BucketExpense,
	"OPERATING_EXPENSE":     domain.BucketExpense,
	"COGS":                  domain.BucketExpense,
}

// balanceTolerance is the rounding slack allowed before a balance sheet is
// reported as Unbalanced.
var balanceTolerance = decimal.NewFromFloat(0.01)

// ClassifyAccountType maps an account type string to its statement bucket.
func ClassifyAccountType(accountType string) domain.StatementBucket {
	if bucket, ok := statementBuckets[strings.ToUpper(accountType)]; ok {
		return bucket
	}
	return domain.BucketNone
}

// reportingService implements ReportingSvcFacade. Statements are always
// derived from split history, never from cached account balances.
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
}

// NewReportingService creates a new reporting service.
func NewReportingService(reportingRepo portsrepo.ReportingRepository) portssvc.ReportingSvcFacade {
	return &reportingService{reportingRepo: reportingRepo}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

func (s *reportingService) BalanceSheet(ctx context.Context, reportDate time.Time) (*domain.BalanceSheet, error) {
	if reportDate.IsZero() {
		reportDate = time.Now().UTC()
	}

	rows, err := s.reportingRepo.GetBalancesAsOf(ctx, reportDate)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch balances for balance sheet")
		return nil, fmt.Errorf("failed to fetch balances: %w", err)
	}

	sheet := &domain.BalanceSheet{
		ReportDate:  reportDate,
		Assets:      []domain.StatementLine{},
		Liabilities: []domain.StatementLine{},
		Equity:      []domain.StatementLine{},
	}

	for _, row := range rows {
		switch ClassifyAccountType(row.AccountType) {
		case domain.BucketAsset:
			sheet.Assets = append(sheet.Assets, statementLine(row, row.Amount))
			sheet.AssetTotal = sheet.AssetTotal.Add(row.Amount)
		case domain.BucketLiability:
			// Credit balances are negative in the ledger; statements show
			// liabilities and equity as positive figures.
			sheet.Liabilities = append(sheet.Liabilities, statementLine(row, row.Amount.Neg()))
			sheet.LiabilityTotal = sheet.LiabilityTotal.Sub(row.Amount)
		case domain.BucketEquity:
			sheet.Equity = append(sheet.Equity, statementLine(row, row.Amount.Neg()))
			sheet.EquityTotal = sheet.EquityTotal.Sub(row.Amount)
		case domain.BucketRevenue, domain.BucketExpense:
			// Lifetime net income is folded into equity below as
			// undistributed earnings.
			sheet.NetIncome = sheet.NetIncome.Sub(row.Amount)
		}
	}

	sheet.Assets = appendSubtotals(sheet.Assets)
	sheet.Liabilities = appendSubtotals(sheet.Liabilities)
	sheet.Equity = appendSubtotals(sheet.Equity)

	sheet.EquityWithIncome = sheet.EquityTotal.Add(sheet.NetIncome)
	sheet.LiabilityEquityTotal = sheet.LiabilityTotal.Add(sheet.EquityWithIncome)
	sheet.IsBalanced = sheet.AssetTotal.Sub(sheet.LiabilityEquityTotal).Abs().LessThan(balanceTolerance)

	return sheet, nil
}

func (s *reportingService) IncomeStatement(ctx context.Context, start, end time.Time) (*domain.IncomeStatement, error) {
	start, end = normalizePeriod(start, end)

	rows, err := s.reportingRepo.GetPeriodAmounts(ctx, start, end)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch period amounts for income statement")
		return nil, fmt.Errorf("failed to fetch period amounts: %w", err)
	}

	stmt := &domain.IncomeStatement{
		StartDate: start,
		EndDate:   end,
		Revenues:  []domain.StatementLine{},
		Expenses:  []domain.StatementLine{},
	}

	for _, row := range rows {
		switch ClassifyAccountType(row.AccountType) {
		case domain.BucketRevenue:
			// Revenue flows are credit-negative; statements show them
			// positive.
			stmt.Revenues = append(stmt.Revenues, statementLine(row, row.Amount.Neg()))
			stmt.RevenueTotal = stmt.RevenueTotal.Sub(row.Amount)
		case domain.BucketExpense:
			stmt.Expenses = append(stmt.Expenses, statementLine(row, row.Amount))
			stmt.ExpenseTotal = stmt.ExpenseTotal.Add(row.Amount)
		}
	}

	stmt.Revenues = appendSubtotals(stmt.Revenues)
	stmt.Expenses = appendSubtotals(stmt.Expenses)
	stmt.NetIncome = stmt.RevenueTotal.Sub(stmt.ExpenseTotal)

	return stmt, nil
}

func (s *reportingService) CashflowStatement(ctx context.Context, start, end time.Time) (*domain.CashflowStatement, error) {
	start, end = normalizePeriod(start, end)

	rows, err := s.reportingRepo.GetCashflowRows(ctx, start, end)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch cashflow rows")
		return nil, fmt.Errorf("failed to fetch cashflow rows: %w", err)
	}

	stmt := &domain.CashflowStatement{
		StartDate: start,
		EndDate:   end,
		Operating: emptyCashflowSection(),
		Investing: emptyCashflowSection(),
		Financing: emptyCashflowSection(),
	}

	for _, row := range rows {
		var section *domain.CashflowSection
		switch row.FlowType {
		case domain.FlowOperating:
			section = &stmt.Operating
		case domain.FlowInvesting:
			section = &stmt.Investing
		case domain.FlowFinancing:
			section = &stmt.Financing
		default:
			continue
		}

		amount := row.Amount.Abs()
		section.Lines = append(section.Lines, domain.CashflowLine{
			CashflowTypeID: row.CashflowTypeID,
			CategoryName:   row.CategoryName,
			Direction:      row.Direction,
			Amount:         amount,
		})
		if row.Direction == domain.DirectionInflow {
			section.Inflow = section.Inflow.Add(amount)
		} else {
			section.Outflow = section.Outflow.Add(amount)
		}
	}

	for _, section := range []*domain.CashflowSection{&stmt.Operating, &stmt.Investing, &stmt.Financing} {
		section.Net = section.Inflow.Sub(section.Outflow)
	}
	stmt.TotalNet = stmt.Operating.Net.Add(stmt.Investing.Net).Add(stmt.Financing.Net)

	return stmt, nil
}

// normalizePeriod fills defaults: end falls back to today, start to the
// first day of end's year.
func normalizePeriod(start, end time.Time) (time.Time, time.Time) {
	if end.IsZero() {
		end = time.Now().UTC()
	}
	if start.IsZero() {
		start = time.Date(end.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return start, end
}

func statementLine(row domain.AccountBalanceRow, amount decimal.Decimal) domain.StatementLine {
	return domain.StatementLine{
		AccountID:   row.AccountID,
		Code:        row.Code,
		Name:        row.Name,
		AccountType: row.AccountType,
		ParentID:    row.ParentID,
		Placeholder: row.Placeholder,
		Amount:      amount,
	}
}

// appendSubtotals inserts a roll-up line after each account whose direct
// children also appear in the section. Aggregation is single-level:
// grandchildren contribute to their own parent, not further up.
func appendSubtotals(lines []domain.StatementLine) []domain.StatementLine {
	if len(lines) == 0 {
		return lines
	}

	inSection := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		inSection[line.AccountID] = struct{}{}
	}

	parentTotals := make(map[string]decimal.Decimal)
	for _, line := range lines {
		if line.ParentID == "" {
			continue
		}
		if _, ok := inSection[line.ParentID]; ok {
			parentTotals[line.ParentID] = parentTotals[line.ParentID].Add(line.Amount)
		}
	}
	if len(parentTotals) == 0 {
		return lines
	}

	out := make([]domain.StatementLine, 0, len(lines)+len(parentTotals))
	emitted := make(map[string]struct{}, len(parentTotals))
	for _, line := range lines {
		out = append(out, line)
		total, isParent := parentTotals[line.AccountID]
		if !isParent {
			continue
		}
		if _, done := emitted[line.AccountID]; done {
			continue
		}
		emitted[line.AccountID] = struct{}{}
		if total.IsZero() {
			continue
		}
		out = append(out, domain.StatementLine{
			AccountID:   line.AccountID + "_subtotal",
			Name:        fmt.Sprintf("  └─ %s subtotal", line.Name),
			AccountType: line.AccountType,
			ParentID:    line.AccountID,
			Placeholder: true,
			Subtotal:    true,
			Amount:      total,
		})
	}
	return out
}

func emptyCashflowSection() domain.CashflowSection {
	return domain.CashflowSection{Lines: []domain.CashflowLine{}}
}
