package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hxfang/bizledger/internal/core/domain"
	portsrepo "github.com/hxfang/bizledger/internal/core/ports/repositories"
	portssvc "github.com/hxfang/bizledger/internal/core/ports/services"
)

// monthlyReportService implements MonthlyReportSvcFacade. The snapshot
// target is always the previous full calendar month; a complete cached set
// is served as-is, anything else is regenerated and replaces the cache.
type monthlyReportService struct {
	BaseService
	snapshotRepo portsrepo.MonthlyReportRepository
	reportingSvc portssvc.ReportingSvcFacade
	keepMonths   int
}

// NewMonthlyReportService creates a new monthly snapshot service.
// keepMonths bounds how many cached months survive a regeneration; values
// below one behave as one.
func NewMonthlyReportService(
	snapshotRepo portsrepo.MonthlyReportRepository,
	reportingSvc portssvc.ReportingSvcFacade,
	keepMonths int,
) portssvc.MonthlyReportSvcFacade {
	if keepMonths < 1 {
		keepMonths = 1
	}
	return &monthlyReportService{
		snapshotRepo: snapshotRepo,
		reportingSvc: reportingSvc,
		keepMonths:   keepMonths,
	}
}

var _ portssvc.MonthlyReportSvcFacade = (*monthlyReportService)(nil)

func (s *monthlyReportService) GetOrCreate(ctx context.Context, today time.Time) (*domain.MonthlyReportSet, error) {
	if today.IsZero() {
		today = time.Now().UTC()
	}
	targetMonth := previousMonth(today)

	cached, err := s.snapshotRepo.GetReportsForMonth(ctx, targetMonth)
	if err != nil {
		s.LogError(ctx, err, "Failed to read monthly report cache",
			slog.String("month", targetMonth.Format("2006-01")))
		return nil, fmt.Errorf("failed to read monthly report cache: %w", err)
	}
	if set, ok := s.decodeCached(ctx, targetMonth, cached); ok {
		return set, nil
	}

	monthEnd := lastDayOfMonth(targetMonth)

	balanceSheet, err := s.reportingSvc.BalanceSheet(ctx, monthEnd)
	if err != nil {
		return nil, err
	}
	incomeStatement, err := s.reportingSvc.IncomeStatement(ctx, targetMonth, monthEnd)
	if err != nil {
		return nil, err
	}
	cashflowStatement, err := s.reportingSvc.CashflowStatement(ctx, targetMonth, monthEnd)
	if err != nil {
		return nil, err
	}

	set := &domain.MonthlyReportSet{
		Month:             targetMonth,
		BalanceSheet:      balanceSheet,
		IncomeStatement:   incomeStatement,
		CashflowStatement: cashflowStatement,
	}

	payloads, err := encodeReportSet(set)
	if err != nil {
		return nil, err
	}
	if err := s.snapshotRepo.ReplaceReports(ctx, targetMonth, payloads, s.keepMonths); err != nil {
		s.LogError(ctx, err, "Failed to store monthly report cache",
			slog.String("month", targetMonth.Format("2006-01")))
		return nil, fmt.Errorf("failed to store monthly report cache: %w", err)
	}

	s.LogInfo(ctx, "Monthly report snapshot generated",
		slog.String("month", targetMonth.Format("2006-01")))
	return set, nil
}

// decodeCached returns the cached set only when all three statements are
// present and decode cleanly; a corrupt or partial cache triggers
// regeneration instead of an error.
func (s *monthlyReportService) decodeCached(ctx context.Context, month time.Time, cached map[string]json.RawMessage) (*domain.MonthlyReportSet, bool) {
	bsRaw, okBS := cached[domain.ReportBalanceSheet]
	isRaw, okIS := cached[domain.ReportIncomeStatement]
	cfRaw, okCF := cached[domain.ReportCashflowStatement]
	if !okBS || !okIS || !okCF {
		return nil, false
	}

	set := &domain.MonthlyReportSet{Month: month}
	if err := json.Unmarshal(bsRaw, &set.BalanceSheet); err != nil {
		s.LogInfo(ctx, "Discarding unreadable cached balance sheet", slog.String("month", month.Format("2006-01")))
		return nil, false
	}
	if err := json.Unmarshal(isRaw, &set.IncomeStatement); err != nil {
		s.LogInfo(ctx, "Discarding unreadable cached income statement", slog.String("month", month.Format("2006-01")))
		return nil, false
	}
	if err := json.Unmarshal(cfRaw, &set.CashflowStatement); err != nil {
		s.LogInfo(ctx, "Discarding unreadable cached cashflow statement", slog.String("month", month.Format("2006-01")))
		return nil, false
	}
	return set, true
}

func encodeReportSet(set *domain.MonthlyReportSet) (map[string]json.RawMessage, error) {
	payloads := make(map[string]json.RawMessage, 3)
	for key, report := range map[string]any{
		domain.ReportBalanceSheet:      set.BalanceSheet,
		domain.ReportIncomeStatement:   set.IncomeStatement,
		domain.ReportCashflowStatement: set.CashflowStatement,
	} {
		raw, err := json.Marshal(report)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s snapshot: %w", key, err)
		}
		payloads[key] = raw
	}
	return payloads, nil
}

// previousMonth returns the first day of the month before the given date.
func previousMonth(today time.Time) time.Time {
	firstOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	return firstOfMonth.AddDate(0, -1, 0)
}

// lastDayOfMonth returns the last day of the month containing the date.
func lastDayOfMonth(month time.Time) time.Time {
	return time.Date(month.Year(), month.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}
