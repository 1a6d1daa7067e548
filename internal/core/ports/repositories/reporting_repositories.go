package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hxfang/bizledger/internal/core/domain"
)

// ReportingRepository derives report rows from split history. Results are
// typed records, never generic row maps, and never read cached balances.
type ReportingRepository interface {
	// GetBalancesAsOf returns, for every non-hidden account, the signed sum
	// of its splits with post date <= asOf.
	GetBalancesAsOf(ctx context.Context, asOf time.Time) ([]domain.AccountBalanceRow, error)
	// GetPeriodAmounts returns, for every non-hidden account, the signed
	// sum of its splits posted within [start, end].
	GetPeriodAmounts(ctx context.Context, start, end time.Time) ([]domain.AccountBalanceRow, error)
	// GetCashflowRows returns classified split sums within [start, end]
	// grouped by cashflow type. Unclassified splits are excluded.
	GetCashflowRows(ctx context.Context, start, end time.Time) ([]domain.CashflowRow, error)
}

// MonthlyReportRepository stores serialized statement snapshots keyed by
// (month, report type).
type MonthlyReportRepository interface {
	GetReportsForMonth(ctx context.Context, month time.Time) (map[string]json.RawMessage, error)
	// ReplaceReports writes the month's snapshot set and prunes older
	// months down to keepMonths cached months (keepMonths <= 1 reproduces
	// single-slot replacement).
	ReplaceReports(ctx context.Context, month time.Time, reports map[string]json.RawMessage, keepMonths int) error
}
