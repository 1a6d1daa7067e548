package services

import (
	"context"
	"time"

	"github.com/hxfang/bizledger/internal/core/domain"
)

// ReportingSvcFacade generates financial statements from ledger history.
type ReportingSvcFacade interface {
	BalanceSheet(ctx context.Context, reportDate time.Time) (*domain.BalanceSheet, error)
	IncomeStatement(ctx context.Context, start, end time.Time) (*domain.IncomeStatement, error)
	CashflowStatement(ctx context.Context, start, end time.Time) (*domain.CashflowStatement, error)
}

// MonthlyReportSvcFacade memoizes last month's statement set.
type MonthlyReportSvcFacade interface {
	// GetOrCreate returns the snapshot for the previous full calendar month
	// relative to today, regenerating and persisting it when absent or
	// incomplete.
	GetOrCreate(ctx context.Context, today time.Time) (*domain.MonthlyReportSet, error)
}
