package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FixedExpense maps the fixed_expenses table.
type FixedExpense struct {
	ID                int64           `db:"id"`
	Name              string          `db:"name"`
	Amount            decimal.Decimal `db:"amount"`
	ExpenseAccountID  string          `db:"expense_account_id"`
	PrimaryAccountID  string          `db:"primary_account_id"`
	FallbackAccountID string          `db:"fallback_account_id"`
	DayOfMonth        int             `db:"day_of_month"`
	IsActive          bool            `db:"is_active"`
	LastRunMonth      *time.Time      `db:"last_run_month"`
	LastRunAt         *time.Time      `db:"last_run_at"`
	Timestamps
}

// MonthlyReport maps the monthly_reports snapshot table. Payload is the
// serialized statement, keyed by (report_month, report_type).
type MonthlyReport struct {
	ID          int64     `db:"id"`
	ReportMonth time.Time `db:"report_month"`
	ReportType  string    `db:"report_type"`
	Payload     []byte    `db:"payload"`
	CreatedAt   time.Time `db:"created_at"`
}
