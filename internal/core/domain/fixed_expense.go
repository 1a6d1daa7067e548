package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FixedExpense configures a recurring monthly charge. LastRunMonth (first
// day of the month) is the sole idempotency guard: at most one successful
// run is credited per calendar month.
type FixedExpense struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	Amount            decimal.Decimal `json:"amount"`
	ExpenseAccountID  string          `json:"expenseAccountID"`  // Debit side
	PrimaryAccountID  string          `json:"primaryAccountID"`  // Preferred funding account
	FallbackAccountID string          `json:"fallbackAccountID"` // Optional secondary funding account
	DayOfMonth        int             `json:"dayOfMonth"`        // 1-28, clamped to month length at runtime
	IsActive          bool            `json:"isActive"`
	LastRunMonth      *time.Time      `json:"lastRunMonth,omitempty"`
	LastRunAt         *time.Time      `json:"lastRunAt,omitempty"`
	Timestamps
}

// FixedExpenseRunResult is the outcome of attempting one recurring charge.
// Warnings carry non-fatal degradation (insufficient balance, skipped runs).
type FixedExpenseRunResult struct {
	Expense       FixedExpense `json:"expense"`
	TransactionID *string      `json:"transactionID,omitempty"`
	Warnings      []string     `json:"warnings"`
}
