package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hxfang/bizledger/internal/core/domain"
)

// FixedExpenseRequest defines a recurring charge configuration. Used for
// both create and full update.
type FixedExpenseRequest struct {
	Name              string          `json:"name" binding:"required"`
	Amount            decimal.Decimal `json:"amount" binding:"required"`
	ExpenseAccountID  string          `json:"expenseAccountID" binding:"required"`
	PrimaryAccountID  string          `json:"primaryAccountID" binding:"required"`
	FallbackAccountID string          `json:"fallbackAccountID"`
	DayOfMonth        int             `json:"dayOfMonth" binding:"required,min=1,max=28"`
	IsActive          *bool           `json:"isActive"`
}

// ExecuteFixedExpenseRequest triggers one charge run.
type ExecuteFixedExpenseRequest struct {
	RunDate *time.Time `json:"runDate" time_format:"2006-01-02"`
	Force   bool       `json:"force"`
}

// FixedExpenseResponse is a recurring charge configuration as returned.
type FixedExpenseResponse struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	Amount            decimal.Decimal `json:"amount"`
	ExpenseAccountID  string          `json:"expenseAccountID"`
	PrimaryAccountID  string          `json:"primaryAccountID"`
	FallbackAccountID string          `json:"fallbackAccountID,omitempty"`
	DayOfMonth        int             `json:"dayOfMonth"`
	IsActive          bool            `json:"isActive"`
	LastRunMonth      *time.Time      `json:"lastRunMonth,omitempty"`
	LastRunAt         *time.Time      `json:"lastRunAt,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// FixedExpenseRunResponse reports the outcome of one charge run.
type FixedExpenseRunResponse struct {
	ExpenseID     int64    `json:"expenseID"`
	ExpenseName   string   `json:"expenseName"`
	TransactionID *string  `json:"transactionID,omitempty"`
	Warnings      []string `json:"warnings"`
}

// ToFixedExpenseResponse converts a domain.FixedExpense.
func ToFixedExpenseResponse(fe *domain.FixedExpense) FixedExpenseResponse {
	return FixedExpenseResponse{
		ID:                fe.ID,
		Name:              fe.Name,
		Amount:            fe.Amount,
		ExpenseAccountID:  fe.ExpenseAccountID,
		PrimaryAccountID:  fe.PrimaryAccountID,
		FallbackAccountID: fe.FallbackAccountID,
		DayOfMonth:        fe.DayOfMonth,
		IsActive:          fe.IsActive,
		LastRunMonth:      fe.LastRunMonth,
		LastRunAt:         fe.LastRunAt,
		CreatedAt:         fe.CreatedAt,
		UpdatedAt:         fe.UpdatedAt,
	}
}

// ToListFixedExpenseResponse converts a slice of domain.FixedExpense.
func ToListFixedExpenseResponse(fes []domain.FixedExpense) []FixedExpenseResponse {
	res := make([]FixedExpenseResponse, len(fes))
	for i := range fes {
		res[i] = ToFixedExpenseResponse(&fes[i])
	}
	return res
}

// ToFixedExpenseRunResponses converts run results.
func ToFixedExpenseRunResponses(results []domain.FixedExpenseRunResult) []FixedExpenseRunResponse {
	res := make([]FixedExpenseRunResponse, len(results))
	for i, r := range results {
		res[i] = FixedExpenseRunResponse{
			ExpenseID:     r.Expense.ID,
			ExpenseName:   r.Expense.Name,
			TransactionID: r.TransactionID,
			Warnings:      r.Warnings,
		}
	}
	return res
}
