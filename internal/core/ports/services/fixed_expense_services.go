package services

import (
	"context"
	"time"

	"github.com/hxfang/bizledger/internal/core/domain"
	"github.com/hxfang/bizledger/internal/dto"
)

// FixedExpenseSvcFacade manages recurring monthly charges.
type FixedExpenseSvcFacade interface {
	ListFixedExpenses(ctx context.Context) ([]domain.FixedExpense, error)
	GetFixedExpenseByID(ctx context.Context, id int64) (*domain.FixedExpense, error)
	CreateFixedExpense(ctx context.Context, req dto.FixedExpenseRequest) (*domain.FixedExpense, error)
	UpdateFixedExpense(ctx context.Context, id int64, req dto.FixedExpenseRequest) (*domain.FixedExpense, error)
	DeleteFixedExpense(ctx context.Context, id int64) error
	// IsDue reports whether the charge should run on asOf. Pure with
	// respect to persistence.
	IsDue(expense domain.FixedExpense, asOf time.Time) bool
	Execute(ctx context.Context, expense domain.FixedExpense, runDate time.Time, force bool) (*string, []string, error)
	ExecuteAllDue(ctx context.Context, runDate time.Time) ([]domain.FixedExpenseRunResult, error)
}
