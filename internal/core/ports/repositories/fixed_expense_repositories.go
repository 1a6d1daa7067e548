package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hxfang/bizledger/internal/core/domain"
)

// FixedExpenseRepositoryFacade persists recurring charge configuration and
// records charge runs.
type FixedExpenseRepositoryFacade interface {
	ListFixedExpenses(ctx context.Context) ([]domain.FixedExpense, error)
	FindFixedExpenseByID(ctx context.Context, id int64) (*domain.FixedExpense, error)
	SaveFixedExpense(ctx context.Context, expense domain.FixedExpense) (*domain.FixedExpense, error)
	UpdateFixedExpense(ctx context.Context, expense domain.FixedExpense) error
	DeleteFixedExpense(ctx context.Context, id int64) error
	// RecordRun posts the charge transaction (splits plus balance deltas)
	// and stamps last_run_month/last_run_at on the expense, all in one
	// database transaction.
	RecordRun(ctx context.Context, expenseID int64, runMonth time.Time, runAt time.Time, txn domain.Transaction, deltas map[string]decimal.Decimal) error
}
