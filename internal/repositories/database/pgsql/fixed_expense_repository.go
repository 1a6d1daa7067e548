package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/hxfang/bizledger/internal/apperrors"
	"github.com/hxfang/bizledger/internal/core/domain"
	portsrepo "github.com/hxfang/bizledger/internal/core/ports/repositories"
	"github.com/hxfang/bizledger/internal/models"
	"github.com/hxfang/bizledger/internal/utils/mapping"
)

const fixedExpenseColumns = `id, name, amount, expense_account_id, primary_account_id, fallback_account_id, day_of_month, is_active, last_run_month, last_run_at, created_at, updated_at`

type PgxFixedExpenseRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxFixedExpenseRepository creates a new repository for recurring
// charge configuration.
func newPgxFixedExpenseRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.FixedExpenseRepositoryFacade {
	return &PgxFixedExpenseRepository{BaseRepository{Pool: pool}, accountRepo}
}

var _ portsrepo.FixedExpenseRepositoryFacade = (*PgxFixedExpenseRepository)(nil)

func scanFixedExpense(row pgx.Row) (models.FixedExpense, error) {
	var m models.FixedExpense
	var fallbackID sql.NullString
	err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Amount,
		&m.ExpenseAccountID,
		&m.PrimaryAccountID,
		&fallbackID,
		&m.DayOfMonth,
		&m.IsActive,
		&m.LastRunMonth,
		&m.LastRunAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return models.FixedExpense{}, err
	}
	m.FallbackAccountID = fallbackID.String
	return m, nil
}

// ListFixedExpenses returns every configuration ordered by charge day.
func (r *PgxFixedExpenseRepository) ListFixedExpenses(ctx context.Context) ([]domain.FixedExpense, error) {
	query := `SELECT ` + fixedExpenseColumns + ` FROM fixed_expenses ORDER BY day_of_month, id;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query fixed expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.FixedExpense
	for rows.Next() {
		m, err := scanFixedExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fixed expense row: %w", err)
		}
		expenses = append(expenses, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating fixed expense rows: %w", rows.Err())
	}

	return mapping.ToDomainFixedExpenseSlice(expenses), nil
}

// FindFixedExpenseByID retrieves one configuration by primary key.
func (r *PgxFixedExpenseRepository) FindFixedExpenseByID(ctx context.Context, id int64) (*domain.FixedExpense, error) {
	query := `SELECT ` + fixedExpenseColumns + ` FROM fixed_expenses WHERE id = $1;`

	m, err := scanFixedExpense(r.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find fixed expense %d: %w", id, err)
	}

	d := mapping.ToDomainFixedExpense(m)
	return &d, nil
}

// SaveFixedExpense inserts a new configuration and returns it with its
// generated ID.
func (r *PgxFixedExpenseRepository) SaveFixedExpense(ctx context.Context, expense domain.FixedExpense) (*domain.FixedExpense, error) {
	m := mapping.ToModelFixedExpense(expense)

	query := `
		INSERT INTO fixed_expenses (name, amount, expense_account_id, primary_account_id, fallback_account_id, day_of_month, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id;
	`
	err := r.Pool.QueryRow(ctx, query,
		m.Name,
		m.Amount,
		m.ExpenseAccountID,
		m.PrimaryAccountID,
		nullableString(m.FallbackAccountID),
		m.DayOfMonth,
		m.IsActive,
		m.CreatedAt,
		m.UpdatedAt,
	).Scan(&expense.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to save fixed expense %q: %w", m.Name, err)
	}

	return &expense, nil
}

// UpdateFixedExpense updates an existing configuration.
func (r *PgxFixedExpenseRepository) UpdateFixedExpense(ctx context.Context, expense domain.FixedExpense) error {
	m := mapping.ToModelFixedExpense(expense)

	query := `
		UPDATE fixed_expenses
		SET name = $2, amount = $3, expense_account_id = $4, primary_account_id = $5, fallback_account_id = $6, day_of_month = $7, is_active = $8, updated_at = $9
		WHERE id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.ID,
		m.Name,
		m.Amount,
		m.ExpenseAccountID,
		m.PrimaryAccountID,
		nullableString(m.FallbackAccountID),
		m.DayOfMonth,
		m.IsActive,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update fixed expense %d: %w", m.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteFixedExpense removes a configuration.
func (r *PgxFixedExpenseRepository) DeleteFixedExpense(ctx context.Context, id int64) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM fixed_expenses WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("failed to delete fixed expense %d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// RecordRun posts the charge transaction and stamps the run month on the
// expense in a single database transaction, so the idempotency guard can
// never drift from the posted ledger entry.
func (r *PgxFixedExpenseRepository) RecordRun(ctx context.Context, expenseID int64, runMonth time.Time, runAt time.Time, txn domain.Transaction, deltas map[string]decimal.Decimal) error {
	return r.runInTx(ctx, func(tx pgx.Tx) error {
		if err := insertTransactionInTx(ctx, tx, txn); err != nil {
			return err
		}
		if err := applyDeltasInTx(ctx, tx, r.accountRepo, deltas, runAt); err != nil {
			return err
		}
		if err := insertSplitsInTx(ctx, tx, txn.Splits); err != nil {
			return err
		}

		cmdTag, err := tx.Exec(ctx, `
			UPDATE fixed_expenses
			SET last_run_month = $2, last_run_at = $3, updated_at = $3
			WHERE id = $1;
		`, expenseID, runMonth, runAt)
		if err != nil {
			return fmt.Errorf("failed to stamp run for fixed expense %d: %w", expenseID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}
