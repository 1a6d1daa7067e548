package pgsql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hxfang/bizledger/internal/core/domain"
	portsrepo "github.com/hxfang/bizledger/internal/core/ports/repositories"
)

type PgxReportingRepository struct {
	BaseRepository
}

// newPgxReportingRepository creates a new repository for statement queries.
// Amounts are always re-derived from split history; the cached account
// balance column is never consulted here.
func newPgxReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepository {
	return &PgxReportingRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.ReportingRepository = (*PgxReportingRepository)(nil)

// GetBalancesAsOf returns, for every non-hidden account, the signed sum of
// its splits posted on or before asOf. Accounts without splits appear with
// a zero amount so statements can still render the full chart.
func (r *PgxReportingRepository) GetBalancesAsOf(ctx context.Context, asOf time.Time) ([]domain.AccountBalanceRow, error) {
	query := `
		SELECT a.account_id, a.code, a.name, a.account_type, a.parent_id, a.placeholder,
		       COALESCE(b.amount, 0) AS amount
		FROM accounts a
		LEFT JOIN (
			SELECT s.account_id, SUM(s.value_num::numeric / s.value_denom) AS amount
			FROM splits s
			JOIN transactions t ON t.transaction_id = s.transaction_id
			WHERE t.post_date <= $1
			GROUP BY s.account_id
		) b ON b.account_id = a.account_id
		WHERE a.hidden = FALSE
		ORDER BY a.code NULLS LAST, a.name;
	`
	return r.queryBalanceRows(ctx, query, asOf)
}

// GetPeriodAmounts returns, for every non-hidden account, the signed sum of
// its splits posted within [start, end].
func (r *PgxReportingRepository) GetPeriodAmounts(ctx context.Context, start, end time.Time) ([]domain.AccountBalanceRow, error) {
	query := `
		SELECT a.account_id, a.code, a.name, a.account_type, a.parent_id, a.placeholder,
		       COALESCE(b.amount, 0) AS amount
		FROM accounts a
		LEFT JOIN (
			SELECT s.account_id, SUM(s.value_num::numeric / s.value_denom) AS amount
			FROM splits s
			JOIN transactions t ON t.transaction_id = s.transaction_id
			WHERE t.post_date >= $1 AND t.post_date <= $2
			GROUP BY s.account_id
		) b ON b.account_id = a.account_id
		WHERE a.hidden = FALSE
		ORDER BY a.code NULLS LAST, a.name;
	`
	return r.queryBalanceRows(ctx, query, start, end)
}

func (r *PgxReportingRepository) queryBalanceRows(ctx context.Context, query string, args ...any) ([]domain.AccountBalanceRow, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query account amounts: %w", err)
	}
	defer rows.Close()

	var result []domain.AccountBalanceRow
	for rows.Next() {
		var row domain.AccountBalanceRow
		var code, parentID sql.NullString
		err := rows.Scan(
			&row.AccountID,
			&code,
			&row.Name,
			&row.AccountType,
			&parentID,
			&row.Placeholder,
			&row.Amount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account amount row: %w", err)
		}
		row.Code = code.String
		row.ParentID = parentID.String
		result = append(result, row)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating account amount rows: %w", rows.Err())
	}

	return result, nil
}

// GetCashflowRows returns classified split sums within [start, end],
// grouped by cashflow type. Splits without a classification are excluded.
func (r *PgxReportingRepository) GetCashflowRows(ctx context.Context, start, end time.Time) ([]domain.CashflowRow, error) {
	query := `
		SELECT ct.id, ct.name, ct.flow_type, ct.direction,
		       SUM(s.value_num::numeric / s.value_denom) AS amount
		FROM cashflow_types ct
		JOIN splits s ON s.cashflow_type_id = ct.id
		JOIN transactions t ON t.transaction_id = s.transaction_id
		WHERE t.post_date >= $1 AND t.post_date <= $2
		GROUP BY ct.id, ct.name, ct.flow_type, ct.direction, ct.sort_order
		ORDER BY ct.sort_order, ct.id;
	`

	rows, err := r.Pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query cashflow rows: %w", err)
	}
	defer rows.Close()

	var result []domain.CashflowRow
	for rows.Next() {
		var row domain.CashflowRow
		err := rows.Scan(
			&row.CashflowTypeID,
			&row.CategoryName,
			&row.FlowType,
			&row.Direction,
			&row.Amount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cashflow row: %w", err)
		}
		result = append(result, row)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating cashflow rows: %w", rows.Err())
	}

	return result, nil
}
