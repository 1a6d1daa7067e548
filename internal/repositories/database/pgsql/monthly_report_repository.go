package pgsql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/hxfang/bizledger/internal/core/ports/repositories"
)

type PgxMonthlyReportRepository struct {
	BaseRepository
}

// newPgxMonthlyReportRepository creates a new repository for cached monthly
// statement snapshots.
func newPgxMonthlyReportRepository(pool *pgxpool.Pool) portsrepo.MonthlyReportRepository {
	return &PgxMonthlyReportRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.MonthlyReportRepository = (*PgxMonthlyReportRepository)(nil)

// GetReportsForMonth returns the cached payloads for one month keyed by
// report type. Missing months yield an empty map.
func (r *PgxMonthlyReportRepository) GetReportsForMonth(ctx context.Context, month time.Time) (map[string]json.RawMessage, error) {
	query := `SELECT report_type, payload FROM monthly_reports WHERE report_month = $1;`

	rows, err := r.Pool.Query(ctx, query, month)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly reports for %s: %w", month.Format("2006-01"), err)
	}
	defer rows.Close()

	reports := make(map[string]json.RawMessage)
	for rows.Next() {
		var reportType string
		var payload []byte
		if err := rows.Scan(&reportType, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan monthly report row: %w", err)
		}
		reports[reportType] = json.RawMessage(payload)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating monthly report rows: %w", rows.Err())
	}

	return reports, nil
}

// ReplaceReports writes the month's snapshot set and prunes older months so
// at most keepMonths cached months remain, all in one database transaction.
func (r *PgxMonthlyReportRepository) ReplaceReports(ctx context.Context, month time.Time, reports map[string]json.RawMessage, keepMonths int) error {
	if keepMonths < 1 {
		keepMonths = 1
	}
	now := time.Now().UTC()

	return r.runInTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM monthly_reports WHERE report_month = $1;`, month); err != nil {
			return fmt.Errorf("failed to clear monthly reports for %s: %w", month.Format("2006-01"), err)
		}

		insertQuery := `
			INSERT INTO monthly_reports (report_month, report_type, payload, created_at)
			VALUES ($1, $2, $3, $4);
		`
		for reportType, payload := range reports {
			if _, err := tx.Exec(ctx, insertQuery, month, reportType, []byte(payload), now); err != nil {
				return fmt.Errorf("failed to insert %s snapshot for %s: %w", reportType, month.Format("2006-01"), err)
			}
		}

		// Retention: keep the newest keepMonths distinct months, the one
		// just written included.
		pruneQuery := `
			DELETE FROM monthly_reports
			WHERE report_month NOT IN (
				SELECT DISTINCT report_month
				FROM monthly_reports
				ORDER BY report_month DESC
				LIMIT $1
			);
		`
		if _, err := tx.Exec(ctx, pruneQuery, keepMonths); err != nil {
			return fmt.Errorf("failed to prune monthly report cache: %w", err)
		}
		return nil
	})
}
