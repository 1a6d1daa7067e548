package pgsql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hxfang/bizledger/internal/core/domain"
	portsrepo "github.com/hxfang/bizledger/internal/core/ports/repositories"
	"github.com/hxfang/bizledger/internal/models"
	"github.com/hxfang/bizledger/internal/utils/mapping"
)

const cashflowTypeColumns = `id, code, name, category, flow_type, direction, is_active, sort_order, created_at`

type PgxCashflowTypeRepository struct {
	BaseRepository
}

// newPgxCashflowTypeRepository creates a new repository for the cash-flow
// taxonomy. The taxonomy is seeded by migrations and read-only at runtime.
func newPgxCashflowTypeRepository(pool *pgxpool.Pool) portsrepo.CashflowTypeReader {
	return &PgxCashflowTypeRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.CashflowTypeReader = (*PgxCashflowTypeRepository)(nil)

func scanCashflowType(row pgx.Row) (models.CashflowType, error) {
	var m models.CashflowType
	var category sql.NullString
	err := row.Scan(
		&m.ID,
		&m.Code,
		&m.Name,
		&category,
		&m.FlowType,
		&m.Direction,
		&m.IsActive,
		&m.SortOrder,
		&m.CreatedAt,
	)
	if err != nil {
		return models.CashflowType{}, err
	}
	m.Category = category.String
	return m, nil
}

// FindCashflowTypesByIDs retrieves multiple cashflow types by their IDs.
func (r *PgxCashflowTypeRepository) FindCashflowTypesByIDs(ctx context.Context, ids []int64) (map[int64]domain.CashflowType, error) {
	if len(ids) == 0 {
		return map[int64]domain.CashflowType{}, nil
	}

	query := `SELECT ` + cashflowTypeColumns + ` FROM cashflow_types WHERE id = ANY($1);`

	rows, err := r.Pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query cashflow types by IDs: %w", err)
	}
	defer rows.Close()

	typesMap := make(map[int64]domain.CashflowType)
	for rows.Next() {
		m, err := scanCashflowType(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cashflow type row: %w", err)
		}
		typesMap[m.ID] = mapping.ToDomainCashflowType(m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating cashflow type rows: %w", rows.Err())
	}

	return typesMap, nil
}

// ListCashflowTypes returns the taxonomy in display order.
func (r *PgxCashflowTypeRepository) ListCashflowTypes(ctx context.Context, activeOnly bool) ([]domain.CashflowType, error) {
	query := `SELECT ` + cashflowTypeColumns + ` FROM cashflow_types`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY sort_order, id;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cashflow types: %w", err)
	}
	defer rows.Close()

	var types []domain.CashflowType
	for rows.Next() {
		m, err := scanCashflowType(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cashflow type row: %w", err)
		}
		types = append(types, mapping.ToDomainCashflowType(m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating cashflow type rows: %w", rows.Err())
	}

	return types, nil
}
