package models

import "time"

// CashflowType maps the cashflow_types table.
type CashflowType struct {
	ID        int64     `db:"id"`
	Code      string    `db:"code"`
	Name      string    `db:"name"`
	Category  string    `db:"category"`
	FlowType  string    `db:"flow_type"`
	Direction string    `db:"direction"`
	IsActive  bool      `db:"is_active"`
	SortOrder int       `db:"sort_order"`
	CreatedAt time.Time `db:"created_at"`
}
