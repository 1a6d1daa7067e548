package models

import "time"

// Transaction maps the transactions table.
type Transaction struct {
	TransactionID string    `db:"transaction_id"`
	Num           string    `db:"num"`
	PostDate      time.Time `db:"post_date"`
	EnterDate     time.Time `db:"enter_date"`
	Description   string    `db:"description"`
	BusinessType  string    `db:"business_type"`
	ReferenceNo   string    `db:"reference_no"`
	Timestamps
}

// Split maps the splits table. The amount is stored as an exact fraction
// (value_num / value_denom), never as a float.
type Split struct {
	SplitID        string     `db:"split_id"`
	TransactionID  string     `db:"transaction_id"`
	AccountID      string     `db:"account_id"`
	ValueNum       int64      `db:"value_num"`
	ValueDenom     int64      `db:"value_denom"`
	Memo           string     `db:"memo"`
	ReconcileState string     `db:"reconcile_state"`
	ReconcileDate  *time.Time `db:"reconcile_date"`
	CashflowTypeID *int64     `db:"cashflow_type_id"`
	CreatedAt      time.Time  `db:"created_at"`
}
