package models

import (
	"github.com/shopspring/decimal"
)

// Account maps the accounts table. ParentID is the nullable self-reference
// forming the chart-of-accounts forest.
type Account struct {
	AccountID      string          `db:"account_id"`
	Name           string          `db:"name"`
	AccountType    string          `db:"account_type"`
	ParentID       string          `db:"parent_id"`
	Code           string          `db:"code"`
	Description    string          `db:"description"`
	Hidden         bool            `db:"hidden"`
	Placeholder    bool            `db:"placeholder"`
	IsCash         bool            `db:"is_cash"`
	CurrentBalance decimal.Decimal `db:"current_balance"`
	Timestamps
}
