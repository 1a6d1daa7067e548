package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReconcileState values for Split.ReconcileState.
const (
	ReconcileNone    = "n"
	ReconcileCleared = "c"
	ReconcileDone    = "y"
)

// Split is a single signed ledger entry: debit positive, credit negative.
// The amount is persisted as an exact numerator/denominator pair so that
// re-derivation from history never accumulates rounding drift.
type Split struct {
	SplitID        string          `json:"splitID"`
	TransactionID  string          `json:"transactionID"`
	AccountID      string          `json:"accountID"`
	Amount         decimal.Decimal `json:"amount"`
	Memo           string          `json:"memo"`
	ReconcileState string          `json:"reconcileState"`
	ReconcileDate  *time.Time      `json:"reconcileDate,omitempty"`
	CashflowTypeID *int64          `json:"cashflowTypeID,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Transaction is a balanced financial event owning its splits. The sum of
// split amounts is exactly zero for every persisted transaction.
type Transaction struct {
	TransactionID string    `json:"transactionID"`
	Num           string    `json:"num"` // Optional external/voucher number
	PostDate      time.Time `json:"postDate"`
	EnterDate     time.Time `json:"enterDate"`
	Description   string    `json:"description"`
	BusinessType  string    `json:"businessType"` // Set when generated from a business document
	ReferenceNo   string    `json:"referenceNo"`
	Splits        []Split   `json:"splits,omitempty"`
	Timestamps
}

// SplitDetail is a split denormalized with account and cashflow-type names
// for listing. Never a source of truth for balances.
type SplitDetail struct {
	Split
	AccountName      string    `json:"accountName"`
	AccountType      string    `json:"accountType"`
	CashflowTypeName string    `json:"cashflowTypeName,omitempty"`
	PostDate         time.Time `json:"postDate"`
	TxDescription    string    `json:"txDescription"`
}
