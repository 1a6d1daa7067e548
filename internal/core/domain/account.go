package domain

import (
	"github.com/shopspring/decimal"
)

// Account is a node in the chart of accounts. The account type is a free
// string (e.g. ASSET, CURRENT_ASSET, BANK, PAYABLE); the report generator
// classifies it into statement buckets case-insensitively.
type Account struct {
	AccountID      string          `json:"accountID"`
	Name           string          `json:"name"` // Unique across the chart
	AccountType    string          `json:"accountType"`
	ParentID       string          `json:"parentID"` // Empty for root accounts
	Code           string          `json:"code"`
	Description    string          `json:"description"`
	Hidden         bool            `json:"hidden"`
	Placeholder    bool            `json:"placeholder"` // Grouping node, not meant to be posted to
	IsCash         bool            `json:"isCash"`      // Cash/bank account; splits require a cashflow type
	CurrentBalance decimal.Decimal `json:"currentBalance"` // Signed sum of the account's splits, debit positive
	Timestamps
}
