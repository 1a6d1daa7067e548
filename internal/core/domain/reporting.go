package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementBucket is the statement section an account type classifies into.
type StatementBucket string

const (
	BucketAsset     StatementBucket = "asset"
	BucketLiability StatementBucket = "liability"
	BucketEquity    StatementBucket = "equity"
	BucketRevenue   StatementBucket = "revenue"
	BucketExpense   StatementBucket = "expense"
	BucketNone      StatementBucket = "" // Unrecognized types are excluded from totals
)

// AccountBalanceRow is one account with a derived amount: a point-in-time
// balance or a period flow, depending on the query that produced it.
type AccountBalanceRow struct {
	AccountID   string          `json:"accountID"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	AccountType string          `json:"accountType"`
	ParentID    string          `json:"parentID"`
	Placeholder bool            `json:"placeholder"`
	Amount      decimal.Decimal `json:"amount"`
}

// StatementLine is one row of a rendered statement section.
type StatementLine struct {
	AccountID   string          `json:"accountID"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	AccountType string          `json:"accountType"`
	ParentID    string          `json:"parentID,omitempty"`
	Placeholder bool            `json:"placeholder"`
	Subtotal    bool            `json:"subtotal"` // Appended parent roll-up line
	Amount      decimal.Decimal `json:"amount"`
}

// BalanceSheet is a point-in-time statement. Liability and equity amounts
// are reporting-positive; net income for the period up to ReportDate is
// folded into equity as undistributed earnings.
type BalanceSheet struct {
	ReportDate            time.Time       `json:"reportDate"`
	Assets                []StatementLine `json:"assets"`
	Liabilities           []StatementLine `json:"liabilities"`
	Equity                []StatementLine `json:"equity"`
	AssetTotal            decimal.Decimal `json:"assetTotal"`
	LiabilityTotal        decimal.Decimal `json:"liabilityTotal"`
	EquityTotal           decimal.Decimal `json:"equityTotal"`
	NetIncome             decimal.Decimal `json:"netIncome"`
	EquityWithIncome      decimal.Decimal `json:"equityWithIncome"`
	LiabilityEquityTotal  decimal.Decimal `json:"liabilityEquityTotal"`
	IsBalanced            bool            `json:"isBalanced"`
}

// IncomeStatement reports revenue and expense flows over a period.
type IncomeStatement struct {
	StartDate    time.Time       `json:"startDate"`
	EndDate      time.Time       `json:"endDate"`
	Revenues     []StatementLine `json:"revenues"`
	Expenses     []StatementLine `json:"expenses"`
	RevenueTotal decimal.Decimal `json:"revenueTotal"`
	ExpenseTotal decimal.Decimal `json:"expenseTotal"`
	NetIncome    decimal.Decimal `json:"netIncome"`
}

// CashflowRow is a pre-grouped (cashflow type, direction) aggregate as read
// from the ledger.
type CashflowRow struct {
	CashflowTypeID int64           `json:"cashflowTypeID"`
	CategoryName   string          `json:"categoryName"`
	FlowType       FlowType        `json:"flowType"`
	Direction      FlowDirection   `json:"direction"`
	Amount         decimal.Decimal `json:"amount"`
}

// CashflowLine is one classified line of a cash-flow statement section.
type CashflowLine struct {
	CashflowTypeID int64           `json:"cashflowTypeID"`
	CategoryName   string          `json:"categoryName"`
	Direction      FlowDirection   `json:"direction"`
	Amount         decimal.Decimal `json:"amount"` // Absolute
}

// CashflowSection aggregates one activity category.
type CashflowSection struct {
	Lines   []CashflowLine  `json:"lines"`
	Inflow  decimal.Decimal `json:"inflow"`
	Outflow decimal.Decimal `json:"outflow"`
	Net     decimal.Decimal `json:"net"` // Inflow - Outflow
}

// CashflowStatement groups classified cash movements by activity.
type CashflowStatement struct {
	StartDate time.Time       `json:"startDate"`
	EndDate   time.Time       `json:"endDate"`
	Operating CashflowSection `json:"operating"`
	Investing CashflowSection `json:"investing"`
	Financing CashflowSection `json:"financing"`
	TotalNet  decimal.Decimal `json:"totalNet"`
}

// Monthly report snapshot type keys.
const (
	ReportBalanceSheet      = "balance_sheet"
	ReportIncomeStatement   = "income_statement"
	ReportCashflowStatement = "cashflow_statement"
)

// MonthlyReportSet is the cached statement bundle for one month.
type MonthlyReportSet struct {
	Month             time.Time          `json:"month"` // First day of the report month
	BalanceSheet      *BalanceSheet      `json:"balanceSheet"`
	IncomeStatement   *IncomeStatement   `json:"incomeStatement"`
	CashflowStatement *CashflowStatement `json:"cashflowStatement"`
}
