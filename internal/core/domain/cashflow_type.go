package domain

import "time"

// FlowType classifies a cash movement for the cash-flow statement.
type FlowType string

const (
	FlowOperating FlowType = "OPERATING"
	FlowInvesting FlowType = "INVESTING"
	FlowFinancing FlowType = "FINANCING"
)

// FlowDirection indicates whether a classified movement is money in or out.
type FlowDirection string

const (
	DirectionInflow  FlowDirection = "INFLOW"
	DirectionOutflow FlowDirection = "OUTFLOW"
)

// CashflowType tags cash/bank splits so the cash-flow statement can group
// movements by activity and direction.
type CashflowType struct {
	ID        int64         `json:"id"`
	Code      string        `json:"code"` // Unique
	Name      string        `json:"name"`
	Category  string        `json:"category"`
	FlowType  FlowType      `json:"flowType"`
	Direction FlowDirection `json:"direction"`
	IsActive  bool          `json:"isActive"`
	SortOrder int           `json:"sortOrder"`
	CreatedAt time.Time     `json:"createdAt"`
}
