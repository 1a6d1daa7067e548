package mapping

import (
	"github.com/hxfang/bizledger/internal/core/domain"
	"github.com/hxfang/bizledger/internal/models"
)

// ToModelFixedExpense converts a domain FixedExpense.
func ToModelFixedExpense(d domain.FixedExpense) models.FixedExpense {
	return models.FixedExpense{
		ID:                d.ID,
		Name:              d.Name,
		Amount:            d.Amount,
		ExpenseAccountID:  d.ExpenseAccountID,
		PrimaryAccountID:  d.PrimaryAccountID,
		FallbackAccountID: d.FallbackAccountID,
		DayOfMonth:        d.DayOfMonth,
		IsActive:          d.IsActive,
		LastRunMonth:      d.LastRunMonth,
		LastRunAt:         d.LastRunAt,
		Timestamps: models.Timestamps{
			CreatedAt: d.CreatedAt,
			UpdatedAt: d.UpdatedAt,
		},
	}
}

// ToDomainFixedExpense converts a model FixedExpense.
func ToDomainFixedExpense(m models.FixedExpense) domain.FixedExpense {
	return domain.FixedExpense{
		ID:                m.ID,
		Name:              m.Name,
		Amount:            m.Amount,
		ExpenseAccountID:  m.ExpenseAccountID,
		PrimaryAccountID:  m.PrimaryAccountID,
		FallbackAccountID: m.FallbackAccountID,
		DayOfMonth:        m.DayOfMonth,
		IsActive:          m.IsActive,
		LastRunMonth:      m.LastRunMonth,
		LastRunAt:         m.LastRunAt,
		Timestamps: domain.Timestamps{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}
}

// ToDomainFixedExpenseSlice converts a slice of model FixedExpenses.
func ToDomainFixedExpenseSlice(ms []models.FixedExpense) []domain.FixedExpense {
	ds := make([]domain.FixedExpense, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainFixedExpense(m)
	}
	return ds
}

// ToDomainCashflowType converts a model CashflowType.
func ToDomainCashflowType(m models.CashflowType) domain.CashflowType {
	return domain.CashflowType{
		ID:        m.ID,
		Code:      m.Code,
		Name:      m.Name,
		Category:  m.Category,
		FlowType:  domain.FlowType(m.FlowType),
		Direction: domain.FlowDirection(m.Direction),
		IsActive:  m.IsActive,
		SortOrder: m.SortOrder,
		CreatedAt: m.CreatedAt,
	}
}
