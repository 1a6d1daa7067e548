package mapping

import (
	"github.com/hxfang/bizledger/internal/core/domain"
	"github.com/hxfang/bizledger/internal/models"
	"github.com/hxfang/bizledger/internal/utils/amounts"
)

// ToModelTransaction converts a domain Transaction (header only).
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID: d.TransactionID,
		Num:           d.Num,
		PostDate:      d.PostDate,
		EnterDate:     d.EnterDate,
		Description:   d.Description,
		BusinessType:  d.BusinessType,
		ReferenceNo:   d.ReferenceNo,
		Timestamps: models.Timestamps{
			CreatedAt: d.CreatedAt,
			UpdatedAt: d.UpdatedAt,
		},
	}
}

// ToDomainTransaction converts a model Transaction (header only).
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID: m.TransactionID,
		Num:           m.Num,
		PostDate:      m.PostDate,
		EnterDate:     m.EnterDate,
		Description:   m.Description,
		BusinessType:  m.BusinessType,
		ReferenceNo:   m.ReferenceNo,
		Timestamps: domain.Timestamps{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}
}

// ToModelSplit converts a domain Split, encoding the signed amount as an
// exact fraction.
func ToModelSplit(d domain.Split) models.Split {
	num, denom := amounts.ToFraction(d.Amount)
	return models.Split{
		SplitID:        d.SplitID,
		TransactionID:  d.TransactionID,
		AccountID:      d.AccountID,
		ValueNum:       num,
		ValueDenom:     denom,
		Memo:           d.Memo,
		ReconcileState: d.ReconcileState,
		ReconcileDate:  d.ReconcileDate,
		CashflowTypeID: d.CashflowTypeID,
		CreatedAt:      d.CreatedAt,
	}
}

// ToDomainSplit converts a model Split, restoring the decimal amount.
func ToDomainSplit(m models.Split) domain.Split {
	return domain.Split{
		SplitID:        m.SplitID,
		TransactionID:  m.TransactionID,
		AccountID:      m.AccountID,
		Amount:         amounts.FromFraction(m.ValueNum, m.ValueDenom),
		Memo:           m.Memo,
		ReconcileState: m.ReconcileState,
		ReconcileDate:  m.ReconcileDate,
		CashflowTypeID: m.CashflowTypeID,
		CreatedAt:      m.CreatedAt,
	}
}

// ToDomainSplitSlice converts a slice of model Splits.
func ToDomainSplitSlice(ms []models.Split) []domain.Split {
	ds := make([]domain.Split, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainSplit(m)
	}
	return ds
}
