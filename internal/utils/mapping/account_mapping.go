package mapping

import (
	"github.com/hxfang/bizledger/internal/core/domain"
	"github.com/hxfang/bizledger/internal/models"
)

// ToModelAccount converts a domain Account to a model Account.
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:      d.AccountID,
		Name:           d.Name,
		AccountType:    d.AccountType,
		ParentID:       d.ParentID,
		Code:           d.Code,
		Description:    d.Description,
		Hidden:         d.Hidden,
		Placeholder:    d.Placeholder,
		IsCash:         d.IsCash,
		CurrentBalance: d.CurrentBalance,
		Timestamps: models.Timestamps{
			CreatedAt: d.CreatedAt,
			UpdatedAt: d.UpdatedAt,
		},
	}
}

// ToDomainAccount converts a model Account to a domain Account.
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:      m.AccountID,
		Name:           m.Name,
		AccountType:    m.AccountType,
		ParentID:       m.ParentID,
		Code:           m.Code,
		Description:    m.Description,
		Hidden:         m.Hidden,
		Placeholder:    m.Placeholder,
		IsCash:         m.IsCash,
		CurrentBalance: m.CurrentBalance,
		Timestamps: domain.Timestamps{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}
}

// ToDomainAccountSlice converts a slice of model Accounts.
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}
