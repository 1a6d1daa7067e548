package services

import (
	"context"

	"github.com/hxfang/bizledger/internal/core/domain"
	"github.com/hxfang/bizledger/internal/dto"
)

// AccountSvcFacade is the programmatic surface of the account registry.
type AccountSvcFacade interface {
	ListAccounts(ctx context.Context, includeHidden bool) ([]domain.Account, error)
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error)
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest) (*domain.Account, error)
	DeleteAccount(ctx context.Context, accountID string) error
}
