package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/hxfang/bizledger/internal/core/domain"
)

// AccountReader provides read access to the chart of accounts.
type AccountReader interface {
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)
	FindAccountByName(ctx context.Context, name string) (*domain.Account, error)
	ListAccounts(ctx context.Context, includeHidden bool) ([]domain.Account, error)
	ListChildAccounts(ctx context.Context, parentID string) ([]domain.Account, error)
	HasSplits(ctx context.Context, accountID string) (bool, error)
}

// AccountWriter mutates the chart of accounts. Balance columns are off
// limits here; only the ledger writes balances, through the InTx methods.
type AccountWriter interface {
	SaveAccount(ctx context.Context, account domain.Account) error
	UpdateAccount(ctx context.Context, account domain.Account) error
	DeleteAccount(ctx context.Context, accountID string) error
}

// AccountBalancer applies ledger-driven balance deltas inside an existing
// database transaction. Every delta write also touches updated_at.
type AccountBalancer interface {
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error)
	ApplyBalanceDeltasInTx(ctx context.Context, tx pgx.Tx, deltas map[string]decimal.Decimal, now time.Time) error
}

// AccountRepositoryFacade is the full account persistence surface.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountBalancer
}
