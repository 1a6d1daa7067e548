package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/hxfang/bizledger/internal/core/domain"
)

// TransactionReader provides read access to transactions and splits.
type TransactionReader interface {
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)
	FindSplitsByTransactionID(ctx context.Context, transactionID string) ([]domain.Split, error)
	ListTransactions(ctx context.Context, limit int) ([]domain.Transaction, error)
	ListSplitDetails(ctx context.Context, transactionID string, limit int) ([]domain.SplitDetail, error)
}

// TransactionWriter persists ledger mutations. Every method runs in a
// single database transaction: split writes and account balance deltas are
// never observable in isolation.
type TransactionWriter interface {
	// CreateTransaction inserts the transaction with its splits and applies
	// the per-account deltas, locking the affected account rows.
	CreateTransaction(ctx context.Context, txn domain.Transaction, deltas map[string]decimal.Decimal) error
	// UpdateTransaction applies reverseDeltas (rollback of the old splits),
	// replaces the split set, then applies forwardDeltas, in that order
	// with no intermediate commit.
	UpdateTransaction(ctx context.Context, txn domain.Transaction, reverseDeltas, forwardDeltas map[string]decimal.Decimal) error
	// DeleteTransaction applies reverseDeltas and removes the transaction
	// together with its splits.
	DeleteTransaction(ctx context.Context, transactionID string, reverseDeltas map[string]decimal.Decimal) error
}

// TransactionRepositoryFacade is the full ledger persistence surface.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
