package services

import (
	"context"

	"github.com/hxfang/bizledger/internal/core/domain"
	"github.com/hxfang/bizledger/internal/dto"
)

// LedgerSvcFacade posts, edits and deletes balanced transactions and keeps
// account balances in step with the splits they are derived from.
type LedgerSvcFacade interface {
	ListTransactions(ctx context.Context, limit int) ([]domain.Transaction, error)
	GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)
	ListSplitDetails(ctx context.Context, transactionID string, limit int) ([]domain.SplitDetail, error)
	PostTransaction(ctx context.Context, req dto.CreateTransactionRequest) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, transactionID string, req dto.CreateTransactionRequest) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, transactionID string) error
}
