package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hxfang/bizledger/internal/core/domain"
)

// CashflowTypeReader provides read access to the cash-flow taxonomy.
type CashflowTypeReader interface {
	FindCashflowTypesByIDs(ctx context.Context, ids []int64) (map[int64]domain.CashflowType, error)
	ListCashflowTypes(ctx context.Context, activeOnly bool) ([]domain.CashflowType, error)
}

// BusinessRepositoryFacade persists business documents. A document and the
// ledger transaction backing it commit atomically.
type BusinessRepositoryFacade interface {
	CountDocumentsByTypeAndDate(ctx context.Context, docType domain.BusinessDocumentType, docDate time.Time) (int, error)
	// CreateDocumentWithTransaction inserts the generated transaction (with
	// splits and balance deltas) plus the document and its items in one
	// database transaction. Returns the stored document with generated ids.
	CreateDocumentWithTransaction(ctx context.Context, doc domain.BusinessDocument, txn domain.Transaction, deltas map[string]decimal.Decimal) (*domain.BusinessDocument, error)
	FindDocumentByID(ctx context.Context, id int64) (*domain.BusinessDocument, error)
	ListDocuments(ctx context.Context, docType domain.BusinessDocumentType, limit int) ([]domain.BusinessDocument, error)
}
