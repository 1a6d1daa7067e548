package services

import (
	"context"

	"github.com/hxfang/bizledger/internal/core/domain"
	"github.com/hxfang/bizledger/internal/dto"
)

// BusinessSvcFacade turns business documents into balanced ledger postings.
type BusinessSvcFacade interface {
	PostBusinessDocument(ctx context.Context, req dto.CreateBusinessDocumentRequest, docType domain.BusinessDocumentType) (*domain.BusinessDocument, error)
	GetDocumentByID(ctx context.Context, id int64) (*domain.BusinessDocument, error)
	ListDocuments(ctx context.Context, docType domain.BusinessDocumentType, limit int) ([]domain.BusinessDocument, error)
	ListCashflowTypes(ctx context.Context, activeOnly bool) ([]domain.CashflowType, error)
}
