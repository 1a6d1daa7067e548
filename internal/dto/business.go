package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hxfang/bizledger/internal/core/domain"
)

// CreateBusinessDocumentItemRequest is one debit/credit line of a document.
type CreateBusinessDocumentItemRequest struct {
	LineNo          int              `json:"lineNo"`
	Description     string           `json:"description"`
	Memo            string           `json:"memo"`
	DebitAccountID  string           `json:"debitAccountID" binding:"required"`
	CreditAccountID string           `json:"creditAccountID" binding:"required"`
	Quantity        *decimal.Decimal `json:"quantity"`
	UnitPrice       *decimal.Decimal `json:"unitPrice"`
	Amount          decimal.Decimal  `json:"amount" binding:"required"`
	CashflowTypeID  *int64           `json:"cashflowTypeID"`
}

// CreateBusinessDocumentRequest defines a business document to post.
type CreateBusinessDocumentRequest struct {
	DocNo          string                              `json:"docNo"`
	DocDate        time.Time                           `json:"docDate" binding:"required" time_format:"2006-01-02"`
	PartnerName    string                              `json:"partnerName"`
	ReferenceNo    string                              `json:"referenceNo"`
	Description    string                              `json:"description"`
	Currency       string                              `json:"currency"`
	CashflowTypeID *int64                              `json:"cashflowTypeID"` // Document-level default for items
	Items          []CreateBusinessDocumentItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ListDocumentsParams defines query parameters for listing documents.
type ListDocumentsParams struct {
	Limit int `form:"limit,default=50"`
}

// BusinessDocumentItemResponse is an item as returned to callers.
type BusinessDocumentItemResponse struct {
	ID              int64            `json:"id"`
	LineNo          int              `json:"lineNo"`
	Description     string           `json:"description,omitempty"`
	Memo            string           `json:"memo,omitempty"`
	DebitAccountID  string           `json:"debitAccountID"`
	CreditAccountID string           `json:"creditAccountID"`
	Quantity        *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice       *decimal.Decimal `json:"unitPrice,omitempty"`
	Amount          decimal.Decimal  `json:"amount"`
	CashflowTypeID  *int64           `json:"cashflowTypeID,omitempty"`
}

// BusinessDocumentResponse is a posted document with its items.
type BusinessDocumentResponse struct {
	ID            int64                          `json:"id"`
	DocType       string                         `json:"docType"`
	DocNo         string                         `json:"docNo"`
	DocDate       time.Time                      `json:"docDate"`
	PartnerName   string                         `json:"partnerName,omitempty"`
	ReferenceNo   string                         `json:"referenceNo,omitempty"`
	Description   string                         `json:"description,omitempty"`
	Currency      string                         `json:"currency"`
	TotalAmount   decimal.Decimal                `json:"totalAmount"`
	Status        string                         `json:"status"`
	TransactionID string                         `json:"transactionID"`
	Items         []BusinessDocumentItemResponse `json:"items,omitempty"`
	CreatedAt     time.Time                      `json:"createdAt"`
}

// ToBusinessDocumentResponse converts a domain.BusinessDocument.
func ToBusinessDocumentResponse(doc *domain.BusinessDocument) BusinessDocumentResponse {
	resp := BusinessDocumentResponse{
		ID:            doc.ID,
		DocType:       string(doc.DocType),
		DocNo:         doc.DocNo,
		DocDate:       doc.DocDate,
		PartnerName:   doc.PartnerName,
		ReferenceNo:   doc.ReferenceNo,
		Description:   doc.Description,
		Currency:      doc.Currency,
		TotalAmount:   doc.TotalAmount,
		Status:        doc.Status,
		TransactionID: doc.TransactionID,
		CreatedAt:     doc.CreatedAt,
	}
	if len(doc.Items) > 0 {
		resp.Items = make([]BusinessDocumentItemResponse, len(doc.Items))
		for i, item := range doc.Items {
			resp.Items[i] = BusinessDocumentItemResponse{
				ID:              item.ID,
				LineNo:          item.LineNo,
				Description:     item.Description,
				Memo:            item.Memo,
				DebitAccountID:  item.DebitAccountID,
				CreditAccountID: item.CreditAccountID,
				Quantity:        item.Quantity,
				UnitPrice:       item.UnitPrice,
				Amount:          item.Amount,
				CashflowTypeID:  item.CashflowTypeID,
			}
		}
	}
	return resp
}

// CashflowTypeResponse exposes the cash-flow taxonomy to callers.
type CashflowTypeResponse struct {
	ID        int64  `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Category  string `json:"category,omitempty"`
	FlowType  string `json:"flowType"`
	Direction string `json:"direction"`
	IsActive  bool   `json:"isActive"`
	SortOrder int    `json:"sortOrder"`
}

// ToCashflowTypeResponses converts a slice of domain.CashflowType.
func ToCashflowTypeResponses(types []domain.CashflowType) []CashflowTypeResponse {
	res := make([]CashflowTypeResponse, len(types))
	for i, ct := range types {
		res[i] = CashflowTypeResponse{
			ID:        ct.ID,
			Code:      ct.Code,
			Name:      ct.Name,
			Category:  ct.Category,
			FlowType:  string(ct.FlowType),
			Direction: string(ct.Direction),
			IsActive:  ct.IsActive,
			SortOrder: ct.SortOrder,
		}
	}
	return res
}
