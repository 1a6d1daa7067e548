package mapping

import (
	"github.com/hxfang/bizledger/internal/core/domain"
	"github.com/hxfang/bizledger/internal/models"
)

// ToModelDocument converts a domain BusinessDocument (header only).
func ToModelDocument(d domain.BusinessDocument) models.BusinessDocument {
	return models.BusinessDocument{
		ID:            d.ID,
		DocType:       string(d.DocType),
		DocNo:         d.DocNo,
		DocDate:       d.DocDate,
		PartnerName:   d.PartnerName,
		ReferenceNo:   d.ReferenceNo,
		Description:   d.Description,
		Currency:      d.Currency,
		TotalAmount:   d.TotalAmount,
		Status:        d.Status,
		TransactionID: d.TransactionID,
		Timestamps: models.Timestamps{
			CreatedAt: d.CreatedAt,
			UpdatedAt: d.UpdatedAt,
		},
	}
}

// ToDomainDocument converts a model BusinessDocument (header only).
func ToDomainDocument(m models.BusinessDocument) domain.BusinessDocument {
	return domain.BusinessDocument{
		ID:            m.ID,
		DocType:       domain.BusinessDocumentType(m.DocType),
		DocNo:         m.DocNo,
		DocDate:       m.DocDate,
		PartnerName:   m.PartnerName,
		ReferenceNo:   m.ReferenceNo,
		Description:   m.Description,
		Currency:      m.Currency,
		TotalAmount:   m.TotalAmount,
		Status:        m.Status,
		TransactionID: m.TransactionID,
		Timestamps: domain.Timestamps{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}
}

// ToModelDocumentItem converts a domain BusinessDocumentItem.
func ToModelDocumentItem(d domain.BusinessDocumentItem) models.BusinessDocumentItem {
	return models.BusinessDocumentItem{
		ID:              d.ID,
		DocumentID:      d.DocumentID,
		LineNo:          d.LineNo,
		Description:     d.Description,
		Memo:            d.Memo,
		DebitAccountID:  d.DebitAccountID,
		CreditAccountID: d.CreditAccountID,
		Quantity:        d.Quantity,
		UnitPrice:       d.UnitPrice,
		Amount:          d.Amount,
		CashflowTypeID:  d.CashflowTypeID,
		CreatedAt:       d.CreatedAt,
	}
}

// ToDomainDocumentItem converts a model BusinessDocumentItem.
func ToDomainDocumentItem(m models.BusinessDocumentItem) domain.BusinessDocumentItem {
	return domain.BusinessDocumentItem{
		ID:              m.ID,
		DocumentID:      m.DocumentID,
		LineNo:          m.LineNo,
		Description:     m.Description,
		Memo:            m.Memo,
		DebitAccountID:  m.DebitAccountID,
		CreditAccountID: m.CreditAccountID,
		Quantity:        m.Quantity,
		UnitPrice:       m.UnitPrice,
		Amount:          m.Amount,
		CashflowTypeID:  m.CashflowTypeID,
		CreatedAt:       m.CreatedAt,
	}
}
