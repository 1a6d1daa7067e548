package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BusinessDocument maps the business_documents table.
type BusinessDocument struct {
	ID            int64           `db:"id"`
	DocType       string          `db:"doc_type"`
	DocNo         string          `db:"doc_no"`
	DocDate       time.Time       `db:"doc_date"`
	PartnerName   string          `db:"partner_name"`
	ReferenceNo   string          `db:"reference_no"`
	Description   string          `db:"description"`
	Currency      string          `db:"currency"`
	TotalAmount   decimal.Decimal `db:"total_amount"`
	Status        string          `db:"status"`
	TransactionID string          `db:"transaction_id"`
	Timestamps
}

// BusinessDocumentItem maps the business_document_items table.
type BusinessDocumentItem struct {
	ID              int64            `db:"id"`
	DocumentID      int64            `db:"document_id"`
	LineNo          int              `db:"line_no"`
	Description     string           `db:"description"`
	Memo            string           `db:"memo"`
	DebitAccountID  string           `db:"debit_account_id"`
	CreditAccountID string           `db:"credit_account_id"`
	Quantity        *decimal.Decimal `db:"quantity"`
	UnitPrice       *decimal.Decimal `db:"unit_price"`
	Amount          decimal.Decimal  `db:"amount"`
	CashflowTypeID  *int64           `db:"cashflow_type_id"`
	CreatedAt       time.Time        `db:"created_at"`
}
