package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BusinessDocumentType enumerates the supported business events.
type BusinessDocumentType string

const (
	DocSale     BusinessDocumentType = "SALE"
	DocPurchase BusinessDocumentType = "PURCHASE"
	DocExpense  BusinessDocumentType = "EXPENSE"
	DocCashflow BusinessDocumentType = "CASHFLOW"
)

// BusinessDocumentItem is one line of a document: a debit/credit account
// pair carrying the line amount. Each item expands into exactly two splits.
type BusinessDocumentItem struct {
	ID              int64            `json:"id"`
	DocumentID      int64            `json:"documentID"`
	LineNo          int              `json:"lineNo"`
	Description     string           `json:"description"`
	Memo            string           `json:"memo"`
	DebitAccountID  string           `json:"debitAccountID"`
	CreditAccountID string           `json:"creditAccountID"`
	Quantity        *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice       *decimal.Decimal `json:"unitPrice,omitempty"`
	Amount          decimal.Decimal  `json:"amount"` // Positive
	CashflowTypeID  *int64           `json:"cashflowTypeID,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// BusinessDocument is a higher-level business record backed by exactly one
// generated ledger transaction. Immutable once posted.
type BusinessDocument struct {
	ID            int64                  `json:"id"`
	DocType       BusinessDocumentType   `json:"docType"`
	DocNo         string                 `json:"docNo"`
	DocDate       time.Time              `json:"docDate"`
	PartnerName   string                 `json:"partnerName"`
	ReferenceNo   string                 `json:"referenceNo"`
	Description   string                 `json:"description"`
	Currency      string                 `json:"currency"`
	TotalAmount   decimal.Decimal        `json:"totalAmount"` // Sum of item amounts
	Status        string                 `json:"status"`
	TransactionID string                 `json:"transactionID"` // Back-reference to the generated transaction
	Items         []BusinessDocumentItem `json:"items,omitempty"`
	Timestamps
}
