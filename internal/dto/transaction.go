package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hxfang/bizledger/internal/core/domain"
)

// CreateSplitRequest is one signed entry of a transaction to post:
// debit positive, credit negative.
type CreateSplitRequest struct {
	AccountID      string          `json:"accountID" binding:"required"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	Memo           string          `json:"memo"`
	CashflowTypeID *int64          `json:"cashflowTypeID"`
}

// CreateTransactionRequest defines a transaction to post or the full
// replacement state for an update.
type CreateTransactionRequest struct {
	Num          string               `json:"num"`
	PostDate     time.Time            `json:"postDate" binding:"required" time_format:"2006-01-02"`
	Description  string               `json:"description"`
	BusinessType string               `json:"businessType"`
	ReferenceNo  string               `json:"referenceNo"`
	Splits       []CreateSplitRequest `json:"splits" binding:"required,min=2,dive"`
}

// ListTransactionsParams defines query parameters for listing transactions.
type ListTransactionsParams struct {
	Limit int `form:"limit,default=50"`
}

// SplitResponse is a split as returned to callers.
type SplitResponse struct {
	SplitID        string          `json:"splitID"`
	AccountID      string          `json:"accountID"`
	Amount         decimal.Decimal `json:"amount"`
	Memo           string          `json:"memo,omitempty"`
	ReconcileState string          `json:"reconcileState"`
	CashflowTypeID *int64          `json:"cashflowTypeID,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// TransactionResponse is a transaction with its splits.
type TransactionResponse struct {
	TransactionID string          `json:"transactionID"`
	Num           string          `json:"num,omitempty"`
	PostDate      time.Time       `json:"postDate"`
	EnterDate     time.Time       `json:"enterDate"`
	Description   string          `json:"description,omitempty"`
	BusinessType  string          `json:"businessType,omitempty"`
	ReferenceNo   string          `json:"referenceNo,omitempty"`
	Splits        []SplitResponse `json:"splits,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// ToTransactionResponse converts a domain.Transaction.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		TransactionID: txn.TransactionID,
		Num:           txn.Num,
		PostDate:      txn.PostDate,
		EnterDate:     txn.EnterDate,
		Description:   txn.Description,
		BusinessType:  txn.BusinessType,
		ReferenceNo:   txn.ReferenceNo,
		CreatedAt:     txn.CreatedAt,
		UpdatedAt:     txn.UpdatedAt,
	}
	if len(txn.Splits) > 0 {
		resp.Splits = make([]SplitResponse, len(txn.Splits))
		for i, sp := range txn.Splits {
			resp.Splits[i] = SplitResponse{
				SplitID:        sp.SplitID,
				AccountID:      sp.AccountID,
				Amount:         sp.Amount,
				Memo:           sp.Memo,
				ReconcileState: sp.ReconcileState,
				CashflowTypeID: sp.CashflowTypeID,
				CreatedAt:      sp.CreatedAt,
			}
		}
	}
	return resp
}

// ToListTransactionResponse converts a slice of domain.Transaction.
func ToListTransactionResponse(txns []domain.Transaction) []TransactionResponse {
	res := make([]TransactionResponse, len(txns))
	for i := range txns {
		res[i] = ToTransactionResponse(&txns[i])
	}
	return res
}

// SplitDetailResponse is a split denormalized with account and transaction
// context for listing views.
type SplitDetailResponse struct {
	SplitResponse
	TransactionID    string    `json:"transactionID"`
	AccountName      string    `json:"accountName"`
	AccountType      string    `json:"accountType"`
	CashflowTypeName string    `json:"cashflowTypeName,omitempty"`
	PostDate         time.Time `json:"postDate"`
	TxDescription    string    `json:"txDescription,omitempty"`
}

// ToSplitDetailResponses converts a slice of domain.SplitDetail.
func ToSplitDetailResponses(details []domain.SplitDetail) []SplitDetailResponse {
	res := make([]SplitDetailResponse, len(details))
	for i, d := range details {
		res[i] = SplitDetailResponse{
			SplitResponse: SplitResponse{
				SplitID:        d.SplitID,
				AccountID:      d.AccountID,
				Amount:         d.Amount,
				Memo:           d.Memo,
				ReconcileState: d.ReconcileState,
				CashflowTypeID: d.CashflowTypeID,
				CreatedAt:      d.CreatedAt,
			},
			TransactionID:    d.TransactionID,
			AccountName:      d.AccountName,
			AccountType:      d.AccountType,
			CashflowTypeName: d.CashflowTypeName,
			PostDate:         d.PostDate,
			TxDescription:    d.TxDescription,
		}
	}
	return res
}
