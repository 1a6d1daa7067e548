package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hxfang/bizledger/internal/core/domain"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Name        string  `json:"name" binding:"required"`
	AccountType string  `json:"accountType" binding:"required"`
	ParentID    *string `json:"parentID"`
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Hidden      bool    `json:"hidden"`
	Placeholder bool    `json:"placeholder"`
	IsCash      bool    `json:"isCash"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Pointers distinguish zero-value updates from fields not provided.
type UpdateAccountRequest struct {
	Name        *string `json:"name"`
	AccountType *string `json:"accountType"`
	ParentID    *string `json:"parentID"`
	Code        *string `json:"code"`
	Description *string `json:"description"`
	Hidden      *bool   `json:"hidden"`
	Placeholder *bool   `json:"placeholder"`
	IsCash      *bool   `json:"isCash"`
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	IncludeHidden bool `form:"includeHidden,default=false"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID      string          `json:"accountID"`
	Name           string          `json:"name"`
	AccountType    string          `json:"accountType"`
	ParentID       string          `json:"parentID,omitempty"`
	Code           string          `json:"code,omitempty"`
	Description    string          `json:"description,omitempty"`
	Hidden         bool            `json:"hidden"`
	Placeholder    bool            `json:"placeholder"`
	IsCash         bool            `json:"isCash"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// ToAccountResponse converts a domain.Account to AccountResponse.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:      acc.AccountID,
		Name:           acc.Name,
		AccountType:    acc.AccountType,
		ParentID:       acc.ParentID,
		Code:           acc.Code,
		Description:    acc.Description,
		Hidden:         acc.Hidden,
		Placeholder:    acc.Placeholder,
		IsCash:         acc.IsCash,
		CurrentBalance: acc.CurrentBalance,
		CreatedAt:      acc.CreatedAt,
		UpdatedAt:      acc.UpdatedAt,
	}
}

// ToListAccountResponse converts a slice of domain.Account.
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}
