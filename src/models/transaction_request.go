package models

import "github.com/shopspring/decimal"

// TransactionRequest is the body of create and update transaction calls.
// On update, nil fields are left unchanged.
type TransactionRequest struct {
	AccountID       *int64           `json:"account_id"`
	CategoryID      *int64           `json:"category_id"`
	Type            *string          `json:"type"`
	Amount          *decimal.Decimal `json:"amount"`
	Description     *string          `json:"description"`
	TransactionDate *string          `json:"transaction_date"`
}
