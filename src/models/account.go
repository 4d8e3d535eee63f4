package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeBank       AccountType = "bank"
	AccountTypeCash       AccountType = "cash"
	AccountTypeCreditCard AccountType = "credit_card"
)

func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeBank, AccountTypeCash, AccountTypeCreditCard:
		return true
	}
	return false
}

// Account.Balance is maintained incrementally from the account's transactions.
// OpeningBalance is the figure the account was created with.
type Account struct {
	ID             int64           `json:"id"`
	OwnerID        int64           `json:"owner_id"`
	Name           string          `json:"name"`
	Type           AccountType     `json:"type"`
	Balance        decimal.Decimal `json:"balance"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
