package models

import "time"

// PlaidLink binds one Plaid account to a local account. Imported
// transactions fall back to CategoryID when no rule matches.
type PlaidLink struct {
	ID              int64     `json:"id"`
	OwnerID         int64     `json:"owner_id"`
	AccountID       int64     `json:"account_id"`
	CategoryID      int64     `json:"category_id"`
	ItemID          string    `json:"item_id"`
	PlaidAccountID  string    `json:"plaid_account_id"`
	InstitutionName string    `json:"institution_name"`
	AccessToken     string    `json:"-"`
	SyncCursor      string    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
}
