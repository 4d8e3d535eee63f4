package models

import (
	"encoding/json"
	"time"
)

type TransactionRule struct {
	ID         int64           `json:"id"`
	OwnerID    int64           `json:"owner_id"`
	Name       string          `json:"name"`
	Conditions json.RawMessage `json:"conditions"` // JSONB
	CategoryID int64           `json:"category_id"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
