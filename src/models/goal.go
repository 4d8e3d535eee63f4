package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type GoalStatus string

const (
	GoalStatusInProgress GoalStatus = "in-progress"
	GoalStatusCompleted  GoalStatus = "completed"
)

func (s GoalStatus) Valid() bool {
	return s == GoalStatusInProgress || s == GoalStatusCompleted
}

// Goal.AccountID is nil for goals tracked by hand.
type Goal struct {
	ID            int64           `json:"id"`
	OwnerID       int64           `json:"owner_id"`
	AccountID     *int64          `json:"account_id"`
	Title         string          `json:"title"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Deadline      *time.Time      `json:"deadline"`
	Status        GoalStatus      `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
