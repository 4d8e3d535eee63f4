// Package ledger owns the accounts, categories, transactions, budgets and
// goals of each user and keeps account balances and linked goals
// consistent with the transactions recorded against them.
//
// Every operation takes the caller's user id explicitly and fails with
// ErrUnauthorized when the targeted record belongs to someone else.
package ledger

import (
	"strings"
	"time"
)

const maxNameLength = 255

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

func validateName(field, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid(field, "must not be empty")
	}
	if len(name) > maxNameLength {
		return invalid(field, "must be at most %d characters", maxNameLength)
	}
	return nil
}
