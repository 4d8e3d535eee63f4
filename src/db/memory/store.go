// Package memory is an in-process implementation of the ledger, user,
// rule and Plaid link stores. It follows the PostgreSQL schema's cascade
// rules and gives WithTx all-or-nothing semantics by working on a copy of
// the data. It backs the test suites.
package memory

import (
	"context"
	"sync"
	"time"

	"fintrack-server/src/ledger"
	"fintrack-server/src/models"
)

type state struct {
	nextID       int64
	accounts     map[int64]models.Account
	categories   map[int64]models.Category
	transactions map[int64]models.Transaction
	budgets      map[int64]models.Budget
	goals        map[int64]models.Goal
	users        map[int64]models.User
	whitelist    map[int64]models.WhitelistedEmail
	rules        map[int64]models.TransactionRule
	links        map[int64]models.PlaidLink
	revoked      map[string]time.Time
}

func newState() *state {
	return &state{
		accounts:     map[int64]models.Account{},
		categories:   map[int64]models.Category{},
		transactions: map[int64]models.Transaction{},
		budgets:      map[int64]models.Budget{},
		goals:        map[int64]models.Goal{},
		users:        map[int64]models.User{},
		whitelist:    map[int64]models.WhitelistedEmail{},
		rules:        map[int64]models.TransactionRule{},
		links:        map[int64]models.PlaidLink{},
		revoked:      map[string]time.Time{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *state) clone() *state {
	return &state{
		nextID:       s.nextID,
		accounts:     cloneMap(s.accounts),
		categories:   cloneMap(s.categories),
		transactions: cloneMap(s.transactions),
		budgets:      cloneMap(s.budgets),
		goals:        cloneMap(s.goals),
		users:        cloneMap(s.users),
		whitelist:    cloneMap(s.whitelist),
		rules:        cloneMap(s.rules),
		links:        cloneMap(s.links),
		revoked:      cloneMap(s.revoked),
	}
}

func (s *state) id() int64 {
	s.nextID++
	return s.nextID
}

// repo implements the store methods over one state. mu is nil for the
// view handed to a WithTx callback, which already holds the lock.
type repo struct {
	mu  *sync.Mutex
	st  *state
	now func() time.Time
}

func (r *repo) lock() func() {
	if r.mu == nil {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

type Store struct {
	*repo
	mu sync.Mutex
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	s := &Store{}
	s.repo = &repo{mu: &s.mu, st: newState(), now: func() time.Time { return time.Now().UTC() }}
	return s
}

// WithTx runs fn against a private copy of the data and publishes the copy
// only if fn succeeds. Transactions are serialised.
func (s *Store) WithTx(ctx context.Context, fn func(ledger.Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.st.clone()
	if err := fn(&repo{st: work, now: s.now}); err != nil {
		return err
	}
	s.st = work
	return nil
}
