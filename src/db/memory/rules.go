package memory

import (
	"context"
	"sort"

	"fintrack-server/src/ledger"
	"fintrack-server/src/models"
)

func (r *repo) CreateTransactionRule(_ context.Context, rule *models.TransactionRule) error {
	defer r.lock()()
	rule.ID = r.st.id()
	rule.CreatedAt = r.now()
	rule.UpdatedAt = rule.CreatedAt
	r.st.rules[rule.ID] = *rule
	return nil
}

func (r *repo) GetTransactionRule(_ context.Context, id int64) (*models.TransactionRule, error) {
	defer r.lock()()
	rule, ok := r.st.rules[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	return &rule, nil
}

func (r *repo) ListTransactionRules(_ context.Context, ownerID int64) ([]models.TransactionRule, error) {
	defer r.lock()()
	var out []models.TransactionRule
	for _, rule := range r.st.rules {
		if rule.OwnerID == ownerID {
			out = append(out, rule)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *repo) UpdateTransactionRule(_ context.Context, rule *models.TransactionRule) error {
	defer r.lock()()
	if _, ok := r.st.rules[rule.ID]; !ok {
		return ledger.ErrNotFound
	}
	rule.UpdatedAt = r.now()
	r.st.rules[rule.ID] = *rule
	return nil
}

func (r *repo) DeleteTransactionRule(_ context.Context, id int64) error {
	defer r.lock()()
	if _, ok := r.st.rules[id]; !ok {
		return ledger.ErrNotFound
	}
	delete(r.st.rules, id)
	return nil
}
