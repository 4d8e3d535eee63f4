package memory

import (
	"context"
	"sort"

	"fintrack-server/src/ledger"
	"fintrack-server/src/models"

	"github.com/shopspring/decimal"
)

func (r *repo) GetAccount(_ context.Context, id int64) (*models.Account, error) {
	defer r.lock()()
	a, ok := r.st.accounts[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	return &a, nil
}

func (r *repo) LockAccount(ctx context.Context, id int64) (*models.Account, error) {
	return r.GetAccount(ctx, id)
}

func (r *repo) ListAccounts(_ context.Context, ownerID int64) ([]models.Account, error) {
	defer r.lock()()
	var out []models.Account
	for _, a := range r.st.accounts {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *repo) CreateAccount(_ context.Context, a *models.Account) error {
	defer r.lock()()
	a.ID = r.st.id()
	a.CreatedAt = r.now()
	a.UpdatedAt = a.CreatedAt
	r.st.accounts[a.ID] = *a
	return nil
}

func (r *repo) UpdateAccount(_ context.Context, a *models.Account) error {
	defer r.lock()()
	if _, ok := r.st.accounts[a.ID]; !ok {
		return ledger.ErrNotFound
	}
	a.UpdatedAt = r.now()
	r.st.accounts[a.ID] = *a
	return nil
}

func (r *repo) SetAccountBalance(_ context.Context, id int64, balance decimal.Decimal) error {
	defer r.lock()()
	a, ok := r.st.accounts[id]
	if !ok {
		return ledger.ErrNotFound
	}
	a.Balance = balance
	a.UpdatedAt = r.now()
	r.st.accounts[id] = a
	return nil
}

func (r *repo) DeleteAccount(_ context.Context, id int64) error {
	defer r.lock()()
	if _, ok := r.st.accounts[id]; !ok {
		return ledger.ErrNotFound
	}
	delete(r.st.accounts, id)
	for tid, t := range r.st.transactions {
		if t.AccountID == id {
			delete(r.st.transactions, tid)
		}
	}
	for lid, l := range r.st.links {
		if l.AccountID == id {
			delete(r.st.links, lid)
		}
	}
	for gid, g := range r.st.goals {
		if g.AccountID != nil && *g.AccountID == id {
			g.AccountID = nil
			r.st.goals[gid] = g
		}
	}
	return nil
}

func (r *repo) GetCategory(_ context.Context, id int64) (*models.Category, error) {
	defer r.lock()()
	c, ok := r.st.categories[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	return &c, nil
}

func (r *repo) ListCategories(_ context.Context, ownerID int64) ([]models.Category, error) {
	defer r.lock()()
	var out []models.Category
	for _, c := range r.st.categories {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *repo) CreateCategory(_ context.Context, c *models.Category) error {
	defer r.lock()()
	c.ID = r.st.id()
	c.CreatedAt = r.now()
	c.UpdatedAt = c.CreatedAt
	r.st.categories[c.ID] = *c
	return nil
}

func (r *repo) UpdateCategory(_ context.Context, c *models.Category) error {
	defer r.lock()()
	if _, ok := r.st.categories[c.ID]; !ok {
		return ledger.ErrNotFound
	}
	c.UpdatedAt = r.now()
	r.st.categories[c.ID] = *c
	return nil
}

func (r *repo) DeleteCategory(_ context.Context, id int64) error {
	defer r.lock()()
	if _, ok := r.st.categories[id]; !ok {
		return ledger.ErrNotFound
	}
	delete(r.st.categories, id)
	for tid, t := range r.st.transactions {
		if t.CategoryID == id {
			delete(r.st.transactions, tid)
		}
	}
	for bid, b := range r.st.budgets {
		if b.CategoryID == id {
			delete(r.st.budgets, bid)
		}
	}
	for rid, rule := range r.st.rules {
		if rule.CategoryID == id {
			delete(r.st.rules, rid)
		}
	}
	for lid, l := range r.st.links {
		if l.CategoryID == id {
			delete(r.st.links, lid)
		}
	}
	return nil
}

func (r *repo) GetTransaction(_ context.Context, id int64) (*models.Transaction, error) {
	defer r.lock()()
	t, ok := r.st.transactions[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	return &t, nil
}

func (r *repo) GetTransactionByExternalID(_ context.Context, ownerID int64, externalID string) (*models.Transaction, error) {
	defer r.lock()()
	for _, t := range r.st.transactions {
		if t.OwnerID == ownerID && t.ExternalID != nil && *t.ExternalID == externalID {
			return &t, nil
		}
	}
	return nil, ledger.ErrNotFound
}

func matches(t models.Transaction, f ledger.TransactionFilter) bool {
	if f.AccountID != nil && t.AccountID != *f.AccountID {
		return false
	}
	if f.CategoryID != nil && t.CategoryID != *f.CategoryID {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.Start != nil && t.TransactionDate.Before(*f.Start) {
		return false
	}
	if f.End != nil && t.TransactionDate.After(*f.End) {
		return false
	}
	return true
}

func (r *repo) ListTransactions(_ context.Context, ownerID int64, f ledger.TransactionFilter) ([]models.Transaction, error) {
	defer r.lock()()
	var out []models.Transaction
	for _, t := range r.st.transactions {
		if t.OwnerID == ownerID && matches(t, f) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TransactionDate.Equal(out[j].TransactionDate) {
			return out[i].TransactionDate.After(out[j].TransactionDate)
		}
		return out[i].ID > out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *repo) CreateTransaction(_ context.Context, t *models.Transaction) error {
	defer r.lock()()
	t.ID = r.st.id()
	t.CreatedAt = r.now()
	t.UpdatedAt = t.CreatedAt
	r.st.transactions[t.ID] = *t
	return nil
}

func (r *repo) UpdateTransaction(_ context.Context, t *models.Transaction) error {
	defer r.lock()()
	if _, ok := r.st.transactions[t.ID]; !ok {
		return ledger.ErrNotFound
	}
	t.UpdatedAt = r.now()
	r.st.transactions[t.ID] = *t
	return nil
}

func (r *repo) DeleteTransaction(_ context.Context, id int64) error {
	defer r.lock()()
	if _, ok := r.st.transactions[id]; !ok {
		return ledger.ErrNotFound
	}
	delete(r.st.transactions, id)
	return nil
}

func (r *repo) GetBudget(_ context.Context, id int64) (*models.Budget, error) {
	defer r.lock()()
	b, ok := r.st.budgets[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	return &b, nil
}

func (r *repo) ListBudgets(_ context.Context, ownerID int64) ([]models.Budget, error) {
	defer r.lock()()
	var out []models.Budget
	for _, b := range r.st.budgets {
		if b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *repo) CreateBudget(_ context.Context, b *models.Budget) error {
	defer r.lock()()
	b.ID = r.st.id()
	b.CreatedAt = r.now()
	b.UpdatedAt = b.CreatedAt
	r.st.budgets[b.ID] = *b
	return nil
}

func (r *repo) UpdateBudget(_ context.Context, b *models.Budget) error {
	defer r.lock()()
	if _, ok := r.st.budgets[b.ID]; !ok {
		return ledger.ErrNotFound
	}
	b.UpdatedAt = r.now()
	r.st.budgets[b.ID] = *b
	return nil
}

func (r *repo) DeleteBudget(_ context.Context, id int64) error {
	defer r.lock()()
	if _, ok := r.st.budgets[id]; !ok {
		return ledger.ErrNotFound
	}
	delete(r.st.budgets, id)
	return nil
}

func (r *repo) GetGoal(_ context.Context, id int64) (*models.Goal, error) {
	defer r.lock()()
	g, ok := r.st.goals[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	return &g, nil
}

func (r *repo) ListGoals(_ context.Context, ownerID int64) ([]models.Goal, error) {
	defer r.lock()()
	var out []models.Goal
	for _, g := range r.st.goals {
		if g.OwnerID == ownerID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *repo) ListGoalsByAccount(_ context.Context, accountID int64) ([]models.Goal, error) {
	defer r.lock()()
	var out []models.Goal
	for _, g := range r.st.goals {
		if g.AccountID != nil && *g.AccountID == accountID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *repo) CreateGoal(_ context.Context, g *models.Goal) error {
	defer r.lock()()
	g.ID = r.st.id()
	g.CreatedAt = r.now()
	g.UpdatedAt = g.CreatedAt
	r.st.goals[g.ID] = *g
	return nil
}

func (r *repo) UpdateGoal(_ context.Context, g *models.Goal) error {
	defer r.lock()()
	if _, ok := r.st.goals[g.ID]; !ok {
		return ledger.ErrNotFound
	}
	g.UpdatedAt = r.now()
	r.st.goals[g.ID] = *g
	return nil
}

func (r *repo) DeleteGoal(_ context.Context, id int64) error {
	defer r.lock()()
	if _, ok := r.st.goals[id]; !ok {
		return ledger.ErrNotFound
	}
	delete(r.st.goals, id)
	return nil
}
