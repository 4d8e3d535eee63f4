package memory

import (
	"context"
	"sort"

	"fintrack-server/src/ledger"
	"fintrack-server/src/models"
)

func (r *repo) CreatePlaidLink(_ context.Context, l *models.PlaidLink) error {
	defer r.lock()()
	l.ID = r.st.id()
	l.CreatedAt = r.now()
	r.st.links[l.ID] = *l
	return nil
}

func (r *repo) GetPlaidLink(_ context.Context, id int64) (*models.PlaidLink, error) {
	defer r.lock()()
	l, ok := r.st.links[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	return &l, nil
}

func (r *repo) ListPlaidLinks(_ context.Context, ownerID int64) ([]models.PlaidLink, error) {
	defer r.lock()()
	var out []models.PlaidLink
	for _, l := range r.st.links {
		if l.OwnerID == ownerID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *repo) CountPlaidLinksByItem(_ context.Context, itemID string) (int, error) {
	defer r.lock()()
	n := 0
	for _, l := range r.st.links {
		if l.ItemID == itemID {
			n++
		}
	}
	return n, nil
}

func (r *repo) UpdatePlaidCursor(_ context.Context, id int64, cursor string) error {
	defer r.lock()()
	l, ok := r.st.links[id]
	if !ok {
		return ledger.ErrNotFound
	}
	l.SyncCursor = cursor
	r.st.links[id] = l
	return nil
}

func (r *repo) DeletePlaidLink(_ context.Context, id int64) error {
	defer r.lock()()
	if _, ok := r.st.links[id]; !ok {
		return ledger.ErrNotFound
	}
	delete(r.st.links, id)
	return nil
}
