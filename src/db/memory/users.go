package memory

import (
	"context"
	"sort"
	"strings"

	"fintrack-server/src/auth"
	"fintrack-server/src/ledger"
	"fintrack-server/src/models"
)

var _ auth.UserStore = (*Store)(nil)

func (r *repo) CreateUser(_ context.Context, u *models.User) error {
	defer r.lock()()
	for _, existing := range r.st.users {
		if strings.EqualFold(existing.Username, u.Username) || strings.EqualFold(existing.Email, u.Email) {
			return auth.ErrDuplicateUser
		}
	}
	u.ID = r.st.id()
	u.CreatedAt = r.now()
	r.st.users[u.ID] = *u
	return nil
}

func (r *repo) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	defer r.lock()()
	u, ok := r.st.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return &u, nil
}

func (r *repo) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	defer r.lock()()
	for _, u := range r.st.users {
		if strings.EqualFold(u.Username, login) || strings.EqualFold(u.Email, login) {
			return &u, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (r *repo) updateUser(id int64, fn func(*models.User)) error {
	u, ok := r.st.users[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	fn(&u)
	r.st.users[id] = u
	return nil
}

func (r *repo) UpdateUserPassword(_ context.Context, id int64, hash []byte) error {
	defer r.lock()()
	return r.updateUser(id, func(u *models.User) { u.PasswordHash = hash })
}

func (r *repo) UpdateUserLastLogin(_ context.Context, id int64) error {
	defer r.lock()()
	now := r.now()
	return r.updateUser(id, func(u *models.User) { u.LastLogin = &now })
}

func (r *repo) SetUserLocked(_ context.Context, id int64, locked bool) error {
	defer r.lock()()
	return r.updateUser(id, func(u *models.User) { u.Locked = locked })
}

// SetSuperAdmin has no HTTP route; admins are promoted in the database.
func (r *repo) SetSuperAdmin(_ context.Context, id int64, superAdmin bool) error {
	defer r.lock()()
	return r.updateUser(id, func(u *models.User) { u.SuperAdmin = superAdmin })
}

func (r *repo) IsEmailWhitelisted(_ context.Context, email string) (bool, error) {
	defer r.lock()()
	for _, w := range r.st.whitelist {
		if strings.EqualFold(strings.TrimSpace(w.Email), email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *repo) CreateWhitelistedEmail(_ context.Context, email string) (*models.WhitelistedEmail, error) {
	defer r.lock()()
	for _, w := range r.st.whitelist {
		if strings.EqualFold(w.Email, email) {
			return nil, auth.ErrDuplicateEmail
		}
	}
	w := models.WhitelistedEmail{ID: r.st.id(), Email: email, CreatedAt: r.now()}
	r.st.whitelist[w.ID] = w
	return &w, nil
}

func (r *repo) ListWhitelistedEmails(_ context.Context) ([]models.WhitelistedEmail, error) {
	defer r.lock()()
	out := make([]models.WhitelistedEmail, 0, len(r.st.whitelist))
	for _, w := range r.st.whitelist {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *repo) DeleteWhitelistedEmail(_ context.Context, id int64) error {
	defer r.lock()()
	if _, ok := r.st.whitelist[id]; !ok {
		return ledger.ErrNotFound
	}
	delete(r.st.whitelist, id)
	return nil
}
