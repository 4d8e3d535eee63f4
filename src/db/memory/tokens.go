package memory

import (
	"context"
	"time"
)

func (r *repo) RevokeToken(_ context.Context, jti string, expiresAt time.Time) error {
	defer r.lock()()
	now := r.now()
	for id, exp := range r.st.revoked {
		if !exp.After(now) {
			delete(r.st.revoked, id)
		}
	}
	if expiresAt.After(r.st.revoked[jti]) {
		r.st.revoked[jti] = expiresAt
	}
	return nil
}

func (r *repo) GetRevokedToken(_ context.Context, jti string) (time.Time, bool, error) {
	defer r.lock()()
	exp, ok := r.st.revoked[jti]
	if !ok || !exp.After(r.now()) {
		return time.Time{}, false, nil
	}
	return exp, true, nil
}
