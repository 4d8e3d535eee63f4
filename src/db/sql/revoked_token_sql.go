package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// RevokeToken also prunes revocations whose tokens have expired.
func (r *repo) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at <= NOW()`); err != nil {
		return err
	}
	query := `
		INSERT INTO revoked_tokens (jti, expires_at) VALUES ($1, $2)
		ON CONFLICT (jti) DO UPDATE SET expires_at = GREATEST(revoked_tokens.expires_at, EXCLUDED.expires_at)`
	_, err := r.q.Exec(ctx, query, jti, expiresAt)
	return err
}

func (r *repo) GetRevokedToken(ctx context.Context, jti string) (time.Time, bool, error) {
	var expiresAt time.Time
	query := `SELECT expires_at FROM revoked_tokens WHERE jti = $1 AND expires_at > NOW()`
	err := r.q.QueryRow(ctx, query, jti).Scan(&expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return expiresAt, true, nil
}
