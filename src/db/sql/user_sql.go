package db

import (
	"context"
	"errors"
	"strings"

	"fintrack-server/src/auth"
	"fintrack-server/src/models"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, username, email, password_hash, super_admin, locked, last_login, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.SuperAdmin,
		&user.Locked,
		&user.LastLogin,
		&user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repo) CreateUser(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, super_admin, locked, created_at
	`
	err := r.q.QueryRow(ctx, query, u.Username, u.Email, u.PasswordHash).
		Scan(&u.ID, &u.SuperAdmin, &u.Locked, &u.CreatedAt)
	if isUniqueViolation(err) {
		return auth.ErrDuplicateUser
	}
	return err
}

func (r *repo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *repo) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(username) = $1 OR LOWER(email) = $1 LIMIT 1`
	return scanUser(r.q.QueryRow(ctx, query, strings.ToLower(login)))
}

// userUpdate maps a statement that matched no user to auth.ErrUserNotFound.
func (r *repo) userUpdate(ctx context.Context, query string, args ...any) error {
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

func (r *repo) UpdateUserPassword(ctx context.Context, id int64, hash []byte) error {
	return r.userUpdate(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, hash)
}

func (r *repo) UpdateUserLastLogin(ctx context.Context, id int64) error {
	return r.userUpdate(ctx, `UPDATE users SET last_login = NOW() WHERE id = $1`, id)
}

func (r *repo) SetUserLocked(ctx context.Context, id int64, locked bool) error {
	return r.userUpdate(ctx, `UPDATE users SET locked = $2 WHERE id = $1`, id, locked)
}
