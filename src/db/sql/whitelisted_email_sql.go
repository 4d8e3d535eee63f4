package db

import (
	"context"
	"strings"

	"fintrack-server/src/auth"
	"fintrack-server/src/models"
)

func (r *repo) IsEmailWhitelisted(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM whitelisted_emails WHERE LOWER(TRIM(email)) = $1)`
	err := r.q.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email))).Scan(&exists)
	return exists, err
}

func (r *repo) CreateWhitelistedEmail(ctx context.Context, email string) (*models.WhitelistedEmail, error) {
	w := models.WhitelistedEmail{Email: email}
	query := `INSERT INTO whitelisted_emails (email) VALUES ($1) RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query, email).Scan(&w.ID, &w.CreatedAt)
	if isUniqueViolation(err) {
		return nil, auth.ErrDuplicateEmail
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *repo) ListWhitelistedEmails(ctx context.Context) ([]models.WhitelistedEmail, error) {
	rows, err := r.q.Query(ctx, `SELECT id, email, created_at FROM whitelisted_emails ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []models.WhitelistedEmail
	for rows.Next() {
		var w models.WhitelistedEmail
		if err := rows.Scan(&w.ID, &w.Email, &w.CreatedAt); err != nil {
			return nil, err
		}
		emails = append(emails, w)
	}
	return emails, rows.Err()
}

func (r *repo) DeleteWhitelistedEmail(ctx context.Context, id int64) error {
	return affected(r.q.Exec(ctx, `DELETE FROM whitelisted_emails WHERE id = $1`, id))
}
