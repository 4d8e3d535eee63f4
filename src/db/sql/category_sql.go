package db

import (
	"context"

	"fintrack-server/src/models"

	"github.com/jackc/pgx/v5"
)

const categoryColumns = `id, owner_id, name, type, created_at, updated_at`

func scanCategory(row pgx.Row) (*models.Category, error) {
	var c models.Category
	if err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Type, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *repo) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	return scanCategory(r.q.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
}

func (r *repo) ListCategories(ctx context.Context, ownerID int64) ([]models.Category, error) {
	rows, err := r.q.Query(ctx, `SELECT `+categoryColumns+` FROM categories WHERE owner_id = $1 ORDER BY name`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

func (r *repo) CreateCategory(ctx context.Context, c *models.Category) error {
	query := `
		INSERT INTO categories (owner_id, name, type)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	return r.q.QueryRow(ctx, query, c.OwnerID, c.Name, c.Type).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *repo) UpdateCategory(ctx context.Context, c *models.Category) error {
	query := `UPDATE categories SET name = $2, type = $3, updated_at = NOW() WHERE id = $1 RETURNING updated_at`
	return notFound(r.q.QueryRow(ctx, query, c.ID, c.Name, c.Type).Scan(&c.UpdatedAt))
}

// DeleteCategory relies on ON DELETE CASCADE for the category's
// transactions, budgets, rules and Plaid links.
func (r *repo) DeleteCategory(ctx context.Context, id int64) error {
	return affected(r.q.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id))
}
