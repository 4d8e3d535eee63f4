package db

import (
	"context"

	"fintrack-server/src/models"

	"github.com/jackc/pgx/v5"
)

const budgetColumns = `id, owner_id, category_id, amount, start_date, end_date, created_at, updated_at`

func scanBudget(row pgx.Row) (*models.Budget, error) {
	var b models.Budget
	err := row.Scan(&b.ID, &b.OwnerID, &b.CategoryID, &b.Amount, &b.StartDate, &b.EndDate, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *repo) GetBudget(ctx context.Context, id int64) (*models.Budget, error) {
	return scanBudget(r.q.QueryRow(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = $1`, id))
}

func (r *repo) ListBudgets(ctx context.Context, ownerID int64) ([]models.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.q.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []models.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, *b)
	}
	return budgets, rows.Err()
}

func (r *repo) CreateBudget(ctx context.Context, b *models.Budget) error {
	query := `
		INSERT INTO budgets (owner_id, category_id, amount, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	return r.q.QueryRow(ctx, query, b.OwnerID, b.CategoryID, b.Amount, b.StartDate, b.EndDate).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *repo) UpdateBudget(ctx context.Context, b *models.Budget) error {
	query := `
		UPDATE budgets
		SET category_id = $2, amount = $3, start_date = $4, end_date = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.q.QueryRow(ctx, query, b.ID, b.CategoryID, b.Amount, b.StartDate, b.EndDate).Scan(&b.UpdatedAt)
	return notFound(err)
}

func (r *repo) DeleteBudget(ctx context.Context, id int64) error {
	return affected(r.q.Exec(ctx, `DELETE FROM budgets WHERE id = $1`, id))
}
