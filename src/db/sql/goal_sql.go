package db

import (
	"context"

	"fintrack-server/src/models"

	"github.com/jackc/pgx/v5"
)

const goalColumns = `id, owner_id, account_id, title, target_amount, current_amount, deadline, status, created_at, updated_at`

func scanGoal(row pgx.Row) (*models.Goal, error) {
	var g models.Goal
	err := row.Scan(&g.ID, &g.OwnerID, &g.AccountID, &g.Title, &g.TargetAmount, &g.CurrentAmount,
		&g.Deadline, &g.Status, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &g, nil
}

func (r *repo) listGoals(ctx context.Context, query string, arg int64) ([]models.Goal, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []models.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

func (r *repo) GetGoal(ctx context.Context, id int64) (*models.Goal, error) {
	return scanGoal(r.q.QueryRow(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = $1`, id))
}

func (r *repo) ListGoals(ctx context.Context, ownerID int64) ([]models.Goal, error) {
	return r.listGoals(ctx, `SELECT `+goalColumns+` FROM goals WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`, ownerID)
}

func (r *repo) ListGoalsByAccount(ctx context.Context, accountID int64) ([]models.Goal, error) {
	return r.listGoals(ctx, `SELECT `+goalColumns+` FROM goals WHERE account_id = $1 ORDER BY id`, accountID)
}

func (r *repo) CreateGoal(ctx context.Context, g *models.Goal) error {
	query := `
		INSERT INTO goals (owner_id, account_id, title, target_amount, current_amount, deadline, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	return r.q.QueryRow(ctx, query, g.OwnerID, g.AccountID, g.Title, g.TargetAmount, g.CurrentAmount, g.Deadline, g.Status).
		Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
}

func (r *repo) UpdateGoal(ctx context.Context, g *models.Goal) error {
	query := `
		UPDATE goals
		SET account_id = $2, title = $3, target_amount = $4, current_amount = $5, deadline = $6,
			status = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.q.QueryRow(ctx, query, g.ID, g.AccountID, g.Title, g.TargetAmount, g.CurrentAmount, g.Deadline, g.Status).
		Scan(&g.UpdatedAt)
	return notFound(err)
}

func (r *repo) DeleteGoal(ctx context.Context, id int64) error {
	return affected(r.q.Exec(ctx, `DELETE FROM goals WHERE id = $1`, id))
}
