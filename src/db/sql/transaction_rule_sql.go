package db

import (
	"context"

	"fintrack-server/src/models"
	"fintrack-server/src/rules"

	"github.com/jackc/pgx/v5"
)

var _ rules.Store = (*Store)(nil)

const ruleColumns = `id, owner_id, name, conditions, category_id, created_at, updated_at`

func scanRule(row pgx.Row) (*models.TransactionRule, error) {
	var rule models.TransactionRule
	var conditions []byte
	err := row.Scan(&rule.ID, &rule.OwnerID, &rule.Name, &conditions, &rule.CategoryID, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	rule.Conditions = conditions
	return &rule, nil
}

func (r *repo) CreateTransactionRule(ctx context.Context, rule *models.TransactionRule) error {
	query := `
		INSERT INTO transaction_rules (owner_id, name, conditions, category_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	return r.q.QueryRow(ctx, query, rule.OwnerID, rule.Name, string(rule.Conditions), rule.CategoryID).
		Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
}

func (r *repo) GetTransactionRule(ctx context.Context, id int64) (*models.TransactionRule, error) {
	return scanRule(r.q.QueryRow(ctx, `SELECT `+ruleColumns+` FROM transaction_rules WHERE id = $1`, id))
}

func (r *repo) ListTransactionRules(ctx context.Context, ownerID int64) ([]models.TransactionRule, error) {
	rows, err := r.q.Query(ctx, `SELECT `+ruleColumns+` FROM transaction_rules WHERE owner_id = $1 ORDER BY id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TransactionRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rule)
	}
	return out, rows.Err()
}

func (r *repo) UpdateTransactionRule(ctx context.Context, rule *models.TransactionRule) error {
	query := `
		UPDATE transaction_rules
		SET name = $2, conditions = $3, category_id = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.q.QueryRow(ctx, query, rule.ID, rule.Name, string(rule.Conditions), rule.CategoryID).Scan(&rule.UpdatedAt)
	return notFound(err)
}

func (r *repo) DeleteTransactionRule(ctx context.Context, id int64) error {
	return affected(r.q.Exec(ctx, `DELETE FROM transaction_rules WHERE id = $1`, id))
}
