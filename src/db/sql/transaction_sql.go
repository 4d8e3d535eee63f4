package db

import (
	"context"
	"fmt"
	"strings"

	"fintrack-server/src/ledger"
	"fintrack-server/src/models"

	"github.com/jackc/pgx/v5"
)

const transactionColumns = `id, owner_id, account_id, category_id, type, amount, description, transaction_date, external_id, created_at, updated_at`

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.OwnerID, &t.AccountID, &t.CategoryID, &t.Type, &t.Amount,
		&t.Description, &t.TransactionDate, &t.ExternalID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *repo) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	return scanTransaction(r.q.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id))
}

func (r *repo) GetTransactionByExternalID(ctx context.Context, ownerID int64, externalID string) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE owner_id = $1 AND external_id = $2`
	return scanTransaction(r.q.QueryRow(ctx, query, ownerID, externalID))
}

// transactionQuery builds the filtered listing query.
func transactionQuery(ownerID int64, f ledger.TransactionFilter) (string, []any) {
	where := []string{"owner_id = $1"}
	args := []any{ownerID}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.AccountID != nil {
		add("account_id = $%d", *f.AccountID)
	}
	if f.CategoryID != nil {
		add("category_id = $%d", *f.CategoryID)
	}
	if f.Type != "" {
		add("type = $%d", string(f.Type))
	}
	if f.Start != nil {
		add("transaction_date >= $%d", *f.Start)
	}
	if f.End != nil {
		add("transaction_date <= $%d", *f.End)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY transaction_date DESC, id DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return query, args
}

func (r *repo) ListTransactions(ctx context.Context, ownerID int64, f ledger.TransactionFilter) ([]models.Transaction, error) {
	query, args := transactionQuery(ownerID, f)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *t)
	}
	return txns, rows.Err()
}

func (r *repo) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	query := `
		INSERT INTO transactions (owner_id, account_id, category_id, type, amount, description, transaction_date, external_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	return r.q.QueryRow(ctx, query, t.OwnerID, t.AccountID, t.CategoryID, t.Type, t.Amount,
		t.Description, t.TransactionDate, t.ExternalID).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *repo) UpdateTransaction(ctx context.Context, t *models.Transaction) error {
	query := `
		UPDATE transactions
		SET account_id = $2, category_id = $3, type = $4, amount = $5, description = $6,
			transaction_date = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.q.QueryRow(ctx, query, t.ID, t.AccountID, t.CategoryID, t.Type, t.Amount,
		t.Description, t.TransactionDate).Scan(&t.UpdatedAt)
	return notFound(err)
}

func (r *repo) DeleteTransaction(ctx context.Context, id int64) error {
	return affected(r.q.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id))
}
