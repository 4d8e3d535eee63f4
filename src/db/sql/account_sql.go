package db

import (
	"context"

	"fintrack-server/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const accountColumns = `id, owner_id, name, type, balance, opening_balance, created_at, updated_at`

func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.OwnerID, &a.Name, &a.Type, &a.Balance, &a.OpeningBalance, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *repo) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.q.QueryRow(ctx, query, id))
}

func (r *repo) LockAccount(ctx context.Context, id int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
	return scanAccount(r.q.QueryRow(ctx, query, id))
}

func (r *repo) ListAccounts(ctx context.Context, ownerID int64) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.q.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

func (r *repo) CreateAccount(ctx context.Context, a *models.Account) error {
	query := `
		INSERT INTO accounts (owner_id, name, type, balance, opening_balance)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	return r.q.QueryRow(ctx, query, a.OwnerID, a.Name, a.Type, a.Balance, a.OpeningBalance).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// UpdateAccount writes the descriptive fields; the balance only moves
// through SetAccountBalance.
func (r *repo) UpdateAccount(ctx context.Context, a *models.Account) error {
	query := `
		UPDATE accounts
		SET name = $2, type = $3, opening_balance = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.q.QueryRow(ctx, query, a.ID, a.Name, a.Type, a.OpeningBalance).Scan(&a.UpdatedAt)
	return notFound(err)
}

func (r *repo) SetAccountBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	query := `UPDATE accounts SET balance = $2, updated_at = NOW() WHERE id = $1`
	return affected(r.q.Exec(ctx, query, id, balance))
}

func (r *repo) DeleteAccount(ctx context.Context, id int64) error {
	return affected(r.q.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id))
}
