package db

import (
	"context"

	"fintrack-server/src/ledger"
	"fintrack-server/src/models"

	"github.com/jackc/pgx/v5"
)

const plaidLinkColumns = `id, owner_id, account_id, category_id, item_id, plaid_account_id, institution_name, access_token, sync_cursor, created_at`

func scanPlaidLink(row pgx.Row) (*models.PlaidLink, error) {
	var l models.PlaidLink
	err := row.Scan(&l.ID, &l.OwnerID, &l.AccountID, &l.CategoryID, &l.ItemID, &l.PlaidAccountID,
		&l.InstitutionName, &l.AccessToken, &l.SyncCursor, &l.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &l, nil
}

func (r *repo) CreatePlaidLink(ctx context.Context, l *models.PlaidLink) error {
	query := `
		INSERT INTO plaid_links (owner_id, account_id, category_id, item_id, plaid_account_id, institution_name, access_token, sync_cursor)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query, l.OwnerID, l.AccountID, l.CategoryID, l.ItemID, l.PlaidAccountID,
		l.InstitutionName, l.AccessToken, l.SyncCursor).Scan(&l.ID, &l.CreatedAt)
	if isUniqueViolation(err) {
		return &ledger.ValidationError{Field: "plaid_account_id", Message: "is already linked"}
	}
	return err
}

func (r *repo) GetPlaidLink(ctx context.Context, id int64) (*models.PlaidLink, error) {
	return scanPlaidLink(r.q.QueryRow(ctx, `SELECT `+plaidLinkColumns+` FROM plaid_links WHERE id = $1`, id))
}

func (r *repo) ListPlaidLinks(ctx context.Context, ownerID int64) ([]models.PlaidLink, error) {
	rows, err := r.q.Query(ctx, `SELECT `+plaidLinkColumns+` FROM plaid_links WHERE owner_id = $1 ORDER BY id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []models.PlaidLink
	for rows.Next() {
		l, err := scanPlaidLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, *l)
	}
	return links, rows.Err()
}

// CountPlaidLinksByItem reports how many links still use an item's access token.
func (r *repo) CountPlaidLinksByItem(ctx context.Context, itemID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM plaid_links WHERE item_id = $1`, itemID).Scan(&n)
	return n, err
}

func (r *repo) UpdatePlaidCursor(ctx context.Context, id int64, cursor string) error {
	return affected(r.q.Exec(ctx, `UPDATE plaid_links SET sync_cursor = $2 WHERE id = $1`, id, cursor))
}

func (r *repo) DeletePlaidLink(ctx context.Context, id int64) error {
	return affected(r.q.Exec(ctx, `DELETE FROM plaid_links WHERE id = $1`, id))
}
