package ledger

import (
	"context"
	"fmt"
	"sort"

	"fintrack-server/src/logging"
	"fintrack-server/src/models"

	"github.com/shopspring/decimal"
)

// lockOwnedAccounts row-locks the given accounts in ascending id order, so
// that two requests touching the same pair of accounts cannot deadlock, and
// checks that each one belongs to ownerID.
func lockOwnedAccounts(ctx context.Context, repo Repository, ownerID int64, ids ...int64) (map[int64]*models.Account, error) {
	unique := make([]int64, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })

	locked := make(map[int64]*models.Account, len(unique))
	for _, id := range unique {
		account, err := repo.LockAccount(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("lock account %d: %w", id, err)
		}
		if err := authorize(ownerID, account.OwnerID); err != nil {
			return nil, err
		}
		locked[id] = account
	}
	return locked, nil
}

// applyTransactionEffect adds delta to a locked account's balance and
// persists it. The returned account carries the new balance.
func applyTransactionEffect(ctx context.Context, repo Repository, account *models.Account, delta decimal.Decimal) (*models.Account, error) {
	before := account.Balance
	after := before.Add(delta)
	if after.Abs().GreaterThanOrEqual(maxMoney) {
		return nil, invalid("amount", "would take the balance of account %d out of range", account.ID)
	}
	account.Balance = after
	if err := repo.SetAccountBalance(ctx, account.ID, account.Balance); err != nil {
		return nil, fmt.Errorf("set balance of account %d: %w", account.ID, err)
	}
	logging.FromContext(ctx).Debug("account balance updated",
		"account_id", account.ID,
		"before", before.String(),
		"delta", delta.String(),
		"after", account.Balance.String())
	return account, nil
}

// settle applies a balance delta and then re-derives every goal linked to
// the account. A zero delta is not a balance event and does nothing.
func settle(ctx context.Context, repo Repository, account *models.Account, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	updated, err := applyTransactionEffect(ctx, repo, account, delta)
	if err != nil {
		return err
	}
	return refreshLinkedGoals(ctx, repo, updated)
}

// computeBalance returns opening balance plus the signed sum of the
// account's transactions.
func computeBalance(ctx context.Context, repo Repository, account *models.Account) (decimal.Decimal, error) {
	accountID := account.ID
	txns, err := repo.ListTransactions(ctx, account.OwnerID, TransactionFilter{AccountID: &accountID})
	if err != nil {
		return decimal.Zero, fmt.Errorf("list transactions of account %d: %w", account.ID, err)
	}
	balance := account.OpeningBalance
	for _, t := range txns {
		balance = balance.Add(t.SignedAmount())
	}
	return balance, nil
}
