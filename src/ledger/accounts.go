package ledger

import (
	"context"
	"fmt"

	"fintrack-server/src/models"

	"github.com/shopspring/decimal"
)

type AccountInput struct {
	Name           string
	Type           models.AccountType
	OpeningBalance decimal.Decimal
}

// AccountPatch fields left nil are unchanged. The balance itself is never
// set directly; changing the opening balance shifts it by the difference.
type AccountPatch struct {
	Name           *string
	Type           *models.AccountType
	OpeningBalance *decimal.Decimal
}

func validateAccount(a *models.Account) error {
	if err := validateName("name", a.Name); err != nil {
		return err
	}
	if !a.Type.Valid() {
		return invalid("type", "must be one of bank, cash, credit_card")
	}
	if a.OpeningBalance.IsNegative() {
		return invalid("opening_balance", "must not be negative")
	}
	if err := validateMoney("opening_balance", a.OpeningBalance); err != nil {
		return err
	}
	return nil
}

func (s *Service) CreateAccount(ctx context.Context, ownerID int64, in AccountInput) (*models.Account, error) {
	a := &models.Account{
		OwnerID:        ownerID,
		Name:           in.Name,
		Type:           in.Type,
		Balance:        in.OpeningBalance,
		OpeningBalance: in.OpeningBalance,
	}
	if err := validateAccount(a); err != nil {
		return nil, err
	}
	if err := s.store.CreateAccount(ctx, a); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return a, nil
}

func (s *Service) GetAccount(ctx context.Context, ownerID, accountID int64) (*models.Account, error) {
	a, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := authorize(ownerID, a.OwnerID); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) ListAccounts(ctx context.Context, ownerID int64) ([]models.Account, error) {
	return s.store.ListAccounts(ctx, ownerID)
}

// TotalBalance sums the balances of all the owner's accounts.
func (s *Service) TotalBalance(ctx context.Context, ownerID int64) (decimal.Decimal, error) {
	accounts, err := s.store.ListAccounts(ctx, ownerID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}
	return total, nil
}

func (s *Service) UpdateAccount(ctx context.Context, ownerID, accountID int64, p AccountPatch) (*models.Account, error) {
	var updated *models.Account
	err := s.store.WithTx(ctx, func(repo Repository) error {
		locked, err := lockOwnedAccounts(ctx, repo, ownerID, accountID)
		if err != nil {
			return err
		}
		a := locked[accountID]
		delta := decimal.Zero
		if p.Name != nil {
			a.Name = *p.Name
		}
		if p.Type != nil {
			a.Type = *p.Type
		}
		if p.OpeningBalance != nil {
			delta = p.OpeningBalance.Sub(a.OpeningBalance)
			a.OpeningBalance = *p.OpeningBalance
		}
		if err := validateAccount(a); err != nil {
			return err
		}
		if err := repo.UpdateAccount(ctx, a); err != nil {
			return fmt.Errorf("update account %d: %w", accountID, err)
		}
		if err := settle(ctx, repo, a, delta); err != nil {
			return err
		}
		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteAccount removes the account together with its transactions. Goals
// linked to it are unlinked and keep their last amount.
func (s *Service) DeleteAccount(ctx context.Context, ownerID, accountID int64) error {
	if _, err := s.GetAccount(ctx, ownerID, accountID); err != nil {
		return err
	}
	return s.store.DeleteAccount(ctx, accountID)
}

// ReconcileAccount recomputes the balance from the full transaction set and
// persists it if it drifted. Linked goals are re-derived either way.
func (s *Service) ReconcileAccount(ctx context.Context, ownerID, accountID int64) (*models.Account, error) {
	var reconciled *models.Account
	err := s.store.WithTx(ctx, func(repo Repository) error {
		locked, err := lockOwnedAccounts(ctx, repo, ownerID, accountID)
		if err != nil {
			return err
		}
		a := locked[accountID]
		want, err := computeBalance(ctx, repo, a)
		if err != nil {
			return err
		}
		if !want.Equal(a.Balance) {
			if a, err = applyTransactionEffect(ctx, repo, a, want.Sub(a.Balance)); err != nil {
				return err
			}
		}
		if err := refreshLinkedGoals(ctx, repo, a); err != nil {
			return err
		}
		reconciled = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reconciled, nil
}
