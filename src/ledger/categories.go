package ledger

import (
	"context"
	"fmt"

	"fintrack-server/src/models"

	"github.com/shopspring/decimal"
)

type CategoryPatch struct {
	Name *string
	Type *models.CategoryType
}

func validateCategory(c *models.Category) error {
	if err := validateName("name", c.Name); err != nil {
		return err
	}
	if !c.Type.Valid() {
		return invalid("type", "must be one of income, expense")
	}
	return nil
}

func (s *Service) CreateCategory(ctx context.Context, ownerID int64, name string, typ models.CategoryType) (*models.Category, error) {
	c := &models.Category{OwnerID: ownerID, Name: name, Type: typ}
	if err := validateCategory(c); err != nil {
		return nil, err
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (s *Service) GetCategory(ctx context.Context, ownerID, categoryID int64) (*models.Category, error) {
	return ownedCategory(ctx, s.store, ownerID, categoryID)
}

func ownedCategory(ctx context.Context, repo Repository, ownerID, categoryID int64) (*models.Category, error) {
	c, err := repo.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if err := authorize(ownerID, c.OwnerID); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) ListCategories(ctx context.Context, ownerID int64) ([]models.Category, error) {
	return s.store.ListCategories(ctx, ownerID)
}

func (s *Service) UpdateCategory(ctx context.Context, ownerID, categoryID int64, p CategoryPatch) (*models.Category, error) {
	c, err := s.GetCategory(ctx, ownerID, categoryID)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if err := validateCategory(c); err != nil {
		return nil, err
	}
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("update category %d: %w", categoryID, err)
	}
	return c, nil
}

// DeleteCategory removes the category with its transactions, budgets and
// rules. The balance effect of every removed transaction is reversed in the
// same database transaction.
func (s *Service) DeleteCategory(ctx context.Context, ownerID, categoryID int64) error {
	return s.store.WithTx(ctx, func(repo Repository) error {
		if _, err := ownedCategory(ctx, repo, ownerID, categoryID); err != nil {
			return err
		}
		txns, err := repo.ListTransactions(ctx, ownerID, TransactionFilter{CategoryID: &categoryID})
		if err != nil {
			return fmt.Errorf("list transactions of category %d: %w", categoryID, err)
		}
		deltas := make(map[int64]decimal.Decimal)
		ids := make([]int64, 0)
		for _, t := range txns {
			if _, ok := deltas[t.AccountID]; !ok {
				ids = append(ids, t.AccountID)
			}
			deltas[t.AccountID] = deltas[t.AccountID].Sub(t.SignedAmount())
		}
		locked, err := lockOwnedAccounts(ctx, repo, ownerID, ids...)
		if err != nil {
			return err
		}
		if err := repo.DeleteCategory(ctx, categoryID); err != nil {
			return fmt.Errorf("delete category %d: %w", categoryID, err)
		}
		for _, id := range ids {
			if err := settle(ctx, repo, locked[id], deltas[id]); err != nil {
				return err
			}
		}
		return nil
	})
}
