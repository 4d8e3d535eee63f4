package ledger

import (
	"context"
	"fmt"
	"time"

	"fintrack-server/src/models"

	"github.com/shopspring/decimal"
)

type BudgetInput struct {
	CategoryID int64
	Amount     decimal.Decimal
	StartDate  time.Time
	EndDate    time.Time
}

type BudgetPatch struct {
	CategoryID *int64
	Amount     *decimal.Decimal
	StartDate  *time.Time
	EndDate    *time.Time
}

func validateBudget(b *models.Budget) error {
	if b.Amount.IsNegative() {
		return invalid("amount", "must not be negative")
	}
	if err := validateMoney("amount", b.Amount); err != nil {
		return err
	}
	if b.StartDate.IsZero() {
		return invalid("start_date", "is required")
	}
	if b.EndDate.IsZero() {
		return invalid("end_date", "is required")
	}
	if b.EndDate.Before(b.StartDate) {
		return invalid("end_date", "must not be before start_date")
	}
	return nil
}

func (s *Service) CreateBudget(ctx context.Context, ownerID int64, in BudgetInput) (*models.Budget, error) {
	b := &models.Budget{
		OwnerID:    ownerID,
		CategoryID: in.CategoryID,
		Amount:     in.Amount,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
	}
	if err := validateBudget(b); err != nil {
		return nil, err
	}
	if _, err := ownedCategory(ctx, s.store, ownerID, b.CategoryID); err != nil {
		return nil, err
	}
	if err := s.store.CreateBudget(ctx, b); err != nil {
		return nil, fmt.Errorf("create budget: %w", err)
	}
	return b, nil
}

func (s *Service) GetBudget(ctx context.Context, ownerID, budgetID int64) (*models.Budget, error) {
	b, err := s.store.GetBudget(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	if err := authorize(ownerID, b.OwnerID); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) ListBudgets(ctx context.Context, ownerID int64) ([]models.Budget, error) {
	return s.store.ListBudgets(ctx, ownerID)
}

func (s *Service) UpdateBudget(ctx context.Context, ownerID, budgetID int64, p BudgetPatch) (*models.Budget, error) {
	b, err := s.GetBudget(ctx, ownerID, budgetID)
	if err != nil {
		return nil, err
	}
	if p.CategoryID != nil && *p.CategoryID != b.CategoryID {
		if _, err := ownedCategory(ctx, s.store, ownerID, *p.CategoryID); err != nil {
			return nil, err
		}
		b.CategoryID = *p.CategoryID
	}
	if p.Amount != nil {
		b.Amount = *p.Amount
	}
	if p.StartDate != nil {
		b.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		b.EndDate = *p.EndDate
	}
	if err := validateBudget(b); err != nil {
		return nil, err
	}
	if err := s.store.UpdateBudget(ctx, b); err != nil {
		return nil, fmt.Errorf("update budget %d: %w", budgetID, err)
	}
	return b, nil
}

func (s *Service) DeleteBudget(ctx context.Context, ownerID, budgetID int64) error {
	if _, err := s.GetBudget(ctx, ownerID, budgetID); err != nil {
		return err
	}
	return s.store.DeleteBudget(ctx, budgetID)
}
