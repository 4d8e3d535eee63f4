package ledger

import (
	"context"
	"fmt"
	"time"

	"fintrack-server/src/models"

	"github.com/shopspring/decimal"
)

const (
	maxDescriptionLength = 255
	maxListLimit         = 1000
)

type TransactionInput struct {
	AccountID       int64
	CategoryID      int64
	Type            models.TransactionType
	Amount          decimal.Decimal
	Description     string
	TransactionDate time.Time
	// ExternalID identifies imported transactions. Nil for manual entries.
	ExternalID *string
}

// TransactionPatch fields left nil are unchanged.
type TransactionPatch struct {
	AccountID       *int64
	CategoryID      *int64
	Type            *models.TransactionType
	Amount          *decimal.Decimal
	Description     *string
	TransactionDate *time.Time
}

func (p TransactionPatch) apply(t *models.Transaction) {
	if p.AccountID != nil {
		t.AccountID = *p.AccountID
	}
	if p.CategoryID != nil {
		t.CategoryID = *p.CategoryID
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.TransactionDate != nil {
		t.TransactionDate = *p.TransactionDate
	}
}

func validateTransaction(t *models.Transaction) error {
	if t.AccountID <= 0 {
		return invalid("account_id", "is required")
	}
	if t.CategoryID <= 0 {
		return invalid("category_id", "is required")
	}
	if !t.Type.Valid() {
		return invalid("type", "must be one of income, expense")
	}
	if !t.Amount.IsPositive() {
		return invalid("amount", "must be greater than zero")
	}
	if err := validateMoney("amount", t.Amount); err != nil {
		return err
	}
	if len(t.Description) > maxDescriptionLength {
		return invalid("description", "must be at most %d characters", maxDescriptionLength)
	}
	if t.TransactionDate.IsZero() {
		return invalid("transaction_date", "is required")
	}
	return nil
}

func validateFilter(f TransactionFilter) error {
	if f.Type != "" && !f.Type.Valid() {
		return invalid("type", "must be one of income, expense")
	}
	if f.Start != nil && f.End != nil && f.End.Before(*f.Start) {
		return invalid("end_date", "must not be before start_date")
	}
	if f.Limit < 0 || f.Limit > maxListLimit {
		return invalid("limit", "must be between 0 and %d", maxListLimit)
	}
	return nil
}

// CreateTransaction records a transaction and applies its signed amount to
// the account balance in the same database transaction.
func (s *Service) CreateTransaction(ctx context.Context, ownerID int64, in TransactionInput) (*models.Transaction, error) {
	t := &models.Transaction{
		OwnerID:         ownerID,
		AccountID:       in.AccountID,
		CategoryID:      in.CategoryID,
		Type:            in.Type,
		Amount:          in.Amount,
		Description:     in.Description,
		TransactionDate: in.TransactionDate,
		ExternalID:      in.ExternalID,
	}
	if err := validateTransaction(t); err != nil {
		return nil, err
	}
	err := s.store.WithTx(ctx, func(repo Repository) error {
		if _, err := ownedCategory(ctx, repo, ownerID, t.CategoryID); err != nil {
			return err
		}
		locked, err := lockOwnedAccounts(ctx, repo, ownerID, t.AccountID)
		if err != nil {
			return err
		}
		if err := repo.CreateTransaction(ctx, t); err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}
		return settle(ctx, repo, locked[t.AccountID], t.SignedAmount())
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTransaction applies the patch and moves the balance by the
// difference between the new and the old signed amount. When the account
// changes, the old account loses the old effect and the new account gains
// the new one.
func (s *Service) UpdateTransaction(ctx context.Context, ownerID, transactionID int64, p TransactionPatch) (*models.Transaction, error) {
	var updated *models.Transaction
	err := s.store.WithTx(ctx, func(repo Repository) error {
		old, err := repo.GetTransaction(ctx, transactionID)
		if err != nil {
			return err
		}
		if err := authorize(ownerID, old.OwnerID); err != nil {
			return err
		}
		next := *old
		p.apply(&next)
		if err := validateTransaction(&next); err != nil {
			return err
		}
		if next.CategoryID != old.CategoryID {
			if _, err := ownedCategory(ctx, repo, ownerID, next.CategoryID); err != nil {
				return err
			}
		}
		locked, err := lockOwnedAccounts(ctx, repo, ownerID, old.AccountID, next.AccountID)
		if err != nil {
			return err
		}
		if err := repo.UpdateTransaction(ctx, &next); err != nil {
			return fmt.Errorf("update transaction %d: %w", transactionID, err)
		}

		if next.AccountID == old.AccountID {
			delta := next.SignedAmount().Sub(old.SignedAmount())
			if err := settle(ctx, repo, locked[next.AccountID], delta); err != nil {
				return err
			}
		} else {
			if err := settle(ctx, repo, locked[old.AccountID], old.SignedAmount().Neg()); err != nil {
				return err
			}
			if err := settle(ctx, repo, locked[next.AccountID], next.SignedAmount()); err != nil {
				return err
			}
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTransaction removes the transaction and reverses its signed amount
// on the account balance.
func (s *Service) DeleteTransaction(ctx context.Context, ownerID, transactionID int64) error {
	return s.store.WithTx(ctx, func(repo Repository) error {
		t, err := repo.GetTransaction(ctx, transactionID)
		if err != nil {
			return err
		}
		if err := authorize(ownerID, t.OwnerID); err != nil {
			return err
		}
		locked, err := lockOwnedAccounts(ctx, repo, ownerID, t.AccountID)
		if err != nil {
			return err
		}
		if err := repo.DeleteTransaction(ctx, transactionID); err != nil {
			return fmt.Errorf("delete transaction %d: %w", transactionID, err)
		}
		return settle(ctx, repo, locked[t.AccountID], t.SignedAmount().Neg())
	})
}

func (s *Service) GetTransaction(ctx context.Context, ownerID, transactionID int64) (*models.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if err := authorize(ownerID, t.OwnerID); err != nil {
		return nil, err
	}
	return t, nil
}

// FindByExternalID returns the owner's transaction imported under
// externalID, or ErrNotFound.
func (s *Service) FindByExternalID(ctx context.Context, ownerID int64, externalID string) (*models.Transaction, error) {
	return s.store.GetTransactionByExternalID(ctx, ownerID, externalID)
}

// ListTransactions returns the owner's transactions, newest first.
func (s *Service) ListTransactions(ctx context.Context, ownerID int64, f TransactionFilter) ([]models.Transaction, error) {
	if err := validateFilter(f); err != nil {
		return nil, err
	}
	return s.store.ListTransactions(ctx, ownerID, f)
}

// RecategorizeTransaction moves a transaction to another category. Balances
// are unaffected.
func (s *Service) RecategorizeTransaction(ctx context.Context, ownerID, transactionID, categoryID int64) error {
	_, err := s.UpdateTransaction(ctx, ownerID, transactionID, TransactionPatch{CategoryID: &categoryID})
	return err
}
