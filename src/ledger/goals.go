package ledger

import (
	"context"
	"fmt"
	"time"

	"fintrack-server/src/models"

	"github.com/shopspring/decimal"
)

// SyncFromAccount copies the linked account's balance into the goal.
func SyncFromAccount(g *models.Goal, a *models.Account) {
	g.CurrentAmount = a.Balance
}

// RefreshStatus marks the goal completed once the current amount reaches
// the target. Completion is one-way: a completed goal stays completed when
// the amount drops again. It reports whether the status changed.
func RefreshStatus(g *models.Goal) bool {
	if g.Status != models.GoalStatusCompleted && g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount) {
		g.Status = models.GoalStatusCompleted
		return true
	}
	return false
}

func refreshLinkedGoals(ctx context.Context, repo Repository, account *models.Account) error {
	goals, err := repo.ListGoalsByAccount(ctx, account.ID)
	if err != nil {
		return fmt.Errorf("list goals of account %d: %w", account.ID, err)
	}
	for i := range goals {
		g := &goals[i]
		SyncFromAccount(g, account)
		RefreshStatus(g)
		if err := repo.UpdateGoal(ctx, g); err != nil {
			return fmt.Errorf("update goal %d: %w", g.ID, err)
		}
	}
	return nil
}

type GoalInput struct {
	AccountID     *int64
	Title         string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	Deadline      *time.Time
}

// GoalPatch fields left nil are unchanged. UnlinkAccount clears the
// linked account and wins over AccountID.
type GoalPatch struct {
	AccountID     *int64
	UnlinkAccount bool
	Title         *string
	TargetAmount  *decimal.Decimal
	CurrentAmount *decimal.Decimal
	Deadline      *time.Time
	Status        *models.GoalStatus
}

func validateGoal(g *models.Goal) error {
	if err := validateName("title", g.Title); err != nil {
		return err
	}
	if !g.TargetAmount.IsPositive() {
		return invalid("target_amount", "must be greater than zero")
	}
	if err := validateMoney("target_amount", g.TargetAmount); err != nil {
		return err
	}
	if g.AccountID == nil {
		if g.CurrentAmount.IsNegative() {
			return invalid("current_amount", "must not be negative")
		}
		if err := validateMoney("current_amount", g.CurrentAmount); err != nil {
			return err
		}
	}
	if !g.Status.Valid() {
		return invalid("status", "must be one of in-progress, completed")
	}
	return nil
}

// linkAccount row-locks the goal's linked account, checks ownership and
// syncs the current amount from it.
func linkAccount(ctx context.Context, repo Repository, ownerID int64, g *models.Goal) error {
	if g.AccountID == nil {
		return nil
	}
	account, err := repo.LockAccount(ctx, *g.AccountID)
	if err != nil {
		return fmt.Errorf("lock account %d: %w", *g.AccountID, err)
	}
	if err := authorize(ownerID, account.OwnerID); err != nil {
		return err
	}
	SyncFromAccount(g, account)
	return nil
}

func (s *Service) CreateGoal(ctx context.Context, ownerID int64, in GoalInput) (*models.Goal, error) {
	g := &models.Goal{
		OwnerID:       ownerID,
		AccountID:     in.AccountID,
		Title:         in.Title,
		TargetAmount:  in.TargetAmount,
		CurrentAmount: in.CurrentAmount,
		Deadline:      in.Deadline,
		Status:        models.GoalStatusInProgress,
	}
	if err := validateGoal(g); err != nil {
		return nil, err
	}
	err := s.store.WithTx(ctx, func(repo Repository) error {
		if err := linkAccount(ctx, repo, ownerID, g); err != nil {
			return err
		}
		RefreshStatus(g)
		if err := repo.CreateGoal(ctx, g); err != nil {
			return fmt.Errorf("create goal: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Service) UpdateGoal(ctx context.Context, ownerID, goalID int64, p GoalPatch) (*models.Goal, error) {
	var updated *models.Goal
	err := s.store.WithTx(ctx, func(repo Repository) error {
		g, err := repo.GetGoal(ctx, goalID)
		if err != nil {
			return err
		}
		if err := authorize(ownerID, g.OwnerID); err != nil {
			return err
		}
		switch {
		case p.UnlinkAccount:
			g.AccountID = nil
		case p.AccountID != nil:
			g.AccountID = p.AccountID
		}
		if p.Title != nil {
			g.Title = *p.Title
		}
		if p.TargetAmount != nil {
			g.TargetAmount = *p.TargetAmount
		}
		if p.CurrentAmount != nil {
			g.CurrentAmount = *p.CurrentAmount
		}
		if p.Deadline != nil {
			g.Deadline = p.Deadline
		}
		if p.Status != nil {
			g.Status = *p.Status
		}
		if err := validateGoal(g); err != nil {
			return err
		}
		if err := linkAccount(ctx, repo, ownerID, g); err != nil {
			return err
		}
		RefreshStatus(g)
		if err := repo.UpdateGoal(ctx, g); err != nil {
			return fmt.Errorf("update goal %d: %w", goalID, err)
		}
		updated = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) GetGoal(ctx context.Context, ownerID, goalID int64) (*models.Goal, error) {
	g, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if err := authorize(ownerID, g.OwnerID); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Service) ListGoals(ctx context.Context, ownerID int64) ([]models.Goal, error) {
	return s.store.ListGoals(ctx, ownerID)
}

func (s *Service) DeleteGoal(ctx context.Context, ownerID, goalID int64) error {
	if _, err := s.GetGoal(ctx, ownerID, goalID); err != nil {
		return err
	}
	return s.store.DeleteGoal(ctx, goalID)
}
