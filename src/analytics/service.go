package analytics

import (
	"context"
	"time"

	"fintrack-server/src/ledger"
	"fintrack-server/src/models"

	"golang.org/x/sync/errgroup"
)

// RecentLimit is the number of transactions returned by Recent.
const RecentLimit = 5

// Service loads a user's records through the ledger and aggregates them.
type Service struct {
	ledger *ledger.Service
	now    func() time.Time
}

// NewService returns a Service. A nil now defaults to time.Now.
func NewService(l *ledger.Service, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{ledger: l, now: now}
}

func (s *Service) today() time.Time {
	return s.now().UTC()
}

func (s *Service) transactions(ctx context.Context, ownerID int64, w Window) ([]models.Transaction, error) {
	return s.ledger.ListTransactions(ctx, ownerID, ledger.TransactionFilter{Start: w.Start, End: w.End})
}

func (s *Service) Summary(ctx context.Context, ownerID int64, w Window) (Summary, error) {
	txns, err := s.transactions(ctx, ownerID, w)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(txns), nil
}

func (s *Service) SpendingByCategory(ctx context.Context, ownerID int64, w Window) ([]CategorySpending, error) {
	var (
		txns       []models.Transaction
		categories []models.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		txns, err = s.transactions(gctx, ownerID, w)
		return err
	})
	g.Go(func() (err error) {
		categories, err = s.ledger.ListCategories(gctx, ownerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return SpendingByCategory(txns, categories), nil
}

func (s *Service) BudgetComparison(ctx context.Context, ownerID int64, w Window) ([]BudgetComparison, error) {
	var (
		txns       []models.Transaction
		categories []models.Category
		budgets    []models.Budget
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		txns, err = s.transactions(gctx, ownerID, w)
		return err
	})
	g.Go(func() (err error) {
		categories, err = s.ledger.ListCategories(gctx, ownerID)
		return err
	})
	g.Go(func() (err error) {
		budgets, err = s.ledger.ListBudgets(gctx, ownerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return CompareBudgets(budgets, txns, categories, w), nil
}

func (s *Service) GoalProgress(ctx context.Context, ownerID int64) ([]GoalSummary, error) {
	goals, err := s.ledger.ListGoals(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return GoalProgress(goals), nil
}

func (s *Service) MonthlyTrend(ctx context.Context, ownerID int64) ([]MonthTotals, error) {
	now := s.today()
	first, last := trendRange(now, TrendMonths)
	txns, err := s.transactions(ctx, ownerID, Window{Start: &first, End: &last})
	if err != nil {
		return nil, err
	}
	return MonthlyTrend(txns, now, TrendMonths), nil
}

func (s *Service) Dashboard(ctx context.Context, ownerID int64) (DashboardSummary, error) {
	now := s.today()
	first, last := trendRange(now, 1)
	var (
		txns     []models.Transaction
		accounts []models.Account
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		txns, err = s.transactions(gctx, ownerID, Window{Start: &first, End: &last})
		return err
	})
	g.Go(func() (err error) {
		accounts, err = s.ledger.ListAccounts(gctx, ownerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return DashboardSummary{}, err
	}
	return Dashboard(txns, accounts, now), nil
}

// Recent returns the owner's most recent transactions by date.
func (s *Service) Recent(ctx context.Context, ownerID int64) ([]models.Transaction, error) {
	return s.ledger.ListTransactions(ctx, ownerID, ledger.TransactionFilter{Limit: RecentLimit})
}

func (s *Service) Report(ctx context.Context, ownerID int64, w Window) (*Report, error) {
	var (
		txns       []models.Transaction
		categories []models.Category
		budgets    []models.Budget
		goals      []models.Goal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		txns, err = s.transactions(gctx, ownerID, w)
		return err
	})
	g.Go(func() (err error) {
		categories, err = s.ledger.ListCategories(gctx, ownerID)
		return err
	})
	g.Go(func() (err error) {
		budgets, err = s.ledger.ListBudgets(gctx, ownerID)
		return err
	})
	g.Go(func() (err error) {
		goals, err = s.ledger.ListGoals(gctx, ownerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Report{
		Summary:           Summarize(txns),
		CategoryBreakdown: SpendingByCategory(txns, categories),
		BudgetComparison:  CompareBudgets(budgets, txns, categories, w),
		Goals:             GoalProgress(goals),
	}, nil
}
