package analytics_test

import (
	"context"
	"testing"
	"time"

	"fintrack-server/src/analytics"
	"fintrack-server/src/db/memory"
	"fintrack-server/src/ledger"
	"fintrack-server/src/models"

	"github.com/shopspring/decimal"
)

func TestServiceReport(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)
	l := ledger.NewService(memory.New())
	svc := analytics.NewService(l, func() time.Time { return now })

	account, err := l.CreateAccount(ctx, 1, ledger.AccountInput{Name: "Checking", Type: models.AccountTypeBank})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	salary, _ := l.CreateCategory(ctx, 1, "Salary", models.CategoryTypeIncome)
	food, _ := l.CreateCategory(ctx, 1, "Food", models.CategoryTypeExpense)

	goal, err := l.CreateGoal(ctx, 1, ledger.GoalInput{AccountID: &account.ID, Title: "Savings", TargetAmount: decimal.NewFromInt(1000)})
	if err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}
	if _, err := l.CreateBudget(ctx, 1, ledger.BudgetInput{
		CategoryID: food.ID,
		Amount:     decimal.NewFromInt(200),
		StartDate:  time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}

	add := func(categoryID int64, typ models.TransactionType, amount int64, d int) {
		t.Helper()
		_, err := l.CreateTransaction(ctx, 1, ledger.TransactionInput{
			AccountID:       account.ID,
			CategoryID:      categoryID,
			Type:            typ,
			Amount:          decimal.NewFromInt(amount),
			TransactionDate: time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
	}
	add(salary.ID, models.TransactionTypeIncome, 1150, 1)
	add(food.ID, models.TransactionTypeExpense, 100, 5)
	add(food.ID, models.TransactionTypeExpense, 50, 6)

	report, err := svc.Report(ctx, 1, analytics.Window{})
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if !report.NetBalance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("net balance = %s, want 1000", report.NetBalance)
	}
	if len(report.BudgetComparison) != 1 || !report.BudgetComparison[0].Remaining.Equal(decimal.NewFromInt(50)) {
		t.Errorf("budget comparison = %+v", report.BudgetComparison)
	}
	if len(report.Goals) != 1 || report.Goals[0].GoalID != goal.ID {
		t.Fatalf("goals = %+v", report.Goals)
	}
	if g := report.Goals[0]; g.ProgressPercentage != 100 || g.Status != models.GoalStatusCompleted {
		t.Errorf("goal = %+v, want 100%% completed", g)
	}

	dash, err := svc.Dashboard(ctx, 1)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if !dash.Balance.Equal(decimal.NewFromInt(1000)) || !dash.Savings.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("dashboard = %+v", dash)
	}

	trend, err := svc.MonthlyTrend(ctx, 1)
	if err != nil {
		t.Fatalf("MonthlyTrend: %v", err)
	}
	if len(trend) != analytics.TrendMonths || trend[5].Month != "Mar 2024" || !trend[5].Expense.Equal(decimal.NewFromInt(150)) {
		t.Errorf("trend = %+v", trend)
	}

	recent, err := svc.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 3 || recent[0].TransactionDate.Day() != 6 {
		t.Errorf("recent = %+v", recent)
	}

	other, err := svc.Summary(ctx, 2, analytics.Window{})
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if !other.IncomeTotal.IsZero() {
		t.Errorf("other user sees income %s", other.IncomeTotal)
	}
}
