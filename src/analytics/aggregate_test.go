package analytics

import (
	"testing"
	"time"

	"fintrack-server/src/models"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func txn(categoryID int64, typ models.TransactionType, amount string, date time.Time) models.Transaction {
	return models.Transaction{CategoryID: categoryID, Type: typ, Amount: dec(amount), TransactionDate: date}
}

const (
	income  = models.TransactionTypeIncome
	expense = models.TransactionTypeExpense
)

func TestSummarizeNetBalance(t *testing.T) {
	txns := []models.Transaction{
		txn(1, income, "1000", day(2024, 3, 1)),
		txn(2, expense, "300.10", day(2024, 3, 2)),
		txn(2, expense, "0.90", day(2024, 3, 3)),
	}
	s := Summarize(txns)
	if !s.IncomeTotal.Equal(dec("1000")) || !s.ExpenseTotal.Equal(dec("301")) {
		t.Fatalf("summary = %+v", s)
	}
	if !s.IncomeTotal.Sub(s.ExpenseTotal).Equal(s.NetBalance) || !s.NetBalance.Equal(dec("699")) {
		t.Fatalf("net balance = %s", s.NetBalance)
	}

	empty := Summarize(nil)
	if !empty.NetBalance.IsZero() {
		t.Fatalf("empty net balance = %s", empty.NetBalance)
	}
}

func TestSpendingByCategory(t *testing.T) {
	categories := []models.Category{{ID: 1, Name: "Salary"}, {ID: 2, Name: "Food"}, {ID: 3, Name: "Rent"}}
	txns := []models.Transaction{
		txn(1, income, "1000", day(2024, 3, 1)),
		txn(2, expense, "30", day(2024, 3, 2)),
		txn(2, expense, "20", day(2024, 3, 3)),
		txn(3, expense, "700", day(2024, 3, 4)),
	}
	got := SpendingByCategory(txns, categories)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].CategoryName != "Rent" || !got[0].Total.Equal(dec("700")) {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].CategoryName != "Food" || !got[1].Total.Equal(dec("50")) {
		t.Errorf("got[1] = %+v", got[1])
	}
}

func TestCompareBudgets(t *testing.T) {
	categories := []models.Category{{ID: 2, Name: "Food"}}
	budgets := []models.Budget{{ID: 9, CategoryID: 2, Amount: dec("200"), StartDate: day(2024, 3, 1), EndDate: day(2024, 3, 31)}}
	txns := []models.Transaction{
		txn(2, expense, "100", day(2024, 3, 5)),
		txn(2, expense, "50", day(2024, 3, 31)),
		txn(2, expense, "999", day(2024, 4, 1)),
		txn(5, expense, "40", day(2024, 3, 10)),
	}

	got := CompareBudgets(budgets, txns, categories, Window{})
	if len(got) != 1 {
		t.Fatalf("len = %d", len(got))
	}
	if !got[0].Spent.Equal(dec("150")) || !got[0].Remaining.Equal(dec("50")) || got[0].CategoryName != "Food" {
		t.Fatalf("comparison = %+v", got[0])
	}

	start := day(2024, 3, 10)
	got = CompareBudgets(budgets, txns, categories, Window{Start: &start})
	if !got[0].Spent.Equal(dec("50")) {
		t.Fatalf("spent with window = %s, want 50", got[0].Spent)
	}
}

func TestProgressPercentage(t *testing.T) {
	tests := []struct {
		current, target string
		want            int64
	}{
		{"1000", "1000", 100},
		{"0", "1000", 0},
		{"333", "1000", 33},
		{"5", "1000", 1},
		{"4", "1000", 0},
		{"1500", "1000", 150},
		{"10", "0", 0},
		{"-5", "1000", -1},
	}
	for _, tt := range tests {
		if got := ProgressPercentage(dec(tt.current), dec(tt.target)); got != tt.want {
			t.Errorf("ProgressPercentage(%s, %s) = %d, want %d", tt.current, tt.target, got, tt.want)
		}
	}
}

func TestMonthlyTrendFillsEmptyMonths(t *testing.T) {
	now := day(2024, 6, 15)
	txns := []models.Transaction{
		txn(1, income, "100", day(2024, 1, 20)),
		txn(2, expense, "40", day(2024, 3, 2)),
		txn(2, expense, "1", day(2023, 12, 31)),
		txn(2, expense, "1", day(2024, 7, 1)),
	}
	got := MonthlyTrend(txns, now, TrendMonths)
	wantLabels := []string{"Jan 2024", "Feb 2024", "Mar 2024", "Apr 2024", "May 2024", "Jun 2024"}
	if len(got) != len(wantLabels) {
		t.Fatalf("len = %d, want %d", len(got), len(wantLabels))
	}
	for i, m := range got {
		if m.Month != wantLabels[i] {
			t.Errorf("month %d = %q, want %q", i, m.Month, wantLabels[i])
		}
	}
	if !got[0].Income.Equal(dec("100")) || !got[2].Expense.Equal(dec("40")) {
		t.Errorf("active months = %+v, %+v", got[0], got[2])
	}
	for _, i := range []int{1, 3, 4, 5} {
		if !got[i].Income.IsZero() || !got[i].Expense.IsZero() {
			t.Errorf("month %s = %+v, want zeros", got[i].Month, got[i])
		}
	}
}

func TestMonthlyTrendCrossesYear(t *testing.T) {
	got := MonthlyTrend(nil, day(2024, 2, 29), TrendMonths)
	if got[0].Month != "Sep 2023" || got[5].Month != "Feb 2024" {
		t.Fatalf("range = %s..%s", got[0].Month, got[5].Month)
	}
}

func TestDashboardUsesCurrentYearAndMonth(t *testing.T) {
	now := day(2024, 3, 20)
	txns := []models.Transaction{
		txn(1, income, "500", day(2024, 3, 1)),
		txn(2, expense, "120", day(2024, 3, 19)),
		txn(1, income, "999", day(2023, 3, 10)),
	}
	accounts := []models.Account{{Balance: dec("1000")}, {Balance: dec("-50")}}
	got := Dashboard(txns, accounts, now)
	if !got.MonthlyIncome.Equal(dec("500")) || !got.MonthlyExpense.Equal(dec("120")) {
		t.Errorf("month totals = %s/%s", got.MonthlyIncome, got.MonthlyExpense)
	}
	if !got.Savings.Equal(dec("380")) || !got.Balance.Equal(dec("950")) {
		t.Errorf("savings = %s balance = %s", got.Savings, got.Balance)
	}
}
