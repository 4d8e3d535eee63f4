// Package analytics computes read-only financial aggregates over a user's
// transactions, budgets, goals and accounts. Nothing is cached; every
// figure is recomputed from the records passed in.
package analytics

import (
	"sort"
	"time"

	"fintrack-server/src/models"

	"github.com/shopspring/decimal"
)

// TrendMonths is the number of calendar months covered by MonthlyTrend.
const TrendMonths = 6

const monthLabel = "Jan 2006"

var hundred = decimal.NewFromInt(100)

// Window is an optional inclusive date range. A nil bound is open.
type Window struct {
	Start *time.Time
	End   *time.Time
}

func (w Window) Contains(t time.Time) bool {
	if w.Start != nil && t.Before(*w.Start) {
		return false
	}
	if w.End != nil && t.After(*w.End) {
		return false
	}
	return true
}

// intersect narrows w to [start, end].
func (w Window) intersect(start, end time.Time) Window {
	out := Window{Start: &start, End: &end}
	if w.Start != nil && w.Start.After(start) {
		out.Start = w.Start
	}
	if w.End != nil && w.End.Before(end) {
		out.End = w.End
	}
	return out
}

type Summary struct {
	IncomeTotal  decimal.Decimal `json:"income_total"`
	ExpenseTotal decimal.Decimal `json:"expense_total"`
	NetBalance   decimal.Decimal `json:"net_balance"`
}

func Summarize(txns []models.Transaction) Summary {
	s := Summary{IncomeTotal: decimal.Zero, ExpenseTotal: decimal.Zero}
	for _, t := range txns {
		switch t.Type {
		case models.TransactionTypeIncome:
			s.IncomeTotal = s.IncomeTotal.Add(t.Amount)
		case models.TransactionTypeExpense:
			s.ExpenseTotal = s.ExpenseTotal.Add(t.Amount)
		}
	}
	s.NetBalance = s.IncomeTotal.Sub(s.ExpenseTotal)
	return s
}

type CategorySpending struct {
	CategoryID   int64           `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Total        decimal.Decimal `json:"total"`
}

func categoryNames(categories []models.Category) map[int64]string {
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names
}

// SpendingByCategory sums expense transactions per category, largest first.
func SpendingByCategory(txns []models.Transaction, categories []models.Category) []CategorySpending {
	names := categoryNames(categories)
	totals := make(map[int64]decimal.Decimal)
	for _, t := range txns {
		if t.Type == models.TransactionTypeExpense {
			totals[t.CategoryID] = totals[t.CategoryID].Add(t.Amount)
		}
	}
	out := make([]CategorySpending, 0, len(totals))
	for id, total := range totals {
		out = append(out, CategorySpending{CategoryID: id, CategoryName: names[id], Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out
}

type BudgetComparison struct {
	BudgetID     int64           `json:"budget_id"`
	CategoryID   int64           `json:"category_id"`
	CategoryName string          `json:"category_name"`
	StartDate    time.Time       `json:"start_date"`
	EndDate      time.Time       `json:"end_date"`
	Budgeted     decimal.Decimal `json:"budgeted"`
	Spent        decimal.Decimal `json:"spent"`
	Remaining    decimal.Decimal `json:"remaining"`
}

// CompareBudgets reports, per budget, the amount spent in its category
// between the budget's own start and end dates, further narrowed by w.
// Every transaction of the category counts regardless of its type.
func CompareBudgets(budgets []models.Budget, txns []models.Transaction, categories []models.Category, w Window) []BudgetComparison {
	names := categoryNames(categories)
	out := make([]BudgetComparison, 0, len(budgets))
	for _, b := range budgets {
		period := w.intersect(b.StartDate, b.EndDate)
		spent := decimal.Zero
		for _, t := range txns {
			if t.CategoryID == b.CategoryID && period.Contains(t.TransactionDate) {
				spent = spent.Add(t.Amount)
			}
		}
		out = append(out, BudgetComparison{
			BudgetID:     b.ID,
			CategoryID:   b.CategoryID,
			CategoryName: names[b.CategoryID],
			StartDate:    b.StartDate,
			EndDate:      b.EndDate,
			Budgeted:     b.Amount,
			Spent:        spent,
			Remaining:    b.Amount.Sub(spent),
		})
	}
	return out
}

type GoalSummary struct {
	GoalID             int64             `json:"goal_id"`
	Title              string            `json:"title"`
	TargetAmount       decimal.Decimal   `json:"target_amount"`
	CurrentAmount      decimal.Decimal   `json:"current_amount"`
	ProgressPercentage int64             `json:"progress_percentage"`
	Status             models.GoalStatus `json:"status"`
}

// ProgressPercentage is current/target as a whole percentage, rounded half
// away from zero. It is not clamped and is 0 when target is not positive.
func ProgressPercentage(current, target decimal.Decimal) int64 {
	if !target.IsPositive() {
		return 0
	}
	return current.Mul(hundred).Div(target).Round(0).IntPart()
}

func GoalProgress(goals []models.Goal) []GoalSummary {
	out := make([]GoalSummary, 0, len(goals))
	for _, g := range goals {
		out = append(out, GoalSummary{
			GoalID:             g.ID,
			Title:              g.Title,
			TargetAmount:       g.TargetAmount,
			CurrentAmount:      g.CurrentAmount,
			ProgressPercentage: ProgressPercentage(g.CurrentAmount, g.TargetAmount),
			Status:             g.Status,
		})
	}
	return out
}

type MonthTotals struct {
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// trendRange returns the first day of the oldest month and the last day of
// the current month of a months-long trend ending at now.
func trendRange(now time.Time, months int) (time.Time, time.Time) {
	first := time.Date(now.Year(), now.Month()-time.Month(months-1), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC)
	return first, last
}

func monthKey(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

// MonthlyTrend totals income and expense for each of the trailing months
// calendar months up to and including the one containing now, oldest
// first. Months without activity are reported as zero.
func MonthlyTrend(txns []models.Transaction, now time.Time, months int) []MonthTotals {
	first, _ := trendRange(now, months)
	out := make([]MonthTotals, months)
	index := make(map[int]int, months)
	for i := range out {
		m := first.AddDate(0, i, 0)
		out[i] = MonthTotals{Month: m.Format(monthLabel), Income: decimal.Zero, Expense: decimal.Zero}
		index[monthKey(m)] = i
	}
	for _, t := range txns {
		i, ok := index[monthKey(t.TransactionDate)]
		if !ok {
			continue
		}
		switch t.Type {
		case models.TransactionTypeIncome:
			out[i].Income = out[i].Income.Add(t.Amount)
		case models.TransactionTypeExpense:
			out[i].Expense = out[i].Expense.Add(t.Amount)
		}
	}
	return out
}

type DashboardSummary struct {
	Balance        decimal.Decimal `json:"balance"`
	MonthlyIncome  decimal.Decimal `json:"monthly_income"`
	MonthlyExpense decimal.Decimal `json:"monthly_expense"`
	Savings        decimal.Decimal `json:"savings"`
}

// Dashboard summarises the calendar month containing now and adds the sum
// of all account balances.
func Dashboard(txns []models.Transaction, accounts []models.Account, now time.Time) DashboardSummary {
	current := monthKey(now)
	var month []models.Transaction
	for _, t := range txns {
		if monthKey(t.TransactionDate) == current {
			month = append(month, t)
		}
	}
	s := Summarize(month)
	balance := decimal.Zero
	for _, a := range accounts {
		balance = balance.Add(a.Balance)
	}
	return DashboardSummary{
		Balance:        balance,
		MonthlyIncome:  s.IncomeTotal,
		MonthlyExpense: s.ExpenseTotal,
		Savings:        s.NetBalance,
	}
}

// Report bundles the window's summary with the category, budget and goal
// views.
type Report struct {
	Summary
	CategoryBreakdown []CategorySpending `json:"category_breakdown"`
	BudgetComparison  []BudgetComparison `json:"budget_comparison"`
	Goals             []GoalSummary      `json:"goals_summary"`
}
