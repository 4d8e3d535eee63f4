package ledger_test

import (
	"context"
	"testing"
	"time"

	"fintrack-server/src/db/memory"
	"fintrack-server/src/ledger"
	"fintrack-server/src/models"

	"github.com/shopspring/decimal"
)

const (
	alice int64 = 1
	bob   int64 = 2
)

type fixture struct {
	ctx     context.Context
	store   *memory.Store
	svc     *ledger.Service
	account *models.Account
	salary  *models.Category
	food    *models.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	svc := ledger.NewService(store)

	account, err := svc.CreateAccount(ctx, alice, ledger.AccountInput{Name: "Checking", Type: models.AccountTypeBank})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	salary, err := svc.CreateCategory(ctx, alice, "Salary", models.CategoryTypeIncome)
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	food, err := svc.CreateCategory(ctx, alice, "Food", models.CategoryTypeExpense)
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	return &fixture{ctx: ctx, store: store, svc: svc, account: account, salary: salary, food: food}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (f *fixture) income(t *testing.T, amount string) *models.Transaction {
	t.Helper()
	return f.add(t, f.account.ID, f.salary.ID, models.TransactionTypeIncome, amount)
}

func (f *fixture) expense(t *testing.T, amount string) *models.Transaction {
	t.Helper()
	return f.add(t, f.account.ID, f.food.ID, models.TransactionTypeExpense, amount)
}

func (f *fixture) add(t *testing.T, accountID, categoryID int64, typ models.TransactionType, amount string) *models.Transaction {
	t.Helper()
	txn, err := f.svc.CreateTransaction(f.ctx, alice, ledger.TransactionInput{
		AccountID:       accountID,
		CategoryID:      categoryID,
		Type:            typ,
		Amount:          dec(amount),
		Description:     "test",
		TransactionDate: day(2024, time.March, 10),
	})
	if err != nil {
		t.Fatalf("CreateTransaction(%s %s): %v", typ, amount, err)
	}
	return txn
}

func (f *fixture) balance(t *testing.T, accountID int64) decimal.Decimal {
	t.Helper()
	a, err := f.svc.GetAccount(f.ctx, alice, accountID)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	return a.Balance
}

func assertBalance(t *testing.T, f *fixture, accountID int64, want string) {
	t.Helper()
	if got := f.balance(t, accountID); !got.Equal(dec(want)) {
		t.Fatalf("balance of account %d = %s, want %s", accountID, got, want)
	}
}
