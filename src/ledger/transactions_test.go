package ledger_test

import (
	"errors"
	"testing"
	"time"

	"fintrack-server/src/ledger"
	"fintrack-server/src/models"
)

func TestUpdateTransactionAppliesDelta(t *testing.T) {
	f := newFixture(t)

	f.income(t, "1000")
	assertBalance(t, f, f.account.ID, "1000")

	expense := f.expense(t, "300")
	assertBalance(t, f, f.account.ID, "700")

	amount := dec("500")
	if _, err := f.svc.UpdateTransaction(f.ctx, alice, expense.ID, ledger.TransactionPatch{Amount: &amount}); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	assertBalance(t, f, f.account.ID, "500")
}

func TestUpdateTransactionTypeFlip(t *testing.T) {
	f := newFixture(t)
	f.income(t, "1000")
	txn := f.expense(t, "200")

	income := models.TransactionTypeIncome
	if _, err := f.svc.UpdateTransaction(f.ctx, alice, txn.ID, ledger.TransactionPatch{Type: &income}); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	assertBalance(t, f, f.account.ID, "1200")
}

func TestUpdateTransactionMovesBetweenAccounts(t *testing.T) {
	f := newFixture(t)
	savings, err := f.svc.CreateAccount(f.ctx, alice, ledger.AccountInput{Name: "Savings", Type: models.AccountTypeBank})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	txn := f.income(t, "250")

	amount := dec("300")
	patch := ledger.TransactionPatch{AccountID: &savings.ID, Amount: &amount}
	if _, err := f.svc.UpdateTransaction(f.ctx, alice, txn.ID, patch); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	assertBalance(t, f, f.account.ID, "0")
	assertBalance(t, f, savings.ID, "300")
}

func TestDeleteThenRecreateRestoresBalance(t *testing.T) {
	f := newFixture(t)
	f.income(t, "1000")
	txn := f.expense(t, "123.45")
	before := f.balance(t, f.account.ID)

	if err := f.svc.DeleteTransaction(f.ctx, alice, txn.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	assertBalance(t, f, f.account.ID, "1000")

	f.expense(t, "123.45")
	if got := f.balance(t, f.account.ID); !got.Equal(before) {
		t.Fatalf("balance after recreate = %s, want %s", got, before)
	}
}

func TestBalanceMatchesTransactionSum(t *testing.T) {
	f := newFixture(t)
	var created []*models.Transaction
	for _, amount := range []string{"10", "20.5", "30.25"} {
		created = append(created, f.income(t, amount))
		created = append(created, f.expense(t, amount))
	}
	created = append(created, f.income(t, "99.99"))

	amount := dec("5")
	if _, err := f.svc.UpdateTransaction(f.ctx, alice, created[1].ID, ledger.TransactionPatch{Amount: &amount}); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	if err := f.svc.DeleteTransaction(f.ctx, alice, created[2].ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}

	txns, err := f.svc.ListTransactions(f.ctx, alice, ledger.TransactionFilter{AccountID: &f.account.ID})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	sum := dec("0")
	for _, txn := range txns {
		sum = sum.Add(txn.SignedAmount())
	}
	if got := f.balance(t, f.account.ID); !got.Equal(sum) {
		t.Fatalf("balance = %s, signed sum = %s", got, sum)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	f := newFixture(t)
	base := ledger.TransactionInput{
		AccountID:       f.account.ID,
		CategoryID:      f.food.ID,
		Type:            models.TransactionTypeExpense,
		Amount:          dec("10"),
		TransactionDate: day(2024, time.January, 1),
	}

	tests := []struct {
		name   string
		mutate func(*ledger.TransactionInput)
		field  string
	}{
		{"zero amount", func(in *ledger.TransactionInput) { in.Amount = dec("0") }, "amount"},
		{"negative amount", func(in *ledger.TransactionInput) { in.Amount = dec("-5") }, "amount"},
		{"unknown type", func(in *ledger.TransactionInput) { in.Type = "transfer" }, "type"},
		{"missing date", func(in *ledger.TransactionInput) { in.TransactionDate = time.Time{} }, "transaction_date"},
		{"missing account", func(in *ledger.TransactionInput) { in.AccountID = 0 }, "account_id"},
		{"sub-cent amount", func(in *ledger.TransactionInput) { in.Amount = dec("0.004") }, "amount"},
		{"fractional cent", func(in *ledger.TransactionInput) { in.Amount = dec("12.345") }, "amount"},
		{"amount too large", func(in *ledger.TransactionInput) { in.Amount = dec("99999999999999999") }, "amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			_, err := f.svc.CreateTransaction(f.ctx, alice, in)
			var ve *ledger.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if ve.Field != tt.field {
				t.Errorf("field = %q, want %q", ve.Field, tt.field)
			}
		})
	}
	assertBalance(t, f, f.account.ID, "0")
}

func TestTransactionOwnership(t *testing.T) {
	f := newFixture(t)
	txn := f.income(t, "100")

	if _, err := f.svc.GetTransaction(f.ctx, bob, txn.ID); !errors.Is(err, ledger.ErrUnauthorized) {
		t.Errorf("GetTransaction by other user: err = %v, want ErrUnauthorized", err)
	}
	if err := f.svc.DeleteTransaction(f.ctx, bob, txn.ID); !errors.Is(err, ledger.ErrUnauthorized) {
		t.Errorf("DeleteTransaction by other user: err = %v, want ErrUnauthorized", err)
	}
	if _, err := f.svc.GetTransaction(f.ctx, alice, 9999); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("GetTransaction missing: err = %v, want ErrNotFound", err)
	}

	// Bob cannot book against Alice's account even with his own category.
	bobFood, err := f.svc.CreateCategory(f.ctx, bob, "Food", models.CategoryTypeExpense)
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	_, err = f.svc.CreateTransaction(f.ctx, bob, ledger.TransactionInput{
		AccountID:       f.account.ID,
		CategoryID:      bobFood.ID,
		Type:            models.TransactionTypeExpense,
		Amount:          dec("1"),
		TransactionDate: day(2024, time.January, 1),
	})
	if !errors.Is(err, ledger.ErrUnauthorized) {
		t.Errorf("CreateTransaction on foreign account: err = %v, want ErrUnauthorized", err)
	}
	assertBalance(t, f, f.account.ID, "100")
}

func TestListTransactionsFilters(t *testing.T) {
	f := newFixture(t)
	f.income(t, "100")
	f.expense(t, "40")
	f.expense(t, "10")

	expense := models.TransactionTypeExpense
	got, err := f.svc.ListTransactions(f.ctx, alice, ledger.TransactionFilter{Type: expense})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}

	got, err = f.svc.ListTransactions(f.ctx, alice, ledger.TransactionFilter{Limit: 1})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}

	start, end := day(2024, time.April, 1), day(2024, time.March, 1)
	if _, err := f.svc.ListTransactions(f.ctx, alice, ledger.TransactionFilter{Start: &start, End: &end}); !ledger.IsValidation(err) {
		t.Errorf("inverted window: err = %v, want ValidationError", err)
	}

	got, err = f.svc.ListTransactions(f.ctx, bob, ledger.TransactionFilter{})
	if err != nil || len(got) != 0 {
		t.Errorf("other user sees %d transactions, err = %v", len(got), err)
	}
}

func TestRecategorizeKeepsBalance(t *testing.T) {
	f := newFixture(t)
	txn := f.expense(t, "75")
	if err := f.svc.RecategorizeTransaction(f.ctx, alice, txn.ID, f.salary.ID); err != nil {
		t.Fatalf("RecategorizeTransaction: %v", err)
	}
	assertBalance(t, f, f.account.ID, "-75")
	got, err := f.svc.GetTransaction(f.ctx, alice, txn.ID)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got.CategoryID != f.salary.ID {
		t.Errorf("category = %d, want %d", got.CategoryID, f.salary.ID)
	}
}

func TestFindByExternalID(t *testing.T) {
	f := newFixture(t)
	ext := "plaid-123"
	_, err := f.svc.CreateTransaction(f.ctx, alice, ledger.TransactionInput{
		AccountID:       f.account.ID,
		CategoryID:      f.food.ID,
		Type:            models.TransactionTypeExpense,
		Amount:          dec("12"),
		TransactionDate: day(2024, time.May, 2),
		ExternalID:      &ext,
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if _, err := f.svc.FindByExternalID(f.ctx, alice, ext); err != nil {
		t.Errorf("FindByExternalID: %v", err)
	}
	if _, err := f.svc.FindByExternalID(f.ctx, bob, ext); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("FindByExternalID other user: err = %v, want ErrNotFound", err)
	}
}

func TestCreateTransactionAcceptsTrailingZeros(t *testing.T) {
	f := newFixture(t)
	f.expense(t, "4.500")
	assertBalance(t, f, f.account.ID, "-4.5")
}

func TestBalanceOverflowRollsBack(t *testing.T) {
	f := newFixture(t)
	f.income(t, "9999999999999")

	_, err := f.svc.CreateTransaction(f.ctx, alice, ledger.TransactionInput{
		AccountID:       f.account.ID,
		CategoryID:      f.salary.ID,
		Type:            models.TransactionTypeIncome,
		Amount:          dec("1"),
		TransactionDate: day(2024, time.March, 11),
	})
	if !ledger.IsValidation(err) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	assertBalance(t, f, f.account.ID, "9999999999999")
	txns, err := f.svc.ListTransactions(f.ctx, alice, ledger.TransactionFilter{})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("len = %d, want 1 after rollback", len(txns))
	}
}
