package plaid_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"fintrack-server/src/db/memory"
	"fintrack-server/src/ledger"
	"fintrack-server/src/models"
	"fintrack-server/src/plaid"
	"fintrack-server/src/rules"

	"github.com/shopspring/decimal"
)

type fakeFeed struct {
	pages   []*plaid.SyncPage
	cursors []string
	removed []string
}

func (f *fakeFeed) CreateLinkToken(context.Context, int64) (string, error) {
	return "link-sandbox-token", nil
}

func (f *fakeFeed) ExchangePublicToken(_ context.Context, publicToken string) (*plaid.Item, error) {
	return &plaid.Item{ItemID: "item-1", AccessToken: "access-" + publicToken, InstitutionName: "First Platypus Bank"}, nil
}

func (f *fakeFeed) SyncTransactions(_ context.Context, _, cursor string) (*plaid.SyncPage, error) {
	f.cursors = append(f.cursors, cursor)
	if len(f.pages) == 0 {
		return &plaid.SyncPage{NextCursor: cursor}, nil
	}
	page := f.pages[0]
	f.pages = f.pages[1:]
	return page, nil
}

func (f *fakeFeed) RemoveItem(_ context.Context, accessToken string) error {
	f.removed = append(f.removed, accessToken)
	return nil
}

type fixture struct {
	ctx      context.Context
	feed     *fakeFeed
	store    *memory.Store
	ledger   *ledger.Service
	rules    *rules.Service
	svc      *plaid.Service
	account  *models.Account
	fallback *models.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{ctx: context.Background(), feed: &fakeFeed{}, store: memory.New()}
	f.ledger = ledger.NewService(f.store)
	f.rules = rules.NewService(f.store, f.ledger)
	f.svc = plaid.NewService(f.feed, f.store, f.ledger, f.rules)

	var err error
	f.account, err = f.ledger.CreateAccount(f.ctx, 1, ledger.AccountInput{Name: "Checking", Type: models.AccountTypeBank})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	f.fallback, err = f.ledger.CreateCategory(f.ctx, 1, "Uncategorized", models.CategoryTypeExpense)
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	return f
}

func (f *fixture) link(t *testing.T) *models.PlaidLink {
	t.Helper()
	link, err := f.svc.CreateLink(f.ctx, 1, plaid.LinkInput{
		PublicToken:    "public-1",
		PlaidAccountID: "plaid-acc",
		AccountID:      f.account.ID,
		CategoryID:     f.fallback.ID,
	})
	if err != nil {
		t.Fatalf("CreateLink: %v", err)
	}
	return link
}

func (f *fixture) balance(t *testing.T) decimal.Decimal {
	t.Helper()
	a, err := f.ledger.GetAccount(f.ctx, 1, f.account.ID)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	return a.Balance
}

func feedTxn(id, amount string) plaid.FeedTransaction {
	return plaid.FeedTransaction{
		ID:        id,
		AccountID: "plaid-acc",
		Name:      "txn " + id,
		Amount:    decimal.RequireFromString(amount),
		Date:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateLink(t *testing.T) {
	f := newFixture(t)
	link := f.link(t)
	if link.ItemID != "item-1" || link.AccessToken != "access-public-1" || link.InstitutionName != "First Platypus Bank" {
		t.Fatalf("unexpected link: %+v", link)
	}

	_, err := f.svc.CreateLink(f.ctx, 2, plaid.LinkInput{
		PublicToken:    "public-2",
		PlaidAccountID: "plaid-acc",
		AccountID:      f.account.ID,
		CategoryID:     f.fallback.ID,
	})
	if !errors.Is(err, ledger.ErrUnauthorized) {
		t.Fatalf("foreign account: err = %v, want ErrUnauthorized", err)
	}

	_, err = f.svc.CreateLink(f.ctx, 1, plaid.LinkInput{AccountID: f.account.ID, CategoryID: f.fallback.ID})
	if !ledger.IsValidation(err) {
		t.Fatalf("missing token: err = %v, want validation error", err)
	}
}

func TestSyncAppliesAddedModifiedRemoved(t *testing.T) {
	f := newFixture(t)
	link := f.link(t)

	f.feed.pages = []*plaid.SyncPage{
		{
			Added: []plaid.FeedTransaction{
				feedTxn("t1", "-1000"),
				feedTxn("t2", "300"),
				{ID: "other", AccountID: "someone-else", Amount: decimal.NewFromInt(5)},
			},
			NextCursor: "c1",
			HasMore:    true,
		},
		{
			Modified:   []plaid.FeedTransaction{feedTxn("t2", "500")},
			NextCursor: "c2",
		},
	}

	res, err := f.svc.Sync(f.ctx, 1, link.ID)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if res.Added != 2 || res.Modified != 1 || res.Skipped != 1 {
		t.Fatalf("result = %+v", res)
	}
	if got := f.balance(t); !got.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("balance = %s, want 500", got)
	}
	if strings.Join(f.feed.cursors, ",") != ",c1" {
		t.Fatalf("cursors = %v", f.feed.cursors)
	}

	stored, err := f.svc.GetLink(f.ctx, 1, link.ID)
	if err != nil {
		t.Fatalf("GetLink: %v", err)
	}
	if stored.SyncCursor != "c2" {
		t.Fatalf("cursor = %q, want c2", stored.SyncCursor)
	}

	f.feed.pages = []*plaid.SyncPage{{Removed: []string{"t2", "never-imported"}, NextCursor: "c3"}}
	res, err = f.svc.Sync(f.ctx, 1, link.ID)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if res.Removed != 1 || res.Skipped != 1 {
		t.Fatalf("result = %+v", res)
	}
	if got := f.balance(t); !got.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("balance = %s, want 1000", got)
	}
	if f.feed.cursors[len(f.feed.cursors)-1] != "c2" {
		t.Fatalf("second sync started from %q, want c2", f.feed.cursors[len(f.feed.cursors)-1])
	}
}

func TestSyncSkipsDuplicates(t *testing.T) {
	f := newFixture(t)
	link := f.link(t)

	f.feed.pages = []*plaid.SyncPage{{Added: []plaid.FeedTransaction{feedTxn("t1", "20")}, NextCursor: "c1"}}
	if _, err := f.svc.Sync(f.ctx, 1, link.ID); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	f.feed.pages = []*plaid.SyncPage{{Added: []plaid.FeedTransaction{feedTxn("t1", "20")}, NextCursor: "c2"}}
	res, err := f.svc.Sync(f.ctx, 1, link.ID)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if res.Added != 0 || res.Skipped != 1 {
		t.Fatalf("result = %+v", res)
	}
	if got := f.balance(t); !got.Equal(decimal.NewFromInt(-20)) {
		t.Fatalf("balance = %s, want -20", got)
	}
}

func TestSyncUsesRules(t *testing.T) {
	f := newFixture(t)
	link := f.link(t)
	coffee, err := f.ledger.CreateCategory(f.ctx, 1, "Coffee", models.CategoryTypeExpense)
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	_, err = f.rules.Create(f.ctx, 1, rules.RuleInput{
		Name:       "coffee",
		Conditions: json.RawMessage(`{"field":"description","op":"contains","value":"coffee"}`),
		CategoryID: coffee.ID,
	})
	if err != nil {
		t.Fatalf("Create rule: %v", err)
	}

	txn := feedTxn("t1", "4.50")
	txn.Name = "Blue Bottle Coffee"
	f.feed.pages = []*plaid.SyncPage{{Added: []plaid.FeedTransaction{txn, feedTxn("t2", "12")}, NextCursor: "c1"}}
	if _, err := f.svc.Sync(f.ctx, 1, link.ID); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	got, err := f.ledger.FindByExternalID(f.ctx, 1, "t1")
	if err != nil {
		t.Fatalf("FindByExternalID: %v", err)
	}
	if got.CategoryID != coffee.ID {
		t.Fatalf("t1 category = %d, want %d", got.CategoryID, coffee.ID)
	}
	other, err := f.ledger.FindByExternalID(f.ctx, 1, "t2")
	if err != nil {
		t.Fatalf("FindByExternalID: %v", err)
	}
	if other.CategoryID != f.fallback.ID {
		t.Fatalf("t2 category = %d, want fallback %d", other.CategoryID, f.fallback.ID)
	}
}

func TestSyncForeignLink(t *testing.T) {
	f := newFixture(t)
	link := f.link(t)
	if _, err := f.svc.Sync(f.ctx, 2, link.ID); !errors.Is(err, ledger.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestDeleteLinkRemovesUnusedItem(t *testing.T) {
	f := newFixture(t)
	link := f.link(t)
	if err := f.svc.DeleteLink(f.ctx, 1, link.ID); err != nil {
		t.Fatalf("DeleteLink: %v", err)
	}
	if len(f.feed.removed) != 1 || f.feed.removed[0] != "access-public-1" {
		t.Fatalf("removed = %v", f.feed.removed)
	}
	if _, err := f.svc.GetLink(f.ctx, 1, link.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSyncFollowsMovedTransaction(t *testing.T) {
	f := newFixture(t)
	link := f.link(t)
	cash, err := f.ledger.CreateAccount(f.ctx, 1, ledger.AccountInput{Name: "Cash", Type: models.AccountTypeCash})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	f.feed.pages = []*plaid.SyncPage{{Added: []plaid.FeedTransaction{feedTxn("p1", "40")}, NextCursor: "c1"}}
	if _, err := f.svc.Sync(f.ctx, 1, link.ID); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	imported, err := f.ledger.FindByExternalID(f.ctx, 1, "p1")
	if err != nil {
		t.Fatalf("FindByExternalID: %v", err)
	}
	if _, err := f.ledger.UpdateTransaction(f.ctx, 1, imported.ID, ledger.TransactionPatch{AccountID: &cash.ID}); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}

	f.feed.pages = []*plaid.SyncPage{{
		Added:      []plaid.FeedTransaction{feedTxn("p1", "40")},
		Modified:   []plaid.FeedTransaction{feedTxn("p1", "45")},
		NextCursor: "c2",
	}}
	res, err := f.svc.Sync(f.ctx, 1, link.ID)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if res.Added != 0 || res.Modified != 1 || res.Skipped != 1 {
		t.Fatalf("result = %+v", res)
	}

	txns, err := f.ledger.ListTransactions(f.ctx, 1, ledger.TransactionFilter{})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txns) != 1 || txns[0].AccountID != cash.ID {
		t.Fatalf("transactions = %+v, want one on cash", txns)
	}
	if got := f.balance(t); !got.IsZero() {
		t.Fatalf("checking balance = %s, want 0", got)
	}
	moved, err := f.ledger.GetAccount(f.ctx, 1, cash.ID)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if !moved.Balance.Equal(decimal.NewFromInt(-45)) {
		t.Fatalf("cash balance = %s, want -45", moved.Balance)
	}
}
