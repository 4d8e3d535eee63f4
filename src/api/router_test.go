package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fintrack-server/src/analytics"
	"fintrack-server/src/api"
	"fintrack-server/src/auth"
	"fintrack-server/src/db"
	"fintrack-server/src/db/memory"
	"fintrack-server/src/ledger"
	"fintrack-server/src/models"
	"fintrack-server/src/rules"

	"github.com/shopspring/decimal"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type testServer struct {
	t       *testing.T
	handler http.Handler
	store   *memory.Store
}

func newTestServer(t *testing.T, demo bool) *testServer {
	t.Helper()
	store := memory.New()
	blocklist, err := db.NewTokenBlocklist(store)
	if err != nil {
		t.Fatalf("NewTokenBlocklist: %v", err)
	}
	t.Cleanup(blocklist.Close)

	ledgerService := ledger.NewService(store)
	handler := api.NewRouter(api.Dependencies{
		Auth:           auth.NewService(store, auth.NewIssuer("router-test-secret", time.Hour, blocklist), false),
		Ledger:         ledgerService,
		Analytics:      analytics.NewService(ledgerService, func() time.Time { return now }),
		Rules:          rules.NewService(store, ledgerService),
		AllowedOrigins: []string{"http://localhost:5173"},
		DemoMode:       demo,
	})
	return &testServer{t: t, handler: handler, store: store}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// call performs a request, checks the status and decodes the body into out.
func (s *testServer) call(method, path, token string, body any, want int, out any) {
	s.t.Helper()
	rec := s.do(method, path, token, body)
	if rec.Code != want {
		s.t.Fatalf("%s %s: status = %d, want %d, body = %s", method, path, rec.Code, want, rec.Body.String())
	}
	if out != nil {
		if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
			s.t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
}

func (s *testServer) registerUser(username string) models.AuthResponse {
	s.t.Helper()
	var resp models.AuthResponse
	s.call(http.MethodPost, "/api/register", "", models.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "Secr3t!pass",
	}, http.StatusCreated, &resp)
	return resp
}

func (s *testServer) register(username string) string {
	s.t.Helper()
	return s.registerUser(username).Token
}

func (s *testServer) balance(token string, accountID int64) decimal.Decimal {
	s.t.Helper()
	var account models.Account
	s.call(http.MethodGet, fmt.Sprintf("/api/accounts/%d", accountID), token, nil, http.StatusOK, &account)
	return account.Balance
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, false)
	rec := s.do(http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("health = %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestLedgerFlow(t *testing.T) {
	s := newTestServer(t, false)
	token := s.register("alice")

	var account models.Account
	s.call(http.MethodPost, "/api/accounts", token, map[string]any{"name": "Checking", "type": "bank"}, http.StatusCreated, &account)

	var salary, food models.Category
	s.call(http.MethodPost, "/api/categories", token, map[string]any{"name": "Salary", "type": "income"}, http.StatusCreated, &salary)
	s.call(http.MethodPost, "/api/categories", token, map[string]any{"name": "Food", "type": "expense"}, http.StatusCreated, &food)

	var income, expense models.Transaction
	s.call(http.MethodPost, "/api/transactions", token, map[string]any{
		"account_id": account.ID, "category_id": salary.ID, "type": "income",
		"amount": "1000", "description": "June pay", "transaction_date": "2024-06-01",
	}, http.StatusCreated, &income)
	s.call(http.MethodPost, "/api/transactions", token, map[string]any{
		"account_id": account.ID, "category_id": food.ID, "type": "expense",
		"amount": "300", "description": "Groceries", "transaction_date": "2024-06-02",
	}, http.StatusCreated, &expense)

	if got := s.balance(token, account.ID); !got.Equal(decimal.NewFromInt(700)) {
		t.Fatalf("balance = %s, want 700", got)
	}

	s.call(http.MethodPut, fmt.Sprintf("/api/transactions/%d", expense.ID), token,
		map[string]any{"amount": "500"}, http.StatusOK, nil)
	if got := s.balance(token, account.ID); !got.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("balance after update = %s, want 500", got)
	}

	var goal models.Goal
	s.call(http.MethodPost, "/api/goals", token, map[string]any{
		"title": "Cushion", "target_amount": "500", "account_id": account.ID,
	}, http.StatusCreated, &goal)
	if goal.Status != models.GoalStatusCompleted || !goal.CurrentAmount.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("goal = %+v, want completed at 500", goal)
	}

	var budget models.Budget
	s.call(http.MethodPost, "/api/budgets", token, map[string]any{
		"category_id": food.ID, "amount": "800", "start_date": "2024-06-01", "end_date": "2024-06-30",
	}, http.StatusCreated, &budget)

	var dash analytics.DashboardSummary
	s.call(http.MethodGet, "/api/dashboard/summary", token, nil, http.StatusOK, &dash)
	if !dash.MonthlyIncome.Equal(decimal.NewFromInt(1000)) || !dash.MonthlyExpense.Equal(decimal.NewFromInt(500)) ||
		!dash.Savings.Equal(decimal.NewFromInt(500)) || !dash.Balance.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("dashboard = %+v", dash)
	}

	var comparison []analytics.BudgetComparison
	s.call(http.MethodGet, "/api/analytics/budgets?start_date=2024-06-01&end_date=2024-06-30", token, nil, http.StatusOK, &comparison)
	if len(comparison) != 1 || !comparison[0].Remaining.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("comparison = %+v", comparison)
	}

	var trend []analytics.MonthTotals
	s.call(http.MethodGet, "/api/dashboard/monthly-trend", token, nil, http.StatusOK, &trend)
	if len(trend) != analytics.TrendMonths || trend[len(trend)-1].Month != "Jun 2024" {
		t.Fatalf("trend = %+v", trend)
	}

	var recent []models.Transaction
	s.call(http.MethodGet, "/api/dashboard/recent", token, nil, http.StatusOK, &recent)
	if len(recent) != 2 || recent[0].ID != expense.ID {
		t.Fatalf("recent = %+v", recent)
	}

	var filtered []models.Transaction
	s.call(http.MethodGet, "/api/transactions?type=income", token, nil, http.StatusOK, &filtered)
	if len(filtered) != 1 || filtered[0].ID != income.ID {
		t.Fatalf("filtered = %+v", filtered)
	}

	s.call(http.MethodDelete, fmt.Sprintf("/api/transactions/%d", income.ID), token, nil, http.StatusNoContent, nil)
	if got := s.balance(token, account.ID); !got.Equal(decimal.NewFromInt(-500)) {
		t.Fatalf("balance after delete = %s, want -500", got)
	}

	var total map[string]decimal.Decimal
	s.call(http.MethodGet, "/api/balance", token, nil, http.StatusOK, &total)
	if !total["balance"].Equal(decimal.NewFromInt(-500)) {
		t.Fatalf("total balance = %v", total)
	}
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t, false)
	alice := s.register("alice")
	bob := s.register("bob")

	var account models.Account
	s.call(http.MethodPost, "/api/accounts", alice, map[string]any{"name": "Checking", "type": "bank"}, http.StatusCreated, &account)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"no token", http.MethodGet, "/api/accounts", "", nil, http.StatusUnauthorized},
		{"foreign account", http.MethodGet, fmt.Sprintf("/api/accounts/%d", account.ID), bob, nil, http.StatusForbidden},
		{"missing account", http.MethodGet, "/api/accounts/9999", alice, nil, http.StatusNotFound},
		{"bad id", http.MethodGet, "/api/accounts/abc", alice, nil, http.StatusBadRequest},
		{"bad json", http.MethodPost, "/api/accounts", alice, "not an object", http.StatusBadRequest},
		{"bad type", http.MethodPost, "/api/accounts", alice, map[string]any{"name": "x", "type": "crypto"}, http.StatusBadRequest},
		{"bad window", http.MethodGet, "/api/analytics/summary?start_date=2024-06-30&end_date=2024-06-01", alice, nil, http.StatusBadRequest},
		{"bad limit", http.MethodGet, "/api/transactions?limit=abc", alice, nil, http.StatusBadRequest},
		{"non-admin", http.MethodGet, "/api/admin/whitelisted-emails", alice, nil, http.StatusForbidden},
		{"plaid disabled", http.MethodGet, "/api/plaid/links", alice, nil, http.StatusNotFound},
		{"wrong password", http.MethodPost, "/api/login", "", map[string]string{"username": "alice", "password": "nope"}, http.StatusUnauthorized},
		{"duplicate user", http.MethodPost, "/api/register", "", models.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "Secr3t!pass"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(tt.method, tt.path, tt.token, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d, body = %s", rec.Code, tt.want, rec.Body.String())
			}
			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body["error"] == "" {
				t.Errorf("error body = %v (%v)", body, err)
			}
		})
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t, false)
	token := s.register("alice")

	s.call(http.MethodGet, "/api/user", token, nil, http.StatusOK, nil)
	s.call(http.MethodPost, "/api/logout", token, nil, http.StatusOK, nil)
	s.call(http.MethodGet, "/api/user", token, nil, http.StatusUnauthorized, nil)
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t, false)
	root := s.registerUser("root")
	if err := s.store.SetSuperAdmin(context.Background(), root.User.ID, true); err != nil {
		t.Fatalf("SetSuperAdmin: %v", err)
	}
	var login models.AuthResponse
	s.call(http.MethodPost, "/api/login", "", map[string]string{"username": "root", "password": "Secr3t!pass"}, http.StatusOK, &login)
	admin := login.Token

	var email models.WhitelistedEmail
	s.call(http.MethodPost, "/api/admin/whitelisted-emails", admin, map[string]string{"email": "Guest@Example.com"}, http.StatusCreated, &email)
	if email.Email != "guest@example.com" {
		t.Fatalf("email = %q", email.Email)
	}
	s.call(http.MethodPost, "/api/admin/whitelisted-emails", admin, map[string]string{"email": "guest@example.com"}, http.StatusConflict, nil)

	bob := s.registerUser("bob")
	s.call(http.MethodPost, fmt.Sprintf("/api/admin/user/lock/%d", bob.User.ID), admin, nil, http.StatusOK, nil)
	s.call(http.MethodPost, "/api/login", "", map[string]string{"username": "bob", "password": "Secr3t!pass"}, http.StatusForbidden, nil)
	s.call(http.MethodGet, "/api/user", bob.Token, nil, http.StatusForbidden, nil)
	s.call(http.MethodPost, fmt.Sprintf("/api/admin/user/unlock/%d", bob.User.ID), admin, nil, http.StatusOK, nil)
	s.call(http.MethodGet, "/api/user", bob.Token, nil, http.StatusOK, nil)
}

func TestDemoModeBlocksWrites(t *testing.T) {
	s := newTestServer(t, true)
	token := s.register("alice")
	s.call(http.MethodGet, "/api/accounts", token, nil, http.StatusOK, nil)
	s.call(http.MethodPost, "/api/accounts", token, map[string]any{"name": "Checking", "type": "bank"}, http.StatusForbidden, nil)
}
