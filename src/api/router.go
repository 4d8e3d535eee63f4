package api

import (
	"log/slog"
	"net/http"
	"time"

	"fintrack-server/src/analytics"
	"fintrack-server/src/auth"
	"fintrack-server/src/handlers"
	"fintrack-server/src/ledger"
	"fintrack-server/src/logging"
	"fintrack-server/src/middleware"
	"fintrack-server/src/plaid"
	"fintrack-server/src/rules"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Dependencies are the services the router wires into handlers. Plaid is
// nil when bank import is not configured.
type Dependencies struct {
	Auth      *auth.Service
	Ledger    *ledger.Service
	Analytics *analytics.Service
	Rules     *rules.Service
	Plaid     *plaid.Service

	Logger         *slog.Logger
	AllowedOrigins []string
	DemoMode       bool
	RequestTimeout time.Duration
}

func NewRouter(deps Dependencies) *chi.Mux {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(logging.Middleware(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORSMiddleware(deps.AllowedOrigins))
	r.Use(chimw.Timeout(timeout))

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.DemoModeMiddleware(deps.DemoMode))
			r.Post("/login", handlers.Login(deps.Auth))
			r.Post("/register", handlers.Register(deps.Auth))
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuthMiddleware(deps.Auth))
			r.Use(middleware.DemoModeMiddleware(deps.DemoMode))

			// User
			r.Post("/logout", handlers.Logout(deps.Auth))
			r.Get("/user", handlers.GetUser(deps.Auth))
			r.Post("/user/change-password", handlers.ChangePassword(deps.Auth))

			// Accounts
			r.Post("/accounts", handlers.CreateAccount(deps.Ledger))
			r.Get("/accounts", handlers.GetAllAccounts(deps.Ledger))
			r.Get("/accounts/{account_id}", handlers.GetAccountByID(deps.Ledger))
			r.Put("/accounts/{account_id}", handlers.UpdateAccount(deps.Ledger))
			r.Delete("/accounts/{account_id}", handlers.DeleteAccount(deps.Ledger))
			r.Post("/accounts/{account_id}/reconcile", handlers.ReconcileAccount(deps.Ledger))
			r.Get("/balance", handlers.GetBalance(deps.Ledger))

			// Categories
			r.Post("/categories", handlers.CreateCategory(deps.Ledger))
			r.Get("/categories", handlers.GetAllCategories(deps.Ledger))
			r.Get("/categories/{category_id}", handlers.GetCategoryByID(deps.Ledger))
			r.Put("/categories/{category_id}", handlers.UpdateCategory(deps.Ledger))
			r.Delete("/categories/{category_id}", handlers.DeleteCategory(deps.Ledger))

			// Transactions
			r.Post("/transactions", handlers.CreateTransaction(deps.Ledger))
			r.Get("/transactions", handlers.GetAllTransactions(deps.Ledger))
			r.Get("/transactions/{transaction_id}", handlers.GetTransactionByID(deps.Ledger))
			r.Put("/transactions/{transaction_id}", handlers.UpdateTransaction(deps.Ledger))
			r.Delete("/transactions/{transaction_id}", handlers.DeleteTransaction(deps.Ledger))

			// Budgets
			r.Post("/budgets", handlers.CreateBudget(deps.Ledger))
			r.Get("/budgets", handlers.GetAllBudgets(deps.Ledger))
			r.Get("/budgets/{budget_id}", handlers.GetBudgetByID(deps.Ledger))
			r.Put("/budgets/{budget_id}", handlers.UpdateBudget(deps.Ledger))
			r.Delete("/budgets/{budget_id}", handlers.DeleteBudget(deps.Ledger))

			// Goals
			r.Post("/goals", handlers.CreateGoal(deps.Ledger))
			r.Get("/goals", handlers.GetAllGoals(deps.Ledger))
			r.Get("/goals/{goal_id}", handlers.GetGoalByID(deps.Ledger))
			r.Put("/goals/{goal_id}", handlers.UpdateGoal(deps.Ledger))
			r.Delete("/goals/{goal_id}", handlers.DeleteGoal(deps.Ledger))

			// Dashboard
			r.Get("/dashboard/summary", handlers.DashboardSummary(deps.Analytics))
			r.Get("/dashboard/recent", handlers.RecentTransactions(deps.Analytics))
			r.Get("/dashboard/spending-by-category", handlers.SpendingByCategory(deps.Analytics))
			r.Get("/dashboard/monthly-trend", handlers.MonthlyTrend(deps.Analytics))

			// Analytics
			r.Get("/analytics/summary", handlers.Summary(deps.Analytics))
			r.Get("/analytics/budgets", handlers.BudgetComparison(deps.Analytics))
			r.Get("/analytics/goals", handlers.GoalProgress(deps.Analytics))
			r.Get("/reports", handlers.Report(deps.Analytics))

			// Transaction Rules
			r.Post("/transaction-rules", handlers.CreateTransactionRule(deps.Rules))
			r.Post("/transaction-rules/trigger", handlers.TriggerTransactionRules(deps.Rules))
			r.Get("/transaction-rules", handlers.GetAllTransactionRules(deps.Rules))
			r.Get("/transaction-rules/{rule_id}", handlers.GetTransactionRuleByID(deps.Rules))
			r.Put("/transaction-rules/{rule_id}", handlers.UpdateTransactionRule(deps.Rules))
			r.Delete("/transaction-rules/{rule_id}", handlers.DeleteTransactionRule(deps.Rules))

			// Plaid
			if deps.Plaid != nil {
				r.Post("/plaid/link-token", handlers.CreateLinkToken(deps.Plaid))
				r.Post("/plaid/links", handlers.CreatePlaidLink(deps.Plaid))
				r.Get("/plaid/links", handlers.GetPlaidLinks(deps.Plaid))
				r.Post("/plaid/links/{link_id}/sync", handlers.SyncPlaidLink(deps.Plaid))
				r.Delete("/plaid/links/{link_id}", handlers.DeletePlaidLink(deps.Plaid))
			}
		})

		// Super Admin Routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuthMiddleware(deps.Auth))
			r.Use(middleware.SuperAdminMiddleware)

			r.Post("/admin/user/lock/{user_id}", handlers.LockUser(deps.Auth))
			r.Post("/admin/user/unlock/{user_id}", handlers.UnlockUser(deps.Auth))

			r.Post("/admin/whitelisted-emails", handlers.CreateWhitelistedEmail(deps.Auth))
			r.Get("/admin/whitelisted-emails", handlers.GetAllWhitelistedEmails(deps.Auth))
			r.Delete("/admin/whitelisted-emails/{email_id}", handlers.DeleteWhitelistedEmail(deps.Auth))
		})
	})

	return r
}
