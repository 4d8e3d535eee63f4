package handlers

import (
	"net/http"

	"fintrack-server/src/analytics"
	"fintrack-server/src/middleware"
	"fintrack-server/src/models"
)

// windowed serves an aggregate that takes the optional date window.
func windowed[T any](name string, fn func(r *http.Request, ownerID int64, w analytics.Window) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		window, err := parseWindow(r)
		if err != nil {
			respondError(w, r, err, "invalid date window", "user_id", userID, "aggregate", name)
			return
		}
		out, err := fn(r, userID, window)
		if err != nil {
			respondError(w, r, err, "failed to compute "+name, "user_id", userID)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// unwindowed serves an aggregate over the caller's full history or the
// current period.
func unwindowed[T any](name string, fn func(r *http.Request, ownerID int64) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		out, err := fn(r, userID)
		if err != nil {
			respondError(w, r, err, "failed to compute "+name, "user_id", userID)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func Summary(svc *analytics.Service) http.HandlerFunc {
	return windowed("summary", func(r *http.Request, ownerID int64, w analytics.Window) (analytics.Summary, error) {
		return svc.Summary(r.Context(), ownerID, w)
	})
}

func SpendingByCategory(svc *analytics.Service) http.HandlerFunc {
	return windowed("spending by category", func(r *http.Request, ownerID int64, w analytics.Window) ([]analytics.CategorySpending, error) {
		out, err := svc.SpendingByCategory(r.Context(), ownerID, w)
		return nonNil(out), err
	})
}

func BudgetComparison(svc *analytics.Service) http.HandlerFunc {
	return windowed("budget comparison", func(r *http.Request, ownerID int64, w analytics.Window) ([]analytics.BudgetComparison, error) {
		out, err := svc.BudgetComparison(r.Context(), ownerID, w)
		return nonNil(out), err
	})
}

func Report(svc *analytics.Service) http.HandlerFunc {
	return windowed("report", func(r *http.Request, ownerID int64, w analytics.Window) (*analytics.Report, error) {
		return svc.Report(r.Context(), ownerID, w)
	})
}

func GoalProgress(svc *analytics.Service) http.HandlerFunc {
	return unwindowed("goal progress", func(r *http.Request, ownerID int64) ([]analytics.GoalSummary, error) {
		out, err := svc.GoalProgress(r.Context(), ownerID)
		return nonNil(out), err
	})
}

func MonthlyTrend(svc *analytics.Service) http.HandlerFunc {
	return unwindowed("monthly trend", func(r *http.Request, ownerID int64) ([]analytics.MonthTotals, error) {
		return svc.MonthlyTrend(r.Context(), ownerID)
	})
}

func DashboardSummary(svc *analytics.Service) http.HandlerFunc {
	return unwindowed("dashboard summary", func(r *http.Request, ownerID int64) (analytics.DashboardSummary, error) {
		return svc.Dashboard(r.Context(), ownerID)
	})
}

func RecentTransactions(svc *analytics.Service) http.HandlerFunc {
	return unwindowed("recent transactions", func(r *http.Request, ownerID int64) ([]models.Transaction, error) {
		out, err := svc.Recent(r.Context(), ownerID)
		return nonNil(out), err
	})
}
