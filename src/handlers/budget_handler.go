package handlers

import (
	"net/http"

	"fintrack-server/src/ledger"
	"fintrack-server/src/logging"
	"fintrack-server/src/middleware"

	"github.com/shopspring/decimal"
)

type budgetRequest struct {
	CategoryID *int64           `json:"category_id"`
	Amount     *decimal.Decimal `json:"amount"`
	StartDate  *string          `json:"start_date"`
	EndDate    *string          `json:"end_date"`
}

func CreateBudget(ledgerService *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		var req budgetRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, r, err, "failed to decode create budget request body", "user_id", userID)
			return
		}
		start, err := requiredDate("start_date", req.StartDate)
		if err != nil {
			respondError(w, r, err, "invalid budget start date", "user_id", userID)
			return
		}
		end, err := requiredDate("end_date", req.EndDate)
		if err != nil {
			respondError(w, r, err, "invalid budget end date", "user_id", userID)
			return
		}

		budget, err := ledgerService.CreateBudget(r.Context(), userID, ledger.BudgetInput{
			CategoryID: value(req.CategoryID),
			Amount:     value(req.Amount),
			StartDate:  start,
			EndDate:    end,
		})
		if err != nil {
			respondError(w, r, err, "failed to create budget", "user_id", userID)
			return
		}
		logging.FromContext(r.Context()).Info("budget created", "user_id", userID, "budget_id", budget.ID, "category_id", budget.CategoryID)
		writeJSON(w, http.StatusCreated, budget)
	}
}

func GetAllBudgets(ledgerService *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		budgets, err := ledgerService.ListBudgets(r.Context(), userID)
		if err != nil {
			respondError(w, r, err, "failed to list budgets", "user_id", userID)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(budgets))
	}
}

func GetBudgetByID(ledgerService *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		budgetID, err := pathID(r, "budget_id")
		if err != nil {
			respondError(w, r, err, "invalid budget id param", "user_id", userID)
			return
		}
		budget, err := ledgerService.GetBudget(r.Context(), userID, budgetID)
		if err != nil {
			respondError(w, r, err, "failed to get budget", "user_id", userID, "budget_id", budgetID)
			return
		}
		writeJSON(w, http.StatusOK, budget)
	}
}

func UpdateBudget(ledgerService *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		budgetID, err := pathID(r, "budget_id")
		if err != nil {
			respondError(w, r, err, "invalid budget id param", "user_id", userID)
			return
		}
		var req budgetRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, r, err, "failed to decode update budget request body", "user_id", userID)
			return
		}

		patch := ledger.BudgetPatch{CategoryID: req.CategoryID, Amount: req.Amount}
		if patch.StartDate, err = optionalDate("start_date", req.StartDate); err != nil {
			respondError(w, r, err, "invalid budget start date", "user_id", userID)
			return
		}
		if patch.EndDate, err = optionalDate("end_date", req.EndDate); err != nil {
			respondError(w, r, err, "invalid budget end date", "user_id", userID)
			return
		}

		budget, err := ledgerService.UpdateBudget(r.Context(), userID, budgetID, patch)
		if err != nil {
			respondError(w, r, err, "failed to update budget", "user_id", userID, "budget_id", budgetID)
			return
		}
		logging.FromContext(r.Context()).Info("budget updated", "user_id", userID, "budget_id", budgetID)
		writeJSON(w, http.StatusOK, budget)
	}
}

func DeleteBudget(ledgerService *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		budgetID, err := pathID(r, "budget_id")
		if err != nil {
			respondError(w, r, err, "invalid budget id param", "user_id", userID)
			return
		}
		if err := ledgerService.DeleteBudget(r.Context(), userID, budgetID); err != nil {
			respondError(w, r, err, "failed to delete budget", "user_id", userID, "budget_id", budgetID)
			return
		}
		logging.FromContext(r.Context()).Info("budget deleted", "user_id", userID, "budget_id", budgetID)
		w.WriteHeader(http.StatusNoContent)
	}
}
