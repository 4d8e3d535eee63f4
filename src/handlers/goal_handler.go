package handlers

import (
	"net/http"

	"fintrack-server/src/ledger"
	"fintrack-server/src/logging"
	"fintrack-server/src/middleware"
	"fintrack-server/src/models"

	"github.com/shopspring/decimal"
)

type goalRequest struct {
	AccountID     *int64           `json:"account_id"`
	UnlinkAccount bool             `json:"unlink_account"`
	Title         *string          `json:"title"`
	TargetAmount  *decimal.Decimal `json:"target_amount"`
	CurrentAmount *decimal.Decimal `json:"current_amount"`
	Deadline      *string          `json:"deadline"`
	Status        *string          `json:"status"`
}

func CreateGoal(ledgerService *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		var req goalRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, r, err, "failed to decode create goal request body", "user_id", userID)
			return
		}
		deadline, err := optionalDate("deadline", req.Deadline)
		if err != nil {
			respondError(w, r, err, "invalid goal deadline", "user_id", userID)
			return
		}

		goal, err := ledgerService.CreateGoal(r.Context(), userID, ledger.GoalInput{
			AccountID:     req.AccountID,
			Title:         value(req.Title),
			TargetAmount:  value(req.TargetAmount),
			CurrentAmount: value(req.CurrentAmount),
			Deadline:      deadline,
		})
		if err != nil {
			respondError(w, r, err, "failed to create goal", "user_id", userID)
			return
		}
		logging.FromContext(r.Context()).Info("goal created", "user_id", userID, "goal_id", goal.ID)
		writeJSON(w, http.StatusCreated, goal)
	}
}

func GetAllGoals(ledgerService *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		goals, err := ledgerService.ListGoals(r.Context(), userID)
		if err != nil {
			respondError(w, r, err, "failed to list goals", "user_id", userID)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(goals))
	}
}

func GetGoalByID(ledgerService *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		goalID, err := pathID(r, "goal_id")
		if err != nil {
			respondError(w, r, err, "invalid goal id param", "user_id", userID)
			return
		}
		goal, err := ledgerService.GetGoal(r.Context(), userID, goalID)
		if err != nil {
			respondError(w, r, err, "failed to get goal", "user_id", userID, "goal_id", goalID)
			return
		}
		writeJSON(w, http.StatusOK, goal)
	}
}

func UpdateGoal(ledgerService *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		goalID, err := pathID(r, "goal_id")
		if err != nil {
			respondError(w, r, err, "invalid goal id param", "user_id", userID)
			return
		}
		var req goalRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, r, err, "failed to decode update goal request body", "user_id", userID)
			return
		}

		patch := ledger.GoalPatch{
			AccountID:     req.AccountID,
			UnlinkAccount: req.UnlinkAccount,
			Title:         req.Title,
			TargetAmount:  req.TargetAmount,
			CurrentAmount: req.CurrentAmount,
		}
		if patch.Deadline, err = optionalDate("deadline", req.Deadline); err != nil {
			respondError(w, r, err, "invalid goal deadline", "user_id", userID)
			return
		}
		if req.Status != nil {
			status := models.GoalStatus(*req.Status)
			patch.Status = &status
		}

		goal, err := ledgerService.UpdateGoal(r.Context(), userID, goalID, patch)
		if err != nil {
			respondError(w, r, err, "failed to update goal", "user_id", userID, "goal_id", goalID)
			return
		}
		logging.FromContext(r.Context()).Info("goal updated", "user_id", userID, "goal_id", goalID, "status", goal.Status)
		writeJSON(w, http.StatusOK, goal)
	}
}

func DeleteGoal(ledgerService *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		goalID, err := pathID(r, "goal_id")
		if err != nil {
			respondError(w, r, err, "invalid goal id param", "user_id", userID)
			return
		}
		if err := ledgerService.DeleteGoal(r.Context(), userID, goalID); err != nil {
			respondError(w, r, err, "failed to delete goal", "user_id", userID, "goal_id", goalID)
			return
		}
		logging.FromContext(r.Context()).Info("goal deleted", "user_id", userID, "goal_id", goalID)
		w.WriteHeader(http.StatusNoContent)
	}
}
