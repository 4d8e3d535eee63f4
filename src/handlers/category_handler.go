package handlers

import (
	"net/http"

	"fintrack-server/src/ledger"
	"fintrack-server/src/logging"
	"fintrack-server/src/middleware"
	"fintrack-server/src/models"
)

type categoryRequest struct {
	Name *string `json:"name"`
	Type *string `json:"type"`
}

func CreateCategory(ledgerService *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		var req categoryRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, r, err, "failed to decode create category request body", "user_id", userID)
			return
		}
		category, err := ledgerService.CreateCategory(r.Context(), userID, value(req.Name), models.CategoryType(value(req.Type)))
		if err != nil {
			respondError(w, r, err, "failed to create category", "user_id", userID)
			return
		}
		logging.FromContext(r.Context()).Info("category created", "user_id", userID, "category_id", category.ID)
		writeJSON(w, http.StatusCreated, category)
	}
}

func GetAllCategories(ledgerService *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		categories, err := ledgerService.ListCategories(r.Context(), userID)
		if err != nil {
			respondError(w, r, err, "failed to list categories", "user_id", userID)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(categories))
	}
}

func GetCategoryByID(ledgerService *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		categoryID, err := pathID(r, "category_id")
		if err != nil {
			respondError(w, r, err, "invalid category id param", "user_id", userID)
			return
		}
		category, err := ledgerService.GetCategory(r.Context(), userID, categoryID)
		if err != nil {
			respondError(w, r, err, "failed to get category", "user_id", userID, "category_id", categoryID)
			return
		}
		writeJSON(w, http.StatusOK, category)
	}
}

func UpdateCategory(ledgerService *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		categoryID, err := pathID(r, "category_id")
		if err != nil {
			respondError(w, r, err, "invalid category id param", "user_id", userID)
			return
		}
		var req categoryRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, r, err, "failed to decode update category request body", "user_id", userID)
			return
		}

		patch := ledger.CategoryPatch{Name: req.Name}
		if req.Type != nil {
			typ := models.CategoryType(*req.Type)
			patch.Type = &typ
		}
		category, err := ledgerService.UpdateCategory(r.Context(), userID, categoryID, patch)
		if err != nil {
			respondError(w, r, err, "failed to update category", "user_id", userID, "category_id", categoryID)
			return
		}
		logging.FromContext(r.Context()).Info("category updated", "user_id", userID, "category_id", categoryID)
		writeJSON(w, http.StatusOK, category)
	}
}

// DeleteCategory also removes the category's transactions, budgets and
// rules.
func DeleteCategory(ledgerService *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		categoryID, err := pathID(r, "category_id")
		if err != nil {
			respondError(w, r, err, "invalid category id param", "user_id", userID)
			return
		}
		if err := ledgerService.DeleteCategory(r.Context(), userID, categoryID); err != nil {
			respondError(w, r, err, "failed to delete category", "user_id", userID, "category_id", categoryID)
			return
		}
		logging.FromContext(r.Context()).Info("category deleted", "user_id", userID, "category_id", categoryID)
		w.WriteHeader(http.StatusNoContent)
	}
}
