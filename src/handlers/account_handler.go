package handlers

import (
	"net/http"

	"fintrack-server/src/ledger"
	"fintrack-server/src/logging"
	"fintrack-server/src/middleware"
	"fintrack-server/src/models"

	"github.com/shopspring/decimal"
)

type accountRequest struct {
	Name           *string          `json:"name"`
	Type           *string          `json:"type"`
	OpeningBalance *decimal.Decimal `json:"opening_balance"`
}

func CreateAccount(ledgerService *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		var req accountRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, r, err, "failed to decode create account request body", "user_id", userID)
			return
		}

		account, err := ledgerService.CreateAccount(r.Context(), userID, ledger.AccountInput{
			Name:           value(req.Name),
			Type:           models.AccountType(value(req.Type)),
			OpeningBalance: value(req.OpeningBalance),
		})
		if err != nil {
			respondError(w, r, err, "failed to create account", "user_id", userID)
			return
		}

		logging.FromContext(r.Context()).Info("account created", "user_id", userID, "account_id", account.ID)
		writeJSON(w, http.StatusCreated, account)
	}
}

func GetAllAccounts(ledgerService *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		accounts, err := ledgerService.ListAccounts(r.Context(), userID)
		if err != nil {
			respondError(w, r, err, "failed to list accounts", "user_id", userID)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(accounts))
	}
}

func GetAccountByID(ledgerService *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		accountID, err := pathID(r, "account_id")
		if err != nil {
			respondError(w, r, err, "invalid account id param", "user_id", userID)
			return
		}
		account, err := ledgerService.GetAccount(r.Context(), userID, accountID)
		if err != nil {
			respondError(w, r, err, "failed to get account", "user_id", userID, "account_id", accountID)
			return
		}
		writeJSON(w, http.StatusOK, account)
	}
}

func UpdateAccount(ledgerService *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		accountID, err := pathID(r, "account_id")
		if err != nil {
			respondError(w, r, err, "invalid account id param", "user_id", userID)
			return
		}
		var req accountRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, r, err, "failed to decode update account request body", "user_id", userID)
			return
		}

		patch := ledger.AccountPatch{Name: req.Name, OpeningBalance: req.OpeningBalance}
		if req.Type != nil {
			typ := models.AccountType(*req.Type)
			patch.Type = &typ
		}
		account, err := ledgerService.UpdateAccount(r.Context(), userID, accountID, patch)
		if err != nil {
			respondError(w, r, err, "failed to update account", "user_id", userID, "account_id", accountID)
			return
		}

		logging.FromContext(r.Context()).Info("account updated", "user_id", userID, "account_id", accountID)
		writeJSON(w, http.StatusOK, account)
	}
}

func DeleteAccount(ledgerService *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		accountID, err := pathID(r, "account_id")
		if err != nil {
			respondError(w, r, err, "invalid account id param", "user_id", userID)
			return
		}
		if err := ledgerService.DeleteAccount(r.Context(), userID, accountID); err != nil {
			respondError(w, r, err, "failed to delete account", "user_id", userID, "account_id", accountID)
			return
		}
		logging.FromContext(r.Context()).Info("account deleted", "user_id", userID, "account_id", accountID)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ReconcileAccount recomputes the balance from the account's transactions.
func ReconcileAccount(ledgerService *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		accountID, err := pathID(r, "account_id")
		if err != nil {
			respondError(w, r, err, "invalid account id param", "user_id", userID)
			return
		}
		account, err := ledgerService.ReconcileAccount(r.Context(), userID, accountID)
		if err != nil {
			respondError(w, r, err, "failed to reconcile account", "user_id", userID, "account_id", accountID)
			return
		}
		logging.FromContext(r.Context()).Info("account reconciled", "user_id", userID, "account_id", accountID, "balance", account.Balance)
		writeJSON(w, http.StatusOK, account)
	}
}

func GetBalance(ledgerService *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		total, err := ledgerService.TotalBalance(r.Context(), userID)
		if err != nil {
			respondError(w, r, err, "failed to compute balance", "user_id", userID)
			return
		}
		writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"balance": total})
	}
}

// nonNil makes empty lists encode as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
