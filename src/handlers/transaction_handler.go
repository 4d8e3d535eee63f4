package handlers

import (
	"net/http"
	"strconv"

	"fintrack-server/src/ledger"
	"fintrack-server/src/logging"
	"fintrack-server/src/middleware"
	"fintrack-server/src/models"
	"fintrack-server/src/util"
)

func transactionPatch(req models.TransactionRequest) (ledger.TransactionPatch, error) {
	patch := ledger.TransactionPatch{
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Description: req.Description,
	}
	if req.Type != nil {
		typ := models.TransactionType(*req.Type)
		patch.Type = &typ
	}
	if req.TransactionDate != nil {
		date, err := requiredDate("transaction_date", req.TransactionDate)
		if err != nil {
			return patch, err
		}
		patch.TransactionDate = &date
	}
	return patch, nil
}

func CreateTransaction(ledgerService *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		var req models.TransactionRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, r, err, "failed to decode create transaction request body", "user_id", userID)
			return
		}
		date, err := requiredDate("transaction_date", req.TransactionDate)
		if err != nil {
			respondError(w, r, err, "invalid transaction date", "user_id", userID)
			return
		}

		txn, err := ledgerService.CreateTransaction(r.Context(), userID, ledger.TransactionInput{
			AccountID:       value(req.AccountID),
			CategoryID:      value(req.CategoryID),
			Type:            models.TransactionType(value(req.Type)),
			Amount:          value(req.Amount),
			Description:     value(req.Description),
			TransactionDate: date,
		})
		if err != nil {
			respondError(w, r, err, "failed to create transaction", "user_id", userID)
			return
		}

		logging.FromContext(r.Context()).Info("transaction created",
			"user_id", userID, "transaction_id", txn.ID, "account_id", txn.AccountID)
		writeJSON(w, http.StatusCreated, txn)
	}
}

func transactionFilter(r *http.Request) (ledger.TransactionFilter, error) {
	var f ledger.TransactionFilter
	var err error
	if f.AccountID, err = util.QueryInt64(r, "account_id"); err != nil {
		return f, badRequest("account_id", err)
	}
	if f.CategoryID, err = util.QueryInt64(r, "category_id"); err != nil {
		return f, badRequest("category_id", err)
	}
	w, err := parseWindow(r)
	if err != nil {
		return f, err
	}
	f.Start, f.End = w.Start, w.End

	q := r.URL.Query()
	f.Type = models.TransactionType(q.Get("type"))
	if raw := q.Get("limit"); raw != "" {
		if f.Limit, err = strconv.Atoi(raw); err != nil {
			return f, &ledger.ValidationError{Field: "limit", Message: "must be an integer"}
		}
	}
	return f, nil
}

func GetAllTransactions(ledgerService *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		filter, err := transactionFilter(r)
		if err != nil {
			respondError(w, r, err, "invalid transaction filter", "user_id", userID)
			return
		}
		txns, err := ledgerService.ListTransactions(r.Context(), userID, filter)
		if err != nil {
			respondError(w, r, err, "failed to list transactions", "user_id", userID)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(txns))
	}
}

func GetTransactionByID(ledgerService *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		transactionID, err := pathID(r, "transaction_id")
		if err != nil {
			respondError(w, r, err, "invalid transaction id param", "user_id", userID)
			return
		}
		txn, err := ledgerService.GetTransaction(r.Context(), userID, transactionID)
		if err != nil {
			respondError(w, r, err, "failed to get transaction", "user_id", userID, "transaction_id", transactionID)
			return
		}
		writeJSON(w, http.StatusOK, txn)
	}
}

func UpdateTransaction(ledgerService *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		transactionID, err := pathID(r, "transaction_id")
		if err != nil {
			respondError(w, r, err, "invalid transaction id param", "user_id", userID)
			return
		}
		var req models.TransactionRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, r, err, "failed to decode update transaction request body", "user_id", userID)
			return
		}
		patch, err := transactionPatch(req)
		if err != nil {
			respondError(w, r, err, "invalid transaction update", "user_id", userID, "transaction_id", transactionID)
			return
		}

		txn, err := ledgerService.UpdateTransaction(r.Context(), userID, transactionID, patch)
		if err != nil {
			respondError(w, r, err, "failed to update transaction", "user_id", userID, "transaction_id", transactionID)
			return
		}
		logging.FromContext(r.Context()).Info("transaction updated", "user_id", userID, "transaction_id", transactionID)
		writeJSON(w, http.StatusOK, txn)
	}
}

func DeleteTransaction(ledgerService *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		transactionID, err := pathID(r, "transaction_id")
		if err != nil {
			respondError(w, r, err, "invalid transaction id param", "user_id", userID)
			return
		}
		if err := ledgerService.DeleteTransaction(r.Context(), userID, transactionID); err != nil {
			respondError(w, r, err, "failed to delete transaction", "user_id", userID, "transaction_id", transactionID)
			return
		}
		logging.FromContext(r.Context()).Info("transaction deleted", "user_id", userID, "transaction_id", transactionID)
		w.WriteHeader(http.StatusNoContent)
	}
}
