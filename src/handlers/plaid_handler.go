package handlers

import (
	"net/http"

	"fintrack-server/src/logging"
	"fintrack-server/src/middleware"
	"fintrack-server/src/plaid"
)

func CreateLinkToken(plaidService *plaid.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		token, err := plaidService.CreateLinkToken(r.Context(), userID)
		if err != nil {
			respondError(w, r, err, "plaid link token creation failed", "user_id", userID)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"link_token": token})
	}
}

// CreatePlaidLink exchanges the public token from Plaid Link and binds
// the chosen Plaid account to a local account.
func CreatePlaidLink(plaidService *plaid.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		var req plaid.LinkInput
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, r, err, "failed to decode create plaid link request body", "user_id", userID)
			return
		}
		link, err := plaidService.CreateLink(r.Context(), userID, req)
		if err != nil {
			respondError(w, r, err, "failed to create plaid link", "user_id", userID)
			return
		}
		writeJSON(w, http.StatusCreated, link)
	}
}

func GetPlaidLinks(plaidService *plaid.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		links, err := plaidService.ListLinks(r.Context(), userID)
		if err != nil {
			respondError(w, r, err, "failed to list plaid links", "user_id", userID)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(links))
	}
}

func SyncPlaidLink(plaidService *plaid.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		linkID, err := pathID(r, "link_id")
		if err != nil {
			respondError(w, r, err, "invalid link id param", "user_id", userID)
			return
		}
		result, err := plaidService.Sync(r.Context(), userID, linkID)
		if err != nil {
			respondError(w, r, err, "failed to sync plaid transactions", "user_id", userID, "link_id", linkID)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func DeletePlaidLink(plaidService *plaid.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		linkID, err := pathID(r, "link_id")
		if err != nil {
			respondError(w, r, err, "invalid link id param", "user_id", userID)
			return
		}
		if err := plaidService.DeleteLink(r.Context(), userID, linkID); err != nil {
			respondError(w, r, err, "failed to delete plaid link", "user_id", userID, "link_id", linkID)
			return
		}
		logging.FromContext(r.Context()).Info("plaid link deleted", "user_id", userID, "link_id", linkID)
		w.WriteHeader(http.StatusNoContent)
	}
}
