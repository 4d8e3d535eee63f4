package handlers

import (
	"net/http"

	"fintrack-server/src/auth"
	"fintrack-server/src/logging"
)

func CreateWhitelistedEmail(authService *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
		}
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, r, err, "failed to decode create whitelisted email request body")
			return
		}

		created, err := authService.WhitelistEmail(r.Context(), req.Email)
		if err != nil {
			respondError(w, r, err, "failed to create whitelisted email", "email", req.Email)
			return
		}

		logging.FromContext(r.Context()).Info("whitelisted email created", "email_id", created.ID, "email", created.Email)
		writeJSON(w, http.StatusCreated, created)
	}
}

func GetAllWhitelistedEmails(authService *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		emails, err := authService.WhitelistedEmails(r.Context())
		if err != nil {
			respondError(w, r, err, "failed to list whitelisted emails")
			return
		}
		writeJSON(w, http.StatusOK, emails)
	}
}

func DeleteWhitelistedEmail(authService *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "email_id")
		if err != nil {
			respondError(w, r, err, "invalid whitelisted email id param")
			return
		}
		if err := authService.RemoveWhitelistedEmail(r.Context(), id); err != nil {
			respondError(w, r, err, "failed to delete whitelisted email", "email_id", id)
			return
		}
		logging.FromContext(r.Context()).Info("whitelisted email deleted", "email_id", id)
		w.WriteHeader(http.StatusNoContent)
	}
}
