package handlers

import (
	"net/http"

	"fintrack-server/src/auth"
	"fintrack-server/src/logging"
	"fintrack-server/src/middleware"
)

func GetUser(authService *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		user, err := authService.CurrentUser(r.Context(), userID)
		if err != nil {
			respondError(w, r, err, "failed to get user", "user_id", userID)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func ChangePassword(authService *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		var req struct {
			CurrentPassword string `json:"current_password"`
			NewPassword     string `json:"new_password"`
		}
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, r, err, "failed to decode change password request body", "user_id", userID)
			return
		}

		if err := authService.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
			respondError(w, r, err, "failed to change password", "user_id", userID)
			return
		}

		logging.FromContext(r.Context()).Info("password changed", "user_id", userID)
		writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
	}
}

func LockUser(authService *auth.Service) http.HandlerFunc {
	return setLocked(authService, true)
}

func UnlockUser(authService *auth.Service) http.HandlerFunc {
	return setLocked(authService, false)
}

func setLocked(authService *auth.Service, locked bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID := middleware.UserID(r.Context())
		targetID, err := pathID(r, "user_id")
		if err != nil {
			respondError(w, r, err, "invalid user id param")
			return
		}

		if err := authService.SetLocked(r.Context(), targetID, locked); err != nil {
			respondError(w, r, err, "failed to change user lock state", "admin_id", adminID, "user_id", targetID)
			return
		}

		logging.FromContext(r.Context()).Info("admin changed user lock state", "admin_id", adminID, "user_id", targetID, "locked", locked)
		writeJSON(w, http.StatusOK, map[string]any{"user_id": targetID, "locked": locked})
	}
}
