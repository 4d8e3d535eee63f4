package handlers

import (
	"net/http"

	"fintrack-server/src/auth"
	"fintrack-server/src/logging"
	"fintrack-server/src/middleware"
	"fintrack-server/src/models"
)

func Register(authService *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, r, err, "failed to decode register request body")
			return
		}

		resp, err := authService.Register(r.Context(), req)
		if err != nil {
			respondError(w, r, err, "registration failed", "username", req.Username, "email", req.Email)
			return
		}

		logging.FromContext(r.Context()).Info("successful registration", "user_id", resp.User.ID, "username", resp.User.Username)
		writeJSON(w, http.StatusCreated, resp)
	}
}

func Login(authService *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var credentials struct {
			UsernameOrEmail string `json:"username"`
			Password        string `json:"password"`
		}
		if err := decodeJSON(r, &credentials); err != nil {
			respondError(w, r, err, "failed to decode login request body")
			return
		}

		resp, err := authService.Login(r.Context(), credentials.UsernameOrEmail, credentials.Password)
		if err != nil {
			respondError(w, r, err, "login failed", "login", credentials.UsernameOrEmail, "remote_addr", r.RemoteAddr)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func Logout(authService *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := middleware.Claims(r.Context())
		if err := authService.Logout(r.Context(), claims); err != nil {
			respondError(w, r, err, "failed to log out", "user_id", claims.UserID)
			return
		}
		logging.FromContext(r.Context()).Info("user logged out", "user_id", claims.UserID)
		writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
	}
}
