package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"fintrack-server/src/auth"
	"fintrack-server/src/logging"
)

type contextKey string

const claimsKey contextKey = "claims"

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// Authenticator verifies a bearer token. *auth.Service implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// ParseTokenFromRequest extracts and validates the bearer token of the
// request.
func ParseTokenFromRequest(r *http.Request, authn Authenticator) (*auth.Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, auth.ErrInvalidToken
	}
	return authn.Authenticate(r.Context(), strings.TrimPrefix(header, "Bearer "))
}

func JWTAuthMiddleware(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := ParseTokenFromRequest(r, authn)
			switch {
			case errors.Is(err, auth.ErrInvalidToken):
				writeError(w, http.StatusUnauthorized, "invalid or missing token")
				return
			case errors.Is(err, auth.ErrLocked):
				writeError(w, http.StatusForbidden, "account is locked")
				return
			case err != nil:
				logging.FromContext(r.Context()).Error("failed to authenticate request", "err", err)
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			ctx := WithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func SuperAdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := Claims(r.Context())
		if claims == nil || !claims.SuperAdmin {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// Claims returns the verified token claims, or nil on public routes.
func Claims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// UserID returns the authenticated user's id, or 0 on public routes.
func UserID(ctx context.Context) int64 {
	if claims := Claims(ctx); claims != nil {
		return claims.UserID
	}
	return 0
}
