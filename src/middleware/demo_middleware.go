package middleware

import (
	"net/http"
)

// DemoModeMiddleware makes the API read-only for everyone but super
// admins. It must run after JWTAuthMiddleware to see the caller's role.
func DemoModeMiddleware(isDemo bool) func(http.Handler) http.Handler {
	allowedPosts := map[string]bool{
		"/api/login":    true,
		"/api/register": true,
		"/api/logout":   true,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isDemo || r.Method == http.MethodGet || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			if claims := Claims(r.Context()); claims != nil && claims.SuperAdmin {
				next.ServeHTTP(w, r)
				return
			}
			if r.Method == http.MethodPost && allowedPosts[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			writeError(w, http.StatusForbidden, "demo mode: only GET requests are allowed")
		})
	}
}
