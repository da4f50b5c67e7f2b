package auth

import (
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// BearerFromRequest extracts the bearer credential from the Authorization
// header, falling back to the auth_token query parameter. The query fallback
// exists because full-page browser redirects cannot carry custom headers.
func BearerFromRequest(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return r.URL.Query().Get("auth_token")
}

// RequireUser middleware validates the bearer token and stores the resolved
// user id in the request context. Unauthenticated requests get 401.
func RequireUser(database *gorm.DB) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := VerifyToken(database, BearerFromRequest(r))
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error": "Not authenticated"}`))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// OptionalUser middleware resolves the user id when a valid bearer token is
// present but lets anonymous requests through. Used on read endpoints whose
// results vary by viewer tier.
func OptionalUser(database *gorm.DB) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, err := VerifyToken(database, BearerFromRequest(r)); err == nil {
				r = r.WithContext(WithUserID(r.Context(), userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}
