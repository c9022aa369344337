package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/cloo-solutions/searchbench/internal/api"
	"github.com/cloo-solutions/searchbench/internal/domain"
)

type contextKey string

// BearerToken rejects requests whose Authorization header does not carry
// token. An empty token disables the check.
func BearerToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.Error(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				api.Error(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			presented := strings.TrimPrefix(authHeader, "Bearer ")
			if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				api.HandleError(w, domain.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
