package middleware

import (
	"fmt"
	"net/http"

	"github.com/cloo-solutions/searchbench/internal/api"
	"github.com/cloo-solutions/searchbench/internal/domain"
)

// LimitBody rejects requests whose declared length exceeds limit and caps
// the bytes a handler can read from the rest. A non-positive limit
// disables it.
func LimitBody(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				api.HandleError(w, fmt.Errorf("%w: %d bytes exceeds %d", domain.ErrBodyTooLarge, r.ContentLength, limit))
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
