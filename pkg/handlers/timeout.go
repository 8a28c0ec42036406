package handlers

import (
	"context"
	"net/http"
	"time"
)

// WithTimeout bounds every request's context. Adapter calls inherit the
// deadline, so a stuck data source cannot hold a handler open forever.
func WithTimeout(next http.Handler, timeout time.Duration) http.Handler {
	if timeout <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
