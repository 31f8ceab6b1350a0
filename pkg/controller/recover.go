package controller

import (
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"domaincheck/pkg/logger"
)

// WithRecovery returns a middleware that turns handler panics into a 500
// response instead of tearing down the connection, logging the stack.
func WithRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error(r.Context(), "handler panicked",
					zap.Any("panic", rec),
					zap.String("stack", string(debug.Stack())))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"internal server error"}`))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
