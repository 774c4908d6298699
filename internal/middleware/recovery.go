package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"fare-backend/pkg/utils"
)

// PanicRecovery converts a handler panic into a 500 response instead of
// killing the connection. The ledger never panics on bad input, so anything
// landing here is a programming error worth the full stack trace.
func PanicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[Panic] %s %s: %v\n%s", r.Method, r.URL.Path, err, debug.Stack())
				utils.Error(w, http.StatusInternalServerError, "Internal server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
