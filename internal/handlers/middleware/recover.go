package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/tanoush/storefront/internal/handlers/render"
)

// Recoverer turns a panic into 500 response
func Recoverer(l errorLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				l.Error("panic recovered", "panic", rec, "uri", r.RequestURI, "stack", string(debug.Stack()))
				render.Error(w, fmt.Errorf("panic: %v", rec), nil)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
