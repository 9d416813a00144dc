package middleware

import (
	"net/http"
	"time"
)

type requestObserver interface {
	ObserveRequest(method string, route string, status int, took time.Duration)
}

// Metrics reports every request with the mux pattern it matched
// Has to wrap the mux directly, the pattern is known only after routing
func Metrics(o requestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)

			o.ObserveRequest(r.Method, r.Pattern, sw.status, time.Since(start))
		})
	}
}
