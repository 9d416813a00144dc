package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Request id is taken from the client when present, generated otherwise
const RequestIDHeader = "X-Request-Id"

const maxRequestIDLen = 64

type logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// statusWriter remembers what was sent to the client
type statusWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func newStatusWriter(w http.ResponseWriter) *statusWriter {
	return &statusWriter{ResponseWriter: w, status: http.StatusOK}
}

func (w *statusWriter) Write(p []byte) (int, error) {
	n, err := w.ResponseWriter.Write(p)
	w.size += n
	return n, err
}

func (w *statusWriter) WriteHeader(statusCode int) {
	w.status = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func requestID(r *http.Request) string {
	if id := r.Header.Get(RequestIDHeader); id != "" && len(id) <= maxRequestIDLen {
		return id
	}
	return uuid.NewString()
}

// LoggerMiddleware logs every request, server errors at warn level
// The request id is echoed back in response header
func LoggerMiddleware(l logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := requestID(r)
			w.Header().Set(RequestIDHeader, id)

			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)

			log := l.Info
			if sw.status >= http.StatusInternalServerError {
				log = l.Warn
			}
			log("http request",
				"request_id", id,
				"method", r.Method,
				"uri", r.RequestURI,
				"route", r.Pattern,
				"status", sw.status,
				"size", sw.size,
				"duration", time.Since(start),
			)
		})
	}
}
