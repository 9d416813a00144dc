package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type logCall struct {
	level string
	msg   string
	args  map[string]any
}

type recordingLogger struct {
	calls []logCall
}

func (l *recordingLogger) record(level string, msg string, v []any) {
	args := make(map[string]any, len(v)/2)
	for i := 0; i+1 < len(v); i += 2 {
		args[v[i].(string)] = v[i+1]
	}
	l.calls = append(l.calls, logCall{level, msg, args})
}

func (l *recordingLogger) Info(msg string, v ...any)  { l.record("info", msg, v) }
func (l *recordingLogger) Warn(msg string, v ...any)  { l.record("warn", msg, v) }
func (l *recordingLogger) Error(msg string, v ...any) { l.record("error", msg, v) }

func serveLogged(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, logCall) {
	t.Helper()

	logger := &recordingLogger{}
	rr := httptest.NewRecorder()
	LoggerMiddleware(logger)(h).ServeHTTP(rr, req)

	require.Len(t, logger.calls, 1, "every request is logged once")
	return rr, logger.calls[0]
}

func TestLoggerMiddleware(t *testing.T) {
	t.Run("logs request with route", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			_, _ = w.Write([]byte("hi"))
		})

		rr, call := serveLogged(t, mux, httptest.NewRequest(http.MethodGet, "/api/products/42", nil))

		require.Equal(t, http.StatusTeapot, rr.Code)
		require.Equal(t, "info", call.level)
		require.Equal(t, "http request", call.msg)
		require.Equal(t, "GET", call.args["method"])
		require.Equal(t, "/api/products/42", call.args["uri"])
		require.Equal(t, "GET /api/products/{id}", call.args["route"], "route is the matched mux pattern")
		require.Equal(t, http.StatusTeapot, call.args["status"])
		require.Equal(t, 2, call.args["size"])
		require.Contains(t, call.args, "duration")
	})

	t.Run("generates request id", func(t *testing.T) {
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

		rr, call := serveLogged(t, h, httptest.NewRequest(http.MethodGet, "/", nil))

		id := rr.Header().Get(RequestIDHeader)
		require.NoError(t, uuid.Validate(id), "generated id should be uuid")
		require.Equal(t, id, call.args["request_id"])
		require.Equal(t, http.StatusOK, call.args["status"], "status defaults to 200 when not written")
	})

	t.Run("keeps client request id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "trace-1")

		rr, call := serveLogged(t, http.NotFoundHandler(), req)

		require.Equal(t, "trace-1", rr.Header().Get(RequestIDHeader))
		require.Equal(t, "trace-1", call.args["request_id"])
		require.Equal(t, "", call.args["route"], "unmatched request has no route")
	})

	t.Run("replaces oversized client request id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("a", maxRequestIDLen+1))

		rr, _ := serveLogged(t, http.NotFoundHandler(), req)

		require.NoError(t, uuid.Validate(rr.Header().Get(RequestIDHeader)))
	})

	t.Run("server errors logged as warnings", func(t *testing.T) {
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, call := serveLogged(t, h, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, "warn", call.level)
		require.Equal(t, http.StatusBadGateway, call.args["status"])
	})
}
