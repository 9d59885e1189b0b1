package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestLogger(t *testing.T) {
	t.Run("attaches a request logger to the context", func(t *testing.T) {
		var buf bytes.Buffer
		base := slog.New(slog.NewJSONHandler(&buf, nil))

		var sawLogger bool
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sawLogger = LoggerFromContext(r.Context()) != nil
			w.WriteHeader(http.StatusNoContent)
		})

		handler := RequestLogger(base)(inner)
		req := httptest.NewRequest(http.MethodGet, "/slots?link_id=link-1", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if !sawLogger {
			t.Fatalf("expected a logger in the request context")
		}
		logged := buf.String()
		if !strings.Contains(logged, "request started") || !strings.Contains(logged, "request completed") {
			t.Fatalf("expected lifecycle log lines, got %q", logged)
		}
		if !strings.Contains(logged, `"path":"/slots"`) {
			t.Fatalf("expected the request path logged, got %q", logged)
		}
	})
}
