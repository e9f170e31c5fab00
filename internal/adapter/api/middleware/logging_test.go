package middleware

import (
	"bufio"
	"bytes"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
)

func TestLogging(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{"Success Logs At Info", http.StatusOK, "level=INFO"},
		{"Client Error Logs At Warn", http.StatusNotFound, "level=WARN"},
		{"Server Error Logs At Error", http.StatusInternalServerError, "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte("body"))
			}))

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/logs", nil))

			out := buf.String()
			if !strings.Contains(out, tt.wantLevel) {
				t.Errorf("expected %s in log output, got: %s", tt.wantLevel, out)
			}
			if !strings.Contains(out, "status="+strconv.Itoa(tt.status)) {
				t.Errorf("expected status %d in log output, got: %s", tt.status, out)
			}
			if !strings.Contains(out, "path=/api/logs") {
				t.Errorf("expected request path in log output, got: %s", out)
			}
			if !strings.Contains(out, "bytes=4") {
				t.Errorf("expected body size in log output, got: %s", out)
			}
			if !strings.Contains(out, "component=http") {
				t.Errorf("expected component tag in log output, got: %s", out)
			}
		})
	}
}

type hijackableRecorder struct {
	*httptest.ResponseRecorder
}

func (h *hijackableRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return nil, nil, nil
}

// The WebSocket upgrade needs http.Hijacker to survive the wrapper.
func TestLogging_PreservesHijacker(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := w.(http.Hijacker); !ok {
			t.Error("wrapped writer does not implement http.Hijacker")
		}
	}))

	rec := &hijackableRecorder{httptest.NewRecorder()}
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
}
