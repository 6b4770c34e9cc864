package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

// captureLogs routes the default logger into a buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestLogger(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		partial bool
		cache   string
		status  int
		level   string
	}{
		{"page view", "/about", false, "", http.StatusOK, "INFO"},
		{"partial navigation", "/contact", true, "", http.StatusOK, "INFO"},
		{"cached page", "/", false, "HIT", http.StatusOK, "INFO"},
		{"chunk", "/assets/vendor.js", false, "", http.StatusOK, "DEBUG"},
		{"missing page", "/missing", false, "", http.StatusNotFound, "INFO"},
		{"rejected form", "/contact", false, "", http.StatusUnprocessableEntity, "WARN"},
		{"failure", "/api/contact", false, "", http.StatusInternalServerError, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t)
			handler := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.cache != "" {
					w.Header().Set("X-Cache", tt.cache)
				}
				w.WriteHeader(tt.status)
				w.Write([]byte("body"))
			}))

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.partial {
				req.Header.Set("X-Partial", "true")
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.status {
				t.Errorf("status: got %d, want %d", rr.Code, tt.status)
			}

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("log line %q: %v", buf.String(), err)
			}
			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %s", entry["level"], tt.level)
			}
			if entry["path"] != tt.path || entry["status"] != float64(tt.status) {
				t.Errorf("path/status = %v/%v", entry["path"], entry["status"])
			}
			if entry["bytes"] != float64(4) {
				t.Errorf("bytes = %v, want 4", entry["bytes"])
			}
			if _, ok := entry["partial"]; ok != tt.partial {
				t.Errorf("partial logged = %v, want %v", ok, tt.partial)
			}
			if got, _ := entry["cache"].(string); got != tt.cache {
				t.Errorf("cache = %q, want %q", got, tt.cache)
			}
		})
	}
}

func TestResponseWriter(t *testing.T) {
	tests := []struct {
		name   string
		write  func(rw *responseWriter)
		status int
		bytes  int
	}{
		{"implicit 200", func(rw *responseWriter) { rw.Write([]byte("toast")) }, http.StatusOK, 5},
		{"first header wins", func(rw *responseWriter) {
			rw.WriteHeader(http.StatusSeeOther)
			rw.WriteHeader(http.StatusInternalServerError)
		}, http.StatusSeeOther, 0},
		{"header then body", func(rw *responseWriter) {
			rw.WriteHeader(http.StatusConflict)
			rw.Write([]byte("in flight"))
			rw.Write([]byte("!"))
		}, http.StatusConflict, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rw := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}
			tt.write(rw)
			if rw.statusCode != tt.status || rw.bytes != tt.bytes {
				t.Errorf("got %d/%d bytes, want %d/%d", rw.statusCode, rw.bytes, tt.status, tt.bytes)
			}
			if !rw.written {
				t.Error("written should be set")
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromCtx(r.Context())
	}))

	t.Run("generates an id", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		if _, err := uuid.Parse(seen); err != nil {
			t.Fatalf("context id %q is not a uuid: %v", seen, err)
		}
		if got := rr.Header().Get(RequestIDHeader); got != seen {
			t.Errorf("response header %q, context %q", got, seen)
		}
	})

	t.Run("reuses a well-formed incoming id", func(t *testing.T) {
		incoming := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, incoming)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if seen != incoming {
			t.Errorf("got %q, want %q", seen, incoming)
		}
	})

	t.Run("replaces a malformed incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "<script>")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if seen == "<script>" {
			t.Error("malformed id should be replaced")
		}
		if _, err := uuid.Parse(seen); err != nil {
			t.Errorf("replacement %q is not a uuid", seen)
		}
	})
}

func TestResponseWriterUnwrap(t *testing.T) {
	rr := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rr}
	if rw.Unwrap() != rr {
		t.Error("Unwrap should return the wrapped writer")
	}
}
