package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock for the limiter.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(t *testing.T, limit int, window time.Duration, opts ...RateLimiterOption) (*RateLimiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(limit, window, opts...)
	rl.now = clock.now
	t.Cleanup(rl.Stop)
	return rl, clock
}

func allowed(rl *RateLimiter, key string) bool {
	ok, _ := rl.allow(key)
	return ok
}

func TestRateLimiterAllow(t *testing.T) {
	rl, _ := newTestLimiter(t, 3, time.Second)

	for i := 0; i < 3; i++ {
		if !allowed(rl, "test-ip") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	ok, retry := rl.allow("test-ip")
	if ok {
		t.Error("4th request should be rate-limited")
	}
	if retry <= 0 || retry > time.Second {
		t.Errorf("retry = %s, want within the window", retry)
	}

	if !allowed(rl, "other-ip") {
		t.Error("different IP should be allowed")
	}
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	rl, clock := newTestLimiter(t, 4, time.Minute)

	for i := 0; i < 4; i++ {
		allowed(rl, "ip")
	}
	if allowed(rl, "ip") {
		t.Fatal("limit reached, should be denied")
	}

	// A quarter into the next window, 3 of the 4 old requests still count.
	clock.advance(75 * time.Second)
	if !allowed(rl, "ip") {
		t.Error("one slot should have freed up")
	}
	ok, retry := rl.allow("ip")
	if ok {
		t.Error("window still full, should be denied")
	}
	// 4*(1-e/60s)+1+1 <= 4 once e >= 30s; 15s in, 15s to go.
	if retry != 15*time.Second {
		t.Errorf("retry = %s, want 15s", retry)
	}

	clock.advance(15 * time.Second)
	if !allowed(rl, "ip") {
		t.Error("should be allowed once the old window decayed")
	}
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	rl, clock := newTestLimiter(t, 2, 100*time.Millisecond)

	allowed(rl, "test-ip")
	allowed(rl, "test-ip")
	if allowed(rl, "test-ip") {
		t.Error("should be rate-limited")
	}

	clock.advance(200 * time.Millisecond)
	if !allowed(rl, "test-ip") {
		t.Error("should be allowed after the window expires")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl, _ := newTestLimiter(t, 2, 10*time.Second)
	handler := rl.Middleware(okHandler())

	send := func(contentType string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/contact", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	for i := 0; i < 2; i++ {
		if rr := send(""); rr.Code != http.StatusOK {
			t.Fatalf("request %d: got status %d, want 200", i+1, rr.Code)
		}
	}

	rr := send("application/x-www-form-urlencoded")
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("got status %d, want 429", rr.Code)
	}
	secs, err := strconv.Atoi(rr.Header().Get("Retry-After"))
	if err != nil || secs < 1 || secs > 10 {
		t.Errorf("Retry-After = %q, want 1..10 seconds", rr.Header().Get("Retry-After"))
	}

	rr = send("application/json")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("json: got status %d, want 429", rr.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("json body: %v", err)
	}
	if body["error"] != "too many requests" {
		t.Errorf("json error = %v", body["error"])
	}
}

func TestRateLimiterStopTwice(t *testing.T) {
	rl := NewRateLimiter(1, time.Second)
	rl.Stop()
	rl.Stop()
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		trust      bool
		xff        string
		xri        string
		remoteAddr string
		want       string
	}{
		{"x-forwarded-for single", true, "10.0.0.1", "", "192.168.1.1:1234", "10.0.0.1"},
		{"x-forwarded-for multiple", true, "10.0.0.1, 172.16.0.1, 192.168.1.1", "", "192.168.1.1:1234", "10.0.0.1"},
		{"x-real-ip", true, "", "10.0.0.2", "192.168.1.1:1234", "10.0.0.2"},
		{"untrusted headers ignored", false, "10.0.0.1", "10.0.0.2", "192.168.1.1:1234", "192.168.1.1"},
		{"remote addr only", false, "", "", "192.168.1.1:1234", "192.168.1.1"},
		{"remote addr ipv6", false, "", "", "[2001:db8::1]:443", "2001:db8::1"},
		{"remote addr no port", false, "", "", "192.168.1.1", "192.168.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := clientIP(req, tt.trust); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTrustProxyHeaders(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, time.Minute, TrustProxyHeaders())
	handler := rl.Middleware(okHandler())

	for i, xff := range []string{"10.0.0.1", "10.0.0.2"} {
		req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(""))
		req.RemoteAddr = "192.168.1.1:1234"
		req.Header.Set("X-Forwarded-For", xff)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("client %d behind the same proxy: got %d, want 200", i+1, rr.Code)
		}
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl, clock := newTestLimiter(t, 10, 200*time.Millisecond)

	allowed(rl, "ip-old")
	clock.advance(500 * time.Millisecond)
	allowed(rl, "ip-fresh")

	rl.cleanup()

	rl.mu.Lock()
	_, oldExists := rl.clients["ip-old"]
	_, freshExists := rl.clients["ip-fresh"]
	rl.mu.Unlock()

	if oldExists {
		t.Error("ip-old should have been cleaned up")
	}
	if !freshExists {
		t.Error("ip-fresh should still exist")
	}
}
