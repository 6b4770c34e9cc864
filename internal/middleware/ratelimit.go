// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// counter is the sliding window state of one client: the number of
// requests in the current fixed window and in the one before it.
type counter struct {
	mu    sync.Mutex
	start time.Time // start of the current window
	curr  int
	prev  int
}

// advance rolls the counter forward so that now falls in its current window.
func (c *counter) advance(now time.Time, window time.Duration) {
	if now.Sub(c.start) < window {
		return
	}
	if now.Sub(c.start) < 2*window {
		c.prev = c.curr
	} else {
		c.prev = 0
	}
	c.curr = 0
	c.start = now.Truncate(window)
}

// RateLimiter limits requests per client with a sliding window counter:
// the previous window's count is weighted by how much of it still overlaps
// the sliding window. The site applies it to contact submissions only.
type RateLimiter struct {
	mu         sync.Mutex
	clients    map[string]*counter
	limit      int           // max requests per window
	window     time.Duration // sliding window duration
	trustProxy bool          // read the client IP from proxy headers
	now        func() time.Time
	stopCh     chan struct{}
	stopOnce   sync.Once
}

// RateLimiterOption configures a RateLimiter.
type RateLimiterOption func(*RateLimiter)

// TrustProxyHeaders makes the limiter key clients by X-Forwarded-For or
// X-Real-IP. Only use it behind a proxy that sets those headers.
func TrustProxyHeaders() RateLimiterOption {
	return func(rl *RateLimiter) { rl.trustProxy = true }
}

// NewRateLimiter creates a rate limiter that allows limit requests per window.
// It starts a background goroutine to clean up idle clients.
func NewRateLimiter(limit int, window time.Duration, opts ...RateLimiterOption) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*counter),
		limit:   limit,
		window:  window,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(rl)
	}

	go func() {
		ticker := time.NewTicker(max(window, time.Minute))
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.cleanup()
			case <-rl.stopCh:
				return
			}
		}
	}()

	return rl
}

// Stop terminates the background cleanup goroutine. Safe to call twice.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

func (rl *RateLimiter) entry(key string) *counter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[key]
	if !ok {
		c = &counter{start: rl.now().Truncate(rl.window)}
		rl.clients[key] = c
	}
	return c
}

// allow records a request for key if it is within the limit. When it is
// not, it returns how long until the next request would be accepted.
func (rl *RateLimiter) allow(key string) (bool, time.Duration) {
	now := rl.now()
	c := rl.entry(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.advance(now, rl.window)
	elapsed := now.Sub(c.start)
	overlap := 1 - float64(elapsed)/float64(rl.window)

	if float64(c.prev)*overlap+float64(c.curr)+1 <= float64(rl.limit) {
		c.curr++
		return true, 0
	}

	// Full current window: wait for the next one.
	free := rl.limit - 1 - c.curr
	if free < 0 || c.prev == 0 {
		return false, rl.window - elapsed
	}
	// Otherwise wait until the previous window's weight has decayed enough.
	needed := time.Duration((1 - float64(free)/float64(c.prev)) * float64(rl.window))
	return false, max(needed-elapsed, time.Millisecond)
}

// cleanup removes clients idle for two windows or more.
func (rl *RateLimiter) cleanup() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, c := range rl.clients {
		c.mu.Lock()
		idle := now.Sub(c.start) >= 2*rl.window
		c.mu.Unlock()

		if idle {
			delete(rl.clients, key)
		}
	}
}

// Middleware returns an HTTP middleware that rate-limits by client IP.
// JSON requests get a JSON error body.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r, rl.trustProxy)
		ok, retry := rl.allow(ip)
		if ok {
			next.ServeHTTP(w, r)
			return
		}

		secs := max(int(math.Ceil(retry.Seconds())), 1)
		w.Header().Set("Retry-After", strconv.Itoa(secs))
		slog.Warn("rate limited",
			"ip", ip,
			"path", r.URL.Path,
			"retry_after", secs,
			"request_id", RequestIDFromCtx(r.Context()),
		)

		writeError(w, r, http.StatusTooManyRequests, map[string]any{"retry_after": secs})
	})
}

// clientIP extracts the client's IP address. Proxy headers are consulted
// only when trusted; otherwise the connection address is used.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		// The leftmost X-Forwarded-For entry is the original client.
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			return strings.TrimSpace(first)
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
