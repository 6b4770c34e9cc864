// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"reactvite/internal/session"
)

// FlashesKey is the context key for the flashes popped for this request.
const FlashesKey contextKey = "flashes"

// LoadFlashes pops queued flashes on full page GETs and stores them in the
// request context. Downstream handlers read them via FlashesFromCtx().
// Partial navigations and prefetches leave the queue alone, since their
// responses carry no toast region. A store failure is logged and the page
// renders without toasts.
func LoadFlashes(store session.FlashStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || !rendersToasts(r) {
				next.ServeHTTP(w, r)
				return
			}

			flashes, err := store.Pop(r.Context(), w, r)
			if err != nil {
				slog.Warn("flash load failed",
					"error", err,
					"request_id", RequestIDFromCtx(r.Context()),
				)
			}
			if len(flashes) > 0 {
				r = r.WithContext(context.WithValue(r.Context(), FlashesKey, flashes))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// rendersToasts reports whether the response to r is a full page the
// visitor will see.
func rendersToasts(r *http.Request) bool {
	if r.Header.Get("X-Partial") == "true" {
		return false
	}
	for _, h := range []string{"Sec-Purpose", "Purpose"} {
		if strings.Contains(r.Header.Get(h), "prefetch") {
			return false
		}
	}
	return true
}

// FlashesFromCtx returns the flashes loaded by LoadFlashes, or nil.
func FlashesFromCtx(ctx context.Context) []session.Flash {
	flashes, _ := ctx.Value(FlashesKey).([]session.Flash)
	return flashes
}
