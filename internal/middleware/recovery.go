// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
)

// Recoverer turns a panic in the site handlers into a 500 so one bad
// render cannot take the dev server down. The contact API gets its error
// as JSON, like every other response it sends. http.ErrAbortHandler is
// re-raised for net/http.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			slog.Error("handler panic",
				"panic", rec,
				"route", r.Method+" "+r.URL.Path,
				"request_id", RequestIDFromCtx(r.Context()),
				"stack", string(debug.Stack()),
			)
			writeError(w, r, http.StatusInternalServerError, nil)
		}()

		next.ServeHTTP(w, r)
	})
}

// wantsJSON reports whether the client talks JSON, either by sending it or
// by asking for it.
func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}

// writeError answers with the status text, as JSON for JSON clients with
// any extra fields merged in, or as plain text otherwise.
func writeError(w http.ResponseWriter, r *http.Request, status int, extra map[string]any) {
	msg := http.StatusText(status)
	if !wantsJSON(r) {
		http.Error(w, msg, status)
		return
	}

	body := map[string]any{"error": strings.ToLower(msg)}
	for k, v := range extra {
		body[k] = v
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
