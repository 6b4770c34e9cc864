package middleware

import (
	"errors"
	"net/http"
)

// LimitBody caps request bodies at n bytes. A declared length over the cap
// is refused up front with 413; otherwise the body is wrapped so reading
// past n fails. It must run before anything that parses the body.
func LimitBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > n {
				writeError(w, r, http.StatusRequestEntityTooLarge, map[string]any{"limit": n})
				return
			}
			if r.Body != nil && r.Body != http.NoBody {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// formErrorStatus maps a ParseForm error to 413 when the body limit was hit
// and 400 otherwise.
func formErrorStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
