package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
)

const (
	// csrfTokenLength is the byte length of CSRF tokens (32 bytes = 64 hex chars).
	csrfTokenLength = 32

	// CSRFCookieName is the cookie that holds the CSRF token.
	CSRFCookieName = "rv_csrf"

	// CSRFHeaderName is the header the enhanced contact form sends the
	// token in when it submits with fetch.
	CSRFHeaderName = "X-CSRF-Token"

	// CSRFFormField is the hidden form field name for plain form posts.
	CSRFFormField = "csrf_token"

	// CSRFTokenKey is the context key for the current CSRF token.
	CSRFTokenKey contextKey = "csrf_token"
)

// NewCSRF returns double-submit cookie CSRF protection. It makes sure every
// browser holds a token cookie, exposes the token in the request context for
// templates, and rejects state-changing requests (POST, PUT, PATCH, DELETE)
// whose header or form field does not match the cookie. secure marks the
// cookie HTTPS-only.
//
// The token doubles as the browser identity for the contact in-flight gate.
func NewCSRF(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if cookie, err := r.Cookie(CSRFCookieName); err == nil && validCSRFToken(cookie.Value) {
				token = cookie.Value
			} else {
				var err error
				token, err = generateCSRFToken()
				if err != nil {
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     CSRFCookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: true, // the token reaches scripts through the rendered form
					Secure:   secure,
					SameSite: http.SameSiteStrictMode,
				})
			}

			r = r.WithContext(context.WithValue(r.Context(), CSRFTokenKey, token))

			// Safe methods don't need CSRF validation.
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			// Check header first (fetch), then form field.
			submitted := r.Header.Get(CSRFHeaderName)
			if submitted == "" {
				if err := r.ParseForm(); err != nil {
					writeError(w, r, formErrorStatus(err), nil)
					return
				}
				submitted = r.PostForm.Get(CSRFFormField)
			}

			if subtle.ConstantTimeCompare([]byte(token), []byte(submitted)) != 1 {
				writeError(w, r, http.StatusForbidden, map[string]any{"reason": "csrf token mismatch"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CSRFTokenFromCtx returns the token set by the CSRF middleware, or "".
func CSRFTokenFromCtx(ctx context.Context) string {
	token, _ := ctx.Value(CSRFTokenKey).(string)
	return token
}

// validCSRFToken reports whether a cookie value looks like a token this
// middleware issued. Anything else is replaced, since the token is also
// used as a store key.
func validCSRFToken(s string) bool {
	if len(s) != csrfTokenLength*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// generateCSRFToken creates a cryptographically random token.
func generateCSRFToken() (string, error) {
	b := make([]byte, csrfTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
