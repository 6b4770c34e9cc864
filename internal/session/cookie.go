// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
)

// FlashCookieName holds queued flashes when no Valkey is configured.
const FlashCookieName = "rv_flash"

// maxFlashes bounds the cookie payload.
const maxFlashes = 3

// CookieStore keeps flashes in the browser itself. Flashes are display-only
// text, so an unsigned cookie is enough.
type CookieStore struct {
	secure bool
}

// NewCookieStore creates a cookie-backed flash store.
func NewCookieStore(secure bool) *CookieStore {
	return &CookieStore{secure: secure}
}

func (s *CookieStore) Add(_ context.Context, w http.ResponseWriter, r *http.Request, f Flash) error {
	flashes, _ := decodeFlashes(r)
	flashes = append(flashes, f)
	if len(flashes) > maxFlashes {
		flashes = flashes[len(flashes)-maxFlashes:]
	}

	payload, err := json.Marshal(flashes)
	if err != nil {
		return fmt.Errorf("flash marshal: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(DefaultTTL.Seconds()),
	})
	return nil
}

func (s *CookieStore) Pop(_ context.Context, w http.ResponseWriter, r *http.Request) ([]Flash, error) {
	if _, err := r.Cookie(FlashCookieName); err != nil {
		return nil, nil
	}

	// Expire the cookie whether or not it decodes.
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		MaxAge:   -1,
	})

	return decodeFlashes(r)
}

func decodeFlashes(r *http.Request) ([]Flash, error) {
	cookie, err := r.Cookie(FlashCookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil, fmt.Errorf("flash decode: %w", err)
	}
	var flashes []Flash
	if err := json.Unmarshal(raw, &flashes); err != nil {
		return nil, fmt.Errorf("flash unmarshal: %w", err)
	}
	return flashes, nil
}
