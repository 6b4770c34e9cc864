// Package session carries one-time flash notifications from a form POST to
// the page rendered after the redirect. Flashes live either in Valkey, keyed
// by a random session cookie, or directly in a short-lived cookie when no
// Valkey is configured.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// CookieName is the name of the session cookie sent to the browser.
	CookieName = "rv_session"

	// DefaultTTL is how long undelivered flashes live in Valkey.
	DefaultTTL = 10 * time.Minute

	// keyPrefix namespaces flash keys in Valkey to avoid collisions.
	keyPrefix = "flash:"

	// idLength is the byte length of the random session ID (32 bytes = 64 hex chars).
	idLength = 32
)

// Flash is a one-time notification displayed as a toast.
type Flash struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant"` // "success", "destructive", "default"
}

// FlashStore stores flashes between requests.
type FlashStore interface {
	// Add queues a flash for the next page the browser loads.
	Add(ctx context.Context, w http.ResponseWriter, r *http.Request, f Flash) error
	// Pop returns and clears all queued flashes.
	Pop(ctx context.Context, w http.ResponseWriter, r *http.Request) ([]Flash, error)
}

// Store keeps flashes in Valkey.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	secure bool
}

// NewStore creates a flash store backed by the given Valkey client. secure
// marks the session cookie HTTPS-only.
func NewStore(client *redis.Client, secure bool) *Store {
	return &Store{
		client: client,
		ttl:    DefaultTTL,
		secure: secure,
	}
}

// Add appends f to the browser's queue, creating the session cookie when the
// browser has none yet.
func (s *Store) Add(ctx context.Context, w http.ResponseWriter, r *http.Request, f Flash) error {
	id := ""
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		id = cookie.Value
	} else {
		var err error
		if id, err = generateID(); err != nil {
			return fmt.Errorf("session create: %w", err)
		}
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			Secure:   s.secure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   int(s.ttl.Seconds()),
		})
	}

	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("flash marshal: %w", err)
	}

	key := keyPrefix + id
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("flash store: %w", err)
	}
	return nil
}

// Pop returns the queued flashes and deletes them. A browser without a
// session cookie has none.
func (s *Store) Pop(ctx context.Context, _ http.ResponseWriter, r *http.Request) ([]Flash, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	key := keyPrefix + cookie.Value
	pipe := s.client.TxPipeline()
	rangeCmd := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("flash get: %w", err)
	}

	var flashes []Flash
	for _, raw := range rangeCmd.Val() {
		var f Flash
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			return nil, fmt.Errorf("flash unmarshal: %w", err)
		}
		flashes = append(flashes, f)
	}
	return flashes, nil
}

// generateID creates a cryptographically random session identifier.
func generateID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
