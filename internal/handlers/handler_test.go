// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/net/html"

	"reactvite/internal/cache"
	"reactvite/internal/contact"
	"reactvite/internal/middleware"
	"reactvite/internal/render"
	"reactvite/internal/session"
	"reactvite/web"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "page:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type siteOptions struct {
	delay     time.Duration
	gate      contact.Gate
	pageCache *cache.PageCache
}

// newTestSite builds a Site on the embedded templates with a fixed clock
// and a cookie flash store.
func newTestSite(t *testing.T, opts siteOptions) *Site {
	t.Helper()

	rn, err := render.New(render.Options{
		Version: "test",
		Now:     func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	site, err := NewSite(rn, contact.NewService(opts.gate, opts.delay), session.NewCookieStore(false), opts.pageCache, "handlers-test", web.LegalFS)
	if err != nil {
		t.Fatalf("NewSite: %v", err)
	}
	return site
}

// testMux wires the site handlers behind the CSRF and flash middleware.
func testMux(s *Site) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.Home)
	mux.HandleFunc("GET /about", s.About)
	mux.HandleFunc("GET /contact", s.ContactPage)
	mux.HandleFunc("POST /contact", s.ContactSubmit)
	mux.HandleFunc("POST /api/contact", s.ContactAPI)
	mux.HandleFunc("GET /privacy", s.Legal("/privacy"))
	mux.HandleFunc("GET /terms", s.Legal("/terms"))
	mux.HandleFunc("/", s.NotFound)

	h := middleware.LoadFlashes(session.NewCookieStore(false))(mux)
	return middleware.LimitBody(MaxContactBody)(middleware.NewCSRF(false)(h))
}

// client replays cookies across requests like a browser would.
type client struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, h http.Handler) *client {
	return &client{t: t, handler: h, cookies: map[string]*http.Cookie{}}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rr := httptest.NewRecorder()
	c.handler.ServeHTTP(rr, req)
	for _, ck := range rr.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return rr
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) token() string {
	ck, ok := c.cookies[middleware.CSRFCookieName]
	if !ok {
		c.t.Fatal("no CSRF cookie yet")
	}
	return ck.Value
}

func (c *client) postForm(path string, d contact.Draft) *httptest.ResponseRecorder {
	form := url.Values{middleware.CSRFFormField: {c.token()}}
	for _, f := range contact.Fields {
		form.Set(f, d.Value(f))
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.CSRFHeaderName, c.token())
	return c.do(req)
}

// countElements counts elements with the given tag carrying attr.
func countElements(t *testing.T, body, tag, attr string) int {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		t.Fatalf("parse HTML: %v", err)
	}
	var n int
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == tag {
			for _, a := range node.Attr {
				if a.Key == attr {
					n++
					break
				}
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return n
}

// inputValue returns the value attribute of the input with the given id.
func inputValue(t *testing.T, body, id string) string {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		t.Fatalf("parse HTML: %v", err)
	}
	var value string
	var found bool
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && (node.Data == "input" || node.Data == "textarea") {
			var nodeID, v string
			for _, a := range node.Attr {
				switch a.Key {
				case "id":
					nodeID = a.Val
				case "value":
					v = a.Val
				}
			}
			if nodeID == id {
				found = true
				value = v
				if node.Data == "textarea" && node.FirstChild != nil {
					value = node.FirstChild.Data
				}
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if !found {
		t.Fatalf("no input with id %q", id)
	}
	return value
}
