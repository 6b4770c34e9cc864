// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up the HTTP routes and middleware chains for the dev
// server and the preview server. Site routes are mounted under the
// configured base path.
package router

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"reactvite/internal/assets"
	"reactvite/internal/handlers"
	"reactvite/internal/middleware"
	"reactvite/internal/session"
)

// Deps are the collaborators the site routes need.
type Deps struct {
	Site        *handlers.Site
	Flashes     session.FlashStore
	Bundle      *assets.Bundle
	Static      fs.FS                   // web/static
	BasePath    string                  // "/" or "/sub/"
	Secure      bool                    // mark cookies Secure
	RateLimiter *middleware.RateLimiter // limits contact submissions, nil disables
}

// New creates the Chi router serving the live site.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Health check, outside the base path and without CSRF.
	r.Get("/health", healthHandler)

	site := func(r chi.Router) {
		r.Handle("/static/*", http.StripPrefix(staticPrefix(d.BasePath), http.FileServerFS(d.Static)))
		r.Handle("/"+d.Bundle.Dir()+"/*", d.Bundle)

		r.Group(func(r chi.Router) {
			r.Use(middleware.LimitBody(handlers.MaxContactBody))
			r.Use(middleware.NewCSRF(d.Secure))
			r.Use(middleware.LoadFlashes(d.Flashes))

			r.Get("/", d.Site.Home)
			r.Get("/about", d.Site.About)
			r.With(middleware.NoStore).Get("/contact", d.Site.ContactPage)
			for route := range handlers.LegalPages {
				r.Get(route, d.Site.Legal(route))
			}

			r.Group(func(r chi.Router) {
				r.Use(middleware.NoStore)
				if d.RateLimiter != nil {
					r.Use(d.RateLimiter.Middleware)
				}
				r.Post("/contact", d.Site.ContactSubmit)
				r.Post("/api/contact", d.Site.ContactAPI)
			})

			r.NotFound(d.Site.NotFound)
		})
	}

	base := strings.TrimSuffix(d.BasePath, "/")
	if base == "" {
		site(r)
		return r
	}

	r.Route(base, site)
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, d.BasePath, http.StatusFound)
	})
	r.NotFound(d.Site.NotFound)
	return r
}

func staticPrefix(basePath string) string {
	return strings.TrimSuffix(basePath, "/") + "/static/"
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
