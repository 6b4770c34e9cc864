// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers serves the site pages and the contact form submission.
package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"reactvite/internal/cache"
	"reactvite/internal/contact"
	"reactvite/internal/content"
	"reactvite/internal/markdown"
	"reactvite/internal/middleware"
	"reactvite/internal/render"
	"reactvite/internal/session"
)

// LegalPages lists the Markdown documents served as legal pages, by route.
var LegalPages = map[string]string{
	"/privacy": "legal/privacy.md",
	"/terms":   "legal/terms.md",
}

// legalPage is a converted legal document.
type legalPage struct {
	title string
	body  template.HTML
}

// Site groups handlers for the public pages. It checks the Valkey page
// cache before rendering the stateless pages and stores results on miss.
type Site struct {
	renderer  *render.Renderer
	contact   *contact.Service
	flashes   session.FlashStore
	pageCache *cache.PageCache // nil when Valkey is not configured
	version   string
	legal     map[string]legalPage
}

// NewSite creates the Site handler group. legalFS holds the documents named
// in LegalPages; pageCache may be nil.
func NewSite(rn *render.Renderer, svc *contact.Service, flashes session.FlashStore, pageCache *cache.PageCache, version string, legalFS fs.FS) (*Site, error) {
	legal, err := loadLegal(legalFS)
	if err != nil {
		return nil, err
	}
	return &Site{
		renderer:  rn,
		contact:   svc,
		flashes:   flashes,
		pageCache: pageCache,
		version:   version,
		legal:     legal,
	}, nil
}

func loadLegal(fsys fs.FS) (map[string]legalPage, error) {
	pages := make(map[string]legalPage, len(LegalPages))
	for route, file := range LegalPages {
		src, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		doc, err := markdown.Parse(src)
		if err != nil {
			return nil, fmt.Errorf("convert %s: %w", file, err)
		}
		pages[route] = legalPage{title: doc.Title, body: template.HTML(doc.HTML)}
	}
	return pages, nil
}

// HomeData returns the data the Home view renders.
func HomeData() *render.PageData {
	return &render.PageData{
		Path:        "/",
		Description: "Build lightning-fast applications with React, Vite, and TypeScript.",
		Data:        map[string]any{"Features": content.Features},
	}
}

// AboutData returns the data the About view renders.
func AboutData() *render.PageData {
	return &render.PageData{
		Title:       "About",
		Path:        "/about",
		Description: "The technologies and values behind the ReactVite stack.",
		Data: map[string]any{
			"Technologies": content.Technologies,
			"Highlights":   content.Highlights,
			"Values":       content.Values,
			"Stats":        content.Stats,
		},
	}
}

// ContactData returns the data the Contact view renders for draft. delay is
// the simulated submission time the static build waits in the browser.
func ContactData(draft contact.Draft, delayMS int64) *render.PageData {
	return &render.PageData{
		Title:       "Contact",
		Path:        "/contact",
		Description: "Get in touch with the ReactVite team.",
		Data: map[string]any{
			"Draft":   draft,
			"Entries": content.ContactEntries,
			"Social":  content.SocialLinks,
			"Success": contact.Sent,
			"DelayMS": delayMS,
		},
	}
}

// NotFoundData returns the data of the 404 page.
func NotFoundData() *render.PageData {
	return &render.PageData{Title: "Page not found"}
}

// LegalData returns the data of the legal page at route, or false when
// there is none.
func (s *Site) LegalData(route string) (*render.PageData, bool) {
	page, ok := s.legal[route]
	if !ok {
		return nil, false
	}
	return &render.PageData{
		Title: page.title,
		Path:  route,
		Data:  map[string]any{"Body": page.body},
	}, true
}

// Home renders the landing page.
func (s *Site) Home(w http.ResponseWriter, r *http.Request) {
	s.cachedPage(w, r, "home", HomeData())
}

// About renders the About page.
func (s *Site) About(w http.ResponseWriter, r *http.Request) {
	s.cachedPage(w, r, "about", AboutData())
}

// Legal renders the legal page registered for route.
func (s *Site) Legal(route string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, ok := s.LegalData(route)
		if !ok {
			s.NotFound(w, r)
			return
		}
		s.cachedPage(w, r, "legal", data)
	}
}

// NotFound renders the 404 page.
func (s *Site) NotFound(w http.ResponseWriter, r *http.Request) {
	slog.Debug("page not found", "path", r.URL.Path, "request_id", middleware.RequestIDFromCtx(r.Context()))
	s.renderer.PageStatus(w, r, http.StatusNotFound, "notfound", NotFoundData())
}

// cachedPage serves a stateless page from the page cache, rendering and
// storing it on miss. Partial requests and pages carrying toasts bypass the
// cache.
func (s *Site) cachedPage(w http.ResponseWriter, r *http.Request, name string, data *render.PageData) {
	ctx := r.Context()
	cacheable := s.pageCache != nil &&
		r.Header.Get(render.PartialHeader) == "" &&
		len(middleware.FlashesFromCtx(ctx)) == 0

	if !cacheable {
		s.renderer.Page(w, r, name, data)
		return
	}

	key := cache.PageKey(s.version, data.Path, s.renderer.Year())
	page, hit := s.pageCache.Get(ctx, key)
	if !hit {
		var buf bytes.Buffer
		if err := s.renderer.Render(&buf, name, data); err != nil {
			slog.Error("render page failed", "error", err, "template", name, "request_id", middleware.RequestIDFromCtx(ctx))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		page = cache.NewPage(buf.Bytes(), time.Now())
		s.pageCache.Set(ctx, key, page)
	}

	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Add("Vary", render.PartialHeader)
	h.Set("ETag", page.ETag)
	h.Set("Last-Modified", page.Rendered.Format(http.TimeFormat))
	if hit {
		h.Set("X-Cache", "HIT")
	} else {
		h.Set("X-Cache", "MISS")
	}

	if match := r.Header.Get("If-None-Match"); match != "" && match == page.ETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Write(page.HTML)
}
