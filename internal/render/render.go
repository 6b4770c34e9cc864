// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the site pages.
// It supports full-page and partial rendering, automatically detecting
// in-page navigation requests via the X-Partial header.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"reactvite/internal/content"
	"reactvite/internal/middleware"
	"reactvite/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// TemplateDir is where the templates live in a source checkout. The dev
// server reads them from here so edits show up without a rebuild.
const TemplateDir = "internal/render/templates"

// PartialHeader marks a request (and its response) as an in-page
// navigation that only needs the "content" block.
const PartialHeader = "X-Partial"

// PageData holds all data passed to page templates.
type PageData struct {
	Title       string          // Page title for <title> tag
	Description string          // Meta description
	Path        string          // Route being rendered, without the base path
	CSRFToken   string          // CSRF token for the contact form
	Flashes     []session.Flash // One-time toast notifications
	Static      bool            // Rendered for the static export (no server behind the form)
	Data        map[string]any  // Page-specific data

	// Filled by the renderer.
	Year     int
	Version  string
	BasePath string
	Scripts  []string
}

// Options configures a Renderer.
type Options struct {
	Dev      bool             // tag components and log template reloads
	BasePath string           // prefix for every generated link, "/" by default
	Version  string           // application version exposed to templates
	Now      func() time.Time // clock for the footer year, time.Now by default
	Scripts  []string         // site-relative chunk URLs, in load order
	Dir      string           // read templates from disk instead of the embedded copies
}

// Renderer handles template parsing and execution for site pages.
type Renderer struct {
	mu        sync.RWMutex
	templates map[string]*template.Template

	fsys    fs.FS
	opts    Options
	funcMap template.FuncMap
}

// New creates a Renderer by parsing every page template paired with the
// base layout.
func New(opts Options) (*Renderer, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.BasePath == "" {
		opts.BasePath = "/"
	}

	r := &Renderer{opts: opts}

	if opts.Dir != "" {
		r.fsys = os.DirFS(opts.Dir)
	} else {
		sub, err := fs.Sub(templateFS, "templates")
		if err != nil {
			return nil, fmt.Errorf("embedded templates: %w", err)
		}
		r.fsys = sub
	}

	r.funcMap = template.FuncMap{
		"link":   r.Link,
		"static": func(p string) string { return r.Link("/static/" + strings.TrimPrefix(p, "/")) },
		"activeClass": func(current, target string) string {
			if current == target {
				return "nav-link active"
			}
			return "nav-link"
		},
		"isActive": func(current, target string) bool { return current == target },
		"delay":    content.AnimationDelay,
		// href trusts compile-time content links so tel: survives URL filtering.
		"href":     func(u string) template.URL { return template.URL(u) },
		"icon":     icon,
		// component tags an element with its component name in development
		// so it can be located from the browser inspector.
		"component": func(name string) template.HTMLAttr {
			if !opts.Dev {
				return ""
			}
			return template.HTMLAttr(`data-component="` + template.HTMLEscapeString(name) + `"`)
		},
		"isDev":         func() bool { return opts.Dev },
		"siteName":      func() string { return content.SiteName },
		"tagline":       func() string { return content.Tagline },
		"navLinks":      func() []content.Link { return content.NavLinks },
		"resources":     func() []content.Link { return content.Resources },
		"footerContact": func() []string { return content.FooterContact },
		"legalLinks":    func() []content.Link { return content.LegalLinks },
	}

	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-parses all templates and swaps them in atomically. On error the
// previously parsed set stays active.
func (rn *Renderer) Reload() error {
	names, err := fs.Glob(rn.fsys, "*.html")
	if err != nil {
		return fmt.Errorf("glob templates: %w", err)
	}

	parsed := make(map[string]*template.Template, len(names))
	for _, name := range names {
		if name == "base.html" {
			continue
		}

		tmpl, err := template.New("base.html").Funcs(rn.funcMap).ParseFS(rn.fsys, "base.html", name)
		if err != nil {
			return fmt.Errorf("parse template %s: %w", name, err)
		}
		parsed[strings.TrimSuffix(name, ".html")] = tmpl
	}
	if len(parsed) == 0 {
		return fmt.Errorf("no page templates found")
	}

	rn.mu.Lock()
	rn.templates = parsed
	rn.mu.Unlock()

	slog.Debug("templates parsed", "count", len(parsed))
	return nil
}

// Has reports whether a page template with the given name exists.
func (rn *Renderer) Has(name string) bool {
	rn.mu.RLock()
	defer rn.mu.RUnlock()
	_, ok := rn.templates[name]
	return ok
}

// Year returns the current year on the renderer clock.
func (rn *Renderer) Year() int {
	return rn.opts.Now().Year()
}

// Link prefixes a site route with the base path. Anything that is not a
// root-relative path (mailto:, tel:, absolute URLs) is returned unchanged.
func (rn *Renderer) Link(p string) string {
	return Link(rn.opts.BasePath, p)
}

// Link joins base and a root-relative route, keeping a trailing slash on
// the site root: Link("/app/", "/") is "/app/", Link("/app/", "/about") is
// "/app/about".
func Link(base, p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") {
		return p
	}
	if base == "" || base == "/" {
		return p
	}
	if p == "/" {
		return base
	}
	joined := path.Join(base, p)
	if strings.HasSuffix(p, "/") {
		joined += "/"
	}
	return joined
}

// Render executes a full page into w. The footer year is read once from the
// renderer clock.
func (rn *Renderer) Render(w io.Writer, name string, data *PageData) error {
	return rn.execute(w, name, "base.html", data)
}

// Page renders a full page or a partial, depending on the request headers,
// with status 200.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	rn.PageStatus(w, r, http.StatusOK, name, data)
}

// PageStatus renders a page with the given status. For partial requests
// only the "content" block is sent and the page title travels in a header.
// Output is buffered so a template error still yields a clean 500.
func (rn *Renderer) PageStatus(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	// Inject CSRF token and flashes from context (set by middleware).
	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())
	if data.Flashes == nil {
		data.Flashes = middleware.FlashesFromCtx(r.Context())
	}

	execName := "base.html"
	partial := isPartial(r)
	if partial {
		execName = "content"
	}

	var buf bytes.Buffer
	if err := rn.execute(&buf, name, execName, data); err != nil {
		slog.Error("render page",
			"template", name,
			"error", err,
			"request_id", middleware.RequestIDFromCtx(r.Context()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Add("Vary", PartialHeader)
	if partial {
		w.Header().Set(PartialHeader, "true")
		w.Header().Set("X-Page-Title", data.Title)
	}
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (rn *Renderer) execute(w io.Writer, name, execName string, data *PageData) error {
	rn.mu.RLock()
	tmpl, ok := rn.templates[name]
	rn.mu.RUnlock()
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	data.Year = rn.Year()
	data.Version = rn.opts.Version
	data.BasePath = rn.opts.BasePath
	data.Scripts = rn.opts.Scripts

	return tmpl.ExecuteTemplate(w, execName, data)
}

// isPartial returns true if the request came from in-page navigation.
func isPartial(r *http.Request) bool {
	return r.Header.Get(PartialHeader) == "true"
}
