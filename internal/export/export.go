// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package export writes the site as static files: one index.html per route,
// a 404.html, the static files and the script bundle. The result can be
// served by any static host under the configured base path.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"reactvite/internal/assets"
	"reactvite/internal/contact"
	"reactvite/internal/handlers"
	"reactvite/internal/render"
)

// NotFoundFile is the page static hosts serve for unknown paths.
const NotFoundFile = "404.html"

// maxWorkers bounds concurrent page renders.
const maxWorkers = 4

// Options configures an export.
type Options struct {
	OutDir   string
	Renderer *render.Renderer
	Site     *handlers.Site
	Bundle   *assets.Bundle
	Static   fs.FS         // copied to <OutDir>/static
	Delay    time.Duration // simulated submission time the browser waits
}

// Result describes a finished export.
type Result struct {
	Files    []string // written files relative to OutDir, sorted
	Duration time.Duration
}

// page is one document to render.
type page struct {
	file     string
	template string
	data     *render.PageData
}

// Build renders every page into opts.OutDir, replacing whatever was there.
func Build(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()

	if err := cleanDir(opts.OutDir); err != nil {
		return nil, err
	}

	pages := sitePages(opts)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)
	for _, p := range pages {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return writePage(opts, p)
		})
	}
	g.Go(func() error {
		if err := os.CopyFS(filepath.Join(opts.OutDir, "static"), opts.Static); err != nil {
			return fmt.Errorf("copy static files: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return opts.Bundle.WriteDir(opts.OutDir)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	files, err := listFiles(opts.OutDir)
	if err != nil {
		return nil, err
	}

	res := &Result{Files: files, Duration: time.Since(start)}
	slog.Info("site exported", "dir", opts.OutDir, "pages", len(pages), "files", len(files), "duration", res.Duration)
	return res, nil
}

// sitePages lists every document of the static site.
func sitePages(opts Options) []page {
	contactData := handlers.ContactData(contact.Draft{}, opts.Delay.Milliseconds())

	pages := []page{
		{file: "index.html", template: "home", data: handlers.HomeData()},
		{file: "about/index.html", template: "about", data: handlers.AboutData()},
		{file: "contact/index.html", template: "contact", data: contactData},
		{file: NotFoundFile, template: "notfound", data: handlers.NotFoundData()},
	}

	routes := make([]string, 0, len(handlers.LegalPages))
	for route := range handlers.LegalPages {
		routes = append(routes, route)
	}
	sort.Strings(routes)
	for _, route := range routes {
		if data, ok := opts.Site.LegalData(route); ok {
			pages = append(pages, page{file: path.Join(route[1:], "index.html"), template: "legal", data: data})
		}
	}

	for _, p := range pages {
		p.data.Static = true
	}
	return pages
}

func writePage(opts Options, p page) error {
	var buf bytes.Buffer
	if err := opts.Renderer.Render(&buf, p.template, p.data); err != nil {
		return fmt.Errorf("render %s: %w", p.file, err)
	}

	dst := filepath.Join(opts.OutDir, filepath.FromSlash(p.file))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", p.file, err)
	}
	if err := os.WriteFile(dst, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", p.file, err)
	}
	slog.Debug("page written", "file", p.file)
	return nil
}

// cleanDir empties dir so the export starts fresh. It refuses the working
// directory and its ancestors, and any non-empty directory that does not
// hold a manifest from an earlier export.
func cleanDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("refusing to export into an unnamed directory")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", dir, err)
	}
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("working directory: %w", err)
	}
	if within(wd, abs) {
		return fmt.Errorf("refusing to export into %q: it contains the working directory", dir)
	}

	entries, err := os.ReadDir(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("read %s: %w", dir, err)
	case len(entries) > 0:
		if _, err := os.Stat(filepath.Join(abs, assets.ManifestFile)); err != nil {
			return fmt.Errorf("refusing to empty %q: no %s from an earlier build", dir, assets.ManifestFile)
		}
		if err := os.RemoveAll(abs); err != nil {
			return fmt.Errorf("clean %s: %w", dir, err)
		}
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}

// within reports whether p is dir or lies below it.
func within(p, dir string) bool {
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// listFiles returns every regular file under dir, slash-separated and sorted.
func listFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}
