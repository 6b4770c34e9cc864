package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"reactvite/internal/assets"
	"reactvite/internal/cache"
	"reactvite/internal/config"
	"reactvite/internal/contact"
	"reactvite/internal/handlers"
	"reactvite/internal/render"
	"reactvite/internal/session"
	"reactvite/web"
)

// staticDir is where the static files live in a source checkout.
const staticDir = "web/static"

// app holds the wired site shared by the serve and build commands.
type app struct {
	cfg      *config.Config
	static   fs.FS
	bundle   *assets.Bundle
	renderer *render.Renderer
	flashes  session.FlashStore
	site     *handlers.Site
	valkey   *redis.Client // nil without Valkey
}

// newApp wires the site for cfg. live selects the server setup: templates
// and static files read from disk in development, and Valkey when
// configured. The static build always uses the embedded copies.
func newApp(ctx context.Context, cfg *config.Config, live bool) (*app, error) {
	a := &app{cfg: cfg, static: web.Static()}

	var templateDir string
	if live && cfg.IsDev() {
		if isDir(staticDir) {
			a.static = os.DirFS(staticDir)
		}
		if isDir(render.TemplateDir) {
			templateDir = render.TemplateDir
		}
	}

	bundle, err := assets.Build(a.static, assets.Options{
		Hash:      !cfg.IsDev(),
		Sourcemap: cfg.Sourcemap(),
		Dir:       cfg.AssetsDir,
	})
	if err != nil {
		return nil, fmt.Errorf("bundle assets: %w", err)
	}
	a.bundle = bundle

	a.renderer, err = render.New(render.Options{
		Dev:      cfg.ComponentTagging(),
		BasePath: cfg.BasePath,
		Version:  cfg.Version,
		Scripts:  bundle.Scripts(),
		Dir:      templateDir,
	})
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	// In non-development environments, mark cookies as Secure (HTTPS-only).
	secure := !cfg.IsDev()
	a.flashes = session.NewCookieStore(secure)

	var gate contact.Gate
	var pageCache *cache.PageCache
	if live && cfg.ValkeyEnabled() {
		a.valkey, err = cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			return nil, fmt.Errorf("connect valkey: %w", err)
		}
		gate = contact.NewValkeyGate(a.valkey)
		a.flashes = session.NewStore(a.valkey, secure)

		// Pages change on every template edit in development.
		if !cfg.IsDev() {
			pageCache = cache.NewPageCache(a.valkey, cache.DefaultPageTTL)
			if _, err := pageCache.InvalidateAll(ctx); err != nil {
				slog.Warn("page cache purge failed", "error", err)
			}
		}
		slog.Info("valkey connected", "host", cfg.ValkeyHost, "page_cache", pageCache != nil)
	}

	svc := contact.NewService(gate, cfg.ContactDelay)
	a.site, err = handlers.NewSite(a.renderer, svc, a.flashes, pageCache, cfg.Version, web.LegalFS)
	if err != nil {
		return nil, fmt.Errorf("load legal pages: %w", err)
	}
	return a, nil
}

// Close releases the Valkey connection, if any.
func (a *app) Close() {
	if a.valkey != nil {
		a.valkey.Close()
	}
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
