package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/spf13/cobra"

	"reactvite/internal/config"
	"reactvite/internal/middleware"
	"reactvite/internal/router"
)

// Contact submissions allowed per client and window.
const (
	contactLimit  = 10
	contactWindow = time.Minute
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var open bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the development server",
		Long: `Serve renders the site on every request. In development mode templates
are reloaded when they change on disk and components are tagged for the
browser inspector.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags, config.ModeDevelopment)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("open") {
				cfg.Open = open
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().BoolVar(&open, "open", true, "open the site in the default browser")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.IsDev() {
		go func() {
			if err := a.renderer.Watch(ctx); err != nil {
				slog.Debug("template reload disabled", "reason", err)
			}
		}()
	}

	var limiterOpts []middleware.RateLimiterOption
	if cfg.TrustProxy {
		limiterOpts = append(limiterOpts, middleware.TrustProxyHeaders())
	}
	limiter := middleware.NewRateLimiter(contactLimit, contactWindow, limiterOpts...)
	defer limiter.Stop()

	r := router.New(router.Deps{
		Site:        a.site,
		Flashes:     a.flashes,
		Bundle:      a.bundle,
		Static:      a.static,
		BasePath:    cfg.BasePath,
		Secure:      !cfg.IsDev(),
		RateLimiter: limiter,
	})

	srv := newServer(cfg.Addr(), r, cfg.ContactDelay)
	return runServer(ctx, srv, func() {
		url := browserURL(cfg.Host, cfg.Port, cfg.BasePath)
		slog.Info("site ready", "url", url)
		if cfg.Open {
			launcher.Open(url)
		}
	})
}
