package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"reactvite/internal/config"
	"reactvite/internal/router"
)

func newPreviewCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Serve the built site",
		Long:  "Preview serves the output of build on the preview port, on all interfaces by default.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags, config.ModeProduction)
			if err != nil {
				return err
			}
			if !isDir(cfg.OutDir) {
				return fmt.Errorf("%s does not exist, run build first", cfg.OutDir)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := newServer(cfg.PreviewAddr(), router.Preview(cfg.OutDir, cfg.BasePath), 0)
			return runServer(ctx, srv, func() {
				slog.Info("preview ready", "url", browserURL(cfg.Host, cfg.PreviewPort, cfg.BasePath), "dir", cfg.OutDir)
			})
		},
	}
}
