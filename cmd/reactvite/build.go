package main

import (
	"time"

	"github.com/spf13/cobra"

	"reactvite/internal/config"
	"reactvite/internal/export"
)

func newBuildCmd(flags *globalFlags) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Export the site as static files",
		Long: `Build renders every page into the output directory (dist by default),
together with the static files and the script chunks. Production builds
apply the base path and hash chunk names; development builds ship source
maps instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags, config.ModeProduction)
			if err != nil {
				return err
			}
			if outDir != "" {
				cfg.OutDir = outDir
			}

			a, err := newApp(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := export.Build(cmd.Context(), export.Options{
				OutDir:   cfg.OutDir,
				Renderer: a.renderer,
				Site:     a.site,
				Bundle:   a.bundle,
				Static:   a.static,
				Delay:    cfg.ContactDelay,
			})
			if err != nil {
				return err
			}
			cmd.Printf("built %d files into %s in %s\n", len(res.Files), cfg.OutDir, res.Duration.Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (overrides OUT_DIR)")
	return cmd
}
