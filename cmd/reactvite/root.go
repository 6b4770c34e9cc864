package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"reactvite/internal/config"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configFile string
	mode       string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:          "reactvite",
		Short:        "ReactVite marketing site",
		Long:         "Serve, build, preview and deploy the ReactVite marketing site.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.configFile, "config", config.DefaultFile, "config file, ignored when missing")
	root.PersistentFlags().StringVar(&flags.mode, "mode", "", "build mode: development or production (default depends on the command, APP_ENV overrides)")

	root.AddCommand(
		newServeCmd(flags),
		newBuildCmd(flags),
		newPreviewCmd(flags),
		newDeployCmd(flags),
		newVersionCmd(flags),
	)
	return root
}

// loadConfig resolves the mode, loads the configuration and installs the
// default logger for it.
func loadConfig(flags *globalFlags, defaultMode string) (*config.Config, error) {
	cfg, err := config.Load(flags.configFile, config.ResolveMode(flags.mode, defaultMode))
	if err != nil {
		return nil, err
	}
	setupLogger(cfg)

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"version", cfg.Version,
		"base", cfg.BasePath,
	)
	return cfg, nil
}

// setupLogger installs a text logger: Debug in development, Info otherwise.
func setupLogger(cfg *config.Config) {
	level := slog.LevelInfo
	if cfg.IsDev() {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

func newVersionCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the application version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags.configFile, config.ResolveMode(flags.mode, config.ModeProduction))
			if err != nil {
				return err
			}
			cmd.Println(cfg.Version)
			return nil
		},
	}
}
