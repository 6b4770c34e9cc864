package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"reactvite/internal/config"
	"reactvite/internal/storage"
)

func newDeployCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "deploy",
		Short: "Upload the built site to S3-compatible storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags, config.ModeProduction)
			if err != nil {
				return err
			}
			if !isDir(cfg.OutDir) {
				return fmt.Errorf("%s does not exist, run build first", cfg.OutDir)
			}

			client, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3Prefix)
			if err != nil {
				return err
			}
			if client == nil {
				return errors.New("deploy target not configured: set S3_ENDPOINT, S3_ACCESS_KEY and S3_SECRET_KEY")
			}

			n, err := client.UploadDir(cmd.Context(), cfg.OutDir, cfg.AssetsDir)
			if err != nil {
				return err
			}
			cmd.Printf("uploaded %d files to %s\n", n, client.URL(""))
			return nil
		},
	}
}
