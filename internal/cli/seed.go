package cli

import (
	"github.com/spf13/cobra"

	"grader-content-api/internal/app"
	"grader-content-api/internal/config"
	"grader-content-api/internal/content"
)

// NewSeedCmd loads a generated content tree into the configured store.
func NewSeedCmd(configPath *string) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the document store from a generated content tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			if !cmd.Flags().Changed("from") {
				from = cfg.Content.DataDir
			}
			if cfg.Store.Driver == config.DriverMemory {
				logger.Warn("memory store does not outlive this process; serve preloads content.data_dir instead")
			}

			records, err := content.ReadTree(from)
			if err != nil {
				return err
			}
			validator, err := content.NewValidator()
			if err != nil {
				return err
			}
			store, closeStore, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			_, err = app.NewSeeder(store, validator, logger).Seed(ctx, records)
			return err
		},
	}
	cmd.Flags().StringVar(&from, "from", "data", "content directory to read (defaults to content.data_dir)")
	return cmd
}
