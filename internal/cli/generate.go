package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"grader-content-api/internal/content"
	"grader-content-api/internal/generator"
)

// NewGenerateCmd writes a freshly generated content tree to disk.
func NewGenerateCmd(configPath *string) *cobra.Command {
	var (
		out  string
		seed int64
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate sample grade, subject, chapter and quiz content",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			if !cmd.Flags().Changed("out") {
				out = cfg.Content.DataDir
			}
			if !cmd.Flags().Changed("seed") {
				seed = cfg.Content.Seed
			}

			records := generator.New(generator.DefaultConfig(), seed).Generate()
			validator, err := content.NewValidator()
			if err != nil {
				return err
			}
			for _, rec := range records {
				if err := validator.Validate(rec); err != nil {
					return err
				}
			}

			err = content.WriteTree(out, records)
			if errors.Is(err, content.ErrOutputExists) {
				logger.Warn("output directory already exists, delete it to regenerate", "dir", out)
				return nil
			}
			if err != nil {
				return err
			}
			logger.Info("content generated", "dir", out, "records", len(records))
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "data", "output directory (defaults to content.data_dir)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed, 0 for time based (defaults to content.seed)")
	return cmd
}
