package commands

import (
	"fmt"
	"time"

	"github.com/ncobase/docpage/config"
	"github.com/spf13/cobra"
)

// NewSeedCommand creates the seed command
func NewSeedCommand(configFile *string) *cobra.Command {
	var (
		count     int
		batch     int
		randomIDs bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write sample documents to the configured source",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.LoadConfig(*configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			app, cleanup, err := initApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			if !app.Backend.Persistent() {
				return ErrNotPersistent
			}
			n, err := seed(ctx, app.Backend, generate(count, randomIDs, time.Now()), batch)
			if err != nil {
				return err
			}
			app.Logger.Infof(ctx, "seeded %d documents into %s", n, cfg.Source.Collection)
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 100, "number of documents")
	cmd.Flags().IntVar(&batch, "batch", 50, "documents per write")
	cmd.Flags().BoolVar(&randomIDs, "random-ids", false, "use random ids")
	return cmd
}
