package commands

import (
	"context"
	"math/rand"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ecomgen/internal/carts"
	"ecomgen/internal/funnel"
	"ecomgen/internal/mess"
	"ecomgen/internal/model"
	"ecomgen/internal/orders"
	"ecomgen/internal/pipeline"
	"ecomgen/internal/pool"
	"ecomgen/internal/returns"
	"ecomgen/internal/sink"
)

var sqlitePath string

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the full dataset and write it to the output directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		start, end := cfg.Window()
		pctx := pipeline.NewContext(cfg.Seed, start, end)

		registry := pipeline.NewRegistry()
		registry.MustRegister(
			pool.CustomerStage{},
			pool.CatalogStage{},
			carts.LifecycleStage{},
			carts.ItemsStage{},
			funnel.Stage{},
			orders.Stage{},
			orders.ItemsStage{},
			returns.Stage{},
			returns.ItemsStage{},
			orders.EarnedStatusStage{},
		)
		if err := registry.Run(pctx, cfg); err != nil {
			return err
		}

		tables := sink.Collect(pctx)

		// Corruption uses its own stream so the pristine tables stay
		// byte-identical across messiness levels.
		mess.Inject(rand.New(rand.NewSource(cfg.Seed+1)), cfg.Messiness, tables, cfg)

		ctx := context.Background()
		if err := sink.WriteCSV(ctx, cfg.OutputDir, tables); err != nil {
			return err
		}
		if err := sink.WriteLoadScript(cfg.OutputDir, tables); err != nil {
			return err
		}
		if sqlitePath != "" {
			if err := sink.WriteSQLite(ctx, sqlitePath, tables); err != nil {
				return err
			}
		}

		runID, err := sink.WriteManifest(cfg.OutputDir, sink.Manifest{
			Seed:        cfg.Seed,
			Messiness:   cfg.Messiness,
			WindowStart: start.Format(model.DateLayout),
			WindowEnd:   end.Format(model.DateLayout),
			RowCounts:   sink.RowCounts(tables),
			Version:     Version,
		})
		if err != nil {
			return err
		}

		log.Info().Str("run_id", runID).Str("dir", cfg.OutputDir).Msg("Generation complete")
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&sqlitePath, "sqlite", "", "also load the dataset into a SQLite database at this path")
	rootCmd.AddCommand(generateCmd)
}
