package commands

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ecomgen/internal/config"
	"ecomgen/internal/logging"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose    bool
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ecomgen",
	Short: "ecomgen generates a synthetic relational e-commerce dataset",
	Long: `ecomgen produces a seeded, fully relational e-commerce dataset: customers,
a product catalog, shopping cart sessions, a conversion funnel, orders and a
return lifecycle. The companion audit command replays the written data and
verifies its structural and statistical invariants.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Int64("seed", cfg.Seed).
			Str("messiness", cfg.Messiness).
			Msg("ecomgen starting")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML configuration file")
}
