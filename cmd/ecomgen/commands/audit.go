package commands

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ecomgen/internal/audit"
)

var auditDir string

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Reload the written dataset and verify its invariants",
	Long: `Reloads the CSV exports and runs two check families: hard structural rules
(uniqueness, referential integrity, refund accounting, date ordering) and a
statistical comparison of observed repeat-order rates against the configured
behavioral model. Under the baseline messiness profile warnings are fatal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := auditDir
		if dir == "" {
			dir = cfg.OutputDir
		}

		ds, err := audit.Load(dir)
		if err != nil {
			return err
		}

		report := &audit.Report{}
		audit.CheckIntegrity(ds, report)

		validAgents := make(map[string]bool, len(cfg.AgentPool.Agents))
		for _, a := range cfg.AgentPool.Agents {
			validAgents[a.ID] = true
		}
		audit.CheckAgents(ds, validAgents, report)

		audit.CheckRepeatRates(ds, cfg, report)

		report.Log()
		errs, warns := report.Counts()
		log.Info().Int("errors", errs).Int("warnings", warns).Str("dir", dir).Msg("Audit complete")
		return report.Err(cfg.FailOnWarning())
	},
}

func init() {
	auditCmd.Flags().StringVar(&auditDir, "dir", "", "dataset directory to audit (defaults to the configured output dir)")
	rootCmd.AddCommand(auditCmd)
}
