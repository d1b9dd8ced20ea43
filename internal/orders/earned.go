package orders

import (
	"github.com/rs/zerolog/log"

	"ecomgen/internal/config"
	"ecomgen/internal/pipeline"
)

// EarnedStatusStage is the one-shot post-processor that rewrites each
// non-guest customer's loyalty_tier and clv_bucket from their finalized
// lifetime spend. It runs after all orders exist and touches only the
// customers table: order-time snapshots are historical records and stay as
// they were.
type EarnedStatusStage struct{}

func (EarnedStatusStage) Table() string { return "earned_status" }

func (EarnedStatusStage) Generate(ctx *pipeline.Context, cfg *config.Config) error {
	tiers := cfg.Tiers
	if len(tiers.SpendThresholds) == 0 && len(tiers.CLVThresholds) == 0 {
		log.Info().Msg("No spend thresholds configured, skipping earned-status pass")
		return nil
	}

	spend := make(map[string]float64)
	for _, o := range ctx.Orders {
		spend[o.CustomerID] += o.OrderTotal
	}

	updated := 0
	for _, cust := range ctx.Customers {
		if cust.IsGuest {
			continue
		}
		lifetime := spend[cust.CustomerID]
		if tier := pickByThreshold(tiers.SpendThresholds, lifetime); tier != "" {
			cust.LoyaltyTier = tier
		}
		if clv := pickByThreshold(tiers.CLVThresholds, lifetime); clv != "" {
			cust.CLVBucket = clv
		}
		updated++
	}

	log.Info().Int("customers", updated).Msg("Earned loyalty status recomputed from lifetime spend")
	return nil
}
