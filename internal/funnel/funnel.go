// Package funnel classifies every cart exactly once as converted, abandoned or
// emptied, and hands the converted set downstream for order materialization.
package funnel

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"ecomgen/internal/config"
	"ecomgen/internal/model"
	"ecomgen/internal/pipeline"
	"ecomgen/internal/randx"
)

// Stage runs the conversion funnel. Carts are processed in ascending
// created_at order because the first-purchase boost depends on whether the
// customer has already converted an earlier cart.
type Stage struct{}

func (Stage) Table() string { return "converted_carts" }

func (Stage) Generate(ctx *pipeline.Context, cfg *config.Config) error {
	if len(ctx.Carts) == 0 {
		return fmt.Errorf("shopping carts must be generated before the conversion funnel")
	}

	ordered := make([]*model.Cart, len(ctx.Carts))
	copy(ordered, ctx.Carts)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].CartID < ordered[j].CartID
	})

	customers := ctx.CustomersByID()
	hasConverted := make(map[string]bool)

	var converted, failed []*model.Cart
	for _, cart := range ordered {
		p := cfg.Conversion.Rate
		if !hasConverted[cart.CustomerID] {
			if cust := customers[cart.CustomerID]; cust != nil {
				p *= boostFor(cfg, cust.SignupChannel)
			}
			if p > 1 {
				p = 1
			}
		}
		if randx.Bernoulli(ctx.Rand, p) {
			cart.Status = model.CartStatusConverted
			hasConverted[cart.CustomerID] = true
			converted = append(converted, cart)
		} else {
			failed = append(failed, cart)
		}
	}

	// Second pass: a slice of the non-converted carts was emptied by the
	// customer before abandonment; their items are removed retroactively.
	emptied := make(map[string]bool)
	for _, cart := range failed {
		if randx.Bernoulli(ctx.Rand, cfg.Conversion.AbandonedCartEmptiedProb) {
			cart.Status = model.CartStatusEmptied
			cart.CartTotal = 0
			emptied[cart.CartID] = true
		} else {
			cart.Status = model.CartStatusAbandoned
		}
	}

	if len(emptied) > 0 {
		kept := ctx.CartItems[:0]
		removed := 0
		for _, item := range ctx.CartItems {
			if emptied[item.CartID] {
				removed++
				continue
			}
			kept = append(kept, item)
		}
		ctx.CartItems = kept
		log.Debug().Int("emptied_carts", len(emptied)).Int("items_removed", removed).Msg("Emptied cart items removed")
	}

	log.Info().
		Int("converted", len(converted)).
		Int("abandoned", len(failed)-len(emptied)).
		Int("emptied", len(emptied)).
		Msg("Conversion funnel classified all carts")

	ctx.ConvertedCarts = converted
	return nil
}

func boostFor(cfg *config.Config, channel string) float64 {
	if b, ok := cfg.Conversion.FirstPurchaseBoost[channel]; ok {
		return b
	}
	if b, ok := cfg.Conversion.FirstPurchaseBoost[config.SegmentDefault]; ok {
		return b
	}
	return 1.0
}
