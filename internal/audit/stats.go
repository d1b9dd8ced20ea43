package audit

import (
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"ecomgen/internal/config"
)

// segmentStats accumulates per-segment observations while walking the
// reloaded tables.
type segmentStats struct {
	customers     int
	repeaters     int
	repeaterCarts int
	multiOrder    int
	lambdaSum     float64
	pRepeaterSum  float64
}

// CheckRepeatRates compares the observed repeat-order rate per
// (signup_channel, initial_tier) segment against a zero-inflated Poisson
// expectation derived from the configured visit lambdas.
//
// The model: a sampled customer repeats with probability 1-exp(-lambda),
// where lambda is the segment's visit rate scaled by the cohort shock of the
// customer's signup month. A repeater's expected cart count before seasonal
// amplification is 1 + lambda/(1-exp(-lambda)) plus the reactivation rate.
// Seasonal amplification is not modeled analytically; instead the realized
// multiplier is measured from the carts table as the ratio of observed mean
// repeater carts to that baseline. Orders per repeater are then treated as
// Poisson with mu = multiplier * carts * conversion rate, so
// P(repeat order | repeater) = 1 - exp(-mu)*(1+mu).
//
// Drift outside the asymmetric tolerance band produces a warning; under the
// baseline messiness profile warnings fail the audit.
func CheckRepeatRates(ds *Dataset, cfg *config.Config, report *Report) {
	type profile struct {
		segment string
		lambda  float64
	}
	profiles := make(map[string]profile, len(ds.Customers.Rows))
	for _, row := range ds.Customers.Rows {
		channel := row["signup_channel"]
		tier := row["initial_loyalty_tier"]
		lambda := config.SegmentLookup(cfg.Carts.Repeat.AvgRepeatVisits, channel, tier, 1.0)
		if signup, ok := row.Date("signup_date"); ok && len(signup) >= 7 {
			if shock, okShock := cfg.Carts.Repeat.CohortRetentionShock[signup[:7]]; okShock {
				lambda *= shock
			}
		}
		profiles[row["customer_id"]] = profile{
			segment: config.SegmentKey(channel, tier),
			lambda:  lambda,
		}
	}

	cartCounts := make(map[string]int)
	for _, row := range ds.Carts.Rows {
		cartCounts[row["customer_id"]]++
	}
	orderCounts := make(map[string]int)
	for _, row := range ds.Orders.Rows {
		orderCounts[row["customer_id"]]++
	}

	segments := make(map[string]*segmentStats)
	for customerID, carts := range cartCounts {
		prof, ok := profiles[customerID]
		if !ok {
			// Orders reference customers; carts must too. Already caught by
			// the foreign key check, skip here.
			continue
		}
		seg := segments[prof.segment]
		if seg == nil {
			seg = &segmentStats{}
			segments[prof.segment] = seg
		}
		seg.customers++
		seg.lambdaSum += prof.lambda
		seg.pRepeaterSum += 1 - math.Exp(-prof.lambda)
		if carts >= 2 {
			seg.repeaters++
			seg.repeaterCarts += carts
		}
		if orderCounts[customerID] >= 2 {
			seg.multiOrder++
		}
	}

	keys := make([]string, 0, len(segments))
	for k := range segments {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		seg := segments[key]
		if seg.customers < cfg.Audit.MinSegmentCustomers {
			log.Debug().Str("segment", key).Int("customers", seg.customers).
				Msg("Segment below minimum size, skipping repeat rate check")
			continue
		}

		lambda := seg.lambdaSum / float64(seg.customers)
		pRepeater := seg.pRepeaterSum / float64(seg.customers)

		baseCarts := 1.0 + cfg.Carts.ReactivationProbability
		if lambda > 1e-9 {
			baseCarts += lambda / (1 - math.Exp(-lambda))
		}

		multiplier := 1.0
		if seg.repeaters > 0 && baseCarts > 0 {
			multiplier = float64(seg.repeaterCarts) / float64(seg.repeaters) / baseCarts
		}

		mu := multiplier * baseCarts * cfg.Conversion.Rate
		pMulti := 1 - math.Exp(-mu)*(1+mu)
		expected := pRepeater * pMulti
		observed := float64(seg.multiOrder) / float64(seg.customers)
		drift := observed - expected

		log.Debug().Str("segment", key).
			Float64("expected", expected).Float64("observed", observed).
			Float64("seasonal_multiplier", multiplier).
			Msg("Segment repeat-order rate")

		switch {
		case drift < -cfg.Audit.RepeatRateToleranceBelow:
			report.Warnf("repeat_order_rate", "segment %s: observed rate %.4f is %.4f below expected %.4f (tolerance %.4f)",
				key, observed, -drift, expected, cfg.Audit.RepeatRateToleranceBelow)
		case drift > cfg.Audit.RepeatRateToleranceAbove:
			report.Warnf("repeat_order_rate", "segment %s: observed rate %.4f is %.4f above expected %.4f (tolerance %.4f)",
				key, observed, drift, expected, cfg.Audit.RepeatRateToleranceAbove)
		}
	}
}
