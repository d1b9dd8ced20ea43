// Package carts implements the customer lifecycle simulation: shopping
// sessions (initial, organic repeat, reactivation and seasonal clone carts)
// and the line items that fill them.
package carts

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"ecomgen/internal/config"
	"ecomgen/internal/model"
	"ecomgen/internal/pipeline"
	"ecomgen/internal/randx"
)

// LifecycleStage turns the static customer pool into a chronologically
// plausible set of carts per customer:
//
//  1. initial sessions for a sample of customers (at most one first cart each)
//  2. organic repeat visits: Poisson(lambda) count per segment, log-normal
//     inter-visit delays
//  3. an independent reactivation cart per customer with configured probability
//  4. seasonal volume amplification, applied only to customers who were
//     already repeaters before amplification
type LifecycleStage struct{}

func (LifecycleStage) Table() string { return model.TableShoppingCarts }

func (LifecycleStage) Generate(ctx *pipeline.Context, cfg *config.Config) error {
	if len(ctx.Customers) == 0 {
		return fmt.Errorf("customers must be generated before shopping carts")
	}

	cc := cfg.Carts
	sampled := randx.Sample(ctx.Rand, ctx.Customers, cc.TargetSessions)

	var carts []*model.Cart
	perCustomer := make(map[string][]*model.Cart, len(sampled))

	newCart := func(cust *model.Customer, at time.Time, reactivation bool) *model.Cart {
		cart := &model.Cart{
			CartID:             ctx.NextCartID(),
			CustomerID:         cust.CustomerID,
			CreatedAt:          at,
			UpdatedAt:          at,
			Status:             model.CartStatusOpen,
			IsReactivationCart: reactivation,
		}
		carts = append(carts, cart)
		perCustomer[cust.CustomerID] = append(perCustomer[cust.CustomerID], cart)
		return cart
	}

	for _, cust := range sampled {
		firstDate := firstCartDate(ctx, cfg, cust)
		newCart(cust, withClock(ctx, firstDate), false)

		// Organic repeats. lambda is the segment propensity scaled by any
		// cohort retention shock for the signup month.
		lambda := config.SegmentLookup(cc.Repeat.AvgRepeatVisits, cust.SignupChannel, cust.InitialLoyaltyTier, 0)
		if !cust.SignupDate.IsZero() {
			if shock, ok := cc.Repeat.CohortRetentionShock[cust.SignupDate.Format("2006-01")]; ok {
				lambda *= shock
			}
		}
		numRepeats := randx.Poisson(ctx.Rand, lambda)

		meanDelay := float64(cc.Repeat.DelayDaysRange[0]+cc.Repeat.DelayDaysRange[1]) / 2
		sigma := config.SegmentLookup(cc.Repeat.DelaySigma, cust.SignupChannel, cust.InitialLoyaltyTier, 0.5)

		last := firstDate
		for v := 0; v < numRepeats; v++ {
			delay := int(math.Round(randx.LogNormalDays(ctx.Rand, meanDelay, sigma)))
			if delay < 1 {
				delay = 1
			}
			next := last.AddDate(0, 0, delay)
			if next.After(ctx.WindowEnd) {
				// Re-draw uniformly within the remaining window instead of
				// dropping the visit. Dropping would bias the observed
				// repeat rate below the configured lambda.
				remaining := daysBetween(last, ctx.WindowEnd)
				if remaining < 1 {
					next = ctx.WindowEnd
				} else {
					next = last.AddDate(0, 0, randx.IntBetween(ctx.Rand, 1, remaining))
				}
			}
			newCart(cust, withClock(ctx, next), false)
			last = next
		}

		// Reactivation is an independent trial anchored to the first cart; it
		// runs after the Poisson chain and never feeds back into it.
		if randx.Bernoulli(ctx.Rand, cc.ReactivationProbability) {
			at := firstDate.AddDate(0, 0, randx.IntBetween(ctx.Rand, cc.ReactivationDelayDays[0], cc.ReactivationDelayDays[1]))
			if at.After(ctx.WindowEnd) {
				at = ctx.WindowEnd
			}
			newCart(cust, withClock(ctx, at), true)
		}
	}

	clones := amplifySeasonal(ctx, cfg, perCustomer, func(cust string, at time.Time) *model.Cart {
		cart := &model.Cart{
			CartID:     ctx.NextCartID(),
			CustomerID: cust,
			CreatedAt:  at,
			UpdatedAt:  at,
			Status:     model.CartStatusOpen,
		}
		carts = append(carts, cart)
		return cart
	})

	log.Debug().
		Int("customers", len(sampled)).
		Int("carts", len(carts)).
		Int("seasonal_clones", clones).
		Msg("Cart lifecycle simulation complete")

	ctx.Carts = carts
	return nil
}

// firstCartDate places a customer's first session after signup (uniform delay,
// clamped into the simulation window), or uniformly in-window for guests and
// customers without a usable signup date.
func firstCartDate(ctx *pipeline.Context, cfg *config.Config, cust *model.Customer) time.Time {
	delayLo, delayHi := cfg.Carts.FirstCartDelayDays[0], cfg.Carts.FirstCartDelayDays[1]
	if cust.SignupDate.IsZero() || cust.SignupDate.After(ctx.WindowEnd) {
		return randx.DateBetween(ctx.Rand, ctx.WindowStart, ctx.WindowEnd)
	}
	d := cust.SignupDate.AddDate(0, 0, randx.IntBetween(ctx.Rand, delayLo, delayHi))
	if d.Before(ctx.WindowStart) {
		d = ctx.WindowStart
	}
	if d.After(ctx.WindowEnd) {
		d = ctx.WindowEnd
	}
	return d
}

// amplifySeasonal adds clone carts in months whose multiplier exceeds 1.0.
// Only customers who are already repeaters (more than one cart before
// amplification) are eligible; amplifying single-cart customers would inflate
// the repeat-customer rate the audit layer checks against.
func amplifySeasonal(ctx *pipeline.Context, cfg *config.Config, perCustomer map[string][]*model.Cart, add func(cust string, at time.Time) *model.Cart) int {
	multipliers := cfg.Carts.SeasonalMultipliers
	if len(multipliers) == 0 {
		return 0
	}

	clones := 0
	for _, cust := range sortedKeys(perCustomer) {
		own := perCustomer[cust]
		if len(own) < 2 {
			continue
		}
		for _, cart := range own {
			m, ok := multipliers[int(cart.CreatedAt.Month())]
			if !ok || m <= 1.0 {
				continue
			}
			extra := int(m - 1)
			if randx.Bernoulli(ctx.Rand, (m-1)-float64(extra)) {
				extra++
			}
			for k := 0; k < extra; k++ {
				add(cust, cloneTime(ctx, cart.CreatedAt))
				clones++
			}
		}
	}
	return clones
}

// cloneTime offsets a clone by a few days while keeping it inside the original
// cart's month and the simulation window.
func cloneTime(ctx *pipeline.Context, base time.Time) time.Time {
	at := base.AddDate(0, 0, randx.IntBetween(ctx.Rand, -3, 3))
	if at.Month() != base.Month() || at.Year() != base.Year() {
		at = base
	}
	if at.After(ctx.WindowEnd) {
		at = base
	}
	if at.Before(ctx.WindowStart) {
		at = base
	}
	return at
}

// withClock attaches a business-hours clock time to a calendar day.
func withClock(ctx *pipeline.Context, day time.Time) time.Time {
	day = randx.Midnight(day)
	return day.Add(time.Duration(randx.IntBetween(ctx.Rand, 8*3600, 22*3600-1)) * time.Second)
}

func daysBetween(a, b time.Time) int {
	return int(randx.Midnight(b).Sub(randx.Midnight(a)).Hours() / 24)
}

func sortedKeys(m map[string][]*model.Cart) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
