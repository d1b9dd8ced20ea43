// Package returns samples which orders incur return events and which line
// items each return carries, under a cross-return exclusion set and a
// cumulative refund cap per order.
package returns

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"ecomgen/internal/config"
	"ecomgen/internal/model"
	"ecomgen/internal/pipeline"
	"ecomgen/internal/randx"
)

// Stage generates zero, one or two return events per order. Each order walks a
// small state machine: none -> first_return -> second_return, gated by the
// channel-specific return rate and the multi-return probability. Return dates
// outside the simulation window suppress the event rather than retrying.
type Stage struct{}

func (Stage) Table() string { return model.TableReturns }

func (Stage) Generate(ctx *pipeline.Context, cfg *config.Config) error {
	if len(ctx.Orders) == 0 {
		return fmt.Errorf("orders must be generated before returns")
	}
	if len(ctx.OrderItems) == 0 {
		log.Warn().Msg("No order items exist, skipping return generation")
		return nil
	}

	rc := cfg.Returns
	categoriesByOrder := make(map[string][]string)
	for _, item := range ctx.OrderItems {
		categoriesByOrder[item.OrderID] = append(categoriesByOrder[item.OrderID], item.Category)
	}

	customers := ctx.CustomersByID()

	var rets []*model.Return
	suppressed := 0

	for _, order := range ctx.Orders {
		if len(categoriesByOrder[order.OrderID]) == 0 {
			continue // order with no items cannot be returned
		}

		rate := rc.DefaultRate
		if r, ok := rc.RateByChannel[order.OrderChannel]; ok {
			rate = r
		}
		if !randx.Bernoulli(ctx.Rand, rate) {
			continue
		}

		orderDay := randx.Midnight(order.OrderDate)

		first := orderDay.AddDate(0, 0, drawTimingOffset(ctx, rc.TimingBuckets))
		if first.After(ctx.WindowEnd) {
			suppressed++
			continue
		}
		firstRet, err := buildReturn(ctx, cfg, order, customers[order.CustomerID], categoriesByOrder[order.OrderID], first)
		if err != nil {
			return err
		}
		rets = append(rets, firstRet)

		if !randx.Bernoulli(ctx.Rand, rc.MultiReturnProbability) {
			continue
		}
		// The second return must land strictly after the first.
		base := orderDay
		if d := first.AddDate(0, 0, 1); d.After(base) {
			base = d
		}
		second := base.AddDate(0, 0, drawTimingOffset(ctx, rc.TimingBuckets))
		if second.After(ctx.WindowEnd) {
			suppressed++
			continue
		}
		secondRet, err := buildReturn(ctx, cfg, order, customers[order.CustomerID], categoriesByOrder[order.OrderID], second)
		if err != nil {
			return err
		}
		rets = append(rets, secondRet)
	}

	log.Info().Int("returns", len(rets)).Int("suppressed", suppressed).Msg("Return events generated")
	ctx.Returns = rets
	return nil
}

func buildReturn(ctx *pipeline.Context, cfg *config.Config, order *model.Order, cust *model.Customer, categories []string, date time.Time) (*model.Return, error) {
	rc := cfg.Returns

	reason, err := drawReason(ctx, rc, categories)
	if err != nil {
		return nil, err
	}

	channel := drawReturnChannel(ctx, cfg, order.OrderChannel)
	agent, err := assignAgent(ctx, cfg, channel)
	if err != nil {
		return nil, err
	}

	email := ""
	if cust != nil {
		email = cust.Email
	}

	return &model.Return{
		ReturnID:      ctx.NextReturnID(),
		OrderID:       order.OrderID,
		CustomerID:    order.CustomerID,
		Email:         email,
		ReturnDate:    date,
		Reason:        reason,
		ReturnChannel: channel,
		RefundMethod:  refundMethod(order.PaymentMethod),
		AgentID:       agent,
	}, nil
}

// drawTimingOffset samples a delay in days from the tiered bucket
// distribution: a uniform draw picks the first bucket whose cumulative
// probability covers it, then the day is uniform within the bucket.
func drawTimingOffset(ctx *pipeline.Context, buckets []config.TimingBucket) int {
	u := ctx.Rand.Float64()
	for _, b := range buckets {
		if u <= b.CumProb {
			return randx.IntBetween(ctx.Rand, b.MinDays, b.MaxDays)
		}
	}
	last := buckets[len(buckets)-1]
	return randx.IntBetween(ctx.Rand, last.MinDays, last.MaxDays)
}

// drawReason weights return reasons by the order's primary (first) item
// category, with the default weight table as fallback.
func drawReason(ctx *pipeline.Context, rc config.Returns, categories []string) (string, error) {
	key := config.SegmentDefault
	if len(categories) > 0 {
		key = strings.ToLower(categories[0])
	}
	weights, ok := rc.ReasonWeights[key]
	if !ok {
		weights = rc.ReasonWeights[config.SegmentDefault]
	}
	reason, err := randx.WeightedChoice(ctx.Rand, weights)
	if err != nil {
		return "", fmt.Errorf("return reason: %w", err)
	}
	return reason, nil
}

// drawReturnChannel follows the order channel's configured return preference
// with the configured probability; otherwise draws uniformly from the general
// return channels.
func drawReturnChannel(ctx *pipeline.Context, cfg *config.Config, orderChannel string) string {
	if rule, ok := cfg.Orders.ChannelRules[orderChannel]; ok && rule.ReturnChannelPreference != "" {
		if randx.Bernoulli(ctx.Rand, cfg.Returns.ChannelPreferenceProb) {
			return rule.ReturnChannelPreference
		}
	}
	return randx.Choice(ctx.Rand, cfg.Returns.Channels)
}

// refundMethod maps the original payment method to where the money goes back.
func refundMethod(payment string) string {
	switch payment {
	case "PayPal", "ACH", "Cash":
		return payment
	case "Credit Card", "Apple Pay", "Google Pay":
		return "Credit Card"
	default:
		if payment != "" {
			return payment
		}
		return "Unknown"
	}
}

func assignAgent(ctx *pipeline.Context, cfg *config.Config, channel string) (string, error) {
	if channel != "Phone" {
		return "ONLINE", nil
	}
	if !cfg.AgentPool.Enabled || len(cfg.AgentPool.Agents) == 0 {
		return "", fmt.Errorf("agent pool is empty or disabled but return channel is Phone")
	}
	return randx.Choice(ctx.Rand, cfg.AgentPool.Agents).ID, nil
}
