// Package orders materializes converted carts into orders and order items and
// recomputes each customer's earned loyalty status once all orders exist.
package orders

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"ecomgen/internal/config"
	"ecomgen/internal/model"
	"ecomgen/internal/pipeline"
	"ecomgen/internal/randx"
)

// Stage maps every converted cart 1:1 to an order, preserving the cart's
// created_at as the order date. The tier/CLV snapshot on the order is the
// customer's standing at the moment of conversion: it evolves with cumulative
// spend across the customer's order history and is never touched again.
type Stage struct{}

func (Stage) Table() string { return model.TableOrders }

func (Stage) Generate(ctx *pipeline.Context, cfg *config.Config) error {
	customers := ctx.CustomersByID()
	oc := cfg.Orders

	orders := make([]*model.Order, 0, len(ctx.ConvertedCarts))
	cartOrder := make(map[string]string, len(ctx.ConvertedCarts))
	cumulativeSpend := make(map[string]float64)

	for _, cart := range ctx.ConvertedCarts {
		cust := customers[cart.CustomerID]
		if cust == nil {
			log.Warn().Str("cart_id", cart.CartID).Str("customer_id", cart.CustomerID).Msg("Converted cart references unknown customer, skipping")
			continue
		}

		channel, err := randx.WeightedChoice(ctx.Rand, oc.ChannelDistribution)
		if err != nil {
			return fmt.Errorf("order channel: %w", err)
		}

		payment, err := pickPaymentMethod(ctx, cfg, channel)
		if err != nil {
			return err
		}

		speed, err := randx.WeightedChoice(ctx.Rand, oc.ShippingSpeedDistribution)
		if err != nil {
			return fmt.Errorf("shipping speed: %w", err)
		}

		agent, err := assignAgent(ctx, cfg, channel)
		if err != nil {
			return err
		}

		cumulativeSpend[cust.CustomerID] += cart.CartTotal
		tier, clv := snapshotStatus(cfg, cust, cumulativeSpend[cust.CustomerID])

		order := &model.Order{
			OrderID:         ctx.NextOrderID(),
			OrderDate:       cart.CreatedAt,
			CustomerID:      cust.CustomerID,
			Email:           cust.Email,
			OrderChannel:    channel,
			IsExpedited:     randx.Bernoulli(ctx.Rand, oc.ExpeditedPct/100),
			CustomerTier:    tier,
			CLVBucket:       clv,
			OrderTotal:      cart.CartTotal,
			PaymentMethod:   payment,
			ShippingSpeed:   speed,
			ShippingCost:    shippingCost(cfg, speed, cart.CartTotal),
			AgentID:         agent,
			ShippingAddress: cust.MailingAddress,
			BillingAddress:  cust.BillingAddress,
			IsReactivated:   cart.IsReactivationCart,
		}
		orders = append(orders, order)
		cartOrder[cart.CartID] = order.OrderID
	}

	ctx.Orders = orders
	ctx.CartOrder = cartOrder
	return nil
}

// snapshotStatus computes the order-time tier/CLV snapshot. Guests have no
// loyalty standing; non-guests earn it from their cumulative spend, falling
// back to the assigned tier when no thresholds are configured.
func snapshotStatus(cfg *config.Config, cust *model.Customer, spend float64) (tier, clv string) {
	if cust.IsGuest {
		return "", ""
	}
	tier = pickByThreshold(cfg.Tiers.SpendThresholds, spend)
	if tier == "" {
		tier = cust.LoyaltyTier
	}
	clv = pickByThreshold(cfg.Tiers.CLVThresholds, spend)
	if clv == "" {
		clv = cust.CLVBucket
	}
	return tier, clv
}

// pickByThreshold returns the highest-threshold name with spend >= threshold.
// Ties favor the higher threshold; equal thresholds break by name for
// determinism. Empty threshold tables yield "".
func pickByThreshold(thresholds map[string]float64, spend float64) string {
	if len(thresholds) == 0 {
		return ""
	}
	type entry struct {
		name  string
		value float64
	}
	entries := make([]entry, 0, len(thresholds))
	for name, v := range thresholds {
		entries = append(entries, entry{name, v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].value != entries[j].value {
			return entries[i].value > entries[j].value
		}
		return entries[i].name < entries[j].name
	})
	for _, e := range entries {
		if spend >= e.value {
			return e.name
		}
	}
	return ""
}

// pickPaymentMethod honors a channel's allowed payment set when configured,
// otherwise draws from the global distribution.
func pickPaymentMethod(ctx *pipeline.Context, cfg *config.Config, channel string) (string, error) {
	if rule, ok := cfg.Orders.ChannelRules[channel]; ok && len(rule.AllowedPaymentMethods) > 0 {
		return randx.Choice(ctx.Rand, rule.AllowedPaymentMethods), nil
	}
	method, err := randx.WeightedChoice(ctx.Rand, cfg.Orders.PaymentMethodDistribution)
	if err != nil {
		return "", fmt.Errorf("payment method: %w", err)
	}
	return method, nil
}

// shippingCost is zero for Standard shipping above the free-shipping minimum,
// otherwise the configured flat rate for the speed.
func shippingCost(cfg *config.Config, speed string, orderTotal float64) float64 {
	if speed == "Standard" && orderTotal >= cfg.Orders.FreeShippingMinOrder {
		return 0
	}
	if cost, ok := cfg.Orders.ShippingCosts[speed]; ok {
		return cost
	}
	return 5.0
}

// assignAgent draws an agent for Phone-channel orders/returns; every other
// channel is handled online.
func assignAgent(ctx *pipeline.Context, cfg *config.Config, channel string) (string, error) {
	if channel != "Phone" {
		return "ONLINE", nil
	}
	if !cfg.AgentPool.Enabled || len(cfg.AgentPool.Agents) == 0 {
		return "", fmt.Errorf("agent pool is empty or disabled but channel is Phone")
	}
	return randx.Choice(ctx.Rand, cfg.AgentPool.Agents).ID, nil
}
