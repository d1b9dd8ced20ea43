package orders

import (
	"math"

	"github.com/rs/zerolog/log"

	"ecomgen/internal/config"
	"ecomgen/internal/model"
	"ecomgen/internal/pipeline"
)

// ItemsStage copies each converted cart's items onto its order, stripped of
// cart-specific keys, then recomputes order_total, total_items and
// shipping_cost and applies them as one explicit patch step.
type ItemsStage struct{}

func (ItemsStage) Table() string { return model.TableOrderItems }

func (ItemsStage) Generate(ctx *pipeline.Context, cfg *config.Config) error {
	if len(ctx.Orders) == 0 {
		// No converted carts is a valid, if empty, funnel outcome.
		log.Info().Msg("No orders to materialize items for")
		return nil
	}

	itemsByCart := make(map[string][]*model.CartItem)
	for _, item := range ctx.CartItems {
		itemsByCart[item.CartID] = append(itemsByCart[item.CartID], item)
	}

	orders := ctx.OrdersByID()
	var orderItems []*model.OrderItem
	patches := make(map[string]pipeline.OrderPatch, len(ctx.Orders))

	for _, cart := range ctx.ConvertedCarts {
		orderID, ok := ctx.CartOrder[cart.CartID]
		if !ok {
			continue
		}
		cartItems := itemsByCart[cart.CartID]
		if len(cartItems) == 0 {
			// Item-level sparsity is valid; the order just ends up empty.
			log.Debug().Str("order_id", orderID).Msg("Converted cart has no items, order left empty")
			continue
		}

		total := 0.0
		totalItems := 0
		for _, item := range cartItems {
			orderItems = append(orderItems, &model.OrderItem{
				OrderItemID: ctx.NextOrderItemID(),
				OrderID:     orderID,
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Category:    item.Category,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
			})
			total += float64(item.Quantity) * item.UnitPrice
			totalItems += item.Quantity
		}

		total = math.Round(total*100) / 100
		order := orders[orderID]
		patches[orderID] = pipeline.OrderPatch{
			OrderTotal:   total,
			TotalItems:   totalItems,
			ShippingCost: shippingCost(cfg, order.ShippingSpeed, total),
		}
	}

	applied := pipeline.ApplyOrderPatches(ctx.Orders, patches)
	log.Debug().Int("order_items", len(orderItems)).Int("orders_patched", applied).Msg("Order items materialized")

	ctx.OrderItems = orderItems
	return nil
}
