package pipeline

import (
	"time"

	"github.com/rs/zerolog/log"

	"ecomgen/internal/model"
)

// Patch maps are the only side channel a stage has for mutating records a
// previous stage already materialized: generate children, compute the
// aggregate patch, then apply it here in one auditable step.

// CartPatch is the cart item populator's aggregate update for one cart.
type CartPatch struct {
	CartTotal float64
	UpdatedAt time.Time
}

// ApplyCartPatches merges cart patches into the materialized carts. The
// updated_at >= created_at invariant is enforced here, at the single point
// where carts are mutated after creation.
func ApplyCartPatches(carts []*model.Cart, patches map[string]CartPatch) int {
	applied := 0
	for _, cart := range carts {
		p, ok := patches[cart.CartID]
		if !ok {
			continue
		}
		cart.CartTotal = p.CartTotal
		cart.UpdatedAt = p.UpdatedAt
		if cart.UpdatedAt.Before(cart.CreatedAt) {
			cart.UpdatedAt = cart.CreatedAt
		}
		applied++
	}
	if applied != len(patches) {
		log.Warn().
			Int("patches", len(patches)).
			Int("applied", applied).
			Msg("Some cart patches did not match a materialized cart")
	}
	return applied
}

// OrderPatch is the order item materializer's aggregate update for one order.
type OrderPatch struct {
	OrderTotal   float64
	TotalItems   int
	ShippingCost float64
}

// ReturnPatch is the return item generator's aggregate update for one return.
type ReturnPatch struct {
	RefundedAmount float64
	ReturnType     string
}

// ApplyOrderPatches merges order patches into the materialized orders and
// reports how many were applied. Unknown order IDs are logged and skipped.
func ApplyOrderPatches(orders []*model.Order, patches map[string]OrderPatch) int {
	applied := 0
	for _, o := range orders {
		p, ok := patches[o.OrderID]
		if !ok {
			continue
		}
		o.OrderTotal = p.OrderTotal
		o.TotalItems = p.TotalItems
		o.ShippingCost = p.ShippingCost
		applied++
	}
	if applied != len(patches) {
		log.Warn().
			Int("patches", len(patches)).
			Int("applied", applied).
			Msg("Some order patches did not match a materialized order")
	}
	return applied
}

// ApplyReturnPatches merges refund totals and the resolved return type into
// the materialized returns.
func ApplyReturnPatches(returns []*model.Return, patches map[string]ReturnPatch) int {
	applied := 0
	for _, r := range returns {
		p, ok := patches[r.ReturnID]
		if !ok {
			continue
		}
		r.RefundedAmount = p.RefundedAmount
		if p.ReturnType != "" {
			r.ReturnType = p.ReturnType
		}
		applied++
	}
	if applied != len(patches) {
		log.Warn().
			Int("patches", len(patches)).
			Int("applied", applied).
			Msg("Some return patches did not match a materialized return")
	}
	return applied
}
