package returns

import (
	"math"

	"github.com/rs/zerolog/log"

	"ecomgen/internal/config"
	"ecomgen/internal/model"
	"ecomgen/internal/pipeline"
	"ecomgen/internal/randx"
)

// lineItem is one order's aggregated position for a product.
type lineItem struct {
	productID   int
	productName string
	category    string
	quantity    int
	unitPrice   float64
}

// orderLedger aggregates an order's items by product and tracks which
// (order_id, product_id) pairs any prior return already consumed. A pair is
// consumed the moment it appears in a return, even if the refund cap shrank
// its quantity.
type orderLedger struct {
	items    map[string][]*lineItem // order_id -> positions, in first-seen order
	returned map[string]map[int]bool
}

func newOrderLedger(items []*model.OrderItem) *orderLedger {
	l := &orderLedger{
		items:    make(map[string][]*lineItem),
		returned: make(map[string]map[int]bool),
	}
	for _, item := range items {
		positions := l.items[item.OrderID]
		var pos *lineItem
		for _, p := range positions {
			if p.productID == item.ProductID {
				pos = p
				break
			}
		}
		if pos == nil {
			pos = &lineItem{
				productID:   item.ProductID,
				productName: item.ProductName,
				category:    item.Category,
				unitPrice:   item.UnitPrice,
			}
			l.items[item.OrderID] = append(l.items[item.OrderID], pos)
		}
		pos.quantity += item.Quantity
	}
	return l
}

// remaining returns the order's positions not yet consumed by any return.
func (l *orderLedger) remaining(orderID string) []*lineItem {
	var out []*lineItem
	for _, pos := range l.items[orderID] {
		if !l.returned[orderID][pos.productID] {
			out = append(out, pos)
		}
	}
	return out
}

func (l *orderLedger) consume(orderID string, productID int) {
	if l.returned[orderID] == nil {
		l.returned[orderID] = make(map[int]bool)
	}
	l.returned[orderID][productID] = true
}

// ItemsStage selects the line items each return carries. Reason-keyed
// behavior decides full vs. partial returns and partial-quantity
// sub-selection; cumulative refunds per order are capped at the order's
// order_total, shrinking quantity_returned downward when the cap would be
// exceeded. Refund totals and the resolved return type reach the returns
// table through an explicit patch step.
type ItemsStage struct{}

func (ItemsStage) Table() string { return model.TableReturnItems }

func (ItemsStage) Generate(ctx *pipeline.Context, cfg *config.Config) error {
	if len(ctx.Returns) == 0 {
		log.Info().Msg("No returns exist, skipping return items")
		return nil
	}

	ledger := newOrderLedger(ctx.OrderItems)
	orderTotals := make(map[string]float64, len(ctx.Orders))
	for _, o := range ctx.Orders {
		orderTotals[o.OrderID] = o.OrderTotal
	}
	refundedPerOrder := make(map[string]float64)

	var items []*model.ReturnItem
	patches := make(map[string]pipeline.ReturnPatch, len(ctx.Returns))
	emptyReturns := 0

	for _, ret := range ctx.Returns {
		behavior := cfg.Returns.ReasonBehaviorFor(ret.Reason)

		returnType := "Partial"
		if randx.Bernoulli(ctx.Rand, behavior.FullReturnProb) {
			returnType = "Full"
		}

		candidates := ledger.remaining(ret.OrderID)
		if len(candidates) == 0 {
			// Everything was already returned by a prior event; the return
			// stays on file with zero items.
			patches[ret.ReturnID] = pipeline.ReturnPatch{ReturnType: returnType}
			emptyReturns++
			continue
		}

		selected := candidates
		if returnType == "Partial" {
			n := randx.IntBetween(ctx.Rand, 1, len(candidates))
			selected = randx.Sample(ctx.Rand, candidates, n)
		}

		total := 0.0
		for _, pos := range selected {
			qty := pos.quantity
			if returnType == "Partial" && qty > 1 && randx.Bernoulli(ctx.Rand, behavior.PartialQuantityProb) {
				qty = randx.IntBetween(ctx.Rand, 1, pos.quantity-1)
			}

			// Refund cap: never exceed the order's total across all of its
			// returns. The cap shrinks quantity_returned rather than the
			// price.
			remainingRefundable := orderTotals[ret.OrderID] - refundedPerOrder[ret.OrderID]
			if remainingRefundable <= 0 {
				continue
			}
			maxQty := int(remainingRefundable / pos.unitPrice)
			if maxQty <= 0 {
				continue
			}
			if qty > maxQty {
				qty = maxQty
			}

			refund := math.Round(float64(qty)*pos.unitPrice*100) / 100
			items = append(items, &model.ReturnItem{
				ReturnItemID:     ctx.NextReturnItemID(),
				ReturnID:         ret.ReturnID,
				OrderID:          ret.OrderID,
				ProductID:        pos.productID,
				ProductName:      pos.productName,
				Category:         pos.category,
				QuantityReturned: qty,
				UnitPrice:        pos.unitPrice,
				RefundedAmount:   refund,
			})
			ledger.consume(ret.OrderID, pos.productID)
			refundedPerOrder[ret.OrderID] += refund
			total += refund
		}

		patches[ret.ReturnID] = pipeline.ReturnPatch{
			RefundedAmount: math.Round(total*100) / 100,
			ReturnType:     returnType,
		}
	}

	applied := pipeline.ApplyReturnPatches(ctx.Returns, patches)
	log.Debug().
		Int("return_items", len(items)).
		Int("returns_patched", applied).
		Int("empty_returns", emptyReturns).
		Msg("Return items generated")

	ctx.ReturnItems = items
	return nil
}
