package carts

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"ecomgen/internal/config"
	"ecomgen/internal/model"
	"ecomgen/internal/pipeline"
	"ecomgen/internal/randx"
)

// ItemsStage fills every cart with 1..N line items. Category selection is
// biased by the owning customer's signup-channel preferences; basket size and
// quantities come from per-tier ranges. The stage returns its aggregate effect
// on carts as a patch map ({cart_total, updated_at}) and applies it in one
// explicit step.
type ItemsStage struct{}

func (ItemsStage) Table() string { return model.TableCartItems }

func (ItemsStage) Generate(ctx *pipeline.Context, cfg *config.Config) error {
	if len(ctx.Carts) == 0 {
		return fmt.Errorf("shopping carts must be generated before cart items")
	}
	if len(ctx.Products) == 0 {
		return fmt.Errorf("product catalog must be generated before cart items")
	}

	byCategory := indexByCategory(ctx.Products)
	customers := ctx.CustomersByID()

	var items []*model.CartItem
	patches := make(map[string]pipeline.CartPatch, len(ctx.Carts))

	for _, cart := range ctx.Carts {
		cust := customers[cart.CustomerID]
		tier := ""
		channel := ""
		if cust != nil {
			tier = cust.InitialLoyaltyTier
			channel = cust.SignupChannel
		}

		countLo, countHi := config.RangeLookup(cfg.Items.ItemCountRangeByTier, tier, [2]int{1, 8})
		qtyLo, qtyHi := config.RangeLookup(cfg.Items.QuantityRangeByTier, tier, [2]int{1, 5})

		numItems := randx.IntBetween(ctx.Rand, countLo, countHi)
		total := 0.0
		addedAt := cart.CreatedAt

		for n := 0; n < numItems; n++ {
			product, err := pickProduct(ctx, cfg, byCategory, channel)
			if err != nil {
				return err
			}
			quantity := randx.IntBetween(ctx.Rand, qtyLo, qtyHi)

			// added_at advances monotonically within the session and never
			// crosses the simulation end.
			addedAt = addedAt.Add(time.Duration(randx.IntBetween(ctx.Rand, 30, 600)) * time.Second)
			if addedAt.After(ctx.WindowEnd.AddDate(0, 0, 1)) {
				addedAt = ctx.WindowEnd.AddDate(0, 0, 1).Add(-time.Second)
			}

			items = append(items, &model.CartItem{
				CartItemID:  ctx.NextCartItemID(),
				CartID:      cart.CartID,
				ProductID:   product.ProductID,
				ProductName: product.ProductName,
				Category:    product.Category,
				Quantity:    quantity,
				UnitPrice:   product.UnitPrice,
				AddedAt:     addedAt,
			})
			total += product.UnitPrice * float64(quantity)
		}

		patches[cart.CartID] = pipeline.CartPatch{
			CartTotal: math.Round(total*100) / 100,
			UpdatedAt: addedAt,
		}
	}

	applied := pipeline.ApplyCartPatches(ctx.Carts, patches)
	log.Debug().Int("items", len(items)).Int("carts_patched", applied).Msg("Cart items populated")

	ctx.CartItems = items
	return nil
}

// pickProduct draws a category using the channel's preference weights (uniform
// when none are configured), then a product uniformly within that category,
// falling back to the whole catalog for empty categories.
func pickProduct(ctx *pipeline.Context, cfg *config.Config, byCategory map[string][]*model.Product, channel string) (*model.Product, error) {
	prefs := cfg.Items.CategoryPreferences[channel]
	var category string
	if len(prefs) > 0 {
		chosen, err := randx.WeightedChoice(ctx.Rand, prefs)
		if err != nil {
			return nil, fmt.Errorf("category preference for channel %q: %w", channel, err)
		}
		category = chosen
	} else {
		category = randx.Choice(ctx.Rand, cfg.Catalog.Categories)
	}

	pool := byCategory[category]
	if len(pool) == 0 {
		pool = ctx.Products
	}
	return randx.Choice(ctx.Rand, pool), nil
}

func indexByCategory(products []*model.Product) map[string][]*model.Product {
	idx := make(map[string][]*model.Product)
	for _, p := range products {
		idx[p.Category] = append(idx[p.Category], p)
	}
	return idx
}
