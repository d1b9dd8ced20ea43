package pool

import (
	"math"
	"strings"

	"ecomgen/internal/config"
	"ecomgen/internal/model"
	"ecomgen/internal/pipeline"
	"ecomgen/internal/randx"
)

// CatalogStage generates the static product catalog. Product names come from
// the per-category vocabulary when configured, otherwise from the faker.
type CatalogStage struct{}

func (CatalogStage) Table() string { return model.TableProductCatalog }

func (CatalogStage) Generate(ctx *pipeline.Context, cfg *config.Config) error {
	cc := cfg.Catalog

	products := make([]*model.Product, 0, cc.Count)
	for i := 1; i <= cc.Count; i++ {
		category := randx.Choice(ctx.Rand, cc.Categories)
		products = append(products, &model.Product{
			ProductID:         i,
			ProductName:       productName(ctx, cfg, category),
			Category:          category,
			UnitPrice:         roundMoney(cc.MinPrice + ctx.Rand.Float64()*(cc.MaxPrice-cc.MinPrice)),
			InventoryQuantity: randx.IntBetween(ctx.Rand, cc.MinInventory, cc.MaxInventory),
		})
	}

	ctx.Products = products
	return nil
}

func productName(ctx *pipeline.Context, cfg *config.Config, category string) string {
	vocab, ok := cfg.Catalog.CategoryVocab[strings.ToLower(category)]
	if ok && len(vocab.Adjectives) > 0 && len(vocab.Nouns) > 0 {
		return randx.Choice(ctx.Rand, vocab.Adjectives) + " " + randx.Choice(ctx.Rand, vocab.Nouns)
	}
	return ctx.Faker.ProductName()
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
