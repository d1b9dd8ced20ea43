// Package mess degrades the pristine dataset on request. Stylistic noise
// (stray whitespace, casing drift), dropped optional values and, at the
// higher levels, structural bias in order volumes and return reasons.
package mess

import (
	"math/rand"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog/log"

	"ecomgen/internal/config"
	"ecomgen/internal/model"
	"ecomgen/internal/randx"
	"ecomgen/internal/sink"
)

type probs struct {
	whitespace float64
	casing     float64
	null       float64
}

var levelProbs = map[string]probs{
	config.MessinessLight:  {whitespace: 0.05, casing: 0.05, null: 0.02},
	config.MessinessMedium: {whitespace: 0.08, casing: 0.08, null: 0.04},
	config.MessinessHeavy:  {whitespace: 0.15, casing: 0.15, null: 0.08},
}

// stylisticColumns lists the string columns eligible for whitespace and
// casing noise per table.
var stylisticColumns = map[string][]string{
	model.TableOrders:         {"order_channel", "payment_method", "shipping_speed", "customer_tier", "clv_bucket"},
	model.TableOrderItems:     {"product_name", "category"},
	model.TableReturns:        {"reason", "return_type", "return_channel"},
	model.TableReturnItems:    {"product_name"},
	model.TableProductCatalog: {"product_name", "category"},
	model.TableCustomers:      {"gender", "customer_status", "signup_channel", "loyalty_tier"},
}

// nullColumns lists optional columns whose values may be blanked out.
var nullColumns = map[string][]string{
	model.TableCustomers: {"email_verified", "marketing_opt_in"},
	model.TableOrders:    {"agent_id"},
	model.TableReturns:   {"agent_id"},
}

// Inject corrupts the rendered tables in place according to the messiness
// level. Baseline is a no-op.
func Inject(rng *rand.Rand, level string, tables []sink.TableData, cfg *config.Config) {
	p, ok := levelProbs[level]
	if !ok {
		return
	}
	log.Info().Str("level", level).Msg("Injecting messiness")

	for _, t := range tables {
		injectStylistic(rng, t, p)
		injectNulls(rng, t, p.null)
	}

	if level == config.MessinessMedium || level == config.MessinessHeavy {
		spikeOrderVolumes(rng, tables, level)
		biasReturnReasons(rng, tables, level, cfg)
	}
}

func columnIndices(t sink.TableData, names []string) []int {
	var idx []int
	for _, name := range names {
		for i, col := range t.Columns {
			if col == name {
				idx = append(idx, i)
				break
			}
		}
	}
	return idx
}

func injectStylistic(rng *rand.Rand, t sink.TableData, p probs) {
	idx := columnIndices(t, stylisticColumns[t.Name])
	if len(idx) == 0 {
		return
	}
	pads := []string{" ", "  "}
	for _, row := range t.Rows {
		for _, i := range idx {
			v := row[i]
			if v == "" {
				continue
			}
			if rng.Float64() < p.whitespace {
				v = randx.Choice(rng, pads) + strings.TrimSpace(v) + randx.Choice(rng, pads)
			}
			if rng.Float64() < p.casing {
				switch rng.Intn(3) {
				case 0:
					v = strings.ToUpper(v)
				case 1:
					v = strings.ToLower(v)
				default:
					v = titleCase(v)
				}
			}
			row[i] = v
		}
	}
}

func injectNulls(rng *rand.Rand, t sink.TableData, prob float64) {
	idx := columnIndices(t, nullColumns[t.Name])
	for _, row := range t.Rows {
		for _, i := range idx {
			if row[i] != "" && rng.Float64() < prob {
				row[i] = ""
			}
		}
	}
}

func titleCase(s string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}

// spikeOrderVolumes multiplies total_items for every order in one month,
// simulating an unexplained demand spike an analyst should notice.
func spikeOrderVolumes(rng *rand.Rand, tables []sink.TableData, level string) {
	factor := 1.5
	if level == config.MessinessHeavy {
		factor = 2.0
	}

	var orders *sink.TableData
	for i := range tables {
		if tables[i].Name == model.TableOrders {
			orders = &tables[i]
			break
		}
	}
	if orders == nil {
		return
	}
	dateIdx := columnIndices(*orders, []string{"order_date"})
	itemsIdx := columnIndices(*orders, []string{"total_items"})
	if len(dateIdx) == 0 || len(itemsIdx) == 0 {
		return
	}

	monthSet := make(map[time.Month]bool)
	for _, row := range orders.Rows {
		if d, err := time.Parse(model.DateLayout, row[dateIdx[0]]); err == nil {
			monthSet[d.Month()] = true
		}
	}
	if len(monthSet) == 0 {
		return
	}
	var months []time.Month
	for m := time.January; m <= time.December; m++ {
		if monthSet[m] {
			months = append(months, m)
		}
	}
	spiked := randx.Choice(rng, months)

	count := 0
	for _, row := range orders.Rows {
		d, err := time.Parse(model.DateLayout, row[dateIdx[0]])
		if err != nil || d.Month() != spiked {
			continue
		}
		if items, err := strconv.Atoi(row[itemsIdx[0]]); err == nil {
			row[itemsIdx[0]] = strconv.Itoa(int(float64(items) * factor))
			count++
		}
	}
	log.Debug().Str("month", spiked.String()).Float64("factor", factor).Int("orders", count).
		Msg("Spiked order volumes")
}

// biasReturnReasons redraws a share of return reasons from the category
// weight tables, drowning the organic reason distribution in noise.
func biasReturnReasons(rng *rand.Rand, tables []sink.TableData, level string, cfg *config.Config) {
	overwriteProb := 0.25
	if level == config.MessinessHeavy {
		overwriteProb = 0.50
	}

	var returns, orderItems *sink.TableData
	for i := range tables {
		switch tables[i].Name {
		case model.TableReturns:
			returns = &tables[i]
		case model.TableOrderItems:
			orderItems = &tables[i]
		}
	}
	if returns == nil || orderItems == nil || len(cfg.Returns.ReasonWeights) == 0 {
		return
	}

	oiOrderIdx := columnIndices(*orderItems, []string{"order_id"})
	oiCatIdx := columnIndices(*orderItems, []string{"category"})
	if len(oiOrderIdx) == 0 || len(oiCatIdx) == 0 {
		return
	}
	orderCategory := make(map[string]string)
	for _, row := range orderItems.Rows {
		if _, seen := orderCategory[row[oiOrderIdx[0]]]; !seen {
			orderCategory[row[oiOrderIdx[0]]] = strings.ToLower(strings.TrimSpace(row[oiCatIdx[0]]))
		}
	}

	rOrderIdx := columnIndices(*returns, []string{"order_id"})
	rReasonIdx := columnIndices(*returns, []string{"reason"})
	if len(rOrderIdx) == 0 || len(rReasonIdx) == 0 {
		return
	}

	count := 0
	for _, row := range returns.Rows {
		if row[rReasonIdx[0]] == "" || rng.Float64() >= overwriteProb {
			continue
		}
		weights, ok := cfg.Returns.ReasonWeights[orderCategory[row[rOrderIdx[0]]]]
		if !ok {
			weights = cfg.Returns.ReasonWeights[config.SegmentDefault]
		}
		if len(weights) == 0 {
			continue
		}
		reason, err := randx.WeightedChoice(rng, weights)
		if err != nil {
			continue
		}
		row[rReasonIdx[0]] = reason
		count++
	}
	log.Debug().Int("returns", count).Float64("prob", overwriteProb).Msg("Biased return reasons")
}
