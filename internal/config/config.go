// Package config is the parameter store for the generation pipeline. It loads
// a YAML document of distributions, thresholds and rates, applies environment
// overrides from .env, fills documented defaults for anything absent and
// validates the result before any stage runs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"ecomgen/internal/model"
)

// Messiness levels accepted by the generator and the audit. baseline means
// pristine data and the strictest audit profile.
const (
	MessinessBaseline = "baseline"
	MessinessLight    = "light_mess"
	MessinessMedium   = "medium_mess"
	MessinessHeavy    = "heavy_mess"
)

// SegmentDefault is the fallback key for any segment-keyed parameter map.
const SegmentDefault = "default"

type Config struct {
	Seed       int64      `yaml:"seed" validate:"required"`
	OutputDir  string     `yaml:"output_dir" validate:"required"`
	Messiness  string     `yaml:"messiness" validate:"oneof=baseline light_mess medium_mess heavy_mess"`
	Simulation Simulation `yaml:"simulation"`
	Customers  Customers  `yaml:"customers"`
	Catalog    Catalog    `yaml:"catalog"`
	Carts      Carts      `yaml:"carts"`
	Items      Items      `yaml:"items"`
	Conversion Conversion `yaml:"conversion"`
	Orders     Orders     `yaml:"orders"`
	Tiers      Tiers      `yaml:"tiers"`
	Returns    Returns    `yaml:"returns"`
	Audit      Audit      `yaml:"audit"`
	AgentPool  AgentPool  `yaml:"agent_pool"`

	// Resolved simulation window, fixed at load time so that a run is fully
	// determined by (seed, config document, load date).
	windowStart time.Time
	windowEnd   time.Time
}

type Simulation struct {
	// EndDate anchors all date generation; empty means today.
	EndDate       string `yaml:"end_date"`
	OrderDaysBack int    `yaml:"order_days_back" validate:"gt=0"`
	SignupYears   int    `yaml:"signup_years" validate:"gt=0"`
}

type Customers struct {
	Count                 int                           `yaml:"count" validate:"gt=0"`
	GuestPct              float64                       `yaml:"guest_pct" validate:"gte=0,lt=1"`
	IDStart               int                           `yaml:"id_start" validate:"gte=0"`
	MinAge                int                           `yaml:"min_age" validate:"gt=0"`
	MaxAge                int                           `yaml:"max_age" validate:"gtefield=MinAge"`
	GenderUnknownProb     float64                       `yaml:"gender_unknown_prob" validate:"gte=0,lte=1"`
	NoTierProbability     float64                       `yaml:"no_tier_probability" validate:"gte=0,lte=1"`
	EmailVerifiedProb     float64                       `yaml:"email_verified_prob" validate:"gte=0,lte=1"`
	MarketingOptInProb    float64                       `yaml:"marketing_opt_in_prob" validate:"gte=0,lte=1"`
	StatusProbs           map[string]float64            `yaml:"status_probs"`
	SignupChannelDist     map[string]float64            `yaml:"signup_channel_distribution"`
	LoyaltyDistByChannel  map[string]map[string]float64 `yaml:"loyalty_distribution_by_channel"`
	GuestContactPoolSize  int                           `yaml:"guest_contact_pool_size" validate:"gt=0"`
	GuestContactReuseProb float64                       `yaml:"guest_contact_reuse_prob" validate:"gte=0,lte=1"`
}

type Catalog struct {
	Count         int                      `yaml:"count" validate:"gt=0"`
	MinPrice      float64                  `yaml:"min_price" validate:"gt=0"`
	MaxPrice      float64                  `yaml:"max_price" validate:"gtefield=MinPrice"`
	MinInventory  int                      `yaml:"min_inventory" validate:"gte=0"`
	MaxInventory  int                      `yaml:"max_inventory" validate:"gtefield=MinInventory"`
	Categories    []string                 `yaml:"categories" validate:"min=1"`
	CategoryVocab map[string]CategoryVocab `yaml:"category_vocab"`
}

type CategoryVocab struct {
	Adjectives []string `yaml:"adjectives"`
	Nouns      []string `yaml:"nouns"`
}

type Carts struct {
	TargetSessions          int     `yaml:"target_sessions" validate:"gt=0"`
	FirstCartDelayDays      []int   `yaml:"first_cart_delay_days" validate:"len=2"`
	Repeat                  Repeat  `yaml:"repeat"`
	ReactivationProbability float64 `yaml:"reactivation_probability" validate:"gte=0,lte=1"`
	ReactivationDelayDays   []int   `yaml:"reactivation_delay_days" validate:"len=2"`
	// SeasonalMultipliers is keyed by month number (1-12); values > 1.0
	// amplify repeater cart volume in that month.
	SeasonalMultipliers map[int]float64 `yaml:"seasonal_multipliers"`
}

type Repeat struct {
	// AvgRepeatVisits holds the Poisson lambda per "channel|tier" segment key,
	// with a "default" fallback.
	AvgRepeatVisits map[string]float64 `yaml:"avg_repeat_visits"`
	DelayDaysRange  []int              `yaml:"delay_days_range" validate:"len=2"`
	// DelaySigma is the log-normal sigma per segment key.
	DelaySigma map[string]float64 `yaml:"delay_sigma"`
	// CohortRetentionShock scales lambda for cohorts keyed by signup month
	// ("2025-11").
	CohortRetentionShock map[string]float64 `yaml:"cohort_retention_shock"`
}

type Items struct {
	// ItemCountRangeByTier and QuantityRangeByTier are keyed by loyalty tier
	// with a "default" fallback.
	ItemCountRangeByTier map[string][]int `yaml:"item_count_range_by_tier"`
	QuantityRangeByTier  map[string][]int `yaml:"quantity_range_by_tier"`
	// CategoryPreferences biases category selection per signup channel.
	CategoryPreferences map[string]map[string]float64 `yaml:"category_preferences"`
}

type Conversion struct {
	Rate                     float64            `yaml:"rate" validate:"gte=0,lte=1"`
	FirstPurchaseBoost       map[string]float64 `yaml:"first_purchase_boost"`
	AbandonedCartEmptiedProb float64            `yaml:"abandoned_cart_emptied_prob" validate:"gte=0,lte=1"`
}

type Orders struct {
	ChannelDistribution       map[string]float64     `yaml:"channel_distribution" validate:"min=1"`
	PaymentMethodDistribution map[string]float64     `yaml:"payment_method_distribution" validate:"min=1"`
	ChannelRules              map[string]ChannelRule `yaml:"channel_rules"`
	ShippingSpeedDistribution map[string]float64     `yaml:"shipping_speed_distribution" validate:"min=1"`
	ShippingCosts             map[string]float64     `yaml:"shipping_costs"`
	FreeShippingMinOrder      float64                `yaml:"free_shipping_min_order" validate:"gte=0"`
	ExpeditedPct              float64                `yaml:"expedited_pct" validate:"gte=0,lte=100"`
}

type ChannelRule struct {
	AllowedPaymentMethods   []string `yaml:"allowed_payment_methods"`
	ReturnChannelPreference string   `yaml:"return_channel_preference"`
}

type Tiers struct {
	LoyaltyTiers    []string           `yaml:"loyalty_tiers" validate:"min=1"`
	SpendThresholds map[string]float64 `yaml:"spend_thresholds"`
	CLVThresholds   map[string]float64 `yaml:"clv_thresholds"`
	CLVMap          map[string]string  `yaml:"clv_map"`
}

type Returns struct {
	RateByChannel          map[string]float64 `yaml:"rate_by_channel"`
	DefaultRate            float64            `yaml:"default_rate" validate:"gte=0,lte=1"`
	MultiReturnProbability float64            `yaml:"multi_return_probability" validate:"gte=0,lte=1"`
	// TimingBuckets define the return delay distribution as tiered buckets
	// with cumulative probabilities; buckets must be ordered by CumProb.
	TimingBuckets []TimingBucket                `yaml:"timing_buckets" validate:"min=1,dive"`
	ReasonWeights map[string]map[string]float64 `yaml:"reason_weights"`
	// ReasonBehavior keys full/partial behavior by return reason, with a
	// "default" fallback.
	ReasonBehavior        map[string]ReasonBehavior `yaml:"reason_behavior"`
	Channels              []string                  `yaml:"channels" validate:"min=1"`
	ChannelPreferenceProb float64                   `yaml:"channel_preference_prob" validate:"gte=0,lte=1"`
}

type TimingBucket struct {
	CumProb float64 `yaml:"cum_prob" validate:"gt=0,lte=1"`
	MinDays int     `yaml:"min_days" validate:"gte=0"`
	MaxDays int     `yaml:"max_days" validate:"gtefield=MinDays"`
}

type ReasonBehavior struct {
	FullReturnProb      float64 `yaml:"full_return_prob" validate:"gte=0,lte=1"`
	PartialQuantityProb float64 `yaml:"partial_quantity_prob" validate:"gte=0,lte=1"`
}

type Audit struct {
	// RepeatRateToleranceBelow/Above bound the allowed absolute drift of the
	// observed repeat-order rate against the analytical expectation. Upside
	// variance from clustering is expected, so Above > Below.
	RepeatRateToleranceBelow float64 `yaml:"repeat_rate_tolerance_below" validate:"gt=0"`
	RepeatRateToleranceAbove float64 `yaml:"repeat_rate_tolerance_above" validate:"gt=0"`
	MinSegmentCustomers      int     `yaml:"min_segment_customers" validate:"gt=0"`
}

type AgentPool struct {
	Enabled bool    `yaml:"enabled"`
	Agents  []Agent `yaml:"agents" validate:"dive"`
}

type Agent struct {
	ID   string `yaml:"id" validate:"required"`
	Name string `yaml:"name"`
}

// Load reads the YAML document at path (defaults applied underneath), layers
// .env / environment overrides on top and validates the result.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("Loaded environment overrides from .env")
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv("ECOMGEN_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		log.Debug().Str("path", path).Msg("Loaded configuration file")
	}

	applyEnvOverrides(cfg)

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ECOMGEN_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Seed = seed
		}
	}
	if v := os.Getenv("ECOMGEN_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("ECOMGEN_MESSINESS"); v != "" {
		cfg.Messiness = v
	}
}

// Finalize validates the config and resolves the simulation window. It must
// be called after any programmatic mutation of a Default() config.
func (c *Config) Finalize() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	end := time.Now().UTC()
	if c.Simulation.EndDate != "" {
		parsed, err := time.Parse(model.DateLayout, c.Simulation.EndDate)
		if err != nil {
			return fmt.Errorf("invalid simulation end_date %q: %w", c.Simulation.EndDate, err)
		}
		end = parsed
	}
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	c.windowEnd = end
	c.windowStart = end.AddDate(0, 0, -c.Simulation.OrderDaysBack)

	prev := 0.0
	for i, b := range c.Returns.TimingBuckets {
		if b.CumProb <= prev {
			return fmt.Errorf("returns timing bucket %d: cum_prob %f not increasing", i, b.CumProb)
		}
		prev = b.CumProb
	}
	return nil
}

// Window returns the global simulation window for carts, orders and returns.
func (c *Config) Window() (start, end time.Time) {
	return c.windowStart, c.windowEnd
}

// SignupStart returns the earliest signup date; customer history is allowed to
// be longer than the order window.
func (c *Config) SignupStart() time.Time {
	return c.windowEnd.AddDate(0, 0, -c.Simulation.SignupYears*365)
}

// SegmentKey builds the "(signup_channel, initial_tier)" key used by every
// segment-keyed behavioral parameter.
func SegmentKey(channel, tier string) string {
	if channel == "" && tier == "" {
		return SegmentDefault
	}
	return channel + "|" + tier
}

// SegmentLookup resolves a segment-keyed value with a "default" fallback.
func SegmentLookup(m map[string]float64, channel, tier string, fallback float64) float64 {
	if v, ok := m[SegmentKey(channel, tier)]; ok {
		return v
	}
	if v, ok := m[SegmentDefault]; ok {
		return v
	}
	return fallback
}

// RangeLookup resolves a tier-keyed [lo, hi] range with a "default" fallback.
func RangeLookup(m map[string][]int, tier string, fallback [2]int) (int, int) {
	r, ok := m[tier]
	if !ok {
		r, ok = m[SegmentDefault]
	}
	if !ok || len(r) != 2 {
		return fallback[0], fallback[1]
	}
	return r[0], r[1]
}

// ReasonBehaviorFor resolves return behavior for a reason with the default
// fallback behavior.
func (r *Returns) ReasonBehaviorFor(reason string) ReasonBehavior {
	if b, ok := r.ReasonBehavior[reason]; ok {
		return b
	}
	if b, ok := r.ReasonBehavior[SegmentDefault]; ok {
		return b
	}
	return ReasonBehavior{FullReturnProb: 0.5, PartialQuantityProb: 0.5}
}

// FailOnWarning reports whether warn-class audit findings escalate to hard
// failures under this messiness profile.
func (c *Config) FailOnWarning() bool {
	return c.Messiness == MessinessBaseline
}
