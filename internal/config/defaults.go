package config

// Default returns the fully populated baseline configuration. Every value here
// is a documented default that a YAML document may override.
func Default() *Config {
	return &Config{
		Seed:      1,
		OutputDir: "output",
		Messiness: MessinessBaseline,
		Simulation: Simulation{
			OrderDaysBack: 365,
			SignupYears:   2,
		},
		Customers: Customers{
			Count:              1000,
			GuestPct:           0.4,
			IDStart:            1000,
			MinAge:             18,
			MaxAge:             70,
			GenderUnknownProb:  0.05,
			NoTierProbability:  0.1,
			EmailVerifiedProb:  0.8,
			MarketingOptInProb: 0.5,
			StatusProbs: map[string]float64{
				"Active":   0.7,
				"Inactive": 0.2,
				"Dormant":  0.1,
			},
			SignupChannelDist: map[string]float64{
				"Web":        0.55,
				"Mobile App": 0.25,
				"Phone":      0.10,
				"In-Store":   0.10,
			},
			LoyaltyDistByChannel: map[string]map[string]float64{
				SegmentDefault: {
					"Bronze":   0.5,
					"Silver":   0.3,
					"Gold":     0.15,
					"Platinum": 0.05,
				},
			},
			GuestContactPoolSize:  50,
			GuestContactReuseProb: 0.2,
		},
		Catalog: Catalog{
			Count:        100,
			MinPrice:     5.0,
			MaxPrice:     500.0,
			MinInventory: 0,
			MaxInventory: 1000,
			Categories: []string{
				"Electronics", "Apparel", "Home", "Beauty", "Sports",
			},
		},
		Carts: Carts{
			TargetSessions:     600,
			FirstCartDelayDays: []int{0, 45},
			Repeat: Repeat{
				AvgRepeatVisits: map[string]float64{
					SegmentDefault: 0.8,
				},
				DelayDaysRange: []int{30, 180},
				DelaySigma: map[string]float64{
					SegmentDefault: 0.5,
				},
			},
			ReactivationProbability: 0.05,
			ReactivationDelayDays:   []int{60, 240},
		},
		Items: Items{
			ItemCountRangeByTier: map[string][]int{
				SegmentDefault: {1, 8},
			},
			QuantityRangeByTier: map[string][]int{
				SegmentDefault: {1, 5},
			},
		},
		Conversion: Conversion{
			Rate: 0.35,
			FirstPurchaseBoost: map[string]float64{
				SegmentDefault: 1.0,
			},
			AbandonedCartEmptiedProb: 0.15,
		},
		Orders: Orders{
			ChannelDistribution: map[string]float64{
				"Web":        0.6,
				"Mobile App": 0.25,
				"Phone":      0.15,
			},
			PaymentMethodDistribution: map[string]float64{
				"Credit Card": 0.5,
				"PayPal":      0.25,
				"Apple Pay":   0.15,
				"ACH":         0.10,
			},
			ShippingSpeedDistribution: map[string]float64{
				"Standard":  0.7,
				"Expedited": 0.2,
				"Overnight": 0.1,
			},
			ShippingCosts: map[string]float64{
				"Standard":  5.0,
				"Expedited": 12.5,
				"Overnight": 25.0,
			},
			FreeShippingMinOrder: 75.0,
			ExpeditedPct:         20,
		},
		Tiers: Tiers{
			LoyaltyTiers: []string{"Bronze", "Silver", "Gold", "Platinum"},
			SpendThresholds: map[string]float64{
				"Bronze":   0,
				"Silver":   250,
				"Gold":     1000,
				"Platinum": 2500,
			},
			CLVThresholds: map[string]float64{
				"Low":    0,
				"Medium": 500,
				"High":   2000,
			},
			CLVMap: map[string]string{
				"Bronze":   "Low",
				"Silver":   "Medium",
				"Gold":     "High",
				"Platinum": "High",
			},
		},
		Returns: Returns{
			RateByChannel: map[string]float64{
				"Web":        0.18,
				"Mobile App": 0.15,
				"Phone":      0.10,
			},
			DefaultRate:            0.15,
			MultiReturnProbability: 0.07,
			TimingBuckets: []TimingBucket{
				{CumProb: 0.5, MinDays: 0, MaxDays: 7},
				{CumProb: 0.85, MinDays: 8, MaxDays: 21},
				{CumProb: 1.0, MinDays: 22, MaxDays: 45},
			},
			ReasonWeights: map[string]map[string]float64{
				SegmentDefault: {
					"Defective":        0.25,
					"No longer needed": 0.35,
					"Wrong item":       0.2,
					"Other":            0.2,
				},
			},
			ReasonBehavior: map[string]ReasonBehavior{
				"Defective":        {FullReturnProb: 0.7, PartialQuantityProb: 0.2},
				"No longer needed": {FullReturnProb: 0.4, PartialQuantityProb: 0.5},
				SegmentDefault:     {FullReturnProb: 0.5, PartialQuantityProb: 0.4},
			},
			Channels:              []string{"Web", "Phone"},
			ChannelPreferenceProb: 0.9,
		},
		Audit: Audit{
			RepeatRateToleranceBelow: 0.05,
			RepeatRateToleranceAbove: 0.10,
			MinSegmentCustomers:      25,
		},
		AgentPool: AgentPool{
			Enabled: true,
			Agents: []Agent{
				{ID: "AGT-001", Name: "Priya Raman"},
				{ID: "AGT-002", Name: "Marcus Webb"},
				{ID: "AGT-003", Name: "Elena Sousa"},
			},
		},
	}
}
