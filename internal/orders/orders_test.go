package orders

import (
	"testing"
	"time"

	"ecomgen/internal/config"
	"ecomgen/internal/model"
	"ecomgen/internal/pipeline"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Simulation.EndDate = "2026-06-30"
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalize config: %v", err)
	}
	return cfg
}

func testContext(seed int64) *pipeline.Context {
	end := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	return pipeline.NewContext(seed, end.AddDate(0, 0, -365), end)
}

func seedConvertedCart(ctx *pipeline.Context, custID string, at time.Time, total float64, reactivation bool) *model.Cart {
	cart := &model.Cart{
		CartID:             ctx.NextCartID(),
		CustomerID:         custID,
		CreatedAt:          at,
		UpdatedAt:          at,
		Status:             model.CartStatusConverted,
		CartTotal:          total,
		IsReactivationCart: reactivation,
	}
	ctx.Carts = append(ctx.Carts, cart)
	ctx.ConvertedCarts = append(ctx.ConvertedCarts, cart)
	return cart
}

func TestStageMaterializesOneOrderPerConvertedCart(t *testing.T) {
	cfg := testConfig(t)
	ctx := testContext(1)
	ctx.Customers = []*model.Customer{{
		CustomerID:     "CUST-1000",
		Email:          "pat.chen@example.com",
		LoyaltyTier:    "Bronze",
		CLVBucket:      "Low",
		MailingAddress: "1 Elm St, Springfield, IL 62701",
		BillingAddress: "1 Elm St, Springfield, IL 62701",
	}}

	at := time.Date(2026, 2, 14, 11, 30, 0, 0, time.UTC)
	cart := seedConvertedCart(ctx, "CUST-1000", at, 120.00, true)

	if err := (Stage{}).Generate(ctx, cfg); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(ctx.Orders) != 1 {
		t.Fatalf("materialized %d orders, want 1", len(ctx.Orders))
	}

	order := ctx.Orders[0]
	if !order.OrderDate.Equal(at) {
		t.Errorf("order date %v, want the cart's created_at %v", order.OrderDate, at)
	}
	if order.Email != "pat.chen@example.com" {
		t.Errorf("order email = %q", order.Email)
	}
	if order.OrderTotal != 120.00 {
		t.Errorf("order total = %.2f, want the cart total", order.OrderTotal)
	}
	if !order.IsReactivated {
		t.Error("reactivation flag not propagated to the order")
	}
	if order.ShippingAddress != "1 Elm St, Springfield, IL 62701" {
		t.Errorf("shipping address = %q", order.ShippingAddress)
	}
	if got := ctx.CartOrder[cart.CartID]; got != order.OrderID {
		t.Errorf("cart-order link = %q, want %q", got, order.OrderID)
	}
}

func TestStageTierSnapshotEvolvesWithSpend(t *testing.T) {
	cfg := testConfig(t)
	ctx := testContext(2)
	ctx.Customers = []*model.Customer{{
		CustomerID:  "CUST-1000",
		LoyaltyTier: "Bronze",
		CLVBucket:   "Low",
	}}

	// Defaults: Silver at 250, Gold at 1000. Three orders walk the customer
	// up the ladder; each snapshot reflects standing including that order.
	at := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	seedConvertedCart(ctx, "CUST-1000", at, 200, false)
	seedConvertedCart(ctx, "CUST-1000", at.AddDate(0, 1, 0), 300, false)
	seedConvertedCart(ctx, "CUST-1000", at.AddDate(0, 2, 0), 600, false)

	if err := (Stage{}).Generate(ctx, cfg); err != nil {
		t.Fatal(err)
	}
	wantTiers := []string{"Bronze", "Silver", "Gold"}
	for i, want := range wantTiers {
		if got := ctx.Orders[i].CustomerTier; got != want {
			t.Errorf("order %d tier snapshot = %q, want %q", i, got, want)
		}
	}
	// Cumulative spend 200, 500, 1100 against CLV thresholds 0/500/2000.
	wantCLV := []string{"Low", "Medium", "Medium"}
	for i, want := range wantCLV {
		if got := ctx.Orders[i].CLVBucket; got != want {
			t.Errorf("order %d clv snapshot = %q, want %q", i, got, want)
		}
	}
}

func TestStageGuestOrdersHaveNoStanding(t *testing.T) {
	cfg := testConfig(t)
	ctx := testContext(3)
	ctx.Customers = []*model.Customer{{
		CustomerID: "GUEST-100000",
		IsGuest:    true,
	}}
	seedConvertedCart(ctx, "GUEST-100000", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), 5000, false)

	if err := (Stage{}).Generate(ctx, cfg); err != nil {
		t.Fatal(err)
	}
	if ctx.Orders[0].CustomerTier != "" || ctx.Orders[0].CLVBucket != "" {
		t.Errorf("guest order carries standing: tier %q, clv %q", ctx.Orders[0].CustomerTier, ctx.Orders[0].CLVBucket)
	}
}

func TestStagePhoneOrdersNeedAgents(t *testing.T) {
	cfg := testConfig(t)
	cfg.Orders.ChannelDistribution = map[string]float64{"Phone": 1.0}
	cfg.AgentPool.Enabled = false

	ctx := testContext(4)
	ctx.Customers = []*model.Customer{{CustomerID: "CUST-1000"}}
	seedConvertedCart(ctx, "CUST-1000", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), 40, false)

	if err := (Stage{}).Generate(ctx, cfg); err == nil {
		t.Error("Phone-only channel with a disabled agent pool must fail")
	}
}

func TestStageAgentAssignment(t *testing.T) {
	cfg := testConfig(t)
	ctx := testContext(5)
	ctx.Customers = []*model.Customer{{CustomerID: "CUST-1000"}}
	for i := 0; i < 40; i++ {
		seedConvertedCart(ctx, "CUST-1000", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), 40, false)
	}

	if err := (Stage{}).Generate(ctx, cfg); err != nil {
		t.Fatal(err)
	}

	valid := map[string]bool{"AGT-001": true, "AGT-002": true, "AGT-003": true}
	for _, o := range ctx.Orders {
		if o.OrderChannel == "Phone" {
			if !valid[o.AgentID] {
				t.Errorf("phone order %s has agent %q outside the pool", o.OrderID, o.AgentID)
			}
		} else if o.AgentID != "ONLINE" {
			t.Errorf("%s order %s has agent %q, want ONLINE", o.OrderChannel, o.OrderID, o.AgentID)
		}
	}
}

func TestStageChannelRulesRestrictPayments(t *testing.T) {
	cfg := testConfig(t)
	cfg.Orders.ChannelDistribution = map[string]float64{"Phone": 1.0}
	cfg.Orders.ChannelRules = map[string]config.ChannelRule{
		"Phone": {AllowedPaymentMethods: []string{"Cash", "ACH"}},
	}

	ctx := testContext(6)
	ctx.Customers = []*model.Customer{{CustomerID: "CUST-1000"}}
	for i := 0; i < 30; i++ {
		seedConvertedCart(ctx, "CUST-1000", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), 40, false)
	}

	if err := (Stage{}).Generate(ctx, cfg); err != nil {
		t.Fatal(err)
	}
	for _, o := range ctx.Orders {
		if o.PaymentMethod != "Cash" && o.PaymentMethod != "ACH" {
			t.Errorf("order %s payment %q violates the channel rule", o.OrderID, o.PaymentMethod)
		}
	}
}

func TestPickByThreshold(t *testing.T) {
	thresholds := map[string]float64{
		"Bronze":   0,
		"Silver":   250,
		"Gold":     1000,
		"Platinum": 2500,
	}
	tests := []struct {
		spend float64
		want  string
	}{
		{0, "Bronze"},
		{249.99, "Bronze"},
		{250, "Silver"},
		{999.99, "Silver"},
		{1000, "Gold"},
		{2500, "Platinum"},
		{1e9, "Platinum"},
	}
	for _, tt := range tests {
		if got := pickByThreshold(thresholds, tt.spend); got != tt.want {
			t.Errorf("pickByThreshold(%v) = %q, want %q", tt.spend, got, tt.want)
		}
	}

	if got := pickByThreshold(nil, 100); got != "" {
		t.Errorf("empty thresholds should yield \"\", got %q", got)
	}
	// Equal thresholds break ties by name for determinism.
	tie := map[string]float64{"Beta": 100, "Alpha": 100}
	if got := pickByThreshold(tie, 150); got != "Alpha" {
		t.Errorf("tie break = %q, want Alpha", got)
	}
}

func TestShippingCost(t *testing.T) {
	cfg := testConfig(t)
	tests := []struct {
		speed string
		total float64
		want  float64
	}{
		{"Standard", 74.99, 5.0},
		{"Standard", 75.00, 0},
		{"Expedited", 500, 12.5},
		{"Overnight", 10, 25.0},
		{"Drone", 10, 5.0}, // unknown speed falls back to the flat default
	}
	for _, tt := range tests {
		if got := shippingCost(cfg, tt.speed, tt.total); got != tt.want {
			t.Errorf("shippingCost(%q, %.2f) = %.2f, want %.2f", tt.speed, tt.total, got, tt.want)
		}
	}
}
