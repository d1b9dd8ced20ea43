package returns

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

func seedOrder(ctx *pipeline.Context, date time.Time, total float64) *model.Order {
	order := &model.Order{
		OrderID:       ctx.NextOrderID(),
		OrderDate:     date,
		CustomerID:    "CUST-1000",
		OrderChannel:  "Web",
		PaymentMethod: "Credit Card",
		OrderTotal:    total,
	}
	ctx.Orders = append(ctx.Orders, order)
	ctx.OrderItems = append(ctx.OrderItems, &model.OrderItem{
		OrderItemID: ctx.NextOrderItemID(),
		OrderID:     order.OrderID,
		ProductID:   1,
		ProductName: "Wireless Mouse",
		Category:    "Electronics",
		Quantity:    1,
		UnitPrice:   total,
	})
	return order
}

func TestStageRequiresOrders(t *testing.T) {
	if err := (Stage{}).Generate(testContext(1), testConfig(t)); err == nil {
		t.Error("stage must refuse to run without orders")
	}
}

func TestStageRateZeroProducesNoReturns(t *testing.T) {
	cfg := testConfig(t)
	cfg.Returns.RateByChannel = nil
	cfg.Returns.DefaultRate = 0

	ctx := testContext(2)
	for i := 0; i < 50; i++ {
		seedOrder(ctx, time.Date(2026, 1, 10, 10, 0, 0, 0, time.UTC), 30)
	}
	if err := (Stage{}).Generate(ctx, cfg); err != nil {
		t.Fatal(err)
	}
	if len(ctx.Returns) != 0 {
		t.Errorf("rate 0 produced %d returns", len(ctx.Returns))
	}
}

func TestStageReturnsNeverPrecedeOrders(t *testing.T) {
	cfg := testConfig(t)
	cfg.Returns.RateByChannel = map[string]float64{"Web": 1.0}
	cfg.Returns.MultiReturnProbability = 0.5

	ctx := testContext(3)
	for i := 0; i < 60; i++ {
		seedOrder(ctx, time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC).AddDate(0, 0, i), 30)
	}
	if err := (Stage{}).Generate(ctx, cfg); err != nil {
		t.Fatal(err)
	}
	if len(ctx.Returns) == 0 {
		t.Fatal("rate 1 produced no returns")
	}

	orderDates := make(map[string]time.Time)
	for _, o := range ctx.Orders {
		orderDates[o.OrderID] = o.OrderDate
	}
	end := ctx.WindowEnd
	for _, r := range ctx.Returns {
		day := orderDates[r.OrderID].Truncate(24 * time.Hour)
		if r.ReturnDate.Before(day) {
			t.Errorf("return %s dated %v before its order %v", r.ReturnID, r.ReturnDate, day)
		}
		if r.ReturnDate.After(end) {
			t.Errorf("return %s dated %v beyond the window end", r.ReturnID, r.ReturnDate)
		}
	}
}

func TestStageSecondReturnStrictlyLater(t *testing.T) {
	cfg := testConfig(t)
	cfg.Returns.RateByChannel = map[string]float64{"Web": 1.0}
	cfg.Returns.MultiReturnProbability = 1.0

	ctx := testContext(4)
	for i := 0; i < 40; i++ {
		seedOrder(ctx, time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC).AddDate(0, 0, i), 30)
	}
	if err := (Stage{}).Generate(ctx, cfg); err != nil {
		t.Fatal(err)
	}

	byOrder := make(map[string][]*model.Return)
	for _, r := range ctx.Returns {
		byOrder[r.OrderID] = append(byOrder[r.OrderID], r)
	}
	multi := 0
	for orderID, rets := range byOrder {
		if len(rets) < 2 {
			continue
		}
		multi++
		if !rets[1].ReturnDate.After(rets[0].ReturnDate) {
			t.Errorf("order %s second return %v not strictly after first %v", orderID, rets[1].ReturnDate, rets[0].ReturnDate)
		}
	}
	if multi == 0 {
		t.Error("multi-return probability 1 produced no second returns")
	}
}

func TestStageSuppressesOutOfWindowReturns(t *testing.T) {
	cfg := testConfig(t)
	cfg.Returns.RateByChannel = map[string]float64{"Web": 1.0}
	cfg.Returns.TimingBuckets = []config.TimingBucket{
		{CumProb: 1.0, MinDays: 30, MaxDays: 45},
	}

	ctx := testContext(5)
	// Orders on the last window day cannot fit a 30+ day return delay.
	end := ctx.WindowEnd
	for i := 0; i < 20; i++ {
		seedOrder(ctx, end, 30)
	}
	if err := (Stage{}).Generate(ctx, cfg); err != nil {
		t.Fatal(err)
	}
	if len(ctx.Returns) != 0 {
		t.Errorf("out-of-window returns not suppressed, got %d", len(ctx.Returns))
	}
}

func TestDrawTimingOffsetHonorsBuckets(t *testing.T) {
	ctx := testContext(6)
	buckets := []config.TimingBucket{
		{CumProb: 0.5, MinDays: 0, MaxDays: 7},
		{CumProb: 0.85, MinDays: 8, MaxDays: 21},
		{CumProb: 1.0, MinDays: 22, MaxDays: 45},
	}
	counts := [3]int{}
	for i := 0; i < 5000; i++ {
		d := drawTimingOffset(ctx, buckets)
		switch {
		case d <= 7:
			counts[0]++
		case d <= 21:
			counts[1]++
		case d <= 45:
			counts[2]++
		default:
			t.Fatalf("offset %d beyond the last bucket", d)
		}
	}
	if counts[0] < 2200 || counts[0] > 2800 {
		t.Errorf("first bucket hit %d of 5000 draws, want about half", counts[0])
	}
	if counts[2] < 500 || counts[2] > 1000 {
		t.Errorf("last bucket hit %d of 5000 draws, want about 15%%", counts[2])
	}
}

func TestRefundMethodMapping(t *testing.T) {
	tests := []struct {
		payment, want string
	}{
		{"PayPal", "PayPal"},
		{"ACH", "ACH"},
		{"Cash", "Cash"},
		{"Credit Card", "Credit Card"},
		{"Apple Pay", "Credit Card"},
		{"Google Pay", "Credit Card"},
		{"Store Credit", "Store Credit"},
		{"", "Unknown"},
	}
	for _, tt := range tests {
		if got := refundMethod(tt.payment); got != tt.want {
			t.Errorf("refundMethod(%q) = %q, want %q", tt.payment, got, tt.want)
		}
	}
}

func TestDrawReturnChannelPreference(t *testing.T) {
	cfg := testConfig(t)
	cfg.Orders.ChannelRules = map[string]config.ChannelRule{
		"Web": {ReturnChannelPreference: "Web"},
	}
	cfg.Returns.ChannelPreferenceProb = 1.0

	ctx := testContext(7)
	for i := 0; i < 50; i++ {
		if got := drawReturnChannel(ctx, cfg, "Web"); got != "Web" {
			t.Fatalf("preference probability 1 drew %q", got)
		}
	}
}
