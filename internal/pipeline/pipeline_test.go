package pipeline

import (
	"errors"
	"testing"
	"time"

	"ecomgen/internal/config"
	"ecomgen/internal/model"
)

type fakeStage struct {
	table string
	err   error
	runs  *[]string
}

func (s fakeStage) Table() string { return s.table }

func (s fakeStage) Generate(ctx *Context, cfg *config.Config) error {
	if s.runs != nil {
		*s.runs = append(*s.runs, s.table)
	}
	return s.err
}

func TestRegistryRunsInRegistrationOrder(t *testing.T) {
	var runs []string
	r := NewRegistry()
	r.MustRegister(
		fakeStage{table: "alpha", runs: &runs},
		fakeStage{table: "beta", runs: &runs},
		fakeStage{table: "gamma", runs: &runs},
	)

	if err := r.Run(&Context{}, config.Default()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"alpha", "beta", "gamma"}
	if len(runs) != len(want) {
		t.Fatalf("ran %v, want %v", runs, want)
	}
	for i := range want {
		if runs[i] != want[i] {
			t.Errorf("stage %d ran %q, want %q", i, runs[i], want[i])
		}
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(fakeStage{table: "alpha"}); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if err := r.Register(fakeStage{table: "alpha"}); err == nil {
		t.Error("duplicate table registration should fail")
	}
}

func TestRegistryAbortsOnStageError(t *testing.T) {
	var runs []string
	boom := errors.New("boom")
	r := NewRegistry()
	r.MustRegister(
		fakeStage{table: "alpha", runs: &runs},
		fakeStage{table: "beta", runs: &runs, err: boom},
		fakeStage{table: "gamma", runs: &runs},
	)

	err := r.Run(&Context{}, config.Default())
	if !errors.Is(err, boom) {
		t.Fatalf("Run error = %v, want wrapped boom", err)
	}
	if len(runs) != 2 {
		t.Errorf("later stages must not run after a failure, ran %v", runs)
	}
}

func TestContextIDSequences(t *testing.T) {
	ctx := NewContext(1, time.Time{}, time.Time{})
	if got := ctx.NextCartID(); got != "CART-00000001" {
		t.Errorf("first cart ID = %q", got)
	}
	if got := ctx.NextCartID(); got != "CART-00000002" {
		t.Errorf("second cart ID = %q", got)
	}
	if got := ctx.NextOrderID(); got != "ORD-00000001" {
		t.Errorf("first order ID = %q", got)
	}
	if got := ctx.NextReturnID(); got != "RET-00000001" {
		t.Errorf("first return ID = %q", got)
	}
	if got := ctx.NextCartItemID(); got != 1 {
		t.Errorf("first cart item ID = %d", got)
	}
}

func TestApplyCartPatchesEnforcesUpdatedAt(t *testing.T) {
	created := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	carts := []*model.Cart{
		{CartID: "CART-00000001", CreatedAt: created, UpdatedAt: created},
		{CartID: "CART-00000002", CreatedAt: created, UpdatedAt: created},
	}
	patches := map[string]CartPatch{
		"CART-00000001": {CartTotal: 42.50, UpdatedAt: created.Add(10 * time.Minute)},
		"CART-00000002": {CartTotal: 10.00, UpdatedAt: created.Add(-time.Hour)},
		"CART-99999999": {CartTotal: 1.00, UpdatedAt: created},
	}

	if applied := ApplyCartPatches(carts, patches); applied != 2 {
		t.Errorf("applied = %d, want 2", applied)
	}
	if carts[0].CartTotal != 42.50 {
		t.Errorf("cart total = %v, want 42.50", carts[0].CartTotal)
	}
	if carts[1].UpdatedAt.Before(carts[1].CreatedAt) {
		t.Error("updated_at regressed below created_at")
	}
}

func TestApplyReturnPatchesKeepsTypeWhenEmpty(t *testing.T) {
	rets := []*model.Return{{ReturnID: "RET-00000001", ReturnType: "Full"}}
	ApplyReturnPatches(rets, map[string]ReturnPatch{
		"RET-00000001": {RefundedAmount: 12.34},
	})
	if rets[0].ReturnType != "Full" {
		t.Errorf("empty patch type overwrote existing type, got %q", rets[0].ReturnType)
	}
	if rets[0].RefundedAmount != 12.34 {
		t.Errorf("refunded amount = %v, want 12.34", rets[0].RefundedAmount)
	}
}
