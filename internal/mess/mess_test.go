package mess

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"ecomgen/internal/config"
	"ecomgen/internal/model"
	"ecomgen/internal/sink"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Simulation.EndDate = "2026-06-30"
	if err := cfg.Finalize(); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func sampleTables(n int) []sink.TableData {
	orders := sink.TableData{
		Name:    model.TableOrders,
		Columns: model.Columns[model.TableOrders],
	}
	orderItems := sink.TableData{
		Name:    model.TableOrderItems,
		Columns: model.Columns[model.TableOrderItems],
	}
	returns := sink.TableData{
		Name:    model.TableReturns,
		Columns: model.Columns[model.TableReturns],
	}
	for i := 0; i < n; i++ {
		o := &model.Order{
			OrderID:       fmt.Sprintf("ORD-%08d", i+1),
			OrderChannel:  "Web",
			PaymentMethod: "Credit Card",
			ShippingSpeed: "Standard",
			TotalItems:    4,
			AgentID:       "ONLINE",
		}
		orders.Rows = append(orders.Rows, o.Record())
		oi := &model.OrderItem{
			OrderItemID: i + 1,
			OrderID:     o.OrderID,
			ProductID:   1,
			ProductName: "Desk Lamp",
			Category:    "Home",
			Quantity:    1,
			UnitPrice:   17.25,
		}
		orderItems.Rows = append(orderItems.Rows, oi.Record())
		r := &model.Return{
			ReturnID:      fmt.Sprintf("RET-%08d", i+1),
			OrderID:       o.OrderID,
			Reason:        "Defective",
			ReturnType:    "Full",
			ReturnChannel: "Web",
			AgentID:       "ONLINE",
		}
		returns.Rows = append(returns.Rows, r.Record())
	}
	return []sink.TableData{orders, orderItems, returns}
}

func snapshot(tables []sink.TableData) [][]string {
	var out [][]string
	for _, t := range tables {
		for _, row := range t.Rows {
			c := make([]string, len(row))
			copy(c, row)
			out = append(out, c)
		}
	}
	return out
}

func TestInjectBaselineIsNoOp(t *testing.T) {
	tables := sampleTables(50)
	before := snapshot(tables)
	Inject(rand.New(rand.NewSource(1)), config.MessinessBaseline, tables, testConfig(t))

	after := snapshot(tables)
	for i := range before {
		for j := range before[i] {
			if before[i][j] != after[i][j] {
				t.Fatalf("baseline mutated row %d column %d: %q -> %q", i, j, before[i][j], after[i][j])
			}
		}
	}
}

func TestInjectHeavyCorruptsCells(t *testing.T) {
	tables := sampleTables(300)
	before := snapshot(tables)
	Inject(rand.New(rand.NewSource(2)), config.MessinessHeavy, tables, testConfig(t))

	changed := 0
	for i, row := range snapshot(tables) {
		for j := range row {
			if row[j] != before[i][j] {
				changed++
			}
		}
	}
	if changed == 0 {
		t.Fatal("heavy_mess changed nothing")
	}
}

func TestInjectNullsOnlyOptionalColumns(t *testing.T) {
	tables := sampleTables(500)
	Inject(rand.New(rand.NewSource(3)), config.MessinessLight, tables, testConfig(t))

	agentIdx := -1
	for i, col := range model.Columns[model.TableOrders] {
		if col == "agent_id" {
			agentIdx = i
		}
	}
	idIdx := 0 // order_id is the first column

	nulled := 0
	for _, tbl := range tables {
		if tbl.Name != model.TableOrders {
			continue
		}
		for _, row := range tbl.Rows {
			if row[agentIdx] == "" {
				nulled++
			}
			if row[idIdx] == "" {
				t.Fatal("primary key blanked out")
			}
		}
	}
	if nulled == 0 {
		t.Error("light_mess never dropped an optional agent_id")
	}
}

func TestInjectIsDeterministic(t *testing.T) {
	a := sampleTables(100)
	b := sampleTables(100)
	Inject(rand.New(rand.NewSource(7)), config.MessinessMedium, a, testConfig(t))
	Inject(rand.New(rand.NewSource(7)), config.MessinessMedium, b, testConfig(t))

	sa, sb := snapshot(a), snapshot(b)
	for i := range sa {
		for j := range sa[i] {
			if sa[i][j] != sb[i][j] {
				t.Fatalf("same seed diverged at row %d column %d: %q vs %q", i, j, sa[i][j], sb[i][j])
			}
		}
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct{ in, want string }{
		{"credit card", "Credit Card"},
		{"CREDIT CARD", "Credit Card"},
		{"no longer needed", "No Longer Needed"},
		{"in-store", "In-Store"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := titleCase(tt.in); got != tt.want {
			t.Errorf("titleCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStylisticNoisePreservesTrimmedValue(t *testing.T) {
	tables := sampleTables(300)
	Inject(rand.New(rand.NewSource(4)), config.MessinessHeavy, tables, testConfig(t))

	for _, tbl := range tables {
		if tbl.Name != model.TableOrders {
			continue
		}
		chanIdx := -1
		for i, col := range tbl.Columns {
			if col == "order_channel" {
				chanIdx = i
			}
		}
		for _, row := range tbl.Rows {
			v := strings.ToLower(strings.TrimSpace(row[chanIdx]))
			if v != "web" {
				t.Fatalf("stylistic noise destroyed the value: %q", row[chanIdx])
			}
		}
	}
}
