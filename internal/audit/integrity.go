package audit

import (
	"math"
	"sort"
)

// CheckIntegrity runs the hard-rule battery: uniqueness, referential
// integrity, numeric sanity, order/refund accounting, the emptied-cart
// invariant and return date ordering. All findings here are error class
// except the agent soft rules, which are warnings.
func CheckIntegrity(ds *Dataset, report *Report) {
	checkUnique(ds, report)
	checkForeignKeys(ds, report)
	checkNumericSanity(ds, report)
	checkEmptiedCarts(ds, report)
	checkOrderTotals(ds, report)
	checkRefunds(ds, report)
	checkReturnDates(ds, report)
}

func checkUnique(ds *Dataset, report *Report) {
	for _, spec := range []struct {
		table Table
		key   string
	}{
		{ds.Customers, "customer_id"},
		{ds.Products, "product_id"},
		{ds.Carts, "cart_id"},
		{ds.CartItems, "cart_item_id"},
		{ds.Orders, "order_id"},
		{ds.OrderItems, "order_item_id"},
		{ds.Returns, "return_id"},
		{ds.ReturnItems, "return_item_id"},
	} {
		seen := make(map[string]bool, len(spec.table.Rows))
		for _, row := range spec.table.Rows {
			id := row[spec.key]
			if seen[id] {
				report.Errorf("unique_ids", "duplicate %s %q in %s", spec.key, id, spec.table.Name)
			}
			seen[id] = true
		}
	}
}

func idSet(t Table, key string) map[string]bool {
	set := make(map[string]bool, len(t.Rows))
	for _, row := range t.Rows {
		set[row[key]] = true
	}
	return set
}

func checkForeignKeys(ds *Dataset, report *Report) {
	customers := idSet(ds.Customers, "customer_id")
	products := idSet(ds.Products, "product_id")
	carts := idSet(ds.Carts, "cart_id")
	orders := idSet(ds.Orders, "order_id")
	returns := idSet(ds.Returns, "return_id")

	for _, spec := range []struct {
		table  Table
		field  string
		parent map[string]bool
	}{
		{ds.Carts, "customer_id", customers},
		{ds.CartItems, "cart_id", carts},
		{ds.CartItems, "product_id", products},
		{ds.Orders, "customer_id", customers},
		{ds.OrderItems, "order_id", orders},
		{ds.OrderItems, "product_id", products},
		{ds.Returns, "order_id", orders},
		{ds.ReturnItems, "return_id", returns},
		{ds.ReturnItems, "order_id", orders},
		{ds.ReturnItems, "product_id", products},
	} {
		for _, row := range spec.table.Rows {
			if !spec.parent[row[spec.field]] {
				report.Errorf("fk_integrity", "%s references unknown %s %q", spec.table.Name, spec.field, row[spec.field])
			}
		}
	}
}

func checkNumericSanity(ds *Dataset, report *Report) {
	for _, row := range ds.OrderItems.Rows {
		if qty, ok := row.Int("quantity"); !ok || qty <= 0 || qty > 100 {
			report.Errorf("numeric_sanity", "invalid quantity %q in order_item for order %s", row["quantity"], row["order_id"])
		}
		if price, ok := row.Float("unit_price"); !ok || price < 0 {
			report.Errorf("numeric_sanity", "invalid unit_price %q in order_item for order %s", row["unit_price"], row["order_id"])
		}
	}
	for _, row := range ds.ReturnItems.Rows {
		if qty, ok := row.Int("quantity_returned"); !ok || qty <= 0 || qty > 100 {
			report.Errorf("numeric_sanity", "invalid quantity_returned %q in return_item %s", row["quantity_returned"], row["return_item_id"])
		}
		if amt, ok := row.Float("refunded_amount"); !ok || amt < 0 {
			report.Errorf("numeric_sanity", "invalid refunded_amount %q in return_item %s", row["refunded_amount"], row["return_item_id"])
		}
	}
	for _, row := range ds.Carts.Rows {
		if total, ok := row.Float("cart_total"); !ok || total < 0 {
			report.Errorf("numeric_sanity", "invalid cart_total %q in cart %s", row["cart_total"], row["cart_id"])
		}
	}
}

// checkEmptiedCarts enforces: status == emptied implies cart_total == 0 and no
// cart_items referencing the cart.
func checkEmptiedCarts(ds *Dataset, report *Report) {
	itemCounts := make(map[string]int)
	for _, row := range ds.CartItems.Rows {
		itemCounts[row["cart_id"]]++
	}
	for _, row := range ds.Carts.Rows {
		if row["status"] != "emptied" {
			continue
		}
		if total, ok := row.Float("cart_total"); !ok || total != 0 {
			report.Errorf("emptied_carts", "emptied cart %s has cart_total %q, want 0", row["cart_id"], row["cart_total"])
		}
		if n := itemCounts[row["cart_id"]]; n > 0 {
			report.Errorf("emptied_carts", "emptied cart %s still has %d cart_items", row["cart_id"], n)
		}
	}
}

// checkOrderTotals verifies order_total == sum(quantity x unit_price) within
// one cent per order.
func checkOrderTotals(ds *Dataset, report *Report) {
	sums := make(map[string]float64)
	for _, row := range ds.OrderItems.Rows {
		qty, okQ := row.Int("quantity")
		price, okP := row.Float("unit_price")
		if okQ && okP {
			sums[row["order_id"]] += float64(qty) * price
		}
	}
	for _, row := range ds.Orders.Rows {
		total, ok := row.Float("order_total")
		if !ok {
			report.Errorf("order_totals", "order %s has unparseable order_total %q", row["order_id"], row["order_total"])
			continue
		}
		expected, hasItems := sums[row["order_id"]]
		if !hasItems {
			// Orders without items are a valid sparse outcome; skip.
			continue
		}
		if math.Abs(total-expected) > 0.01 {
			report.Errorf("order_totals", "order %s order_total %.2f != item sum %.2f", row["order_id"], total, expected)
		}
	}
}

// checkRefunds enforces three rules: each return's refunded_amount matches the
// sum of its items, cumulative refunds per order never exceed order_total, and
// no (order_id, product_id) pair repeats across an order's returns.
func checkRefunds(ds *Dataset, report *Report) {
	perReturn := make(map[string]float64)
	perOrder := make(map[string]float64)
	pairSeen := make(map[string]bool)

	for _, row := range ds.ReturnItems.Rows {
		amt, _ := row.Float("refunded_amount")
		perReturn[row["return_id"]] += amt
		perOrder[row["order_id"]] += amt

		pair := row["order_id"] + "\x00" + row["product_id"]
		if pairSeen[pair] {
			report.Errorf("refund_exclusion", "product %s of order %s returned more than once", row["product_id"], row["order_id"])
		}
		pairSeen[pair] = true
	}

	for _, row := range ds.Returns.Rows {
		amt, ok := row.Float("refunded_amount")
		if !ok {
			report.Errorf("refund_totals", "return %s has unparseable refunded_amount %q", row["return_id"], row["refunded_amount"])
			continue
		}
		if math.Abs(amt-perReturn[row["return_id"]]) > 0.01 {
			report.Errorf("refund_totals", "return %s refunded_amount %.2f != item sum %.2f", row["return_id"], amt, perReturn[row["return_id"]])
		}
	}

	orderTotals := make(map[string]float64, len(ds.Orders.Rows))
	for _, row := range ds.Orders.Rows {
		if total, ok := row.Float("order_total"); ok {
			orderTotals[row["order_id"]] = total
		}
	}
	for orderID, refunded := range perOrder {
		if refunded > orderTotals[orderID]+0.01 {
			report.Errorf("refund_cap", "order %s cumulative refunds %.2f exceed order_total %.2f", orderID, refunded, orderTotals[orderID])
		}
	}
}

// checkReturnDates verifies return_date >= order_date and that multiple
// returns of one order are dated in issue order.
func checkReturnDates(ds *Dataset, report *Report) {
	orderDates := make(map[string]string, len(ds.Orders.Rows))
	for _, row := range ds.Orders.Rows {
		if d, ok := row.Date("order_date"); ok {
			orderDates[row["order_id"]] = d
		}
	}

	type dated struct{ returnID, date string }
	perOrder := make(map[string][]dated)

	for _, row := range ds.Returns.Rows {
		d, ok := row.Date("return_date")
		if !ok {
			report.Errorf("return_dates", "return %s has unparseable return_date %q", row["return_id"], row["return_date"])
			continue
		}
		if od, exists := orderDates[row["order_id"]]; exists && d < od {
			report.Errorf("return_dates", "return %s dated %s before order date %s", row["return_id"], d, od)
		}
		perOrder[row["order_id"]] = append(perOrder[row["order_id"]], dated{row["return_id"], d})
	}

	for orderID, rets := range perOrder {
		if len(rets) < 2 {
			continue
		}
		sort.Slice(rets, func(i, j int) bool { return rets[i].returnID < rets[j].returnID })
		for i := 1; i < len(rets); i++ {
			if rets[i].date <= rets[i-1].date {
				report.Errorf("return_dates", "order %s: return %s dated %s not after earlier return %s dated %s",
					orderID, rets[i].returnID, rets[i].date, rets[i-1].returnID, rets[i-1].date)
			}
		}
	}
}

// CheckAgents verifies the agent assignment soft rules: Phone orders/returns
// carry a pooled agent ID, everything else is ONLINE. Violations are warnings.
func CheckAgents(ds *Dataset, validAgents map[string]bool, report *Report) {
	check := func(t Table, idField, channelField string) {
		for _, row := range t.Rows {
			agent := row["agent_id"]
			if row[channelField] == "Phone" {
				if !validAgents[agent] {
					report.Warnf("agent_assignment", "%s %s has agent_id %q not in the configured pool", t.Name, row[idField], agent)
				}
			} else if agent != "ONLINE" {
				report.Warnf("agent_assignment", "%s %s should have agent_id ONLINE, got %q", t.Name, row[idField], agent)
			}
		}
	}
	check(ds.Orders, "order_id", "order_channel")
	check(ds.Returns, "return_id", "return_channel")
}
