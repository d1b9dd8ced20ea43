// Package sink materializes the generated dataset: CSV files, a SQLite load
// script, an optional direct SQLite database and a JSON run manifest.
package sink

import (
	"ecomgen/internal/model"
	"ecomgen/internal/pipeline"
)

// TableData is one fully rendered output table. Rows are already formatted
// strings in the fixed column order of model.Columns.
type TableData struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Collect renders every table from the pipeline context in generation order.
func Collect(ctx *pipeline.Context) []TableData {
	tables := []TableData{
		{Name: model.TableCustomers},
		{Name: model.TableProductCatalog},
		{Name: model.TableShoppingCarts},
		{Name: model.TableCartItems},
		{Name: model.TableOrders},
		{Name: model.TableOrderItems},
		{Name: model.TableReturns},
		{Name: model.TableReturnItems},
	}
	for i := range tables {
		tables[i].Columns = model.Columns[tables[i].Name]
	}

	for _, c := range ctx.Customers {
		tables[0].Rows = append(tables[0].Rows, c.Record())
	}
	for _, p := range ctx.Products {
		tables[1].Rows = append(tables[1].Rows, p.Record())
	}
	for _, c := range ctx.Carts {
		tables[2].Rows = append(tables[2].Rows, c.Record())
	}
	for _, it := range ctx.CartItems {
		tables[3].Rows = append(tables[3].Rows, it.Record())
	}
	for _, o := range ctx.Orders {
		tables[4].Rows = append(tables[4].Rows, o.Record())
	}
	for _, it := range ctx.OrderItems {
		tables[5].Rows = append(tables[5].Rows, it.Record())
	}
	for _, r := range ctx.Returns {
		tables[6].Rows = append(tables[6].Rows, r.Record())
	}
	for _, it := range ctx.ReturnItems {
		tables[7].Rows = append(tables[7].Rows, it.Record())
	}
	return tables
}

// RowCounts summarizes the dataset for logging and the run manifest.
func RowCounts(tables []TableData) map[string]int {
	counts := make(map[string]int, len(tables))
	for _, t := range tables {
		counts[t.Name] = len(t.Rows)
	}
	return counts
}
