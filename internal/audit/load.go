package audit

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ecomgen/internal/model"
)

// Table is one reloaded CSV table. Rows are kept as loosely typed field maps
// because messy profiles deliberately corrupt formats; each check parses what
// it needs and reports what it cannot.
type Table struct {
	Name string
	Rows []Row
}

type Row map[string]string

// Float parses a numeric field; the bool reports whether it parsed.
func (r Row) Float(field string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(r[field]), 64)
	return v, err == nil
}

// Int parses an integer field.
func (r Row) Int(field string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(r[field]))
	return v, err == nil
}

// Date parses a calendar date field.
func (r Row) Date(field string) (string, bool) {
	v := strings.TrimSpace(r[field])
	if len(v) < len(model.DateLayout) {
		return "", false
	}
	return v[:len(model.DateLayout)], true
}

// Dataset holds every generated table, reloaded from disk.
type Dataset struct {
	Customers   Table
	Products    Table
	Carts       Table
	CartItems   Table
	Orders      Table
	OrderItems  Table
	Returns     Table
	ReturnItems Table
}

// Load reads all eight tables from dir. A missing table is a fatal
// precondition failure, not a finding.
func Load(dir string) (*Dataset, error) {
	ds := &Dataset{}
	for name, dst := range map[string]*Table{
		model.TableCustomers:      &ds.Customers,
		model.TableProductCatalog: &ds.Products,
		model.TableShoppingCarts:  &ds.Carts,
		model.TableCartItems:      &ds.CartItems,
		model.TableOrders:         &ds.Orders,
		model.TableOrderItems:     &ds.OrderItems,
		model.TableReturns:        &ds.Returns,
		model.TableReturnItems:    &ds.ReturnItems,
	} {
		t, err := loadTable(dir, name)
		if err != nil {
			return nil, err
		}
		*dst = t
	}
	return ds, nil
}

func loadTable(dir, name string) (Table, error) {
	path := filepath.Join(dir, name+".csv")
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("load table %s: %w", name, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return Table{}, fmt.Errorf("table %s has no header row", name)
	}

	header := records[0]
	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return Table{Name: name, Rows: rows}, nil
}
