package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// columnType infers the SQLite affinity of a column from its name. Everything
// not recognizably numeric stays TEXT, which matches the CSV representation.
func columnType(column string) string {
	switch {
	case column == "age" || column == "quantity" || column == "quantity_returned" ||
		column == "total_items" || column == "inventory_count" ||
		strings.HasSuffix(column, "_item_id") || column == "product_id":
		return "INTEGER"
	case strings.HasSuffix(column, "_total") || strings.HasSuffix(column, "_price") ||
		strings.HasSuffix(column, "_amount") || strings.HasSuffix(column, "_cost"):
		return "REAL"
	default:
		return "TEXT"
	}
}

// WriteLoadScript emits load_data.sql next to the CSV files. Running it with
// the sqlite3 shell rebuilds the full relational dataset from scratch.
func WriteLoadScript(dir string, tables []TableData) error {
	var b strings.Builder
	b.WriteString("-- Rebuilds the dataset from the CSV exports.\n")
	b.WriteString("-- Usage: sqlite3 ecom.db < load_data.sql\n\n")
	b.WriteString("PRAGMA foreign_keys = OFF;\n\n")

	for _, t := range tables {
		fmt.Fprintf(&b, "DROP TABLE IF EXISTS %s;\n", t.Name)
		fmt.Fprintf(&b, "CREATE TABLE %s (\n", t.Name)
		for i, col := range t.Columns {
			sep := ","
			if i == len(t.Columns)-1 {
				sep = ""
			}
			fmt.Fprintf(&b, "    %s %s%s\n", col, columnType(col), sep)
		}
		b.WriteString(");\n\n")
	}

	b.WriteString(".mode csv\n")
	b.WriteString(".headers on\n\n")
	for _, t := range tables {
		// --skip 1 drops the CSV header row on import.
		fmt.Fprintf(&b, ".import --csv --skip 1 %s.csv %s\n", t.Name, t.Name)
	}

	path := filepath.Join(dir, "load_data.sql")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write load script: %w", err)
	}
	log.Info().Str("path", path).Msg("Wrote SQLite load script")
	return nil
}
