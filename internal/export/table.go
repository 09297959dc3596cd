// Package export turns report results into a plain table of scalars and
// writes it out for document renderers.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// Table is an ordered set of columns and rows of scalar values. Cells are
// strings, decimals, dates, booleans, integers or nil.
type Table struct {
	Title   string   `json:"title"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// NewTable creates an empty table with the given columns.
func NewTable(title string, columns ...string) *Table {
	return &Table{Title: title, Columns: columns, Rows: [][]any{}}
}

// AddRow appends a row. It panics if the row width does not match the
// columns; rows are built by report code, never from user input.
func (t *Table) AddRow(values ...any) {
	if len(values) != len(t.Columns) {
		panic(fmt.Sprintf("export: row has %d values, table %q has %d columns", len(values), t.Title, len(t.Columns)))
	}
	t.Rows = append(t.Rows, values)
}

// Cell renders a single value the way it appears in exported documents.
func Cell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case decimal.Decimal:
		return val.StringFixed(2)
	case *decimal.Decimal:
		if val == nil {
			return ""
		}
		return val.StringFixed(2)
	case time.Time:
		if val.IsZero() {
			return ""
		}
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format(time.DateOnly)
		}
		return val.UTC().Format(time.DateTime)
	case *time.Time:
		if val == nil {
			return ""
		}
		return Cell(*val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// WriteCSV writes the header row followed by every data row.
func WriteCSV(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(t.Columns); err != nil {
		return err
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, v := range row {
			record[i] = Cell(v)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
