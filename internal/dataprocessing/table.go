package dataprocessing

import (
	"fmt"
	"math"

	"globalinsights/internal/exporter"
)

// KeyColumn is the join key shared by every input table
const KeyColumn = "Country"

// ColumnKind distinguishes numeric columns from text columns
type ColumnKind int

const (
	// Text columns hold strings; "" is null
	Text ColumnKind = iota
	// Numeric columns hold float64; NaN is null
	Numeric
)

func (k ColumnKind) String() string {
	if k == Numeric {
		return "numeric"
	}
	return "text"
}

// Column is a named, typed vector. Exactly one of Floats or Strings is populated,
// according to Kind.
type Column struct {
	Name    string
	Kind    ColumnKind
	Floats  []float64
	Strings []string
}

// NewNumericColumn creates a numeric column
func NewNumericColumn(name string, values []float64) *Column {
	return &Column{Name: name, Kind: Numeric, Floats: values}
}

// NewTextColumn creates a text column
func NewTextColumn(name string, values []string) *Column {
	return &Column{Name: name, Kind: Text, Strings: values}
}

// Len returns the number of cells
func (c *Column) Len() int {
	if c.Kind == Numeric {
		return len(c.Floats)
	}
	return len(c.Strings)
}

// IsNull reports whether cell i is null
func (c *Column) IsNull(i int) bool {
	if c.Kind == Numeric {
		return math.IsNaN(c.Floats[i])
	}
	return c.Strings[i] == ""
}

// Value returns cell i as any: float64 or string, nil when null
func (c *Column) Value(i int) any {
	if c.IsNull(i) {
		return nil
	}
	if c.Kind == Numeric {
		return c.Floats[i]
	}
	return c.Strings[i]
}

// NonNull returns the non-null values of a numeric column in row order
func (c *Column) NonNull() []float64 {
	out := make([]float64, 0, len(c.Floats))
	for _, v := range c.Floats {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// take builds a new column from the given row indices; -1 yields a null cell
func (c *Column) take(idx []int) *Column {
	out := &Column{Name: c.Name, Kind: c.Kind}
	if c.Kind == Numeric {
		out.Floats = make([]float64, len(idx))
		for i, j := range idx {
			if j < 0 {
				out.Floats[i] = math.NaN()
				continue
			}
			out.Floats[i] = c.Floats[j]
		}
		return out
	}
	out.Strings = make([]string, len(idx))
	for i, j := range idx {
		if j >= 0 {
			out.Strings[i] = c.Strings[j]
		}
	}
	return out
}

// Table is an ordered set of equal-length columns
type Table struct {
	Name    string
	columns []*Column
	index   map[string]int
}

// NewTable creates a table from columns. All columns must have the same length and
// unique names.
func NewTable(name string, columns ...*Column) (*Table, error) {
	t := &Table{Name: name, index: make(map[string]int, len(columns))}
	for _, c := range columns {
		if err := t.AddColumn(c); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// AddColumn appends c, or replaces the existing column with the same name in place.
func (t *Table) AddColumn(c *Column) error {
	if len(t.columns) > 0 && c.Len() != t.Len() {
		return fmt.Errorf("column %s has %d rows, table %s has %d", c.Name, c.Len(), t.Name, t.Len())
	}
	if i, ok := t.index[c.Name]; ok {
		t.columns[i] = c
		return nil
	}
	t.index[c.Name] = len(t.columns)
	t.columns = append(t.columns, c)
	return nil
}

// Len returns the row count
func (t *Table) Len() int {
	if len(t.columns) == 0 {
		return 0
	}
	return t.columns[0].Len()
}

// Width returns the column count
func (t *Table) Width() int { return len(t.columns) }

// Columns returns the columns in order
func (t *Table) Columns() []*Column { return t.columns }

// Names returns the column names in order
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// Has reports whether the named column exists
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Numeric returns the named column when it exists and is numeric
func (t *Table) Numeric(name string) (*Column, bool) {
	c, ok := t.Column(name)
	if !ok || c.Kind != Numeric {
		return nil, false
	}
	return c, true
}

// Text returns the cell of a text column, or "" when the column is missing or numeric
func (t *Table) Text(name string, row int) string {
	c, ok := t.Column(name)
	if !ok || c.Kind != Text {
		return ""
	}
	return c.Strings[row]
}

// Record returns row i as a column-name to value map. Nulls are nil.
func (t *Table) Record(i int) map[string]any {
	rec := make(map[string]any, len(t.columns))
	for _, c := range t.columns {
		rec[c.Name] = c.Value(i)
	}
	return rec
}

// Row returns row i as values in column order. Nulls are nil.
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.columns))
	for j, c := range t.columns {
		row[j] = c.Value(i)
	}
	return row
}

// Records renders every row as strings for CSV output. Nulls are empty.
func (t *Table) Records() [][]string {
	out := make([][]string, t.Len())
	for i := range out {
		row := make([]string, len(t.columns))
		for j, c := range t.columns {
			if c.Kind == Numeric {
				row[j] = exporter.FormatFloat(c.Floats[i])
			} else {
				row[j] = c.Strings[i]
			}
		}
		out[i] = row
	}
	return out
}
