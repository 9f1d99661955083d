// Package dataset provides the tabular data model consumed by the
// missingness engine: named columns, each numeric or categorical, with
// explicit per-cell missingness. Rows are indexed positionally.
package dataset

import (
	"math"

	"github.com/shabarka/autoimpute/pkg/errors"
)

// Kind is the declared type of a column.
type Kind int

const (
	// Numeric columns hold float64 values; NaN marks a missing cell.
	Numeric Kind = iota
	// Categorical columns hold string labels with an explicit missing mask.
	Categorical
)

// String returns the kind's name.
func (k Kind) String() string {
	if k == Numeric {
		return "numeric"
	}
	return "categorical"
}

// Column is a single named column. Exactly one of Float or Str is
// populated, per Kind. The missing mask is authoritative for both.
type Column struct {
	Name    string
	Kind    Kind
	Float   []float64 // numeric values, meaningful where !missing
	Str     []string  // categorical labels, meaningful where !missing
	missing []bool
}

// NewNumeric creates a numeric column. NaN values are recorded as
// missing cells.
func NewNumeric(name string, values []float64) *Column {
	missing := make([]bool, len(values))
	vals := make([]float64, len(values))
	copy(vals, values)
	for i, v := range values {
		if math.IsNaN(v) {
			missing[i] = true
		}
	}
	return &Column{Name: name, Kind: Numeric, Float: vals, missing: missing}
}

// NewCategorical creates a categorical column. Empty strings are
// recorded as missing cells.
func NewCategorical(name string, values []string) *Column {
	missing := make([]bool, len(values))
	vals := make([]string, len(values))
	copy(vals, values)
	for i, v := range values {
		if v == "" {
			missing[i] = true
		}
	}
	return &Column{Name: name, Kind: Categorical, Str: vals, missing: missing}
}

// Len returns the number of rows in the column.
func (c *Column) Len() int {
	if c.Kind == Numeric {
		return len(c.Float)
	}
	return len(c.Str)
}

// IsMissing reports whether the cell at row i is null.
func (c *Column) IsMissing(i int) bool {
	return c.missing[i]
}

// AllMissing reports whether every cell in the column is null.
func (c *Column) AllMissing() bool {
	for _, m := range c.missing {
		if !m {
			return false
		}
	}
	return c.Len() > 0
}

// SetMissing nulls the cell at row i. Already-null cells are left
// unchanged, so masking is idempotent.
func (c *Column) SetMissing(i int) {
	if c.missing[i] {
		return
	}
	c.missing[i] = true
	if c.Kind == Numeric {
		c.Float[i] = math.NaN()
	} else {
		c.Str[i] = ""
	}
}

// Clone returns a deep copy of the column.
func (c *Column) Clone() *Column {
	out := &Column{Name: c.Name, Kind: c.Kind}
	out.missing = make([]bool, len(c.missing))
	copy(out.missing, c.missing)
	if c.Float != nil {
		out.Float = make([]float64, len(c.Float))
		copy(out.Float, c.Float)
	}
	if c.Str != nil {
		out.Str = make([]string, len(c.Str))
		copy(out.Str, c.Str)
	}
	return out
}

// Table is an ordered collection of equal-length, uniquely named
// columns. The engine only reads tables it is given; operations that
// produce modified data return new tables unless in-place mutation is
// requested explicitly.
type Table struct {
	cols   []*Column
	byName map[string]int
	nRows  int
}

// New creates a table from the given columns, validating that names are
// unique and lengths agree.
func New(cols ...*Column) (*Table, error) {
	if len(cols) == 0 {
		return nil, errors.NewModelError("dataset.New", "no columns", errors.ErrEmptyData)
	}
	t := &Table{
		cols:   make([]*Column, 0, len(cols)),
		byName: make(map[string]int, len(cols)),
		nRows:  cols[0].Len(),
	}
	for _, c := range cols {
		if _, dup := t.byName[c.Name]; dup {
			return nil, errors.NewValidationError("columns", "duplicate column name", c.Name)
		}
		if c.Len() != t.nRows {
			return nil, errors.NewDimensionError("dataset.New", t.nRows, c.Len(), 0)
		}
		t.byName[c.Name] = len(t.cols)
		t.cols = append(t.cols, c)
	}
	return t, nil
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.nRows }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.cols) }

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column, or false if absent.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.byName[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// Columns returns the columns in table order. The slice is shared; the
// columns themselves are not copied.
func (t *Table) Columns() []*Column {
	return t.cols
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// Copy returns a deep copy of the table.
func (t *Table) Copy() *Table {
	cols := make([]*Column, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.Clone()
	}
	out, _ := New(cols...)
	return out
}

// Drop returns a new table without the named columns. Column data is
// shared with the receiver, not copied. Unknown names are ignored.
func (t *Table) Drop(names ...string) *Table {
	dropped := make(map[string]bool, len(names))
	for _, n := range names {
		dropped[n] = true
	}
	kept := make([]*Column, 0, len(t.cols))
	for _, c := range t.cols {
		if !dropped[c.Name] {
			kept = append(kept, c)
		}
	}
	out := &Table{
		cols:   kept,
		byName: make(map[string]int, len(kept)),
		nRows:  t.nRows,
	}
	for i, c := range kept {
		out.byName[c.Name] = i
	}
	return out
}
