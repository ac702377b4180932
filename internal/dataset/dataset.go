// Package dataset holds the tabular value type shared by the loaders,
// the preprocessing pipeline and the exporters.
package dataset

import (
	"fmt"
	"strings"
)

// Dataset is an ordered collection of uniquely named columns sharing a row
// count. A Dataset is never mutated once built: every operation returns a
// new value, so the dataset a caller loaded stays recoverable.
type Dataset struct {
	rows  int
	cols  []*Column
	index map[string]int
}

// New builds a dataset from columns of equal length and unique names.
func New(cols ...*Column) (*Dataset, error) {
	rows := 0
	if len(cols) > 0 {
		rows = cols[0].Len()
	}
	return build(rows, cols)
}

// MustNew is New that panics on error. Intended for fixtures.
func MustNew(cols ...*Column) *Dataset {
	d, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return d
}

// Empty returns a dataset with no columns and the given row count.
func Empty(rows int) *Dataset {
	return &Dataset{rows: rows, index: map[string]int{}}
}

func build(rows int, cols []*Column) (*Dataset, error) {
	d := &Dataset{rows: rows, cols: make([]*Column, 0, len(cols)), index: make(map[string]int, len(cols))}
	for _, c := range cols {
		if c == nil {
			return nil, fmt.Errorf("nil column")
		}
		if c.Len() != rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name(), c.Len(), rows)
		}
		if _, dup := d.index[c.Name()]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.Name())
		}
		d.index[c.Name()] = len(d.cols)
		d.cols = append(d.cols, c)
	}
	return d, nil
}

func (d *Dataset) NumRows() int { return d.rows }
func (d *Dataset) NumCols() int { return len(d.cols) }

// Names returns the column names in order.
func (d *Dataset) Names() []string {
	out := make([]string, len(d.cols))
	for i, c := range d.cols {
		out[i] = c.Name()
	}
	return out
}

// Columns returns the columns in order. The slice is a copy.
func (d *Dataset) Columns() []*Column { return append([]*Column(nil), d.cols...) }

// Column looks a column up by name.
func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.cols[i], true
}

// ColumnAt returns the i-th column.
func (d *Dataset) ColumnAt(i int) *Column { return d.cols[i] }

// Has reports whether a column with this name exists.
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Select returns the named columns in the order given.
func (d *Dataset) Select(names ...string) (*Dataset, error) {
	cols := make([]*Column, 0, len(names))
	for _, n := range names {
		c, ok := d.Column(n)
		if !ok {
			return nil, fmt.Errorf("unknown column %q", n)
		}
		cols = append(cols, c)
	}
	return build(d.rows, cols)
}

// Drop returns the dataset without the named columns. Unknown names are ignored.
func (d *Dataset) Drop(names ...string) *Dataset {
	skip := make(map[string]struct{}, len(names))
	for _, n := range names {
		skip[n] = struct{}{}
	}
	cols := make([]*Column, 0, len(d.cols))
	for _, c := range d.cols {
		if _, ok := skip[c.Name()]; !ok {
			cols = append(cols, c)
		}
	}
	out, _ := build(d.rows, cols)
	return out
}

// Take returns the given rows, in order, across all columns.
func (d *Dataset) Take(rows []int) *Dataset {
	cols := make([]*Column, len(d.cols))
	for i, c := range d.cols {
		cols[i] = c.Take(rows)
	}
	out, _ := build(len(rows), cols)
	return out
}

// HConcat appends the columns of o to the right of d.
func (d *Dataset) HConcat(o *Dataset) (*Dataset, error) {
	rows := d.rows
	switch {
	case d.NumCols() == 0:
		rows = o.rows
	case o.NumCols() == 0:
	case d.rows != o.rows:
		return nil, fmt.Errorf("row count mismatch: %d vs %d", d.rows, o.rows)
	}
	cols := make([]*Column, 0, len(d.cols)+len(o.cols))
	cols = append(cols, d.cols...)
	cols = append(cols, o.cols...)
	return build(rows, cols)
}

// RowKey encodes row i so that rows with identical cells share a key.
func (d *Dataset) RowKey(i int) string {
	var b strings.Builder
	for _, c := range d.cols {
		b.WriteString(c.key(i))
	}
	return b.String()
}

// RowHasNull reports whether any cell of row i is missing.
func (d *Dataset) RowHasNull(i int) bool {
	for _, c := range d.cols {
		if c.IsNull(i) {
			return true
		}
	}
	return false
}

// Equal reports value equality: same row count and equal columns in order.
func (d *Dataset) Equal(o *Dataset) bool {
	if d.rows != o.rows || len(d.cols) != len(o.cols) {
		return false
	}
	for i := range d.cols {
		if !d.cols[i].Equal(o.cols[i]) {
			return false
		}
	}
	return true
}
