package dataset

import (
	"math"
	"strconv"
)

// Kind tags the semantic type of a column.
type Kind int

const (
	Numeric Kind = iota
	Boolean
	Categorical
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Boolean:
		return "boolean"
	case Categorical:
		return "categorical"
	default:
		return "unknown"
	}
}

// Column is an immutable, homogeneously typed sequence of values.
// Exactly one of nums, bools or strs is populated depending on kind.
type Column struct {
	name  string
	kind  Kind
	nums  []float64
	bools []bool
	strs  []string
	null  []bool // nil when the column holds no nulls
}

// NewNumeric builds a numeric column. NaN values are treated as nulls.
func NewNumeric(name string, vals []float64) *Column {
	c := &Column{name: name, kind: Numeric, nums: append([]float64(nil), vals...)}
	for i, v := range c.nums {
		if math.IsNaN(v) {
			c.markNull(i)
		}
	}
	return c
}

// NewBoolean builds a boolean column. null may be nil.
func NewBoolean(name string, vals []bool, null []bool) *Column {
	c := &Column{name: name, kind: Boolean, bools: append([]bool(nil), vals...)}
	c.copyNulls(null, len(vals))
	return c
}

// NewCategorical builds a categorical column. null may be nil.
func NewCategorical(name string, vals []string, null []bool) *Column {
	c := &Column{name: name, kind: Categorical, strs: append([]string(nil), vals...)}
	c.copyNulls(null, len(vals))
	return c
}

func (c *Column) copyNulls(null []bool, n int) {
	for i := 0; i < n && i < len(null); i++ {
		if null[i] {
			c.markNull(i)
		}
	}
}

func (c *Column) markNull(i int) {
	if c.null == nil {
		c.null = make([]bool, c.Len())
	}
	c.null[i] = true
}

func (c *Column) Name() string { return c.name }
func (c *Column) Kind() Kind   { return c.kind }

// Len returns the number of values.
func (c *Column) Len() int {
	switch c.kind {
	case Boolean:
		return len(c.bools)
	case Categorical:
		return len(c.strs)
	default:
		return len(c.nums)
	}
}

// IsNull reports whether row i is missing.
func (c *Column) IsNull(i int) bool { return c.null != nil && c.null[i] }

// NullCount returns the number of missing values.
func (c *Column) NullCount() int {
	n := 0
	for _, b := range c.null {
		if b {
			n++
		}
	}
	return n
}

// Float returns row i as a float. Booleans map to 0/1; nulls and
// categorical values yield NaN.
func (c *Column) Float(i int) float64 {
	if c.IsNull(i) {
		return math.NaN()
	}
	switch c.kind {
	case Numeric:
		return c.nums[i]
	case Boolean:
		if c.bools[i] {
			return 1
		}
		return 0
	default:
		return math.NaN()
	}
}

// Floats returns a copy of the column as floats (see Float).
func (c *Column) Floats() []float64 {
	out := make([]float64, c.Len())
	for i := range out {
		out[i] = c.Float(i)
	}
	return out
}

// Bool returns row i of a boolean column.
func (c *Column) Bool(i int) bool {
	if c.kind != Boolean || c.IsNull(i) {
		return false
	}
	return c.bools[i]
}

// Text returns row i formatted as text; nulls render as "".
func (c *Column) Text(i int) string {
	if c.IsNull(i) {
		return ""
	}
	switch c.kind {
	case Numeric:
		return strconv.FormatFloat(c.nums[i], 'f', -1, 64)
	case Boolean:
		return strconv.FormatBool(c.bools[i])
	default:
		return c.strs[i]
	}
}

// Value returns row i as float64, bool or string, or nil when null.
func (c *Column) Value(i int) any {
	if c.IsNull(i) {
		return nil
	}
	switch c.kind {
	case Numeric:
		return c.nums[i]
	case Boolean:
		return c.bools[i]
	default:
		return c.strs[i]
	}
}

// key encodes row i so that equal cells (null included) share a key. Keys
// are length-prefixed and null has its own tag, so concatenated keys of
// different rows never collide.
func (c *Column) key(i int) string {
	if c.IsNull(i) {
		return "n;"
	}
	var s string
	if c.kind == Numeric {
		v := c.nums[i]
		if v == 0 {
			v = 0 // folds -0 into 0
		}
		s = strconv.FormatFloat(v, 'g', -1, 64)
	} else {
		s = c.Text(i)
	}
	return "v" + strconv.Itoa(len(s)) + ":" + s
}

// Take returns a new column holding the given rows in order.
func (c *Column) Take(rows []int) *Column {
	out := &Column{name: c.name, kind: c.kind}
	switch c.kind {
	case Numeric:
		out.nums = make([]float64, len(rows))
		for j, r := range rows {
			out.nums[j] = c.nums[r]
		}
	case Boolean:
		out.bools = make([]bool, len(rows))
		for j, r := range rows {
			out.bools[j] = c.bools[r]
		}
	default:
		out.strs = make([]string, len(rows))
		for j, r := range rows {
			out.strs[j] = c.strs[r]
		}
	}
	if c.null != nil {
		for j, r := range rows {
			if c.null[r] {
				out.markNull(j)
			}
		}
	}
	return out
}

// Rename returns a copy of the column under a new name.
func (c *Column) Rename(name string) *Column {
	cp := *c
	cp.name = name
	return &cp
}

// Equal reports whether both columns have the same name, kind and cells.
func (c *Column) Equal(o *Column) bool {
	if c.name != o.name || c.kind != o.kind || c.Len() != o.Len() {
		return false
	}
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) != o.IsNull(i) {
			return false
		}
		if !c.IsNull(i) && c.key(i) != o.key(i) {
			return false
		}
	}
	return true
}
