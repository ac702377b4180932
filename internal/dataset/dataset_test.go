package dataset

import (
	"math"
	"testing"
)

func fixture(t *testing.T) *Dataset {
	t.Helper()
	ds, err := New(
		NewNumeric("age", []float64{25, math.NaN(), 25, 40}),
		NewCategorical("city", []string{"NY", "LA", "NY", ""}, []bool{false, false, false, true}),
		NewBoolean("member", []bool{true, false, true, false}, nil),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ds
}

func TestNewRejectsMismatchedAndDuplicateColumns(t *testing.T) {
	if _, err := New(NewNumeric("a", []float64{1, 2}), NewNumeric("b", []float64{1})); err == nil {
		t.Fatalf("expected row count mismatch error")
	}
	if _, err := New(NewNumeric("a", []float64{1}), NewNumeric("a", []float64{2})); err == nil {
		t.Fatalf("expected duplicate name error")
	}
}

func TestColumnNullsAndConversions(t *testing.T) {
	ds := fixture(t)
	age, _ := ds.Column("age")
	if !age.IsNull(1) || age.NullCount() != 1 {
		t.Fatalf("age nulls = %d, want 1 at row 1", age.NullCount())
	}
	if !math.IsNaN(age.Float(1)) || age.Value(1) != nil || age.Text(1) != "" {
		t.Fatalf("null cell should be NaN/nil/empty")
	}
	member, _ := ds.Column("member")
	if member.Float(0) != 1 || member.Float(1) != 0 {
		t.Fatalf("boolean floats = %v", member.Floats())
	}
	city, _ := ds.Column("city")
	if city.Kind() != Categorical || city.Text(0) != "NY" || city.Value(3) != nil {
		t.Fatalf("unexpected city column")
	}
	if !math.IsNaN(city.Float(0)) {
		t.Fatalf("categorical Float should be NaN")
	}
}

func TestSelectDropTakeAndConcat(t *testing.T) {
	ds := fixture(t)
	sel, err := ds.Select("member", "age")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got := sel.Names(); len(got) != 2 || got[0] != "member" || got[1] != "age" {
		t.Fatalf("select names = %v", got)
	}
	if _, err := ds.Select("nope"); err == nil {
		t.Fatalf("expected unknown column error")
	}
	dropped := ds.Drop("city", "nope")
	if dropped.NumCols() != 2 || dropped.Has("city") {
		t.Fatalf("drop names = %v", dropped.Names())
	}
	taken := ds.Take([]int{3, 0})
	age, _ := taken.Column("age")
	if taken.NumRows() != 2 || age.Float(0) != 40 || age.Float(1) != 25 {
		t.Fatalf("take = %v", age.Floats())
	}
	city, _ := taken.Column("city")
	if !city.IsNull(0) {
		t.Fatalf("take should carry nulls")
	}
	joined, err := Empty(0).HConcat(sel)
	if err != nil || joined.NumRows() != 4 {
		t.Fatalf("empty concat rows = %d, err %v", joined.NumRows(), err)
	}
	if _, err := ds.HConcat(MustNew(NewNumeric("x", []float64{1, 2}))); err == nil {
		t.Fatalf("expected row mismatch error")
	}
	if _, err := ds.HConcat(sel); err == nil {
		t.Fatalf("expected duplicate column error")
	}
}

func TestRowKeyAndEqual(t *testing.T) {
	ds := fixture(t)
	if ds.RowKey(0) != ds.RowKey(2) {
		t.Fatalf("identical rows should share a key")
	}
	if ds.RowKey(0) == ds.RowKey(3) {
		t.Fatalf("different rows should not share a key")
	}
	if !ds.RowHasNull(1) || ds.RowHasNull(0) {
		t.Fatalf("RowHasNull mismatch")
	}
	if !ds.Equal(fixture(t)) {
		t.Fatalf("fixture should equal itself")
	}
	if ds.Equal(ds.Take([]int{0, 1, 2})) {
		t.Fatalf("different row counts should not be equal")
	}
	a := MustNew(NewNumeric("z", []float64{0}))
	b := MustNew(NewNumeric("z", []float64{math.Copysign(0, -1)}))
	if !a.Equal(b) || a.RowKey(0) != b.RowKey(0) {
		t.Fatalf("negative zero should compare equal to zero")
	}
}

func TestRowKeySeparatesCellBoundaries(t *testing.T) {
	ds := MustNew(
		NewCategorical("a", []string{"x\x1fy", "x", "\x00", ""}, []bool{false, false, false, true}),
		NewCategorical("b", []string{"z", "y\x1fz", "", ""}, []bool{false, false, true, true}),
	)
	if ds.RowKey(0) == ds.RowKey(1) {
		t.Fatalf("cells containing separator bytes must not merge")
	}
	if ds.RowKey(2) == ds.RowKey(3) {
		t.Fatalf("a NUL value must not equal a null cell")
	}
}
