package prep

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tabloom-cli/internal/dataset"
)

func TestCleanWithoutMethodsReturnsInput(t *testing.T) {
	ds := scenarioA()
	for _, cfg := range []CleaningConfig{nil, {NoCleaning}} {
		out, rep, err := Clean(ds, cfg)
		require.NoError(t, err)
		assert.Same(t, ds, out)
		assert.Empty(t, rep.Steps)
	}
}

func TestCleanRealMethodsWinOverNone(t *testing.T) {
	out, rep, err := Clean(scenarioA(), CleaningConfig{NoCleaning, DropDuplicateRows})
	require.NoError(t, err)
	assert.Equal(t, 2, out.NumRows())
	require.Len(t, rep.Steps, 1)
}

func TestCleanRunsInFixedOrder(t *testing.T) {
	ds := dataset.MustNew(
		dataset.NewNumeric("x", []float64{1, 1, math.NaN(), 2}),
	)
	a, repA, err := Clean(ds, CleaningConfig{DropOutlierRows, DropDuplicateRows, DropNullRows})
	require.NoError(t, err)
	b, _, err := Clean(ds, CleaningConfig{DropNullRows, DropDuplicateRows, DropOutlierRows})
	require.NoError(t, err)
	assert.True(t, a.Equal(b))

	var order []CleaningMethod
	for _, s := range repA.Steps {
		order = append(order, s.Method)
	}
	assert.Equal(t, []CleaningMethod{DropNullRows, DropDuplicateRows, DropOutlierRows}, order)
	assert.Equal(t, []float64{1, 2}, a.ColumnAt(0).Floats())
}

func TestDropDuplicatesIsIdempotent(t *testing.T) {
	ds := dataset.MustNew(
		dataset.NewNumeric("n", []float64{1, 1, 2, math.NaN(), math.NaN()}),
		dataset.NewCategorical("s", []string{"a", "a", "a", "", ""}, []bool{false, false, false, true, true}),
	)
	once, rep, err := Clean(ds, CleaningConfig{DropDuplicateRows})
	require.NoError(t, err)
	assert.Equal(t, 3, once.NumRows())
	assert.Equal(t, 2, rep.Removed())

	twice, rep2, err := Clean(once, CleaningConfig{DropDuplicateRows})
	require.NoError(t, err)
	assert.True(t, once.Equal(twice))
	assert.Equal(t, 0, rep2.Removed())
}

func TestDropDuplicatesKeepsRowsThatOnlyLookAlike(t *testing.T) {
	ds := dataset.MustNew(
		dataset.NewCategorical("a", []string{"x\x1fy", "x", "\x00", ""}, []bool{false, false, false, true}),
		dataset.NewCategorical("b", []string{"z", "y\x1fz", "k", "k"}, nil),
	)
	out, rep, err := Clean(ds, CleaningConfig{DropDuplicateRows})
	require.NoError(t, err)
	assert.Equal(t, 4, out.NumRows())
	assert.Equal(t, 0, rep.Removed())
}

func TestDropOutliersRemovesExtremeRowsOnly(t *testing.T) {
	vals := make([]float64, 0, 21)
	cats := make([]string, 0, 21)
	for i := 0; i < 20; i++ {
		vals = append(vals, 10)
		cats = append(cats, "k")
	}
	vals[0], vals[1] = 9, 11
	vals = append(vals, 1000)
	cats = append(cats, "far")
	constant := make([]float64, len(vals))
	ds := dataset.MustNew(
		dataset.NewNumeric("v", vals),
		dataset.NewNumeric("flat", constant),
		dataset.NewCategorical("label", cats, nil),
	)
	out, rep, err := Clean(ds, CleaningConfig{DropOutlierRows})
	require.NoError(t, err)
	assert.Equal(t, 20, out.NumRows())

	label, _ := out.Column("label")
	for i := 0; i < out.NumRows(); i++ {
		assert.Equal(t, "k", label.Text(i))
	}
	step, _ := rep.Step(DropOutlierRows)
	assert.Equal(t, []ColumnCount{{Column: "v", Count: 1}}, step.Columns)
	assert.Contains(t, step.Note, "flat")
}

func TestDropOutliersTreatsBooleansAsNumbers(t *testing.T) {
	flags := make([]bool, 30)
	flags[0] = true
	ds := dataset.MustNew(dataset.NewBoolean("flag", flags, nil))
	out, _, err := Clean(ds, CleaningConfig{DropOutlierRows})
	require.NoError(t, err)
	assert.Equal(t, 29, out.NumRows())
}

func TestDropOutliersNeedsTwoRows(t *testing.T) {
	ds := dataset.MustNew(dataset.NewNumeric("v", []float64{5}))
	out, rep, err := Clean(ds, CleaningConfig{DropOutlierRows})
	require.NoError(t, err)
	assert.Same(t, ds, out)
	assert.NotEmpty(t, rep.Steps[0].Note)
}

func TestDropOutliersIgnoresNullCells(t *testing.T) {
	ds := dataset.MustNew(dataset.NewNumeric("v", []float64{1, 2, math.NaN(), 3}))
	out, _, err := Clean(ds, CleaningConfig{DropOutlierRows})
	require.NoError(t, err)
	assert.Equal(t, 4, out.NumRows())
}

func TestParseCleaningConfig(t *testing.T) {
	cfg, err := ParseCleaningConfig("drop-null-rows,duplicates", "OUTLIERS")
	require.NoError(t, err)
	assert.Equal(t, CleaningConfig{DropNullRows, DropDuplicateRows, DropOutlierRows}, cfg)

	_, err = ParseCleaningConfig("drop-everything")
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, StageClean, cfgErr.Stage)

	_, _, err = Clean(scenarioA(), CleaningConfig{CleaningMethod(9)})
	require.True(t, errors.As(err, &cfgErr))
}
