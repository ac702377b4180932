package prep

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/KaramelBytes/tabloom-cli/internal/dataset"
)

func scenarioA() *dataset.Dataset {
	return dataset.MustNew(
		dataset.NewNumeric("age", []float64{25, 30, 25}),
		dataset.NewCategorical("city", []string{"NY", "LA", "NY"}, nil),
	)
}

func floatsOf(t *testing.T, ds *dataset.Dataset, name string) []float64 {
	t.Helper()
	c, ok := ds.Column(name)
	require.True(t, ok, "column %q missing from %v", name, ds.Names())
	return c.Floats()
}

func TestPreprocessScenarioA(t *testing.T) {
	res, err := Preprocess(scenarioA(), CleaningConfig{DropDuplicateRows}, ScaleMinMax)
	require.NoError(t, err)

	out := res.Dataset
	assert.Equal(t, 2, out.NumRows())
	assert.Equal(t, []string{"age", "city_NY", "city_LA"}, out.Names())
	assert.Equal(t, []float64{0, 1}, floatsOf(t, out, "age"))
	assert.Equal(t, []float64{1, 0}, floatsOf(t, out, "city_NY"))
	assert.Equal(t, []float64{0, 1}, floatsOf(t, out, "city_LA"))

	step, ok := res.Diagnostics.Cleaning.Step(DropDuplicateRows)
	require.True(t, ok)
	assert.Equal(t, 1, step.Removed())
	assert.Equal(t, []string{"age"}, res.Diagnostics.Scaling.Columns)
	assert.Equal(t, []string{"city"}, res.Diagnostics.Encoding.Source)
	assert.Equal(t, 3, res.Diagnostics.RowsIn)
	assert.Equal(t, 2, res.Diagnostics.RowsOut)
}

func TestPreprocessScenarioBDropsNullRows(t *testing.T) {
	ds := dataset.MustNew(
		dataset.NewNumeric("x", []float64{1, math.NaN(), 3, 4}),
		dataset.NewCategorical("c", []string{"a", "b", "", "a"}, []bool{false, false, true, false}),
	)
	res, err := Preprocess(ds, CleaningConfig{DropNullRows}, ScaleNone)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Dataset.NumRows())

	step, ok := res.Diagnostics.Cleaning.Step(DropNullRows)
	require.True(t, ok)
	assert.Equal(t, 2, step.Removed())
	assert.Equal(t, []ColumnCount{{Column: "x", Count: 1}, {Column: "c", Count: 1}}, step.Columns)
	assert.Equal(t, 4, ds.NumRows(), "input must stay untouched")
}

func TestPreprocessIdentityLaw(t *testing.T) {
	ds := dataset.MustNew(
		dataset.NewNumeric("a", []float64{3, -1, math.NaN()}),
		dataset.NewCategorical("c", []string{"x", "y", "x"}, nil),
		dataset.NewBoolean("b", []bool{true, false, true}, nil),
	)
	res, err := Preprocess(ds, nil, ScaleNone)
	require.NoError(t, err)

	want, err := ds.Select("a", "b")
	require.NoError(t, err)
	got, err := res.Dataset.Select("a", "b")
	require.NoError(t, err)
	assert.True(t, want.Equal(got))
}

func TestPreprocessLeavesNoCategoricalColumns(t *testing.T) {
	ds := dataset.MustNew(
		dataset.NewCategorical("color", []string{"red", "blue", ""}, []bool{false, false, true}),
		dataset.NewCategorical("size", []string{"S", "S", "M"}, nil),
	)
	res, err := Preprocess(ds, nil, ScaleStandard)
	require.NoError(t, err)
	for _, c := range res.Dataset.Columns() {
		assert.NotEqual(t, dataset.Categorical, c.Kind(), c.Name())
	}
	assert.Equal(t, []string{"color_red", "color_blue", "color_nan", "size_S", "size_M"}, res.Dataset.Names())
	assert.Contains(t, res.Diagnostics.Notes, NoNumericNote)
}

func TestPreprocessWithoutCategoricalReturnsScaledNumeric(t *testing.T) {
	ds := dataset.MustNew(dataset.NewNumeric("v", []float64{2, 4, 6}))
	res, err := Preprocess(ds, nil, ScaleMaxAbs)
	require.NoError(t, err)
	assert.Equal(t, []string{"v"}, res.Dataset.Names())
	assert.InDeltaSlice(t, []float64{1.0 / 3, 2.0 / 3, 1}, floatsOf(t, res.Dataset, "v"), 1e-12)
}

func TestPreprocessRejectsUnknownStrategy(t *testing.T) {
	_, err := Preprocess(scenarioA(), nil, Strategy(42))
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, StageScale, cfgErr.Stage)
}

func TestPreprocessEmptyInput(t *testing.T) {
	res, err := Preprocess(dataset.Empty(0), CleaningConfig{DropNullRows}, ScaleMinMax)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Dataset.NumCols())
	require.NotEmpty(t, res.Diagnostics.Notes)

	noRows := dataset.MustNew(
		dataset.NewNumeric("x", nil),
		dataset.NewCategorical("c", nil, nil),
	)
	res, err = Preprocess(noRows, CleaningConfig{DropOutlierRows}, ScaleRobust)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Dataset.NumRows())
	assert.Equal(t, []string{"x"}, res.Dataset.Names())
}

func TestPreprocessorLogsStages(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	p := NewPreprocessor(WithLogger(zap.New(core)))
	_, err := p.Preprocess(scenarioA(), CleaningConfig{DropNullRows, DropDuplicateRows}, ScaleMinMax)
	require.NoError(t, err)
	assert.Equal(t, 2, logs.FilterMessage("cleaning step").Len())
	assert.Equal(t, 1, logs.FilterMessage("preprocess finished").Len())
}
