package importance

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tabloom-cli/internal/dataset"
	"github.com/KaramelBytes/tabloom-cli/internal/prep"
)

// cities builds 30 rows where "signal" separates the three cities and
// "noise" and "shade" do not.
func cities() *dataset.Dataset {
	names := []string{"NY", "LA", "SF"}
	var city, shade []string
	var signal, noise []float64
	for i := 0; i < 30; i++ {
		k := i % 3
		city = append(city, names[k])
		signal = append(signal, float64(k*10)+float64(i%4)*0.1)
		noise = append(noise, float64((i*7)%5))
		shade = append(shade, []string{"light", "dark"}[(i/3)%2])
	}
	return dataset.MustNew(
		dataset.NewNumeric("signal", signal),
		dataset.NewNumeric("noise", noise),
		dataset.NewCategorical("shade", shade, nil),
		dataset.NewCategorical("city", city, nil),
	)
}

func TestEstimateCategoricalTarget(t *testing.T) {
	res, err := Estimate(cities(), "city")
	require.NoError(t, err)

	assert.Len(t, res.Features, 4) // signal, noise, shade_light, shade_dark
	sum := 0.0
	for _, f := range res.Features {
		assert.GreaterOrEqual(t, f.Score, 0.0)
		sum += f.Score
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
	assert.Equal(t, "signal", res.Features[0].Feature)
	for i := 1; i < len(res.Features); i++ {
		assert.GreaterOrEqual(t, res.Features[i-1].Score, res.Features[i].Score)
	}
	assert.Equal(t, []string{"LA", "NY", "SF"}, res.Classes)
	assert.Equal(t, 30, res.RowsUsed)
	assert.Equal(t, DefaultTrees, res.Trees)
}

func TestEstimateUnknownTarget(t *testing.T) {
	ds := cities()
	before := cities()
	_, err := Estimate(ds, "nonexistent")
	var cfgErr *prep.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, prep.StageImportance, cfgErr.Stage)
	assert.True(t, ds.Equal(before))
}

func TestEstimateIsReproducible(t *testing.T) {
	a, err := Estimate(cities(), "city", WithSeed(7), WithTrees(25))
	require.NoError(t, err)
	b, err := Estimate(cities(), "city", WithSeed(7), WithTrees(25))
	require.NoError(t, err)
	assert.Equal(t, a.Features, b.Features)
}

func TestEstimateSingleClassTarget(t *testing.T) {
	ds := dataset.MustNew(
		dataset.NewNumeric("x", []float64{1, 2, 3}),
		dataset.NewCategorical("y", []string{"a", "a", "a"}, nil),
	)
	_, err := Estimate(ds, "y")
	var compErr *prep.ComputationError
	require.True(t, errors.As(err, &compErr))
}

func TestEstimateNoFeatures(t *testing.T) {
	ds := dataset.MustNew(dataset.NewCategorical("y", []string{"a", "b"}, nil))
	_, err := Estimate(ds, "y")
	var compErr *prep.ComputationError
	require.True(t, errors.As(err, &compErr))
	assert.Contains(t, compErr.Reason, "no feature columns")
}

func TestEstimateConstantFeaturesCannotSplit(t *testing.T) {
	ds := dataset.MustNew(
		dataset.NewNumeric("x", []float64{4, 4, 4, 4}),
		dataset.NewCategorical("y", []string{"a", "b", "a", "b"}, nil),
	)
	_, err := Estimate(ds, "y")
	var compErr *prep.ComputationError
	require.True(t, errors.As(err, &compErr))
}

func TestEstimateEmptyDataset(t *testing.T) {
	ds := dataset.MustNew(dataset.NewNumeric("x", nil), dataset.NewNumeric("y", nil))
	_, err := Estimate(ds, "y")
	var emptyErr *prep.EmptyInputError
	require.True(t, errors.As(err, &emptyErr))
}

func TestEstimateDropsIncompleteRows(t *testing.T) {
	ds := dataset.MustNew(
		dataset.NewNumeric("x", []float64{1, 2, math.NaN(), 10, 11, 12}),
		dataset.NewBoolean("y", []bool{false, false, false, true, true, false}, []bool{false, false, false, false, false, true}),
	)
	res, err := Estimate(ds, "y", WithTrees(10))
	require.NoError(t, err)
	assert.Equal(t, 2, res.RowsDropped)
	assert.Equal(t, 4, res.RowsUsed)
	assert.Equal(t, []string{"false", "true"}, res.Classes)
	require.Len(t, res.Features, 1)
	assert.InDelta(t, 1.0, res.Features[0].Score, 1e-12)
}

func TestLabelEncodeNumericTarget(t *testing.T) {
	c := dataset.NewNumeric("y", []float64{3, -1, 3, 0.5})
	classes, labels := labelEncode(c, []int{0, 1, 2, 3})
	assert.Equal(t, []string{"-1", "0.5", "3"}, classes)
	assert.Equal(t, []int{2, 0, 2, 1}, labels)
}

func TestForestWithoutBootstrapSplitsOnSeparatingFeature(t *testing.T) {
	f := forest{trees: 3, minSamplesSplit: 2, maxFeatures: 2}
	x := [][]float64{
		{0, 0, 1, 1},
		{5, 5, 5, 5},
	}
	res := f.fit(x, []int{0, 0, 1, 1}, 2)
	assert.Equal(t, 3, res.splitTrees)
	assert.InDeltaSlice(t, []float64{1, 0}, res.importances, 1e-12)
}

func TestForestSplitsOnInfiniteValues(t *testing.T) {
	f := forest{trees: 2, minSamplesSplit: 2, maxFeatures: 2}
	x := [][]float64{
		{math.Inf(-1), math.Inf(-1), 1, 2},
		{0, 0, math.Inf(1), math.Inf(1)},
	}
	res := f.fit(x, []int{0, 0, 1, 1}, 2)
	assert.Equal(t, 2, res.splitTrees)
	sum := 0.0
	for _, v := range res.importances {
		assert.False(t, math.IsNaN(v))
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}
