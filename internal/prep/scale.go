package prep

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/tabloom-cli/internal/dataset"
)

// Strategy selects how numeric columns are rescaled.
type Strategy int

const (
	ScaleNone Strategy = iota
	ScaleMinMax
	ScaleStandard
	ScaleRobust
	ScaleNormalizer
	ScaleMaxAbs
)

// NoNumericNote is recorded when there is nothing to rescale.
const NoNumericNote = "no numeric columns to normalize"

func (s Strategy) String() string {
	switch s {
	case ScaleNone:
		return "none"
	case ScaleMinMax:
		return "min-max"
	case ScaleStandard:
		return "standard"
	case ScaleRobust:
		return "robust"
	case ScaleNormalizer:
		return "normalizer"
	case ScaleMaxAbs:
		return "max-abs"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy maps an identifier to a Strategy.
func ParseStrategy(id string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case "none", "":
		return ScaleNone, nil
	case "min-max", "minmax":
		return ScaleMinMax, nil
	case "standard", "zscore":
		return ScaleStandard, nil
	case "robust":
		return ScaleRobust, nil
	case "normalizer":
		return ScaleNormalizer, nil
	case "max-abs", "maxabs":
		return ScaleMaxAbs, nil
	default:
		return 0, &ConfigurationError{Stage: StageScale, Reason: fmt.Sprintf("unknown scaling strategy %q (valid: none, min-max, standard, robust, normalizer, max-abs)", id)}
	}
}

// ScaleReport describes a scaling call.
type ScaleReport struct {
	Strategy Strategy
	Columns  []string
	Note     string
}

// Scale rescales every column of numeric independently with strategy.
// Nulls are ignored while fitting and stay null. Boolean columns are fitted
// as 0/1 and come back numeric, except under ScaleNone which returns numeric
// itself.
func Scale(numeric *dataset.Dataset, strategy Strategy) (*dataset.Dataset, ScaleReport, error) {
	rep := ScaleReport{Strategy: strategy}
	fit, err := scalerFor(strategy)
	if err != nil {
		return nil, rep, err
	}
	if numeric == nil {
		return nil, rep, &EmptyInputError{Stage: StageScale}
	}
	if numeric.NumCols() == 0 {
		rep.Note = NoNumericNote
		return dataset.Empty(numeric.NumRows()), rep, nil
	}
	for _, c := range numeric.Columns() {
		if c.Kind() == dataset.Categorical {
			return nil, rep, &ComputationError{Stage: StageScale, Reason: fmt.Sprintf("column %q is categorical", c.Name())}
		}
	}
	rep.Columns = numeric.Names()
	if strategy == ScaleNone {
		return numeric, rep, nil
	}
	cols := make([]*dataset.Column, 0, numeric.NumCols())
	for _, c := range numeric.Columns() {
		sc, err := scaleColumn(c, fit)
		if err != nil {
			return nil, rep, err
		}
		cols = append(cols, sc)
	}
	out, err := dataset.New(cols...)
	if err != nil {
		return nil, rep, &ComputationError{Stage: StageScale, Reason: err.Error()}
	}
	return out, rep, nil
}

// fitFunc fits on the non-null values of a column and returns the transform.
type fitFunc func(present []float64) func(float64) float64

func scalerFor(s Strategy) (fitFunc, error) {
	switch s {
	case ScaleNone:
		return nil, nil
	case ScaleMinMax:
		return fitMinMax, nil
	case ScaleStandard:
		return fitStandard, nil
	case ScaleRobust:
		return fitRobust, nil
	case ScaleNormalizer:
		return fitNormalizer, nil
	case ScaleMaxAbs:
		return fitMaxAbs, nil
	default:
		return nil, &ConfigurationError{Stage: StageScale, Reason: fmt.Sprintf("unknown scaling strategy %s", s)}
	}
}

// scaleColumn fits on the present cells of c and transforms them. Infinite
// values cannot be fitted and are rejected rather than turned into nulls.
func scaleColumn(c *dataset.Column, fit fitFunc) (*dataset.Column, error) {
	vals := c.Floats()
	present := presentValues(vals)
	for _, v := range present {
		if math.IsInf(v, 0) {
			return nil, &ComputationError{Stage: StageScale, Reason: fmt.Sprintf("column %q contains infinite values", c.Name())}
		}
	}
	if len(present) == 0 {
		return dataset.NewNumeric(c.Name(), vals), nil
	}
	f := fit(present)
	out := make([]float64, len(vals))
	for i, v := range vals {
		if math.IsNaN(v) {
			out[i] = v
			continue
		}
		out[i] = f(v)
	}
	return dataset.NewNumeric(c.Name(), out), nil
}

// fitMinMax maps [min, max] onto [0, 1]; a constant column maps to 0.
func fitMinMax(present []float64) func(float64) float64 {
	lo, hi := floats.Min(present), floats.Max(present)
	rng := hi - lo
	if rng == 0 {
		return func(x float64) float64 { return x - lo }
	}
	return func(x float64) float64 { return (x - lo) / rng }
}

// fitStandard centres on the mean and divides by the population standard
// deviation; with zero deviation only the centring applies.
func fitStandard(present []float64) func(float64) float64 {
	mean, std := stat.PopMeanStdDev(present, nil)
	if std == 0 || math.IsNaN(std) {
		return func(x float64) float64 { return x - mean }
	}
	return func(x float64) float64 { return (x - mean) / std }
}

// fitRobust centres on the median and divides by the interquartile range.
func fitRobust(present []float64) func(float64) float64 {
	sorted := append([]float64(nil), present...)
	sort.Float64s(sorted)
	med := quantile(sorted, 0.5)
	iqr := quantile(sorted, 0.75) - quantile(sorted, 0.25)
	if iqr == 0 {
		return func(x float64) float64 { return x - med }
	}
	return func(x float64) float64 { return (x - med) / iqr }
}

// fitNormalizer rescales every one-value row to unit L2 norm, which leaves
// the sign of each value (zero stays zero).
func fitNormalizer([]float64) func(float64) float64 {
	return func(x float64) float64 {
		n := math.Abs(x)
		if n == 0 {
			return 0
		}
		return x / n
	}
}

// fitMaxAbs divides by the largest absolute value; an all-zero column is kept.
func fitMaxAbs(present []float64) func(float64) float64 {
	m := 0.0
	for _, v := range present {
		m = math.Max(m, math.Abs(v))
	}
	if m == 0 {
		return func(x float64) float64 { return x }
	}
	return func(x float64) float64 { return x / m }
}

// quantile interpolates linearly between closest ranks of sorted values.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
