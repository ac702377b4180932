// Package analysis builds a descriptive report of a dataset: per-column
// kinds and statistics, value counts, outliers, correlations and head rows.
package analysis

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/tabloom-cli/internal/dataset"
	"github.com/KaramelBytes/tabloom-cli/internal/prep"
)

// Options controls what Describe computes.
type Options struct {
	// SampleRows determines how many head rows to include in the report.
	SampleRows int
	// TopValues limits the value counts listed per categorical column.
	TopValues int
	// GroupBy computes per-group summaries for the given column names.
	GroupBy []string
	// Correlations computes Pearson correlations among numeric columns.
	Correlations bool
	// Outlier detection via robust Z-score (MAD). If Outliers is true, counts |z|>threshold.
	Outliers         bool
	OutlierThreshold float64
}

// DefaultOptions returns reasonable defaults for dataset description.
func DefaultOptions() Options {
	return Options{SampleRows: 5, TopValues: 8, OutlierThreshold: 3.5}
}

// Report is a markdown-friendly description of a dataset.
type Report struct {
	Name        string
	Rows        int
	Cols        []ColumnSummary
	Numeric     []string
	Categorical []string
	Samples     [][]string
	Warnings    []string
	Groups      []GroupResult
	Corr        *CorrMatrix
}

// ColumnSummary captures kind and statistics per column.
type ColumnSummary struct {
	Name    string
	Kind    string // numeric|boolean|categorical
	Unit    string
	NonNull int
	Missing int
	Unique  int
	// Numeric stats, as in a describe() table. Std is the sample deviation.
	Mean   float64
	Std    float64
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
	// Outliers (robust Z via MAD)
	OutliersCount    int
	OutliersMaxAbsZ  float64
	OutlierThreshold float64
	// Value counts, most frequent first
	TopValues []CategoryCount
}

type CategoryCount struct {
	Value string
	Count int
}

// GroupResult captures aggregated metrics per group key.
type GroupResult struct {
	Key     string
	Size    int
	Metrics map[string]NumSummary // by column name
}

type NumSummary struct {
	Count          int
	Min, Max, Mean float64
}

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
}

// Describe summarises ds. name labels the report, usually the file name.
func Describe(name string, ds *dataset.Dataset, opt Options) *Report {
	rep := &Report{Name: name}
	if ds == nil {
		return rep
	}
	rep.Rows = ds.NumRows()
	rep.Numeric, rep.Categorical = prep.ClassifyColumns(ds)
	if opt.TopValues <= 0 {
		opt.TopValues = 8
	}
	thr := opt.OutlierThreshold
	if thr <= 0 {
		thr = 3.5
	}

	for _, c := range ds.Columns() {
		clean, unit := splitUnits(c.Name())
		s := ColumnSummary{Name: clean, Kind: c.Kind().String(), Unit: unit, Missing: c.NullCount()}
		s.NonNull = c.Len() - s.Missing
		if unit == "" {
			s.Name = c.Name()
		}
		counts := valueCounts(c)
		s.Unique = len(counts)
		if c.Kind() != dataset.Numeric {
			if len(counts) > opt.TopValues {
				counts = counts[:opt.TopValues]
			}
			s.TopValues = counts
		}
		if c.Kind() != dataset.Categorical {
			vals := present(c)
			if len(vals) > 0 {
				describeNumeric(&s, vals)
				if opt.Outliers && len(vals) >= 8 {
					s.OutliersCount, s.OutliersMaxAbsZ = robustOutliers(vals, thr)
					s.OutlierThreshold = thr
				}
			}
		}
		rep.Cols = append(rep.Cols, s)
	}

	if n := opt.SampleRows; n > 0 {
		if n > ds.NumRows() {
			n = ds.NumRows()
		}
		for i := 0; i < n; i++ {
			row := make([]string, ds.NumCols())
			for j, c := range ds.Columns() {
				row[j] = c.Text(i)
			}
			rep.Samples = append(rep.Samples, row)
		}
	}

	if len(opt.GroupBy) > 0 {
		rep.Groups = groupSummaries(ds, opt.GroupBy, rep.Numeric, &rep.Warnings)
	}
	if opt.Correlations && len(rep.Numeric) >= 2 {
		rep.Corr = correlations(ds, rep.Numeric)
	}
	if ds.NumRows() == 0 {
		rep.Warnings = append(rep.Warnings, "dataset has no rows")
	}
	return rep
}

func describeNumeric(s *ColumnSummary, vals []float64) {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	s.Min, s.Max = sorted[0], sorted[len(sorted)-1]
	s.Q1 = quantile(sorted, 0.25)
	s.Median = quantile(sorted, 0.5)
	s.Q3 = quantile(sorted, 0.75)
	if len(vals) > 1 {
		s.Mean, s.Std = stat.MeanStdDev(vals, nil)
	} else {
		s.Mean = vals[0]
	}
}

// present returns the non-null cells of c as floats.
func present(c *dataset.Column) []float64 {
	out := make([]float64, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		if !c.IsNull(i) {
			out = append(out, c.Float(i))
		}
	}
	return out
}

// valueCounts tallies non-null values, most frequent first, ties by value.
func valueCounts(c *dataset.Column) []CategoryCount {
	m := map[string]int{}
	for i := 0; i < c.Len(); i++ {
		if !c.IsNull(i) {
			m[c.Text(i)]++
		}
	}
	out := make([]CategoryCount, 0, len(m))
	for k, v := range m {
		out = append(out, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	return out
}

func robustOutliers(vals []float64, thr float64) (count int, maxAbsZ float64) {
	median, mad := medianMAD(vals)
	if mad == 0 {
		return 0, 0
	}
	for _, v := range vals {
		az := math.Abs(0.6745 * (v - median) / mad)
		if az > thr {
			count++
		}
		if az > maxAbsZ {
			maxAbsZ = az
		}
	}
	return count, maxAbsZ
}

func groupSummaries(ds *dataset.Dataset, by []string, numeric []string, warnings *[]string) []GroupResult {
	var keyCols []*dataset.Column
	for _, name := range by {
		c, ok := lookupFold(ds, name)
		if !ok {
			*warnings = append(*warnings, fmt.Sprintf("group-by column %q not found", name))
			continue
		}
		keyCols = append(keyCols, c)
	}
	if len(keyCols) == 0 {
		return nil
	}
	byKey := map[string][]int{}
	for i := 0; i < ds.NumRows(); i++ {
		parts := make([]string, len(keyCols))
		for j, c := range keyCols {
			parts[j] = fmt.Sprintf("%s=%s", c.Name(), safeVal(c.Text(i)))
		}
		k := strings.Join(parts, " | ")
		byKey[k] = append(byKey[k], i)
	}
	out := make([]GroupResult, 0, len(byKey))
	for k, rows := range byKey {
		gr := GroupResult{Key: k, Size: len(rows), Metrics: map[string]NumSummary{}}
		for _, name := range numeric {
			c, _ := ds.Column(name)
			var vals []float64
			for _, i := range rows {
				if !c.IsNull(i) {
					vals = append(vals, c.Float(i))
				}
			}
			if len(vals) == 0 {
				continue
			}
			lo, hi := vals[0], vals[0]
			for _, v := range vals {
				lo, hi = math.Min(lo, v), math.Max(hi, v)
			}
			gr.Metrics[name] = NumSummary{Count: len(vals), Min: lo, Max: hi, Mean: stat.Mean(vals, nil)}
		}
		out = append(out, gr)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Size == out[j].Size {
			return out[i].Key < out[j].Key
		}
		return out[i].Size > out[j].Size
	})
	if len(out) > 20 {
		out = out[:20]
	}
	return out
}

func lookupFold(ds *dataset.Dataset, name string) (*dataset.Column, bool) {
	if c, ok := ds.Column(name); ok {
		return c, true
	}
	want := strings.ToLower(strings.TrimSpace(name))
	for _, c := range ds.Columns() {
		if strings.ToLower(c.Name()) == want {
			return c, true
		}
		if clean, _ := splitUnits(c.Name()); strings.ToLower(clean) == want {
			return c, true
		}
	}
	return nil, false
}

// correlations computes pairwise Pearson r over rows where both cells are present.
func correlations(ds *dataset.Dataset, numeric []string) *CorrMatrix {
	n := len(numeric)
	cols := make([]*dataset.Column, n)
	for i, name := range numeric {
		cols[i], _ = ds.Column(name)
	}
	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n)
		mat[i][i] = 1
	}
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			var xs, ys []float64
			for i := 0; i < ds.NumRows(); i++ {
				if cols[a].IsNull(i) || cols[b].IsNull(i) {
					continue
				}
				xs = append(xs, cols[a].Float(i))
				ys = append(ys, cols[b].Float(i))
			}
			r := 0.0
			if len(xs) >= 2 {
				r = stat.Correlation(xs, ys, nil)
			}
			if math.IsNaN(r) || math.IsInf(r, 0) {
				r = 0
			}
			r = math.Max(-1, math.Min(1, r))
			mat[a][b], mat[b][a] = r, r
		}
	}
	return &CorrMatrix{Columns: append([]string(nil), numeric...), Values: mat}
}

var unitPatterns = []struct {
	re   *regexp.Regexp
	pick int
}{
	{regexp.MustCompile(`^(.*)\s*\(([^)]+)\)\s*$`), 2},  // e.g., Alpha (%)
	{regexp.MustCompile(`^(.*)\s*\[([^\]]+)\]\s*$`), 2}, // e.g., Mass [mg/L]
	{regexp.MustCompile(`^(.*?)[_\s-]+(mg/L|g/L|ug/L|°[CF]|Brix|%|ppm|ppb)$`), 2},
}

func splitUnits(name string) (clean string, unit string) {
	s := strings.TrimSpace(name)
	for _, p := range unitPatterns {
		if m := p.re.FindStringSubmatch(s); len(m) >= 3 {
			base := strings.TrimSpace(m[1])
			u := strings.TrimSpace(m[p.pick])
			if base != "" && u != "" {
				return base, u
			}
		}
	}
	return s, ""
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
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
