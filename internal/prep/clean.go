package prep

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/tabloom-cli/internal/dataset"
)

// CleaningMethod identifies one row-removal operation.
type CleaningMethod int

const (
	NoCleaning CleaningMethod = iota
	DropNullRows
	DropDuplicateRows
	DropOutlierRows
)

// OutlierZ is the absolute z-score above which a cell marks its row as an outlier.
const OutlierZ = 3.0

// cleaningOrder is the order in which selected methods run.
var cleaningOrder = []CleaningMethod{DropNullRows, DropDuplicateRows, DropOutlierRows}

func (m CleaningMethod) String() string {
	switch m {
	case NoCleaning:
		return "none"
	case DropNullRows:
		return "drop-null-rows"
	case DropDuplicateRows:
		return "drop-duplicate-rows"
	case DropOutlierRows:
		return "drop-outlier-rows"
	default:
		return fmt.Sprintf("cleaning(%d)", int(m))
	}
}

// ParseCleaningMethod maps an identifier to a CleaningMethod.
func ParseCleaningMethod(id string) (CleaningMethod, error) {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case "none":
		return NoCleaning, nil
	case "drop-null-rows", "nulls":
		return DropNullRows, nil
	case "drop-duplicate-rows", "duplicates":
		return DropDuplicateRows, nil
	case "drop-outlier-rows", "outliers":
		return DropOutlierRows, nil
	default:
		return 0, &ConfigurationError{Stage: StageClean, Reason: fmt.Sprintf("unknown cleaning method %q (valid: none, drop-null-rows, drop-duplicate-rows, drop-outlier-rows)", id)}
	}
}

// CleaningConfig is the set of cleaning methods chosen by the caller.
// Selecting real methods alongside "none" runs the real methods.
type CleaningConfig []CleaningMethod

// ParseCleaningConfig parses identifiers such as "drop-null-rows".
// Comma separated values inside one identifier are accepted.
func ParseCleaningConfig(ids ...string) (CleaningConfig, error) {
	var cfg CleaningConfig
	for _, raw := range ids {
		for _, id := range strings.Split(raw, ",") {
			if strings.TrimSpace(id) == "" {
				continue
			}
			m, err := ParseCleaningMethod(id)
			if err != nil {
				return nil, err
			}
			cfg = append(cfg, m)
		}
	}
	return cfg, nil
}

// Has reports whether m was selected.
func (c CleaningConfig) Has(m CleaningMethod) bool {
	for _, x := range c {
		if x == m {
			return true
		}
	}
	return false
}

func (c CleaningConfig) validate() error {
	for _, m := range c {
		switch m {
		case NoCleaning, DropNullRows, DropDuplicateRows, DropOutlierRows:
		default:
			return &ConfigurationError{Stage: StageClean, Reason: fmt.Sprintf("unknown cleaning method %s", m)}
		}
	}
	return nil
}

// ColumnCount pairs a column name with a per-column tally.
type ColumnCount struct {
	Column string
	Count  int
}

// StepReport describes one executed cleaning step.
type StepReport struct {
	Method     CleaningMethod
	RowsBefore int
	RowsAfter  int
	// Columns holds per-column null counts (drop-null-rows) or outlier cell
	// counts (drop-outlier-rows), only for columns with a non-zero count.
	Columns []ColumnCount
	Note    string
}

// Removed returns the number of rows dropped by the step.
func (s StepReport) Removed() int { return s.RowsBefore - s.RowsAfter }

// CleaningReport lists executed steps in the order they ran.
type CleaningReport struct {
	Steps []StepReport
}

// Removed returns the total number of rows dropped.
func (r CleaningReport) Removed() int {
	n := 0
	for _, s := range r.Steps {
		n += s.Removed()
	}
	return n
}

// Step returns the report of method m, if it ran.
func (r CleaningReport) Step(m CleaningMethod) (StepReport, bool) {
	for _, s := range r.Steps {
		if s.Method == m {
			return s, true
		}
	}
	return StepReport{}, false
}

// Clean removes rows according to methods. Steps always run in the order
// drop-null-rows, drop-duplicate-rows, drop-outlier-rows, each consuming the
// previous step's output. With no real method selected ds is returned as is.
func Clean(ds *dataset.Dataset, methods CleaningConfig) (*dataset.Dataset, CleaningReport, error) {
	var rep CleaningReport
	if err := methods.validate(); err != nil {
		return nil, rep, err
	}
	if ds == nil {
		return nil, rep, &EmptyInputError{Stage: StageClean}
	}
	cur := ds
	for _, m := range cleaningOrder {
		if !methods.Has(m) {
			continue
		}
		var step StepReport
		switch m {
		case DropNullRows:
			cur, step = dropNullRows(cur)
		case DropDuplicateRows:
			cur, step = dropDuplicateRows(cur)
		case DropOutlierRows:
			cur, step = dropOutlierRows(cur)
		}
		step.Method = m
		rep.Steps = append(rep.Steps, step)
	}
	return cur, rep, nil
}

func dropNullRows(ds *dataset.Dataset) (*dataset.Dataset, StepReport) {
	step := StepReport{RowsBefore: ds.NumRows()}
	for _, c := range ds.Columns() {
		if n := c.NullCount(); n > 0 {
			step.Columns = append(step.Columns, ColumnCount{Column: c.Name(), Count: n})
		}
	}
	keep := make([]int, 0, ds.NumRows())
	for i := 0; i < ds.NumRows(); i++ {
		if !ds.RowHasNull(i) {
			keep = append(keep, i)
		}
	}
	out := ds
	if len(keep) != ds.NumRows() {
		out = ds.Take(keep)
	}
	step.RowsAfter = out.NumRows()
	return out, step
}

func dropDuplicateRows(ds *dataset.Dataset) (*dataset.Dataset, StepReport) {
	step := StepReport{RowsBefore: ds.NumRows()}
	seen := make(map[string]struct{}, ds.NumRows())
	keep := make([]int, 0, ds.NumRows())
	for i := 0; i < ds.NumRows(); i++ {
		k := ds.RowKey(i)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keep = append(keep, i)
	}
	out := ds
	if len(keep) != ds.NumRows() {
		out = ds.Take(keep)
	}
	step.RowsAfter = out.NumRows()
	return out, step
}

// dropOutlierRows removes rows holding a cell with |z| > OutlierZ in any
// numeric or boolean column. z uses the population standard deviation over
// the non-null cells of the column. Null cells and zero-variance columns
// never mark a row.
func dropOutlierRows(ds *dataset.Dataset) (*dataset.Dataset, StepReport) {
	step := StepReport{RowsBefore: ds.NumRows(), RowsAfter: ds.NumRows()}
	if ds.NumRows() < 2 {
		step.Note = "fewer than 2 rows; outlier detection skipped"
		return ds, step
	}
	drop := make([]bool, ds.NumRows())
	numeric, _ := ClassifyColumns(ds)
	var constant []string
	for _, name := range numeric {
		c, _ := ds.Column(name)
		vals := c.Floats()
		present := presentValues(vals)
		if len(present) < 2 {
			continue
		}
		mean, std := stat.PopMeanStdDev(present, nil)
		if std == 0 || math.IsNaN(std) {
			constant = append(constant, name)
			continue
		}
		n := 0
		for i, v := range vals {
			if math.IsNaN(v) {
				continue
			}
			if math.Abs((v-mean)/std) > OutlierZ {
				drop[i] = true
				n++
			}
		}
		if n > 0 {
			step.Columns = append(step.Columns, ColumnCount{Column: name, Count: n})
		}
	}
	if len(constant) > 0 {
		step.Note = "zero variance, never outlying: " + strings.Join(constant, ", ")
	}
	keep := make([]int, 0, ds.NumRows())
	for i, d := range drop {
		if !d {
			keep = append(keep, i)
		}
	}
	if len(keep) == ds.NumRows() {
		return ds, step
	}
	out := ds.Take(keep)
	step.RowsAfter = out.NumRows()
	return out, step
}

// presentValues returns the non-NaN values of vals.
func presentValues(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
