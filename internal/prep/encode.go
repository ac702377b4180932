package prep

import (
	"fmt"

	"github.com/KaramelBytes/tabloom-cli/internal/dataset"
)

// NullCategory is the category label given to missing categorical cells.
const NullCategory = "nan"

// EncodeReport describes an encoding call.
type EncodeReport struct {
	// Source lists the categorical columns that were expanded.
	Source []string
	// Columns lists the generated indicator columns in output order.
	Columns []string
}

// Encode one-hot encodes the categorical columns of ds and appends the
// indicators to numeric. Categories appear in first-seen order and are named
// "{column}_{value}"; a missing cell becomes the "{column}_nan" category,
// merged with a literal "nan" value if the column has one.
// Without categorical columns numeric is returned as is.
func Encode(ds, numeric *dataset.Dataset) (*dataset.Dataset, EncodeReport, error) {
	var rep EncodeReport
	if ds == nil || numeric == nil {
		return nil, rep, &EmptyInputError{Stage: StageEncode}
	}
	_, categorical := ClassifyColumns(ds)
	if len(categorical) == 0 {
		return numeric, rep, nil
	}
	if numeric.NumCols() > 0 && numeric.NumRows() != ds.NumRows() {
		return nil, rep, &ComputationError{Stage: StageEncode, Reason: fmt.Sprintf("numeric base has %d rows, dataset has %d", numeric.NumRows(), ds.NumRows())}
	}
	rep.Source = categorical
	var cols []*dataset.Column
	for _, name := range categorical {
		c, _ := ds.Column(name)
		cols = append(cols, oneHot(c)...)
	}
	for _, c := range cols {
		rep.Columns = append(rep.Columns, c.Name())
	}
	encoded := dataset.Empty(ds.NumRows())
	if len(cols) > 0 {
		var err error
		if encoded, err = dataset.New(cols...); err != nil {
			return nil, rep, &ComputationError{Stage: StageEncode, Reason: err.Error()}
		}
	}
	out, err := numeric.HConcat(encoded)
	if err != nil {
		return nil, rep, &ComputationError{Stage: StageEncode, Reason: err.Error()}
	}
	return out, rep, nil
}

// oneHot expands c into one 0/1 indicator column per distinct value. A
// missing cell and the literal value "nan" share the "{column}_nan" indicator.
func oneHot(c *dataset.Column) []*dataset.Column {
	var order []string
	index := map[string]int{}
	codes := make([]int, c.Len())
	for i := 0; i < c.Len(); i++ {
		v := NullCategory
		if !c.IsNull(i) {
			v = c.Text(i)
		}
		j, ok := index[v]
		if !ok {
			j = len(order)
			index[v] = j
			order = append(order, v)
		}
		codes[i] = j
	}
	out := make([]*dataset.Column, len(order))
	for j, v := range order {
		vals := make([]float64, c.Len())
		for i, code := range codes {
			if code == j {
				vals[i] = 1
			}
		}
		out[j] = dataset.NewNumeric(fmt.Sprintf("%s_%s", c.Name(), v), vals)
	}
	return out
}
