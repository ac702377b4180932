package prep

import "github.com/KaramelBytes/tabloom-cli/internal/dataset"

// ClassifyColumns splits the columns of ds into numeric and categorical
// names, in column order. Boolean columns count as numeric.
func ClassifyColumns(ds *dataset.Dataset) (numeric, categorical []string) {
	numeric, categorical = []string{}, []string{}
	if ds == nil {
		return numeric, categorical
	}
	for _, c := range ds.Columns() {
		if c.Kind() == dataset.Categorical {
			categorical = append(categorical, c.Name())
		} else {
			numeric = append(numeric, c.Name())
		}
	}
	return numeric, categorical
}
