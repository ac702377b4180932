// Package export writes processed datasets to CSV.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/KaramelBytes/tabloom-cli/internal/dataset"
)

// ToDataFrame converts ds into a gota DataFrame of string series. Missing
// cells become empty strings.
func ToDataFrame(ds *dataset.Dataset) (dataframe.DataFrame, error) {
	if ds == nil || ds.NumCols() == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("dataset has no columns")
	}
	cols := make([]series.Series, 0, ds.NumCols())
	for _, c := range ds.Columns() {
		vals := make([]string, c.Len())
		for i := range vals {
			vals[i] = c.Text(i)
		}
		cols = append(cols, series.New(vals, series.String, c.Name()))
	}
	df := dataframe.New(cols...)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("build dataframe: %w", df.Err)
	}
	return df, nil
}

// WriteCSV writes ds with a header row to w. A dataset without columns
// writes nothing.
func WriteCSV(w io.Writer, ds *dataset.Dataset) error {
	if ds == nil || ds.NumCols() == 0 {
		return nil
	}
	df, err := ToDataFrame(ds)
	if err != nil {
		return err
	}
	if err := df.WriteCSV(w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteCSVFile writes ds to path, creating parent directories.
func WriteCSVFile(path string, ds *dataset.Dataset) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, ds); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
