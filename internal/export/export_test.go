package export

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/tabloom-cli/internal/dataset"
)

func TestWriteCSV(t *testing.T) {
	ds := dataset.MustNew(
		dataset.NewNumeric("age", []float64{0, 1, math.NaN()}),
		dataset.NewNumeric("city_NY", []float64{1, 0, 1}),
		dataset.NewCategorical("note", []string{"a,b", "c", ""}, []bool{false, false, true}),
	)
	var buf bytes.Buffer
	if err := WriteCSV(&buf, ds); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "age,city_NY,note\n0,1,\"a,b\"\n1,0,c\n,1,\n"
	if buf.String() != want {
		t.Fatalf("csv = %q, want %q", buf.String(), want)
	}
}

func TestWriteCSVFileRoundTrip(t *testing.T) {
	ds := dataset.MustNew(
		dataset.NewNumeric("x", []float64{0.25, -3}),
		dataset.NewBoolean("flag", []bool{true, false}, nil),
	)
	path := filepath.Join(t.TempDir(), "out", "processed.csv")
	if err := WriteCSVFile(path, ds); err != nil {
		t.Fatalf("WriteCSVFile: %v", err)
	}
	back, err := dataset.ReadCSVFile(path, dataset.DefaultLoadOptions())
	if err != nil {
		t.Fatalf("ReadCSVFile: %v", err)
	}
	if !back.Equal(ds) {
		t.Fatalf("round trip mismatch: %v", back.Names())
	}
}

func TestWriteCSVNoColumns(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, dataset.Empty(3)); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := WriteCSVFile(path, dataset.Empty(0)); err != nil {
		t.Fatalf("WriteCSVFile: %v", err)
	}
	b, _ := os.ReadFile(path)
	if strings.TrimSpace(string(b)) != "" {
		t.Fatalf("expected empty file")
	}
}
