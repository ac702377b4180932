package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tabloom-cli/internal/importance"
	"github.com/KaramelBytes/tabloom-cli/internal/prep"
)

func TestObservePreprocess(t *testing.T) {
	r := NewRecorder()
	d := prep.Diagnostics{
		RowsIn:      10,
		RowsOut:     7,
		Numeric:     []string{"a", "b"},
		Categorical: []string{"c"},
		Cleaning: prep.CleaningReport{Steps: []prep.StepReport{
			{Method: prep.DropNullRows, RowsBefore: 10, RowsAfter: 8},
			{Method: prep.DropDuplicateRows, RowsBefore: 8, RowsAfter: 7},
		}},
		Encoding: prep.EncodeReport{Columns: []string{"c_x", "c_y"}},
	}
	r.ObservePreprocess(d, 20*time.Millisecond)

	assert.Equal(t, 10.0, testutil.ToFloat64(r.rows.WithLabelValues("in")))
	assert.Equal(t, 7.0, testutil.ToFloat64(r.rows.WithLabelValues("out")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.rowsRemoved.WithLabelValues("drop-null-rows")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.rowsRemoved.WithLabelValues("drop-duplicate-rows")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.columns.WithLabelValues("encoded")))
}

func TestObserveImportanceAndRuns(t *testing.T) {
	r := NewRecorder()
	r.ObserveImportance(&importance.Result{
		Target:      "city",
		Features:    []importance.FeatureScore{{Feature: "age", Score: 0.75}, {Feature: "size", Score: 0.25}},
		RowsDropped: 3,
	}, time.Second)
	r.RunFinished("importance", nil)
	r.RunFinished("importance", errors.New("boom"))

	assert.Equal(t, 0.75, testutil.ToFloat64(r.featureScore.WithLabelValues("city", "age")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.rowsDropped))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("importance", "error")))
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.RunFinished("preprocess", nil)
	path := filepath.Join(t.TempDir(), "tabloom.prom")
	require.NoError(t, r.WriteTextfile(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), `tabloom_runs_total{command="preprocess",status="ok"} 1`), string(b))

	var nilRec *Recorder
	assert.NoError(t, nilRec.WriteTextfile(path))
}
