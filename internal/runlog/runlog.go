// Package runlog persists a manifest describing one preprocess or
// importance run next to its output.
package runlog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/tabloom-cli/internal/importance"
	"github.com/KaramelBytes/tabloom-cli/internal/prep"
	"github.com/KaramelBytes/tabloom-cli/internal/utils"
)

// ManifestSuffix is appended to the output path to name its manifest.
const ManifestSuffix = ".run.yaml"

// Manifest records what a run read, how it was configured and what each
// stage reported.
type Manifest struct {
	ID         string    `yaml:"id"`
	Command    string    `yaml:"command"`
	CreatedAt  time.Time `yaml:"created_at"`
	Input      string    `yaml:"input"`
	Output     string    `yaml:"output,omitempty"`
	Cleaning   []string  `yaml:"cleaning,omitempty"`
	Scaling    string    `yaml:"scaling,omitempty"`
	DurationMs int64     `yaml:"duration_ms"`

	Preprocess *PreprocessSummary `yaml:"preprocess,omitempty"`
	Importance *importance.Result `yaml:"importance,omitempty"`

	// Not serialized: where the manifest was saved or loaded.
	path string `yaml:"-"`
}

// PreprocessSummary is the serialisable form of prep.Diagnostics.
type PreprocessSummary struct {
	RowsIn      int           `yaml:"rows_in"`
	RowsOut     int           `yaml:"rows_out"`
	ColsIn      int           `yaml:"cols_in"`
	ColsOut     int           `yaml:"cols_out"`
	Numeric     []string      `yaml:"numeric"`
	Categorical []string      `yaml:"categorical"`
	Steps       []StepSummary `yaml:"cleaning_steps,omitempty"`
	Scaled      []string      `yaml:"scaled,omitempty"`
	Encoded     []string      `yaml:"encoded,omitempty"`
	Notes       []string      `yaml:"notes,omitempty"`
}

// StepSummary is one cleaning step.
type StepSummary struct {
	Method  string         `yaml:"method"`
	Removed int            `yaml:"removed"`
	Columns map[string]int `yaml:"columns,omitempty"`
	Note    string         `yaml:"note,omitempty"`
}

// New returns a manifest with a fresh id for command reading input.
func New(command, input string) *Manifest {
	return &Manifest{
		ID:        uuid.NewString(),
		Command:   command,
		CreatedAt: time.Now().UTC(),
		Input:     input,
	}
}

// PathFor returns the manifest path that belongs to output.
func PathFor(output string) string {
	return strings.TrimSuffix(output, filepath.Ext(output)) + ManifestSuffix
}

// SetPreprocess records the cleaning and scaling configuration and the
// diagnostics of a pipeline run.
func (m *Manifest) SetPreprocess(cleaning prep.CleaningConfig, scaling prep.Strategy, d prep.Diagnostics) {
	m.Cleaning = m.Cleaning[:0]
	for _, c := range cleaning {
		m.Cleaning = append(m.Cleaning, c.String())
	}
	m.Scaling = scaling.String()
	s := &PreprocessSummary{
		RowsIn: d.RowsIn, RowsOut: d.RowsOut, ColsIn: d.ColsIn, ColsOut: d.ColsOut,
		Numeric: d.Numeric, Categorical: d.Categorical,
		Scaled: d.Scaling.Columns, Encoded: d.Encoding.Columns, Notes: d.Notes,
	}
	for _, st := range d.Cleaning.Steps {
		ss := StepSummary{Method: st.Method.String(), Removed: st.Removed(), Note: st.Note}
		if len(st.Columns) > 0 {
			ss.Columns = make(map[string]int, len(st.Columns))
			for _, cc := range st.Columns {
				ss.Columns[cc.Column] = cc.Count
			}
		}
		s.Steps = append(s.Steps, ss)
	}
	m.Preprocess = s
}

// SetImportance records an importance result.
func (m *Manifest) SetImportance(r *importance.Result) { m.Importance = r }

// Finish stamps the elapsed time since CreatedAt.
func (m *Manifest) Finish() {
	m.DurationMs = time.Since(m.CreatedAt).Milliseconds()
}

// Path returns where the manifest was last saved or loaded from.
func (m *Manifest) Path() string { return m.path }

// Save writes the manifest as YAML to path using an atomic write.
func (m *Manifest) Save(path string) error {
	if path == "" {
		return errors.New("manifest path not set")
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := utils.SafeWriteFile(path, data); err != nil {
		return err
	}
	m.path = path
	return nil
}

// Load reads a manifest written by Save.
func Load(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("manifest not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	m.path = path
	return &m, nil
}
