// Package prep implements the preprocessing pipeline: column
// classification, row cleaning, per-column scaling and one-hot encoding.
package prep

import (
	"go.uber.org/zap"

	"github.com/KaramelBytes/tabloom-cli/internal/dataset"
)

// Diagnostics collects what each stage did to the dataset.
type Diagnostics struct {
	RowsIn  int
	RowsOut int
	ColsIn  int
	ColsOut int
	// Numeric and Categorical are the column classes after cleaning.
	Numeric     []string
	Categorical []string
	Cleaning    CleaningReport
	Scaling     ScaleReport
	Encoding    EncodeReport
	Notes       []string
}

// Result is the processed dataset plus its diagnostics.
type Result struct {
	Dataset     *dataset.Dataset
	Diagnostics Diagnostics
}

// Preprocessor runs the pipeline. The zero value is ready to use.
type Preprocessor struct {
	log *zap.Logger
}

// Option configures a Preprocessor.
type Option func(*Preprocessor)

// WithLogger sets the logger used for stage-level debug output.
func WithLogger(l *zap.Logger) Option {
	return func(p *Preprocessor) {
		if l != nil {
			p.log = l
		}
	}
}

// NewPreprocessor returns a Preprocessor with opts applied.
func NewPreprocessor(opts ...Option) *Preprocessor {
	p := &Preprocessor{}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Preprocessor) logger() *zap.Logger {
	if p == nil || p.log == nil {
		return zap.NewNop()
	}
	return p.log
}

// Preprocess runs the pipeline with a silent Preprocessor.
func Preprocess(ds *dataset.Dataset, cleaning CleaningConfig, scaling Strategy) (*Result, error) {
	return NewPreprocessor().Preprocess(ds, cleaning, scaling)
}

// Preprocess classifies columns, cleans the full dataset, re-classifies,
// scales the numeric columns and appends the one-hot encoded categorical
// columns to the scaled ones. ds itself is left untouched.
func (p *Preprocessor) Preprocess(ds *dataset.Dataset, cleaning CleaningConfig, scaling Strategy) (*Result, error) {
	log := p.logger().With(zap.String("stage", StagePreprocess))
	if err := cleaning.validate(); err != nil {
		return nil, err
	}
	if _, err := scalerFor(scaling); err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, &EmptyInputError{Stage: StagePreprocess}
	}
	diag := Diagnostics{RowsIn: ds.NumRows(), ColsIn: ds.NumCols()}
	if ds.NumCols() == 0 {
		diag.Notes = append(diag.Notes, "empty input: dataset has no columns, stages skipped")
		diag.RowsOut = ds.NumRows()
		return &Result{Dataset: ds, Diagnostics: diag}, nil
	}
	if ds.NumRows() == 0 {
		diag.Notes = append(diag.Notes, "empty input: dataset has no rows")
	}

	numeric, categorical := ClassifyColumns(ds)
	log.Debug("classified columns", zap.Int("numeric", len(numeric)), zap.Int("categorical", len(categorical)))

	cleaned, crep, err := Clean(ds, cleaning)
	if err != nil {
		return nil, err
	}
	diag.Cleaning = crep
	for _, s := range crep.Steps {
		log.Debug("cleaning step", zap.Stringer("method", s.Method), zap.Int("rows_before", s.RowsBefore), zap.Int("rows_after", s.RowsAfter))
		if s.Note != "" {
			diag.Notes = append(diag.Notes, s.Method.String()+": "+s.Note)
		}
	}

	numeric, categorical = ClassifyColumns(cleaned)
	diag.Numeric, diag.Categorical = numeric, categorical

	base, err := cleaned.Select(numeric...)
	if err != nil {
		return nil, &ComputationError{Stage: StagePreprocess, Reason: err.Error()}
	}
	scaled, srep, err := Scale(base, scaling)
	if err != nil {
		return nil, err
	}
	diag.Scaling = srep
	if srep.Note != "" {
		diag.Notes = append(diag.Notes, srep.Note)
	}
	log.Debug("scaled columns", zap.Stringer("strategy", scaling), zap.Strings("columns", srep.Columns))

	out, erep, err := Encode(cleaned, scaled)
	if err != nil {
		return nil, err
	}
	diag.Encoding = erep
	log.Debug("encoded columns", zap.Strings("source", erep.Source), zap.Int("indicators", len(erep.Columns)))

	diag.RowsOut, diag.ColsOut = out.NumRows(), out.NumCols()
	log.Debug("preprocess finished", zap.Int("rows_in", diag.RowsIn), zap.Int("rows_out", diag.RowsOut), zap.Int("cols_out", diag.ColsOut))
	return &Result{Dataset: out, Diagnostics: diag}, nil
}
