// Package importance ranks input features by how much they help a random
// forest classifier predict a target column.
package importance

import (
	"fmt"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/KaramelBytes/tabloom-cli/internal/dataset"
	"github.com/KaramelBytes/tabloom-cli/internal/prep"
)

// Defaults for the forest.
const (
	DefaultTrees           = 100
	DefaultSeed      int64 = 0
	DefaultMinSplit        = 2
)

// FeatureScore is one ranked feature.
type FeatureScore struct {
	Feature string  `json:"feature" yaml:"feature"`
	Score   float64 `json:"score" yaml:"score"`
}

// Result is the ranked importance table plus what was fitted.
type Result struct {
	Target   string         `json:"target" yaml:"target"`
	Features []FeatureScore `json:"features" yaml:"features"`
	// Classes maps label codes (slice index) to the target values.
	Classes     []string `json:"classes" yaml:"classes"`
	RowsUsed    int      `json:"rows_used" yaml:"rows_used"`
	RowsDropped int      `json:"rows_dropped" yaml:"rows_dropped"`
	Trees       int      `json:"trees" yaml:"trees"`
	SplitTrees  int      `json:"split_trees" yaml:"split_trees"`
}

// Option configures Estimate.
type Option func(*settings)

type settings struct {
	forest forest
	log    *zap.Logger
}

// WithTrees sets the number of trees.
func WithTrees(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.forest.trees = n
		}
	}
}

// WithSeed sets the random seed. The same seed gives the same ranking.
func WithSeed(seed int64) Option { return func(s *settings) { s.forest.seed = seed } }

// WithMaxDepth limits tree depth; 0 grows trees until leaves are pure.
func WithMaxDepth(d int) Option {
	return func(s *settings) {
		if d >= 0 {
			s.forest.maxDepth = d
		}
	}
}

// WithMaxFeatures sets how many features each split examines; 0 uses floor(sqrt(p)).
func WithMaxFeatures(k int) Option {
	return func(s *settings) {
		if k >= 0 {
			s.forest.maxFeatures = k
		}
	}
}

// WithMinSamplesSplit sets the smallest node that may still be split.
func WithMinSamplesSplit(n int) Option {
	return func(s *settings) {
		if n >= 2 {
			s.forest.minSamplesSplit = n
		}
	}
}

// WithBootstrap toggles bootstrap sampling of rows per tree.
func WithBootstrap(b bool) Option { return func(s *settings) { s.forest.bootstrap = b } }

// WithLogger sets the logger used for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

// Estimate one-hot encodes every column except target, label-encodes the
// target and ranks the encoded features by Gini importance. Rows with a
// missing target or feature value are left out and counted in RowsDropped.
// ds is not modified.
func Estimate(ds *dataset.Dataset, target string, opts ...Option) (*Result, error) {
	s := settings{
		forest: forest{trees: DefaultTrees, seed: DefaultSeed, minSamplesSplit: DefaultMinSplit, bootstrap: true},
		log:    zap.NewNop(),
	}
	for _, o := range opts {
		o(&s)
	}
	if ds == nil {
		return nil, &prep.EmptyInputError{Stage: prep.StageImportance}
	}
	y, ok := ds.Column(target)
	if !ok {
		return nil, &prep.ConfigurationError{Stage: prep.StageImportance, Reason: fmt.Sprintf("target column %q not found", target)}
	}
	if ds.NumRows() == 0 {
		return nil, &prep.EmptyInputError{Stage: prep.StageImportance}
	}

	features := ds.Drop(target)
	numeric, _ := prep.ClassifyColumns(features)
	base, err := features.Select(numeric...)
	if err != nil {
		return nil, &prep.ComputationError{Stage: prep.StageImportance, Reason: err.Error()}
	}
	encoded, _, err := prep.Encode(features, base)
	if err != nil {
		return nil, err
	}
	if encoded.NumCols() == 0 {
		return nil, &prep.ComputationError{Stage: prep.StageImportance, Reason: "no feature columns after encoding"}
	}

	keep := make([]int, 0, ds.NumRows())
	for i := 0; i < ds.NumRows(); i++ {
		if !y.IsNull(i) && !encoded.RowHasNull(i) {
			keep = append(keep, i)
		}
	}
	classes, labels := labelEncode(y, keep)
	if len(classes) < 2 {
		return nil, &prep.ComputationError{Stage: prep.StageImportance, Reason: fmt.Sprintf("target %q has %d distinct value(s), need at least 2", target, len(classes))}
	}

	x := make([][]float64, encoded.NumCols())
	for f, c := range encoded.Columns() {
		col := make([]float64, len(keep))
		for j, i := range keep {
			col[j] = c.Float(i)
		}
		x[f] = col
	}
	fit := s.forest.fit(x, labels, len(classes))
	s.log.Debug("fitted forest",
		zap.String("target", target),
		zap.Int("features", len(x)),
		zap.Int("rows", len(keep)),
		zap.Int("trees", s.forest.trees),
		zap.Int("split_trees", fit.splitTrees))
	if fit.splitTrees == 0 {
		return nil, &prep.ComputationError{Stage: prep.StageImportance, Reason: "no tree found a split; features cannot separate the target"}
	}

	names := encoded.Names()
	scores := make([]FeatureScore, len(names))
	for f, name := range names {
		scores[f] = FeatureScore{Feature: name, Score: fit.importances[f]}
	}
	sort.SliceStable(scores, func(a, b int) bool { return scores[a].Score > scores[b].Score })
	return &Result{
		Target:      target,
		Features:    scores,
		Classes:     classes,
		RowsUsed:    len(keep),
		RowsDropped: ds.NumRows() - len(keep),
		Trees:       s.forest.trees,
		SplitTrees:  fit.splitTrees,
	}, nil
}

// labelEncode maps the target values of rows to codes 0..k-1 in sorted value
// order: lexical for text, false before true, ascending for numbers.
func labelEncode(c *dataset.Column, rows []int) (classes []string, labels []int) {
	labels = make([]int, len(rows))
	switch c.Kind() {
	case dataset.Numeric:
		seen := map[float64]struct{}{}
		var vals []float64
		for _, i := range rows {
			v := c.Float(i)
			if v == 0 {
				v = 0 // -0
			}
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				vals = append(vals, v)
			}
		}
		sort.Float64s(vals)
		code := make(map[float64]int, len(vals))
		for k, v := range vals {
			code[v] = k
			classes = append(classes, strconv.FormatFloat(v, 'f', -1, 64))
		}
		for j, i := range rows {
			labels[j] = code[c.Float(i)]
		}
	default:
		seen := map[string]struct{}{}
		for _, i := range rows {
			v := c.Text(i)
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				classes = append(classes, v)
			}
		}
		// "false" < "true" so booleans share the lexical order.
		sort.Strings(classes)
		code := make(map[string]int, len(classes))
		for k, v := range classes {
			code[v] = k
		}
		for j, i := range rows {
			labels[j] = code[c.Text(i)]
		}
	}
	return classes, labels
}
