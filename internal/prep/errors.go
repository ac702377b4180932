package prep

import "fmt"

// Stage names carried by the typed errors and diagnostics.
const (
	StageClassify   = "classify"
	StageClean      = "clean"
	StageScale      = "scale"
	StageEncode     = "encode"
	StagePreprocess = "preprocess"
	StageImportance = "importance"
)

// ConfigurationError reports an option the pipeline does not recognise,
// such as an unknown scaling strategy or a missing target column.
type ConfigurationError struct {
	Stage  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: invalid configuration: %s", e.Stage, e.Reason)
}

// ComputationError reports input that a statistical step cannot work with.
type ComputationError struct {
	Stage  string
	Reason string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("%s: cannot compute: %s", e.Stage, e.Reason)
}

// EmptyInputError indicates a dataset with no rows or no columns reached a
// stage that cannot skip it.
type EmptyInputError struct {
	Stage string
}

func (e *EmptyInputError) Error() string {
	if e == nil || e.Stage == "" {
		return "empty input"
	}
	return fmt.Sprintf("%s: empty input", e.Stage)
}
