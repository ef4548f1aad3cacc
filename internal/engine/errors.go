package engine

import "fmt"

// Stages a search can fail in, carried on EngineError for diagnostics.
const (
	StagePrecondition = "precondition"
	StageCompile      = "compile"
	StageCount        = "count"
	StageQuery        = "query"
	StageExport       = "export"
)

// EngineError wraps a failure with the search stage it occurred in.
type EngineError struct {
	Stage string
	Err   error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("search failed during %s: %v", e.Stage, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }

func stageErr(stage string, err error) error {
	return &EngineError{Stage: stage, Err: err}
}
