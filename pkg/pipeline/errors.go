package pipeline

import "fmt"

// ErrorKind classifies systemic executor failures. These are never quality
// rejections: the orchestrator aborts the run instead of retrying.
type ErrorKind string

const (
	ProviderUnavailable ErrorKind = "provider_unavailable"
	InvalidInput        ErrorKind = "invalid_input"
	QuotaExceeded       ErrorKind = "quota_exceeded"
	Timeout             ErrorKind = "timeout"
)

// ExecutionError reports that a stage executor could not produce a candidate
// artifact. Retry of transient provider errors, if any, is the executor's
// internal concern; by the time one of these surfaces the stage is dead.
type ExecutionError struct {
	Kind ErrorKind
	Err  error
}

func (e *ExecutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("execution error (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("execution error (%s)", e.Kind)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// NewExecutionError wraps err with a systemic failure kind.
func NewExecutionError(kind ErrorKind, err error) *ExecutionError {
	return &ExecutionError{Kind: kind, Err: err}
}

// RunError is the run-level failure the orchestrator surfaces when a stage
// aborts. It carries the stage so callers can report where the run died.
type RunError struct {
	Stage StageKind
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run aborted at stage %s: %v", e.Stage, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }
