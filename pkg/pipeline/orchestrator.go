package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hyungsein/shorts-automation/pkg/artifact"
	"github.com/hyungsein/shorts-automation/pkg/gate"
)

// Executor produces a candidate artifact for one stage attempt. upstream
// holds the accepted artifact of every preceding active stage and must be
// treated as read-only. feedback is the reviewer's feedback from the
// immediately preceding rejected attempt of the same stage, empty on the
// first attempt. Every call must produce a fresh artifact, never reuse a
// prior one. Systemic failures are reported as *ExecutionError.
type Executor interface {
	Produce(ctx context.Context, kind StageKind, upstream map[StageKind]*artifact.Artifact, feedback string) (*artifact.Artifact, error)
}

// Gate scores a candidate artifact. It is the only component allowed to
// request a retry. An error return aborts the run; a gate that cannot
// evaluate must never substitute a passing score.
type Gate interface {
	Evaluate(ctx context.Context, art *artifact.Artifact, stage string, strict bool) (*gate.Verdict, error)
}

// Orchestrator drives each active stage through the executor/gate loop,
// enforcing the retry bound and mode policy. One instance serves one run at
// a time; run concurrent items with separate calls to Run, which share no
// state beyond the executors and gate themselves.
type Orchestrator struct {
	executors map[StageKind]Executor
	gate      Gate
	logf      func(format string, args ...any)
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets a progress logger.
func WithLogger(logf func(format string, args ...any)) Option {
	return func(o *Orchestrator) { o.logf = logf }
}

// New creates an orchestrator over the given per-stage executors and gate.
func New(executors map[StageKind]Executor, g Gate, opts ...Option) (*Orchestrator, error) {
	if len(executors) == 0 {
		return nil, fmt.Errorf("at least one executor is required")
	}
	if g == nil {
		return nil, fmt.Errorf("gate is required")
	}
	o := &Orchestrator{
		executors: executors,
		gate:      g,
		logf:      func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Run executes the active stages in order for one content item. It returns
// the RunResult for every terminal state; err is non-nil only for aborts
// (systemic executor failure or gate failure). An exhausted stage is a
// normal, non-error completion with Outcome() == OutcomeExhausted.
func (o *Orchestrator) Run(ctx context.Context, spec *Spec) (*RunResult, error) {
	if spec == nil {
		return nil, fmt.Errorf("spec is required")
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	for _, kind := range spec.Stages {
		if _, ok := o.executors[kind]; !ok {
			return nil, fmt.Errorf("no executor registered for stage %s", kind)
		}
	}

	result := &RunResult{
		RunID:       uuid.NewString()[:8],
		ContentType: spec.ContentType,
		Strict:      spec.Strict,
		Accepted:    make(map[StageKind]*artifact.Artifact, len(spec.Stages)),
		StartedAt:   time.Now().UTC(),
	}
	o.logf("[run %s] starting %s pipeline (%d stages, strict=%v)",
		result.RunID, spec.ContentType, len(spec.Stages), spec.Strict)

	var runErr error
	for _, kind := range spec.Stages {
		record, accepted, err := o.runStage(ctx, spec, kind, result.Accepted)
		result.Records = append(result.Records, record)
		if err != nil {
			runErr = err
			break
		}
		if record.Status == StatusExhausted {
			o.logf("[run %s] stage %s exhausted after %d attempts, stopping",
				result.RunID, kind, len(record.Attempts))
			break
		}
		result.Accepted[kind] = accepted
	}

	result.CompletedAt = time.Now().UTC()
	o.logf("[run %s] finished: %s", result.RunID, result.Outcome())
	return result, runErr
}

// runStage walks one stage through Pending -> Attempting -> terminal.
func (o *Orchestrator) runStage(ctx context.Context, spec *Spec, kind StageKind, upstream map[StageKind]*artifact.Artifact) (*StageRecord, *artifact.Artifact, error) {
	record := &StageRecord{Stage: kind, Name: kind.String(), Status: StatusAttempting}
	executor := o.executors[kind]

	// Retries are attempts beyond the first; zero retries still means one
	// attempt.
	maxAttempts := spec.retriesFor(kind) + 1
	feedback := ""

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		o.logf("[stage %s] attempt %d/%d", kind, attempt, maxAttempts)

		art, err := o.produce(ctx, spec, executor, kind, upstream, feedback)
		if err != nil {
			record.Status = StatusAborted
			record.Failure = err.Error()
			return record, nil, &RunError{Stage: kind, Err: err}
		}
		if art.Attempt != attempt {
			// Executors stamp the attempt they were asked for; a mismatch
			// means a stale artifact was returned.
			err := fmt.Errorf("executor returned attempt %d artifact on attempt %d", art.Attempt, attempt)
			record.Status = StatusAborted
			record.Failure = err.Error()
			return record, nil, &RunError{Stage: kind, Err: NewExecutionError(InvalidInput, err)}
		}

		verdict, err := o.evaluate(ctx, spec, art, kind)
		if err != nil {
			record.Attempts = append(record.Attempts, Attempt{Artifact: art})
			record.Status = StatusAborted
			record.Failure = err.Error()
			return record, nil, &RunError{Stage: kind, Err: err}
		}
		record.Attempts = append(record.Attempts, Attempt{Artifact: art, Verdict: verdict})

		if verdict.Class.Progressable(spec.Strict) {
			record.Status = StatusAccepted
			o.logf("[stage %s] accepted with score %d on attempt %d", kind, verdict.Score, attempt)
			return record, art, nil
		}

		feedback = verdict.Feedback
		o.logf("[stage %s] attempt %d not accepted (score %d, %s)", kind, attempt, verdict.Score, verdict.Class)
	}

	record.Status = StatusExhausted
	return record, nil, nil
}

func (o *Orchestrator) produce(ctx context.Context, spec *Spec, executor Executor, kind StageKind, upstream map[StageKind]*artifact.Artifact, feedback string) (*artifact.Artifact, error) {
	callCtx := ctx
	if spec.StageTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, spec.StageTimeout)
		defer cancel()
	}

	art, err := executor.Produce(callCtx, kind, upstream, feedback)
	if err != nil {
		var execErr *ExecutionError
		if errors.As(err, &execErr) {
			return nil, execErr
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, NewExecutionError(Timeout, err)
		}
		return nil, NewExecutionError(ProviderUnavailable, err)
	}
	if art == nil {
		return nil, NewExecutionError(InvalidInput, fmt.Errorf("executor for stage %s returned nil artifact", kind))
	}
	return art, nil
}

func (o *Orchestrator) evaluate(ctx context.Context, spec *Spec, art *artifact.Artifact, kind StageKind) (*gate.Verdict, error) {
	callCtx := ctx
	if spec.StageTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, spec.StageTimeout)
		defer cancel()
	}

	verdict, err := o.gate.Evaluate(callCtx, art, kind.String(), spec.Strict)
	if err != nil {
		return nil, fmt.Errorf("quality gate failed for stage %s: %w", kind, err)
	}
	if verdict == nil {
		return nil, fmt.Errorf("quality gate returned no verdict for stage %s", kind)
	}
	return verdict, nil
}
