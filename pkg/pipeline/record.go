package pipeline

import (
	"time"

	"github.com/hyungsein/shorts-automation/pkg/artifact"
	"github.com/hyungsein/shorts-automation/pkg/gate"
)

// StageStatus is a stage's position in its state machine. Accepted,
// Exhausted and Aborted are terminal.
type StageStatus string

const (
	StatusPending    StageStatus = "pending"
	StatusAttempting StageStatus = "attempting"
	StatusAccepted   StageStatus = "accepted"
	StatusExhausted  StageStatus = "exhausted"
	StatusAborted    StageStatus = "aborted"
)

// Attempt pairs one candidate artifact with its review verdict. Verdict is
// nil only when the gate itself failed after the artifact was produced.
type Attempt struct {
	Artifact *artifact.Artifact `json:"artifact"`
	Verdict  *gate.Verdict      `json:"verdict,omitempty"`
}

// StageRecord is the full attempt history for one stage within a run. It
// grows monotonically while the stage is live and freezes once it resolves.
type StageRecord struct {
	Stage    StageKind   `json:"-"`
	Name     string      `json:"stage"`
	Attempts []Attempt   `json:"attempts"`
	Status   StageStatus `json:"status"`
	Failure  string      `json:"failure,omitempty"`
}

// Accepted returns the accepted artifact, or nil if the stage did not resolve
// Accepted. The accepted artifact is always the last attempt's.
func (r *StageRecord) Accepted() *artifact.Artifact {
	if r.Status != StatusAccepted || len(r.Attempts) == 0 {
		return nil
	}
	return r.Attempts[len(r.Attempts)-1].Artifact
}

// RunResult is the final output of one pipeline run.
type RunResult struct {
	RunID       string                          `json:"run_id"`
	ContentType ContentType                     `json:"content_type"`
	Strict      bool                            `json:"strict"`
	Accepted    map[StageKind]*artifact.Artifact `json:"-"`
	Records     []*StageRecord                  `json:"records"`
	StartedAt   time.Time                       `json:"started_at"`
	CompletedAt time.Time                       `json:"completed_at"`
}

// Outcome summarizes a run for reporting: every active stage accepted,
// some stage exhausted its retries, or the run aborted on a systemic error.
type Outcome string

const (
	OutcomeAccepted  Outcome = "accepted"
	OutcomeExhausted Outcome = "exhausted"
	OutcomeAborted   Outcome = "aborted"
)

// Outcome derives the run-level outcome from the stage records.
func (r *RunResult) Outcome() Outcome {
	for _, rec := range r.Records {
		switch rec.Status {
		case StatusAborted:
			return OutcomeAborted
		case StatusExhausted:
			return OutcomeExhausted
		}
	}
	return OutcomeAccepted
}

// Final returns the assembled video artifact if the run produced one.
func (r *RunResult) Final() *artifact.Artifact {
	return r.Accepted[StageAssembly]
}
