package evidence

import (
	"github.com/hyungsein/shorts-automation/pkg/pipeline"
)

// Record persists a complete run result as an audit bundle.
func Record(w *Writer, result *pipeline.RunResult) error {
	run := RunRecord{
		ID:          result.RunID,
		Timestamp:   result.StartedAt,
		ContentType: string(result.ContentType),
		Strict:      result.Strict,
		Outcome:     string(result.Outcome()),
	}
	if err := w.WriteRun(run); err != nil {
		return err
	}

	for _, sr := range result.Records {
		if err := w.WriteStage(fromStageRecord(sr)); err != nil {
			return err
		}
	}
	return nil
}

func fromStageRecord(sr *pipeline.StageRecord) StageRecord {
	rec := StageRecord{
		Stage:   sr.Name,
		Status:  string(sr.Status),
		Failure: sr.Failure,
	}
	for _, att := range sr.Attempts {
		ar := AttemptRecord{}
		if att.Artifact != nil {
			ar.Attempt = att.Artifact.Attempt
			ar.ArtifactID = att.Artifact.ID
			ar.ArtifactHash = att.Artifact.Hash
			ar.Producer = att.Artifact.Producer
			ar.Summary = att.Artifact.Payload.Summary()
		}
		if att.Verdict != nil {
			ar.Score = att.Verdict.Score
			ar.Class = string(att.Verdict.Class)
			ar.Feedback = att.Verdict.Feedback
			ar.Suggestions = att.Verdict.Suggestions
		}
		rec.Attempts = append(rec.Attempts, ar)
	}
	return rec
}
