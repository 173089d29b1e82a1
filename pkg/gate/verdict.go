package gate

import "fmt"

// Class is the verdict class derived from a review score.
type Class string

const (
	Rejected              Class = "rejected"
	NeedsRevision         Class = "needs_revision"
	ConditionallyAccepted Class = "conditionally_accepted"
	Accepted              Class = "accepted"
)

// Classify maps a 1-10 score to a verdict class. The mapping is fixed policy,
// independent of stage: 9-10 accepted, 7-8 accepted outright in fast mode and
// conditionally in strict mode, 5-6 needs revision, 1-4 rejected.
func Classify(score int, strict bool) Class {
	switch {
	case score >= 9:
		return Accepted
	case score >= 7:
		if strict {
			return ConditionallyAccepted
		}
		return Accepted
	case score >= 5:
		return NeedsRevision
	default:
		return Rejected
	}
}

// Progressable reports whether a verdict of this class advances its stage.
// Fast mode trusts first-pass output except outright rejections.
func (c Class) Progressable(strict bool) bool {
	switch c {
	case Accepted, ConditionallyAccepted:
		return true
	case NeedsRevision:
		return !strict
	default:
		return false
	}
}

// Verdict is the immutable result of one quality evaluation of one artifact.
type Verdict struct {
	Score        int      `json:"score"`
	Class        Class    `json:"class"`
	Feedback     string   `json:"feedback"`
	Suggestions  []string `json:"suggestions,omitempty"`
	ArtifactID   string   `json:"artifact_id"`
	ArtifactHash string   `json:"artifact_hash"`
}

// NewVerdict builds a verdict with the class derived from score and mode.
func NewVerdict(score int, strict bool, feedback string, suggestions []string) (*Verdict, error) {
	if score < 1 || score > 10 {
		return nil, fmt.Errorf("score %d out of range 1-10", score)
	}
	return &Verdict{
		Score:       score,
		Class:       Classify(score, strict),
		Feedback:    feedback,
		Suggestions: suggestions,
	}, nil
}
