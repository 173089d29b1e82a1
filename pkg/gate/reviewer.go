package gate

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hyungsein/shorts-automation/pkg/adapter"
	"github.com/hyungsein/shorts-automation/pkg/artifact"
)

const reviewerSystemPrompt = `You are a STRICT and DEMANDING creative director for viral short-form video.
You have extremely high standards and rarely approve on the first try.
Your job is to review each stage of content creation and give brutally honest feedback.

Scoring criteria (1-10):
- 1-4: REJECTED - Completely unacceptable, start over
- 5-6: NEEDS_REVISION - Has potential but needs significant changes
- 7-8: Good but could be better, minor revisions
- 9-10: APPROVED - Excellent, meets viral standards

You must output in this EXACT format:
RESULT: [approved/rejected/revision]
SCORE: [1-10]
FEEDBACK: [Your brutally honest assessment]
SUGGESTIONS:
- [Specific improvement 1]
- [Specific improvement 2]
- [Specific improvement 3]`

// Reviewer scores artifacts with an LLM playing a demanding creative
// director. It implements the pipeline's quality gate.
type Reviewer struct {
	adapter adapter.Adapter
	model   string
	logf    func(format string, args ...any)
}

// ReviewerOption customizes a Reviewer.
type ReviewerOption func(*Reviewer)

// WithLogger sets a progress logger.
func WithLogger(logf func(format string, args ...any)) ReviewerOption {
	return func(r *Reviewer) { r.logf = logf }
}

// NewReviewer creates a reviewer backed by the given adapter and model.
func NewReviewer(a adapter.Adapter, model string, opts ...ReviewerOption) (*Reviewer, error) {
	if a == nil {
		return nil, fmt.Errorf("reviewer adapter is required")
	}
	if model == "" {
		models := a.Models()
		if len(models) == 0 {
			return nil, fmt.Errorf("no model available for reviewer adapter %s", a.Name())
		}
		model = models[0]
	}
	r := &Reviewer{adapter: a, model: model, logf: func(string, ...any) {}}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Evaluate scores one artifact. A provider or parse failure is returned as an
// error, never converted into a score: a gate that cannot evaluate must not
// let work through.
func (r *Reviewer) Evaluate(ctx context.Context, art *artifact.Artifact, stage string, strict bool) (*Verdict, error) {
	if art == nil {
		return nil, fmt.Errorf("artifact is required")
	}

	prompt := reviewPrompt(art, stage)
	r.logf("[gate] reviewing %s attempt %d with %s/%s", stage, art.Attempt, r.adapter.Name(), r.model)

	raw, err := r.adapter.Generate(ctx, r.model, prompt)
	if err != nil {
		return nil, fmt.Errorf("reviewer call for stage %s: %w", stage, err)
	}

	verdict, err := ParseVerdict(raw, strict)
	if err != nil {
		return nil, fmt.Errorf("parse reviewer output for stage %s: %w", stage, err)
	}
	verdict.ArtifactID = art.ID
	verdict.ArtifactHash = art.Hash

	r.logf("[gate] %s attempt %d scored %d/10 (%s)", stage, art.Attempt, verdict.Score, verdict.Class)
	return verdict, nil
}

func reviewPrompt(art *artifact.Artifact, stage string) string {
	var sb strings.Builder
	sb.WriteString(reviewerSystemPrompt)
	sb.WriteString("\n\n")

	switch art.Payload.Kind {
	case artifact.KindTopic:
		sb.WriteString("Review this trending topic for viral short-form potential.\n")
		sb.WriteString("Judge hook potential, emotional pull, and whether it condenses into 45-60 seconds.\n\n")
	case artifact.KindScript:
		sb.WriteString("Review this short-form video script.\n")
		sb.WriteString("Judge the hook's stopping power, pacing, emotional payoff, and that the CTA is not cringeworthy.\n")
		sb.WriteString("Scene prompts must match the story. Ideal length is 100-150 words.\n\n")
	case artifact.KindImages:
		sb.WriteString("Review these generated scene images by their prompts.\n")
		sb.WriteString("Judge whether the prompts match the story, have visual variety, and the count suits a 45-60 second video.\n\n")
	case artifact.KindAudio:
		sb.WriteString("Review this narration audio.\n")
		sb.WriteString("Judge the duration against the 45-60 second target; under 30s feels rushed, over 60s is too long.\n\n")
	case artifact.KindVideo:
		sb.WriteString("This is the FINAL review of the assembled video before delivery. Be extra critical.\n\n")
	}

	fmt.Fprintf(&sb, "Stage: %s\n\n%s\n", stage, art.Payload.Summary())
	return sb.String()
}

// ParseVerdict extracts a verdict from the reviewer's RESULT/SCORE/FEEDBACK/
// SUGGESTIONS output. A missing or unparsable score is an error; defaulting
// would silently bypass the quality contract.
func ParseVerdict(raw string, strict bool) (*Verdict, error) {
	var (
		score       = -1
		feedback    strings.Builder
		suggestions []string
		section     string
	)

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		upper := strings.ToUpper(trimmed)

		switch {
		case strings.HasPrefix(upper, "RESULT:"):
			section = ""
		case strings.HasPrefix(upper, "SCORE:"):
			section = ""
			value := strings.TrimSpace(trimmed[len("SCORE:"):])
			if fields := strings.Fields(value); len(fields) > 0 {
				value = fields[0]
			}
			value = strings.Trim(value, "[]")
			if i := strings.Index(value, "/"); i >= 0 {
				value = value[:i]
			}
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("unparsable score line %q", trimmed)
			}
			score = clampScore(n)
		case strings.HasPrefix(upper, "FEEDBACK:"):
			section = "feedback"
			feedback.WriteString(strings.TrimSpace(trimmed[len("FEEDBACK:"):]))
		case strings.HasPrefix(upper, "SUGGESTIONS:"):
			section = "suggestions"
		case trimmed == "":
			continue
		case section == "feedback":
			if !strings.HasPrefix(trimmed, "-") {
				if feedback.Len() > 0 {
					feedback.WriteString(" ")
				}
				feedback.WriteString(trimmed)
			}
		case section == "suggestions":
			if strings.HasPrefix(trimmed, "-") {
				suggestions = append(suggestions, strings.TrimSpace(strings.TrimPrefix(trimmed, "-")))
			}
		}
	}

	if score < 0 {
		return nil, fmt.Errorf("reviewer output has no SCORE line")
	}
	return NewVerdict(score, strict, feedback.String(), suggestions)
}

func clampScore(n int) int {
	if n < 1 {
		return 1
	}
	if n > 10 {
		return 10
	}
	return n
}
