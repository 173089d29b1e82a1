package pipeline

import (
	"fmt"
	"time"
)

// StageKind identifies one phase of content production. Values are ordered:
// a stage only consumes output from stages that sort before it.
type StageKind int

const (
	StageDiscovery StageKind = iota
	StageWriting
	StageImaging
	StageNarration
	StageAssembly
)

func (k StageKind) String() string {
	switch k {
	case StageDiscovery:
		return "discovery"
	case StageWriting:
		return "writing"
	case StageImaging:
		return "imaging"
	case StageNarration:
		return "narration"
	case StageAssembly:
		return "assembly"
	default:
		return fmt.Sprintf("stage(%d)", int(k))
	}
}

// ContentType selects what kind of short gets produced.
type ContentType string

const (
	ContentStory      ContentType = "story-from-source"
	ContentHorror     ContentType = "horror-story"
	ContentFacts      ContentType = "facts"
	ContentMotivation ContentType = "motivational"
)

// ParseContentType maps a CLI selector to a ContentType.
func ParseContentType(s string) (ContentType, error) {
	switch ContentType(s) {
	case ContentStory, ContentHorror, ContentFacts, ContentMotivation:
		return ContentType(s), nil
	default:
		return "", fmt.Errorf("unknown content type %q (want %s, %s, %s or %s)",
			s, ContentStory, ContentHorror, ContentFacts, ContentMotivation)
	}
}

// Spec is the immutable configuration for one pipeline run. The caller builds
// it once; the orchestrator never mutates it.
type Spec struct {
	ContentType ContentType
	Strict      bool

	// Count is the number of items requested. The controller invokes Run
	// once per item; a single Run always produces one item. Zero means one.
	Count int

	// Stages is the active stage sequence in execution order. Imaging may
	// be omitted to produce audio-over-background videos.
	Stages []StageKind

	// MaxRetries bounds additional attempts per stage beyond the first.
	// A stage absent from the map gets zero retries.
	MaxRetries map[StageKind]int

	// StageTimeout bounds each executor and gate call. Zero means no bound.
	StageTimeout time.Duration

	// Seed makes image synthesis reproducible when non-zero.
	Seed int64
}

// DefaultStages returns the full stage sequence, optionally without imaging.
func DefaultStages(withImages bool) []StageKind {
	if withImages {
		return []StageKind{StageDiscovery, StageWriting, StageImaging, StageNarration, StageAssembly}
	}
	return []StageKind{StageDiscovery, StageWriting, StageNarration, StageAssembly}
}

// Items returns the requested item count, defaulting to one.
func (s *Spec) Items() int {
	if s.Count < 1 {
		return 1
	}
	return s.Count
}

// Validate checks the spec for an executable stage sequence.
func (s *Spec) Validate() error {
	if s.Count < 0 {
		return fmt.Errorf("negative item count")
	}
	if len(s.Stages) == 0 {
		return fmt.Errorf("spec must declare at least one stage")
	}
	seen := make(map[StageKind]bool, len(s.Stages))
	prev := StageKind(-1)
	for _, kind := range s.Stages {
		if kind < StageDiscovery || kind > StageAssembly {
			return fmt.Errorf("unknown stage kind %d", int(kind))
		}
		if seen[kind] {
			return fmt.Errorf("duplicate stage %s", kind)
		}
		if kind <= prev {
			return fmt.Errorf("stage %s out of order", kind)
		}
		seen[kind] = true
		prev = kind
	}
	for kind, retries := range s.MaxRetries {
		if retries < 0 {
			return fmt.Errorf("negative retry count for stage %s", kind)
		}
	}
	return nil
}

// retriesFor returns the configured retry bound for a stage.
func (s *Spec) retriesFor(kind StageKind) int {
	if s.MaxRetries == nil {
		return 0
	}
	return s.MaxRetries[kind]
}
