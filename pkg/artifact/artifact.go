package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// PayloadKind identifies which variant of a Payload is set.
type PayloadKind string

const (
	KindTopic  PayloadKind = "topic"
	KindScript PayloadKind = "script"
	KindImages PayloadKind = "images"
	KindAudio  PayloadKind = "audio"
	KindVideo  PayloadKind = "video"
)

// Topic is the discovery stage output: one candidate story.
type Topic struct {
	Title     string `json:"title"`
	Source    string `json:"source"`
	URL       string `json:"url,omitempty"`
	Score     int    `json:"score"`
	Body      string `json:"body"`
	FetchedAt string `json:"fetched_at,omitempty"`
}

// Script is the writing stage output.
type Script struct {
	Hook         string   `json:"hook"`
	Body         string   `json:"body"`
	CTA          string   `json:"cta"`
	Tone         string   `json:"tone,omitempty"`
	ScenePrompts []string `json:"scene_prompts,omitempty"`
}

// FullText joins hook, body and CTA in narration order.
func (s *Script) FullText() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{s.Hook, s.Body, s.CTA} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	return strings.Join(parts, "\n\n")
}

// WordCount counts words across the full narration text.
func (s *Script) WordCount() int {
	return len(strings.Fields(s.FullText()))
}

// ImageRef points at one generated scene image on disk.
type ImageRef struct {
	Path   string `json:"path"`
	Prompt string `json:"prompt"`
	Index  int    `json:"index"`
}

// ImageSet is the imaging stage output.
type ImageSet struct {
	Images []ImageRef `json:"images"`
}

// AudioRef is the narration stage output.
type AudioRef struct {
	Path     string        `json:"path"`
	Duration time.Duration `json:"duration"`
	Voice    string        `json:"voice"`
}

// VideoRef is the assembly stage output, including the upload metadata
// generated alongside the final cut.
type VideoRef struct {
	Path        string        `json:"path"`
	Duration    time.Duration `json:"duration"`
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Tags        []string      `json:"tags,omitempty"`
}

// Payload is a tagged variant holding one stage's concrete output. Exactly
// one pointer matching Kind is non-nil.
type Payload struct {
	Kind   PayloadKind `json:"kind"`
	Topic  *Topic      `json:"topic,omitempty"`
	Script *Script     `json:"script,omitempty"`
	Images *ImageSet   `json:"images,omitempty"`
	Audio  *AudioRef   `json:"audio,omitempty"`
	Video  *VideoRef   `json:"video,omitempty"`
}

// TopicPayload wraps a Topic in a tagged payload.
func TopicPayload(t *Topic) Payload { return Payload{Kind: KindTopic, Topic: t} }

// ScriptPayload wraps a Script in a tagged payload.
func ScriptPayload(s *Script) Payload { return Payload{Kind: KindScript, Script: s} }

// ImagesPayload wraps an ImageSet in a tagged payload.
func ImagesPayload(i *ImageSet) Payload { return Payload{Kind: KindImages, Images: i} }

// AudioPayload wraps an AudioRef in a tagged payload.
func AudioPayload(a *AudioRef) Payload { return Payload{Kind: KindAudio, Audio: a} }

// VideoPayload wraps a VideoRef in a tagged payload.
func VideoPayload(v *VideoRef) Payload { return Payload{Kind: KindVideo, Video: v} }

// Validate checks that the variant pointer matches the declared kind.
func (p Payload) Validate() error {
	set := map[PayloadKind]bool{
		KindTopic:  p.Topic != nil,
		KindScript: p.Script != nil,
		KindImages: p.Images != nil,
		KindAudio:  p.Audio != nil,
		KindVideo:  p.Video != nil,
	}
	if !set[p.Kind] {
		return fmt.Errorf("payload kind %q has no matching value", p.Kind)
	}
	for kind, ok := range set {
		if ok && kind != p.Kind {
			return fmt.Errorf("payload kind %q carries extra %q value", p.Kind, kind)
		}
	}
	return nil
}

// Summary renders the payload as text for review prompts and hashing.
func (p Payload) Summary() string {
	switch p.Kind {
	case KindTopic:
		if p.Topic == nil {
			return ""
		}
		return fmt.Sprintf("Title: %s\nSource: %s\nScore: %d\n\n%s",
			p.Topic.Title, p.Topic.Source, p.Topic.Score, p.Topic.Body)
	case KindScript:
		if p.Script == nil {
			return ""
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "HOOK:\n%s\n\nBODY:\n%s\n\nCTA:\n%s\n", p.Script.Hook, p.Script.Body, p.Script.CTA)
		if p.Script.Tone != "" {
			fmt.Fprintf(&sb, "\nTONE: %s\n", p.Script.Tone)
		}
		if len(p.Script.ScenePrompts) > 0 {
			sb.WriteString("\nSCENES:\n")
			for _, sp := range p.Script.ScenePrompts {
				fmt.Fprintf(&sb, "- %s\n", sp)
			}
		}
		return sb.String()
	case KindImages:
		if p.Images == nil {
			return ""
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "%d generated images:\n", len(p.Images.Images))
		for _, img := range p.Images.Images {
			fmt.Fprintf(&sb, "Image %d (%s): %s\n", img.Index+1, img.Path, img.Prompt)
		}
		return sb.String()
	case KindAudio:
		if p.Audio == nil {
			return ""
		}
		return fmt.Sprintf("Narration audio: %s\nDuration: %.1fs\nVoice: %s",
			p.Audio.Path, p.Audio.Duration.Seconds(), p.Audio.Voice)
	case KindVideo:
		if p.Video == nil {
			return ""
		}
		return fmt.Sprintf("Video: %s\nDuration: %.1fs\nResolution: %dx%d\nTitle: %s\nDescription: %s",
			p.Video.Path, p.Video.Duration.Seconds(), p.Video.Width, p.Video.Height,
			p.Video.Title, p.Video.Description)
	default:
		return ""
	}
}

// seq is a process-wide monotonic counter so artifact ordering is total even
// when two artifacts share a creation timestamp.
var seq atomic.Uint64

// Artifact is the immutable output of one stage attempt. A retry produces a
// new Artifact; existing ones are never mutated.
type Artifact struct {
	ID        string    `json:"id"`
	Stage     string    `json:"stage"`
	Attempt   int       `json:"attempt"`
	Seq       uint64    `json:"seq"`
	Producer  string    `json:"producer"`
	Payload   Payload   `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
	Hash      string    `json:"hash"`
}

// New creates an artifact for one attempt at a stage. Attempt numbering
// starts at 1.
func New(stage string, attempt int, producer string, payload Payload) *Artifact {
	a := &Artifact{
		ID:        uuid.NewString()[:8],
		Stage:     stage,
		Attempt:   attempt,
		Seq:       seq.Add(1),
		Producer:  producer,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	a.Hash = a.computeHash()
	return a
}

func (a *Artifact) computeHash() string {
	h := sha256.New()
	h.Write([]byte(a.Stage))
	h.Write([]byte(a.Producer))
	h.Write([]byte(a.Payload.Summary()))
	return hex.EncodeToString(h.Sum(nil))[:16]
}
