package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyungsein/shorts-automation/pkg/artifact"
	"github.com/hyungsein/shorts-automation/pkg/pipeline"
)

const maxTitleChars = 60

// Metadata is the upload-facing title/description/tags triple attached to
// the assembled video.
type Metadata struct {
	Title       string
	Description string
	Tags        []string
}

const metadataPrompt = `You are a YouTube SEO expert. Generate metadata that maximizes views for a Shorts video.
Output in this exact format:
TITLE: [catchy title under 60 chars, use numbers, questions or shocking words]
DESCRIPTION: [2-3 sentences with keywords]
TAGS: [comma-separated relevant tags, 10-15 tags]

Generate metadata for this script:

Hook: %s

Full Script:
%s`

// metadata generates upload metadata via the LLM when one is configured,
// falling back to topic/script-derived values on any failure.
func (v *VideoAgent) metadata(ctx context.Context, upstream map[pipeline.StageKind]*artifact.Artifact) Metadata {
	fallback := fallbackMetadata(upstream)
	if v.adapter == nil {
		return fallback
	}

	scriptArt := upstream[pipeline.StageWriting]
	if scriptArt == nil || scriptArt.Payload.Script == nil {
		return fallback
	}
	script := scriptArt.Payload.Script

	raw, err := v.adapter.Generate(ctx, v.model, fmt.Sprintf(metadataPrompt, script.Hook, script.FullText()))
	if err != nil {
		v.logf("[assembly] metadata generation failed, using fallback: %v", err)
		return fallback
	}

	meta := parseMetadata(raw)
	if meta.Title == "" {
		meta.Title = fallback.Title
	}
	if meta.Description == "" {
		meta.Description = fallback.Description
	}
	if len(meta.Tags) == 0 {
		meta.Tags = fallback.Tags
	}
	return meta
}

// parseMetadata reads the TITLE/DESCRIPTION/TAGS lines of a model response.
func parseMetadata(raw string) Metadata {
	var meta Metadata
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		upper := strings.ToUpper(trimmed)
		switch {
		case strings.HasPrefix(upper, "TITLE:"):
			meta.Title = clampTitle(strings.TrimSpace(trimmed[6:]))
		case strings.HasPrefix(upper, "DESCRIPTION:"):
			meta.Description = strings.TrimSpace(trimmed[12:])
		case strings.HasPrefix(upper, "TAGS:"):
			for _, tag := range strings.Split(trimmed[5:], ",") {
				if t := strings.TrimSpace(tag); t != "" {
					meta.Tags = append(meta.Tags, t)
				}
			}
		}
	}
	return meta
}

// fallbackMetadata derives metadata from the upstream topic and script when
// no LLM is available for it.
func fallbackMetadata(upstream map[pipeline.StageKind]*artifact.Artifact) Metadata {
	meta := Metadata{
		Title: "Untitled Short",
		Tags:  []string{"shorts", "story"},
	}
	if topicArt := upstream[pipeline.StageDiscovery]; topicArt != nil && topicArt.Payload.Topic != nil {
		topic := topicArt.Payload.Topic
		meta.Title = clampTitle(topic.Title)
		meta.Description = fmt.Sprintf("From %s", topic.Source)
	}
	if scriptArt := upstream[pipeline.StageWriting]; scriptArt != nil && scriptArt.Payload.Script != nil {
		script := scriptArt.Payload.Script
		if meta.Title == "Untitled Short" && script.Hook != "" {
			meta.Title = clampTitle(script.Hook)
		}
		if script.Tone != "" {
			meta.Tags = append(meta.Tags, script.Tone)
		}
	}
	return meta
}

func clampTitle(title string) string {
	if len(title) <= maxTitleChars {
		return title
	}
	cut := title[:maxTitleChars-3]
	if idx := strings.LastIndex(cut, " "); idx > 20 {
		cut = cut[:idx]
	}
	return cut + "..."
}
