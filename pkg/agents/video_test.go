package agents

import (
	"context"
	"strings"
	"testing"

	"github.com/hyungsein/shorts-automation/pkg/adapter"
	"github.com/hyungsein/shorts-automation/pkg/artifact"
	"github.com/hyungsein/shorts-automation/pkg/pipeline"
)

func TestParseMetadata(t *testing.T) {
	raw := `TITLE: You Won't Believe What He Found
DESCRIPTION: A shocking office story with a twist ending. Watch until the end.
TAGS: shorts, story, office, twist, viral`

	meta := parseMetadata(raw)
	if meta.Title != "You Won't Believe What He Found" {
		t.Errorf("title = %q", meta.Title)
	}
	if !strings.Contains(meta.Description, "twist ending") {
		t.Errorf("description = %q", meta.Description)
	}
	if len(meta.Tags) != 5 || meta.Tags[0] != "shorts" || meta.Tags[4] != "viral" {
		t.Errorf("tags = %v", meta.Tags)
	}
}

func TestParseMetadataClampsTitle(t *testing.T) {
	long := strings.Repeat("very long title ", 10)
	meta := parseMetadata("TITLE: " + long)
	if len(meta.Title) > maxTitleChars {
		t.Errorf("title not clamped: %d chars", len(meta.Title))
	}
	if !strings.HasSuffix(meta.Title, "...") {
		t.Errorf("clamped title should end with ellipsis: %q", meta.Title)
	}
}

func TestFallbackMetadata(t *testing.T) {
	upstream := map[pipeline.StageKind]*artifact.Artifact{
		pipeline.StageDiscovery: artifact.New("discovery", 1, "trend-agent", artifact.TopicPayload(&artifact.Topic{
			Title:  "My boss kept a secret list",
			Source: "r/tifu",
		})),
		pipeline.StageWriting: artifact.New("writing", 1, "script-agent", artifact.ScriptPayload(&artifact.Script{
			Hook: "hook line",
			Body: "body",
			Tone: "angry",
		})),
	}

	meta := fallbackMetadata(upstream)
	if meta.Title != "My boss kept a secret list" {
		t.Errorf("title = %q", meta.Title)
	}
	if meta.Description != "From r/tifu" {
		t.Errorf("description = %q", meta.Description)
	}
	found := false
	for _, tag := range meta.Tags {
		if tag == "angry" {
			found = true
		}
	}
	if !found {
		t.Errorf("tone tag missing: %v", meta.Tags)
	}
}

func TestFallbackMetadataWithoutUpstream(t *testing.T) {
	meta := fallbackMetadata(map[pipeline.StageKind]*artifact.Artifact{})
	if meta.Title == "" {
		t.Error("fallback title should never be empty")
	}
	if len(meta.Tags) == 0 {
		t.Error("fallback tags should never be empty")
	}
}

func TestVideoAgentMetadataUsesAdapter(t *testing.T) {
	script := &artifact.Script{Hook: "hook line", Body: "body text"}
	upstream := map[pipeline.StageKind]*artifact.Artifact{
		pipeline.StageWriting: artifact.New("writing", 1, "script-agent", artifact.ScriptPayload(script)),
	}

	mock := adapter.NewMockAdapterWithResponses(nil,
		"TITLE: Generated Title\nDESCRIPTION: Generated description.\nTAGS: a, b, c")
	agent := &VideoAgent{adapter: mock, model: "mock-1", logf: noplog}

	meta := agent.metadata(context.Background(), upstream)
	if meta.Title != "Generated Title" {
		t.Errorf("title = %q", meta.Title)
	}
	if len(meta.Tags) != 3 {
		t.Errorf("tags = %v", meta.Tags)
	}
}

func TestVideoAgentMetadataWithoutAdapterFallsBack(t *testing.T) {
	upstream := map[pipeline.StageKind]*artifact.Artifact{
		pipeline.StageWriting: artifact.New("writing", 1, "script-agent", artifact.ScriptPayload(&artifact.Script{
			Hook: "the hook", Body: "body",
		})),
	}
	agent := &VideoAgent{logf: noplog}

	meta := agent.metadata(context.Background(), upstream)
	if meta.Title != "the hook" {
		t.Errorf("fallback title = %q", meta.Title)
	}
}

func TestConcatList(t *testing.T) {
	images := []artifact.ImageRef{
		{Path: "/tmp/a.jpg"},
		{Path: "/tmp/b.jpg"},
	}
	list := concatList(images, 2.5)

	if !strings.Contains(list, "file '/tmp/a.jpg'\nduration 2.500") {
		t.Errorf("per-image duration missing:\n%s", list)
	}
	// concat demuxer needs the last file repeated so the final frame holds
	if !strings.HasSuffix(strings.TrimSpace(list), "file '/tmp/b.jpg'") {
		t.Errorf("last image not repeated:\n%s", list)
	}
}

func TestScaleFilterTargets9x16(t *testing.T) {
	f := scaleFilter()
	if !strings.Contains(f, "1080:1920") {
		t.Errorf("filter should target 1080x1920: %s", f)
	}
}

func TestVideoAgentRequiresAudio(t *testing.T) {
	agent := &VideoAgent{logf: noplog}
	if _, err := agent.Produce(context.Background(), pipeline.StageAssembly, nil, ""); err == nil {
		t.Fatal("expected error without narration audio")
	}
}

func TestRegistryMapsStages(t *testing.T) {
	reg := Registry(nil, nil, nil, nil, nil)
	if len(reg) != 0 {
		t.Errorf("nil agents should be excluded, got %d entries", len(reg))
	}

	trend := &TrendAgent{}
	script := &ScriptAgent{}
	reg = Registry(trend, script, nil, nil, nil)
	if len(reg) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(reg))
	}
	if reg[pipeline.StageDiscovery] != pipeline.Executor(trend) {
		t.Error("discovery not mapped to trend agent")
	}
	if _, ok := reg[pipeline.StageImaging]; ok {
		t.Error("skipped imaging stage should be absent")
	}
}
