package agents

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hyungsein/shorts-automation/pkg/archive"
	"github.com/hyungsein/shorts-automation/pkg/artifact"
	"github.com/hyungsein/shorts-automation/pkg/pipeline"
)

func TestImageURL(t *testing.T) {
	u := imageURL(pollinationsBase, "a dark hallway, cinematic", 49)
	if !strings.HasPrefix(u, "https://image.pollinations.ai/prompt/") {
		t.Errorf("unexpected base: %s", u)
	}
	if !strings.Contains(u, "width=1080") || !strings.Contains(u, "height=1920") {
		t.Errorf("missing 9:16 dimensions: %s", u)
	}
	if !strings.Contains(u, "seed=49") || !strings.Contains(u, "model=flux") {
		t.Errorf("missing seed or model: %s", u)
	}
	if strings.Contains(u, " ") {
		t.Errorf("prompt not escaped: %s", u)
	}
}

func TestSeedForDeterministicWithSpecSeed(t *testing.T) {
	a := &ImageAgent{seed: 7000}
	if a.seedFor(0, 1) != 7000 || a.seedFor(3, 1) != 7003 {
		t.Error("configured seed should shift per scene index only")
	}
	if a.seedFor(2, 1) != a.seedFor(2, 5) {
		t.Error("configured seed must not vary across attempts")
	}

	unseeded := &ImageAgent{}
	if unseeded.seedFor(2, 1) == unseeded.seedFor(2, 2) {
		t.Error("without a configured seed, retries should vary the seed")
	}
}

func TestImageAgentProduce(t *testing.T) {
	payload := bytes.Repeat([]byte{0xff}, 512)
	var requests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.String())
		w.Write(payload)
	}))
	defer srv.Close()

	store, err := archive.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	agent, err := NewImageAgent(store, "dark cinematic", 0,
		WithImageHTTPClient(srv.Client()),
		WithImageBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewImageAgent failed: %v", err)
	}

	script := &artifact.Script{
		Hook:         "hook",
		Body:         "body",
		ScenePrompts: []string{"zoom_in|a face", "static|a hallway"},
	}
	scriptArt := artifact.New("writing", 1, "script-agent", artifact.ScriptPayload(script))

	art, err := agent.Produce(context.Background(), pipeline.StageImaging,
		map[pipeline.StageKind]*artifact.Artifact{pipeline.StageWriting: scriptArt}, "")
	if err != nil {
		t.Fatalf("Produce failed: %v", err)
	}

	set := art.Payload.Images
	if set == nil || len(set.Images) != 2 {
		t.Fatalf("expected 2 images, got %+v", art.Payload)
	}
	for i, img := range set.Images {
		if img.Index != i {
			t.Errorf("image %d has index %d", i, img.Index)
		}
		if img.Path == "" {
			t.Errorf("image %d not stored", i)
		}
	}
	if len(requests) != 2 {
		t.Fatalf("expected 2 fetches, got %d", len(requests))
	}
	if !strings.Contains(requests[0], "a%20face") {
		t.Errorf("effect tag leaked into prompt: %s", requests[0])
	}
	if !strings.Contains(requests[0], "dark%20cinematic") {
		t.Errorf("image style not appended: %s", requests[0])
	}
}

func TestImageAgentDerivesPromptFromHook(t *testing.T) {
	payload := bytes.Repeat([]byte{0xab}, 512)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	store, err := archive.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	agent, err := NewImageAgent(store, "", 0,
		WithImageHTTPClient(srv.Client()),
		WithImageBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewImageAgent failed: %v", err)
	}

	script := &artifact.Script{Hook: "a hook only", Body: "body"}
	scriptArt := artifact.New("writing", 1, "script-agent", artifact.ScriptPayload(script))

	art, err := agent.Produce(context.Background(), pipeline.StageImaging,
		map[pipeline.StageKind]*artifact.Artifact{pipeline.StageWriting: scriptArt}, "")
	if err != nil {
		t.Fatalf("Produce failed: %v", err)
	}
	if len(art.Payload.Images.Images) != 1 {
		t.Fatalf("expected 1 hook-derived image, got %d", len(art.Payload.Images.Images))
	}
}

func TestImageAgentRequiresScript(t *testing.T) {
	store, err := archive.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	agent, err := NewImageAgent(store, "", 0)
	if err != nil {
		t.Fatalf("NewImageAgent failed: %v", err)
	}

	if _, err := agent.Produce(context.Background(), pipeline.StageImaging, nil, ""); err == nil {
		t.Fatal("expected error without upstream script")
	}
}
