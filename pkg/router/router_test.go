package router

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hyungsein/shorts-automation/pkg/pipeline"
)

func TestDefaultTableCoversAllContentTypes(t *testing.T) {
	table := DefaultTable()
	for _, contentType := range []pipeline.ContentType{
		pipeline.ContentStory, pipeline.ContentHorror, pipeline.ContentFacts, pipeline.ContentMotivation,
	} {
		route := table.Resolve(contentType)
		if route.Adapter == "" {
			t.Errorf("%s: route has no adapter", contentType)
		}
		if len(route.Subreddits) == 0 {
			t.Errorf("%s: route has no subreddits", contentType)
		}
		if route.Voice == "" {
			t.Errorf("%s: route has no voice", contentType)
		}
	}
}

func TestResolveFallsBackToDefault(t *testing.T) {
	table := DefaultTable()
	route := table.Resolve(pipeline.ContentType("unknown"))
	if route.Adapter != table.Default.Adapter {
		t.Errorf("unknown content type should resolve to default, got %q", route.Adapter)
	}
}

func TestLoadFillsGapsFromDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.yaml")
	content := `routes:
  horror-story:
    adapter: openai
    model: gpt-5.2-instant
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write routes file: %v", err)
	}

	table, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	horror := table.Resolve(pipeline.ContentHorror)
	if horror.Adapter != "openai" {
		t.Errorf("adapter override lost: %q", horror.Adapter)
	}
	if horror.Model != "gpt-5.2-instant" {
		t.Errorf("model override lost: %q", horror.Model)
	}
	if len(horror.Subreddits) == 0 {
		t.Error("subreddits should fill from defaults")
	}
	if horror.Voice == "" {
		t.Error("voice should fill from defaults")
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.yaml")
	if err := os.WriteFile(path, []byte("routes: [not a map"), 0644); err != nil {
		t.Fatalf("write routes file: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("malformed yaml should fail")
	}
}
