package artifact

import (
	"strings"
	"testing"
	"time"
)

func TestNewArtifactStampsOrdering(t *testing.T) {
	topic := &Topic{Title: "A story", Source: "r/tifu", Body: "body text"}

	first := New("discovery", 1, "trend-agent", TopicPayload(topic))
	second := New("discovery", 2, "trend-agent", TopicPayload(topic))

	if first.ID == second.ID {
		t.Error("artifacts must get distinct IDs")
	}
	if second.Seq <= first.Seq {
		t.Errorf("sequence must increase: %d then %d", first.Seq, second.Seq)
	}
	if first.Attempt != 1 || second.Attempt != 2 {
		t.Error("attempt numbers must be stamped as given")
	}
	if first.CreatedAt.After(time.Now().UTC()) {
		t.Error("creation time must not be in the future")
	}
}

func TestHashCoversPayload(t *testing.T) {
	a := New("writing", 1, "script-agent", ScriptPayload(&Script{Hook: "one"}))
	b := New("writing", 1, "script-agent", ScriptPayload(&Script{Hook: "two"}))
	c := New("writing", 2, "script-agent", ScriptPayload(&Script{Hook: "one"}))

	if a.Hash == b.Hash {
		t.Error("different payloads must hash differently")
	}
	if a.Hash != c.Hash {
		t.Error("hash should depend on content, not attempt number")
	}
}

func TestPayloadValidate(t *testing.T) {
	good := TopicPayload(&Topic{Title: "t"})
	if err := good.Validate(); err != nil {
		t.Errorf("valid payload rejected: %v", err)
	}

	missing := Payload{Kind: KindScript}
	if err := missing.Validate(); err == nil {
		t.Error("kind with nil value must fail")
	}

	extra := Payload{Kind: KindTopic, Topic: &Topic{}, Script: &Script{}}
	if err := extra.Validate(); err == nil {
		t.Error("payload with extra variant must fail")
	}
}

func TestScriptFullText(t *testing.T) {
	s := &Script{Hook: " Hook. ", Body: "Body.", CTA: ""}
	want := "Hook.\n\nBody."
	if got := s.FullText(); got != want {
		t.Errorf("FullText() = %q, want %q", got, want)
	}
	if s.WordCount() != 2 {
		t.Errorf("WordCount() = %d, want 2", s.WordCount())
	}
}

func TestSummaryPerKind(t *testing.T) {
	cases := []struct {
		payload Payload
		want    string
	}{
		{TopicPayload(&Topic{Title: "Missing hiker", Source: "r/nosleep"}), "Missing hiker"},
		{ScriptPayload(&Script{Hook: "Wait for it", ScenePrompts: []string{"dark forest"}}), "dark forest"},
		{ImagesPayload(&ImageSet{Images: []ImageRef{{Path: "a.jpg", Prompt: "foggy street"}}}), "foggy street"},
		{AudioPayload(&AudioRef{Path: "n.mp3", Duration: 52 * time.Second, Voice: "adam"}), "52.0s"},
		{VideoPayload(&VideoRef{Path: "f.mp4", Width: 1080, Height: 1920, Title: "The Case"}), "1080x1920"},
	}

	for _, tc := range cases {
		got := tc.payload.Summary()
		if !strings.Contains(got, tc.want) {
			t.Errorf("summary for %s missing %q:\n%s", tc.payload.Kind, tc.want, got)
		}
	}
}
