package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyungsein/shorts-automation/pkg/adapter"
	"github.com/hyungsein/shorts-automation/pkg/artifact"
	"github.com/hyungsein/shorts-automation/pkg/pipeline"
)

const maxSourceChars = 3000

const scriptSystemPrompt = `You are a viral short-form video scriptwriter. Your scripts stop the scroll because:

- HOOK: the first 3 seconds deliver a shocking question, twist or unbelievable fact
- BODY: short sentences, building tension, concrete details (amounts, times, places)
- ENDING: a chilling reveal, an open question or an emotional payoff

Rules:
1. First sentence = the most shocking part, always.
2. Conversational first-person voice, written to be read aloud by TTS.
3. Never ask viewers to like, follow or subscribe in the body.
4. Scene descriptions must be simple English image prompts.`

const scriptOutputContract = `Output format:
HOOK:
[one shocking opening line, TTS-friendly]

BODY:
[the story, short sentences, natural breathing]

CTA:
[a twist ending or open question that invites comments]

TONE:
[one word: scary/horror/romance/funny/angry/sad/default]

SCENES:
- [zoom_in] shocked face looking at phone
- [static] couple sitting at cafe
... (6-10 scenes, each "- [effect] description", effects: zoom_in/zoom_out/static/fade)`

// ScriptAgent turns a discovered topic into a hook/body/cta script via the
// configured LLM adapter.
type ScriptAgent struct {
	adapter adapter.Adapter
	model   string
	logf    func(format string, args ...any)

	counter attemptCounter
}

// ScriptOption customizes a ScriptAgent.
type ScriptOption func(*ScriptAgent)

// WithScriptLogger sets a progress logger.
func WithScriptLogger(logf func(format string, args ...any)) ScriptOption {
	return func(s *ScriptAgent) { s.logf = logf }
}

// NewScriptAgent creates the writing executor. An empty model defaults to the
// adapter's first supported model.
func NewScriptAgent(a adapter.Adapter, model string, opts ...ScriptOption) (*ScriptAgent, error) {
	if a == nil {
		return nil, fmt.Errorf("adapter is required")
	}
	if model == "" {
		models := a.Models()
		if len(models) == 0 {
			return nil, fmt.Errorf("adapter %s supports no models", a.Name())
		}
		model = models[0]
	}
	s := &ScriptAgent{adapter: a, model: model, logf: noplog}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Produce generates a script from the discovered topic. Reviewer feedback
// from a rejected attempt is folded into the prompt so the rewrite addresses
// it.
func (s *ScriptAgent) Produce(ctx context.Context, kind pipeline.StageKind, upstream map[pipeline.StageKind]*artifact.Artifact, feedback string) (*artifact.Artifact, error) {
	attempt := s.counter.next()

	topicArt := upstream[pipeline.StageDiscovery]
	if topicArt == nil || topicArt.Payload.Topic == nil {
		return nil, pipeline.NewExecutionError(pipeline.InvalidInput,
			fmt.Errorf("writing stage requires a discovered topic"))
	}
	topic := topicArt.Payload.Topic

	prompt := scriptPrompt(topic, feedback)
	s.logf("[writing] generating script for %q (attempt %d)", truncate(topic.Title, 50), attempt)

	raw, err := s.adapter.Generate(ctx, s.model, prompt)
	if err != nil {
		return nil, fmt.Errorf("script generation: %w", err)
	}

	script, err := parseScript(raw)
	if err != nil {
		return nil, fmt.Errorf("script generation: %w", err)
	}
	s.logf("[writing] script ready: %d words, %d scenes", script.WordCount(), len(script.ScenePrompts))

	return artifact.New(kind.String(), attempt, "script-agent", artifact.ScriptPayload(script)), nil
}

// scriptPrompt assembles the full generation prompt, appending a revision
// section when the previous attempt was rejected with feedback.
func scriptPrompt(topic *artifact.Topic, feedback string) string {
	var sb strings.Builder
	sb.WriteString(scriptSystemPrompt)
	sb.WriteString("\n\nCreate a viral short-form video script from this content:\n\n")
	fmt.Fprintf(&sb, "Title: %s\nSource: %s\nOriginal Content:\n%s\n\n",
		topic.Title, topic.Source, truncate(topic.Body, maxSourceChars))
	sb.WriteString(scriptOutputContract)
	if feedback != "" {
		sb.WriteString("\n\nA previous draft of this script was rejected by the quality reviewer. Fix these problems in your new draft:\n")
		sb.WriteString(feedback)
	}
	return sb.String()
}

// parseScript walks the HOOK/BODY/CTA/TONE/SCENES sections line by line.
// Section bodies may span lines; scene bullets keep their camera effect as
// an "effect|description" pair.
func parseScript(raw string) (*artifact.Script, error) {
	script := &artifact.Script{}
	section := ""

	appendTo := func(dst *string, line string) {
		if *dst == "" {
			*dst = line
		} else {
			*dst += " " + line
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		upper := strings.ToUpper(trimmed)

		switch {
		case strings.HasPrefix(upper, "HOOK:"):
			section = "hook"
			if rest := strings.TrimSpace(trimmed[5:]); rest != "" {
				script.Hook = rest
			}
		case strings.HasPrefix(upper, "BODY:"):
			section = "body"
			if rest := strings.TrimSpace(trimmed[5:]); rest != "" {
				script.Body = rest
			}
		case strings.HasPrefix(upper, "CTA:"):
			section = "cta"
			if rest := strings.TrimSpace(trimmed[4:]); rest != "" {
				script.CTA = rest
			}
		case strings.HasPrefix(upper, "TONE:"):
			section = ""
			rest := strings.ToLower(strings.TrimSpace(trimmed[5:]))
			if fields := strings.Fields(rest); len(fields) > 0 {
				script.Tone = fields[0]
			}
		case strings.HasPrefix(upper, "SCENES"):
			section = "scenes"
		case trimmed == "":
			// blank lines separate sections but never end them
		default:
			switch section {
			case "hook":
				appendTo(&script.Hook, trimmed)
			case "body":
				appendTo(&script.Body, trimmed)
			case "cta":
				appendTo(&script.CTA, trimmed)
			case "scenes":
				if scene := parseSceneLine(trimmed); scene != "" {
					script.ScenePrompts = append(script.ScenePrompts, scene)
				}
			}
		}
	}

	if script.Hook == "" || script.Body == "" {
		return nil, fmt.Errorf("model response is missing HOOK or BODY sections")
	}
	return script, nil
}

// parseSceneLine normalizes one scene bullet to "effect|description".
func parseSceneLine(line string) string {
	line = strings.TrimSpace(strings.TrimPrefix(line, "-"))
	if line == "" {
		return ""
	}

	effect := "static"
	if strings.HasPrefix(line, "[") {
		if end := strings.Index(line, "]"); end > 0 {
			effect = strings.ToLower(line[1:end])
			line = strings.TrimSpace(line[end+1:])
		}
	}
	switch effect {
	case "zoom_in", "zoom_out", "static", "fade":
	default:
		effect = "static"
	}

	// Drop a leading "Scene N:" label if the model added one.
	if idx := strings.Index(line, ":"); idx > 0 && strings.HasPrefix(strings.ToLower(line), "scene") {
		line = strings.TrimSpace(line[idx+1:])
	}
	if line == "" {
		return ""
	}
	return effect + "|" + line
}

// ScenePromptText strips the camera-effect tag from a stored scene prompt.
func ScenePromptText(scene string) string {
	if idx := strings.Index(scene, "|"); idx >= 0 {
		return scene[idx+1:]
	}
	return scene
}

// SceneEffect returns the camera-effect tag of a stored scene prompt.
func SceneEffect(scene string) string {
	if idx := strings.Index(scene, "|"); idx >= 0 {
		return scene[:idx]
	}
	return "static"
}
