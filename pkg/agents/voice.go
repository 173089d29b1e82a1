package agents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hyungsein/shorts-automation/pkg/archive"
	"github.com/hyungsein/shorts-automation/pkg/artifact"
	"github.com/hyungsein/shorts-automation/pkg/pipeline"
)

const (
	elevenLabsBase  = "https://api.elevenlabs.io/v1/text-to-speech"
	elevenLabsModel = "eleven_multilingual_v2"

	// average speaking rate used when ffprobe is unavailable
	wordsPerMinute = 150
)

// voiceIDs maps friendly voice names to ElevenLabs voice IDs. Unknown names
// are passed through as raw IDs.
var voiceIDs = map[string]string{
	"adam":   "pNInz6obpgDQGcFmaJgB",
	"rachel": "21m00Tcm4TlvDq8ikWAM",
	"domi":   "AZnzlk1XvdvUeBnXmlld",
	"bella":  "EXAVITQu4vr4xnSDxMaL",
	"antoni": "ErXwobaYiN019PkySvjV",
	"josh":   "TxGEqnHWrfWFTfGW9XjX",
	"arnold": "VR6AewLTigWG4xSOukaG",
	"sam":    "yoZ06aMxZJJ28mfd3POQ",
}

// VoiceAgent narrates the script through the ElevenLabs TTS API.
type VoiceAgent struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	voice      string
	store      *archive.Store
	logf       func(format string, args ...any)

	counter attemptCounter
}

// VoiceOption customizes a VoiceAgent.
type VoiceOption func(*VoiceAgent)

// WithVoiceLogger sets a progress logger.
func WithVoiceLogger(logf func(format string, args ...any)) VoiceOption {
	return func(v *VoiceAgent) { v.logf = logf }
}

// WithVoiceHTTPClient overrides the HTTP client, mainly for tests.
func WithVoiceHTTPClient(c *http.Client) VoiceOption {
	return func(v *VoiceAgent) { v.httpClient = c }
}

// NewVoiceAgent creates the narration executor.
func NewVoiceAgent(apiKey, voice string, store *archive.Store, opts ...VoiceOption) (*VoiceAgent, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("elevenlabs API key is required")
	}
	if store == nil {
		return nil, fmt.Errorf("media store is required")
	}
	if voice == "" {
		voice = "adam"
	}
	v := &VoiceAgent{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    elevenLabsBase,
		apiKey:     apiKey,
		voice:      voice,
		store:      store,
		logf:       noplog,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Produce synthesizes narration audio for the full script text.
func (v *VoiceAgent) Produce(ctx context.Context, kind pipeline.StageKind, upstream map[pipeline.StageKind]*artifact.Artifact, feedback string) (*artifact.Artifact, error) {
	attempt := v.counter.next()

	scriptArt := upstream[pipeline.StageWriting]
	if scriptArt == nil || scriptArt.Payload.Script == nil {
		return nil, pipeline.NewExecutionError(pipeline.InvalidInput,
			fmt.Errorf("narration stage requires a script"))
	}
	script := scriptArt.Payload.Script
	text := script.FullText()
	if text == "" {
		return nil, pipeline.NewExecutionError(pipeline.InvalidInput,
			fmt.Errorf("script has no narration text"))
	}

	v.logf("[narration] synthesizing %d words with voice %s", script.WordCount(), v.voice)
	audio, err := v.synthesize(ctx, text)
	if err != nil {
		return nil, err
	}

	path, err := v.store.StoreBlob(audio, "mp3")
	if err != nil {
		return nil, fmt.Errorf("store narration: %w", err)
	}

	duration, err := probeDuration(path)
	if err != nil {
		duration = EstimateDuration(script.WordCount())
		v.logf("[narration] ffprobe unavailable, estimating duration %.1fs", duration.Seconds())
	}
	v.logf("[narration] audio ready: %s (%.1fs)", path, duration.Seconds())

	return artifact.New(kind.String(), attempt, "voice-agent", artifact.AudioPayload(&artifact.AudioRef{
		Path:     path,
		Duration: duration,
		Voice:    v.voice,
	})), nil
}

func (v *VoiceAgent) synthesize(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(map[string]any{
		"text":     text,
		"model_id": elevenLabsModel,
	})
	if err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/%s?output_format=mp3_44100_128", v.baseURL, VoiceID(v.voice))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", v.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, pipeline.NewExecutionError(pipeline.InvalidInput,
			fmt.Errorf("elevenlabs rejected API key (HTTP %d)", resp.StatusCode))
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, pipeline.NewExecutionError(pipeline.QuotaExceeded,
			fmt.Errorf("elevenlabs character quota exceeded"))
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("elevenlabs HTTP %d: %s", resp.StatusCode, msg)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("elevenlabs returned empty audio")
	}
	return audio, nil
}

// VoiceID resolves a friendly voice name to its ElevenLabs voice ID. Names
// not in the table are treated as raw IDs.
func VoiceID(name string) string {
	if id, ok := voiceIDs[name]; ok {
		return id
	}
	return name
}

// EstimateDuration approximates narration length from word count.
func EstimateDuration(words int) time.Duration {
	secs := float64(words) / wordsPerMinute * 60
	return time.Duration(secs * float64(time.Second))
}
