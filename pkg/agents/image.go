package agents

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hyungsein/shorts-automation/pkg/archive"
	"github.com/hyungsein/shorts-automation/pkg/artifact"
	"github.com/hyungsein/shorts-automation/pkg/pipeline"
)

const (
	imageWidth  = 1080
	imageHeight = 1920
	maxScenes   = 10

	pollinationsBase = "https://image.pollinations.ai/prompt"
)

// ImageAgent synthesizes one 9:16 image per scene prompt via Pollinations.ai
// and stores the results in the media store.
type ImageAgent struct {
	httpClient *http.Client
	baseURL    string
	store      *archive.Store
	style      string
	seed       int64
	logf       func(format string, args ...any)

	counter attemptCounter
}

// ImageOption customizes an ImageAgent.
type ImageOption func(*ImageAgent)

// WithImageLogger sets a progress logger.
func WithImageLogger(logf func(format string, args ...any)) ImageOption {
	return func(i *ImageAgent) { i.logf = logf }
}

// WithImageHTTPClient overrides the HTTP client, mainly for tests.
func WithImageHTTPClient(c *http.Client) ImageOption {
	return func(i *ImageAgent) { i.httpClient = c }
}

// WithImageBaseURL overrides the synthesis endpoint, mainly for tests.
func WithImageBaseURL(base string) ImageOption {
	return func(i *ImageAgent) { i.baseURL = base }
}

// NewImageAgent creates the imaging executor. style is appended to every
// scene prompt; seed makes synthesis reproducible when non-zero.
func NewImageAgent(store *archive.Store, style string, seed int64, opts ...ImageOption) (*ImageAgent, error) {
	if store == nil {
		return nil, fmt.Errorf("media store is required")
	}
	i := &ImageAgent{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    pollinationsBase,
		store:      store,
		style:      style,
		seed:       seed,
		logf:       noplog,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Produce fetches one image per scene prompt from the upstream script. A
// script with no scene prompts gets a single image derived from its hook.
func (i *ImageAgent) Produce(ctx context.Context, kind pipeline.StageKind, upstream map[pipeline.StageKind]*artifact.Artifact, feedback string) (*artifact.Artifact, error) {
	attempt := i.counter.next()

	scriptArt := upstream[pipeline.StageWriting]
	if scriptArt == nil || scriptArt.Payload.Script == nil {
		return nil, pipeline.NewExecutionError(pipeline.InvalidInput,
			fmt.Errorf("imaging stage requires a script"))
	}
	script := scriptArt.Payload.Script

	prompts := script.ScenePrompts
	if len(prompts) == 0 {
		prompts = []string{"static|" + script.Hook}
	}
	if len(prompts) > maxScenes {
		prompts = prompts[:maxScenes]
	}

	set := &artifact.ImageSet{}
	for idx, scene := range prompts {
		prompt := ScenePromptText(scene)
		if i.style != "" {
			prompt = prompt + ", " + i.style
		}
		i.logf("[imaging] scene %d/%d: %q", idx+1, len(prompts), truncate(prompt, 60))

		data, err := i.fetch(ctx, imageURL(i.baseURL, prompt, i.seedFor(idx, attempt)))
		if err != nil {
			return nil, fmt.Errorf("scene %d image: %w", idx, err)
		}
		path, err := i.store.StoreBlob(data, "jpg")
		if err != nil {
			return nil, fmt.Errorf("store scene %d image: %w", idx, err)
		}
		set.Images = append(set.Images, artifact.ImageRef{Path: path, Prompt: scene, Index: idx})
	}

	return artifact.New(kind.String(), attempt, "image-agent", artifact.ImagesPayload(set)), nil
}

// seedFor derives a deterministic per-scene seed. With no configured seed the
// attempt number is folded in so a retry produces different images.
func (i *ImageAgent) seedFor(index, attempt int) int64 {
	if i.seed != 0 {
		return i.seed + int64(index)
	}
	return int64(attempt*1000 + index*42 + 7)
}

// imageURL builds the Pollinations request URL for one prompt.
func imageURL(base, prompt string, seed int64) string {
	return fmt.Sprintf("%s/%s?width=%d&height=%d&nologo=true&model=flux&seed=%d",
		base, url.PathEscape(prompt), imageWidth, imageHeight, seed)
}

func (i *ImageAgent) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	// Pollinations occasionally times out; retry a couple of times before
	// surfacing the failure to the orchestrator.
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		data, err := i.download(ctx, rawURL)
		if err == nil {
			return data, nil
		}
		lastErr = err
		i.logf("[imaging] fetch attempt %d failed: %v", attempt, err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * 2 * time.Second):
		}
	}
	return nil, fmt.Errorf("pollinations fetch failed after 3 attempts: %w", lastErr)
}

func (i *ImageAgent) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "shorts-automation/1.0")

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from pollinations", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(data) < 100 {
		return nil, fmt.Errorf("response too small (%d bytes), likely an error page", len(data))
	}
	return data, nil
}
