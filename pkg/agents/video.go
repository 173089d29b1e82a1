package agents

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/hyungsein/shorts-automation/pkg/adapter"
	"github.com/hyungsein/shorts-automation/pkg/archive"
	"github.com/hyungsein/shorts-automation/pkg/artifact"
	"github.com/hyungsein/shorts-automation/pkg/pipeline"
)

const (
	videoWidth  = 1080
	videoHeight = 1920
	videoFPS    = 30

	// dark background behind the slideshow and for image-free videos
	backgroundColor = "0x0f0f14"
)

// VideoAgent assembles the final 9:16 video with ffmpeg: a scene-image
// slideshow (or a plain background when imaging was skipped) muxed with the
// narration track, plus generated upload metadata.
type VideoAgent struct {
	store   *archive.Store
	adapter adapter.Adapter
	model   string
	logf    func(format string, args ...any)

	counter attemptCounter
}

// VideoOption customizes a VideoAgent.
type VideoOption func(*VideoAgent)

// WithVideoLogger sets a progress logger.
func WithVideoLogger(logf func(format string, args ...any)) VideoOption {
	return func(v *VideoAgent) { v.logf = logf }
}

// WithMetadataModel enables LLM-generated upload metadata. Without it the
// agent falls back to metadata derived from the topic and script.
func WithMetadataModel(a adapter.Adapter, model string) VideoOption {
	return func(v *VideoAgent) {
		v.adapter = a
		v.model = model
	}
}

// NewVideoAgent creates the assembly executor.
func NewVideoAgent(store *archive.Store, opts ...VideoOption) (*VideoAgent, error) {
	if store == nil {
		return nil, fmt.Errorf("media store is required")
	}
	v := &VideoAgent{store: store, logf: noplog}
	for _, opt := range opts {
		opt(v)
	}
	if v.adapter != nil && v.model == "" {
		models := v.adapter.Models()
		if len(models) == 0 {
			return nil, fmt.Errorf("metadata adapter %s supports no models", v.adapter.Name())
		}
		v.model = models[0]
	}
	return v, nil
}

// Produce renders the final video from the narration audio and, when the
// imaging stage ran, the scene images.
func (v *VideoAgent) Produce(ctx context.Context, kind pipeline.StageKind, upstream map[pipeline.StageKind]*artifact.Artifact, feedback string) (*artifact.Artifact, error) {
	attempt := v.counter.next()

	audioArt := upstream[pipeline.StageNarration]
	if audioArt == nil || audioArt.Payload.Audio == nil {
		return nil, pipeline.NewExecutionError(pipeline.InvalidInput,
			fmt.Errorf("assembly stage requires narration audio"))
	}
	audio := audioArt.Payload.Audio

	var images []artifact.ImageRef
	if imgArt := upstream[pipeline.StageImaging]; imgArt != nil && imgArt.Payload.Images != nil {
		images = imgArt.Payload.Images.Images
	}

	scratch, err := v.store.ScratchDir(uuid.NewString()[:8])
	if err != nil {
		return nil, fmt.Errorf("scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	rendered := filepath.Join(scratch, "final.mp4")
	if len(images) > 0 {
		v.logf("[assembly] rendering %d-image slideshow over %.1fs narration", len(images), audio.Duration.Seconds())
		err = v.renderSlideshow(ctx, images, audio, scratch, rendered)
	} else {
		v.logf("[assembly] rendering background video over %.1fs narration", audio.Duration.Seconds())
		err = v.renderBackground(ctx, audio, rendered)
	}
	if err != nil {
		return nil, err
	}

	path, err := v.store.StoreFile(rendered)
	if err != nil {
		return nil, fmt.Errorf("store final video: %w", err)
	}

	duration, err := probeDuration(path)
	if err != nil {
		duration = audio.Duration
	}

	meta := v.metadata(ctx, upstream)
	v.logf("[assembly] final video ready: %s (%.1fs) %q", path, duration.Seconds(), meta.Title)

	return artifact.New(kind.String(), attempt, "video-agent", artifact.VideoPayload(&artifact.VideoRef{
		Path:        path,
		Duration:    duration,
		Width:       videoWidth,
		Height:      videoHeight,
		Title:       meta.Title,
		Description: meta.Description,
		Tags:        meta.Tags,
	})), nil
}

// renderSlideshow concatenates scene images with equal screen time and muxes
// the narration on top.
func (v *VideoAgent) renderSlideshow(ctx context.Context, images []artifact.ImageRef, audio *artifact.AudioRef, scratch, outFile string) error {
	perImage := audio.Duration.Seconds() / float64(len(images))

	listFile := filepath.Join(scratch, "slides.txt")
	if err := os.WriteFile(listFile, []byte(concatList(images, perImage)), 0644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}

	args := []string{"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-i", audio.Path,
		"-vf", scaleFilter(),
		"-r", fmt.Sprintf("%d", videoFPS),
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "22",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "192k",
		"-shortest",
		"-movflags", "+faststart",
		outFile,
	}
	return v.runFFmpeg(ctx, args)
}

// renderBackground produces an audio-over-color video for runs that skipped
// imaging.
func (v *VideoAgent) renderBackground(ctx context.Context, audio *artifact.AudioRef, outFile string) error {
	args := []string{"-y",
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=%s:s=%dx%d:d=%.2f:r=%d",
			backgroundColor, videoWidth, videoHeight, audio.Duration.Seconds(), videoFPS),
		"-i", audio.Path,
		"-c:v", "libx264",
		"-preset", "fast",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "192k",
		"-shortest",
		"-movflags", "+faststart",
		outFile,
	}
	return v.runFFmpeg(ctx, args)
}

func (v *VideoAgent) runFFmpeg(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, tail(string(out), 400))
	}
	return nil
}

// concatList renders the ffmpeg concat-demuxer input for an image slideshow.
// The final image is repeated without a duration so the last frame holds.
func concatList(images []artifact.ImageRef, perImage float64) string {
	var sb strings.Builder
	for _, img := range images {
		fmt.Fprintf(&sb, "file '%s'\nduration %.3f\n", img.Path, perImage)
	}
	if len(images) > 0 {
		fmt.Fprintf(&sb, "file '%s'\n", images[len(images)-1].Path)
	}
	return sb.String()
}

func scaleFilter() string {
	return fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:%s,setsar=1",
		videoWidth, videoHeight, videoWidth, videoHeight, backgroundColor)
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
