// Package agents implements the stage executors that feed the pipeline:
// topic discovery, script writing, image synthesis, narration and video
// assembly. Each agent produces a fresh artifact per attempt and reports
// systemic failures as pipeline.ExecutionError.
package agents

import (
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/hyungsein/shorts-automation/pkg/pipeline"
)

// attemptCounter stamps the 1-based attempt number on successive Produce
// calls. Agents are built fresh per run, so the counter tracks one stage of
// one run.
type attemptCounter struct {
	n int
}

func (c *attemptCounter) next() int {
	c.n++
	return c.n
}

// Registry maps each stage to its executor. Agents for skipped stages may be
// nil; they are simply left out of the map.
func Registry(trend *TrendAgent, script *ScriptAgent, image *ImageAgent, voice *VoiceAgent, video *VideoAgent) map[pipeline.StageKind]pipeline.Executor {
	reg := make(map[pipeline.StageKind]pipeline.Executor, 5)
	if trend != nil {
		reg[pipeline.StageDiscovery] = trend
	}
	if script != nil {
		reg[pipeline.StageWriting] = script
	}
	if image != nil {
		reg[pipeline.StageImaging] = image
	}
	if voice != nil {
		reg[pipeline.StageNarration] = voice
	}
	if video != nil {
		reg[pipeline.StageAssembly] = video
	}
	return reg
}

// probeDuration asks ffprobe for a media file's duration.
func probeDuration(path string) (time.Duration, error) {
	out, err := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	).Output()
	if err != nil {
		return 0, err
	}
	var secs float64
	if _, err := fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &secs); err != nil {
		return 0, err
	}
	return time.Duration(secs * float64(time.Second)), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func noplog(string, ...any) {}
