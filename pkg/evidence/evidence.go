package evidence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// RunRecord captures run-level metadata for audit.
type RunRecord struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	ContentType string    `json:"content_type"`
	Strict      bool      `json:"strict"`
	Outcome     string    `json:"outcome"`
	Error       string    `json:"error,omitempty"`
}

// StageRecord captures the attempt history of one stage.
type StageRecord struct {
	Stage    string          `json:"stage"`
	Status   string          `json:"status"`
	Failure  string          `json:"failure,omitempty"`
	Attempts []AttemptRecord `json:"attempts"`
}

// AttemptRecord captures one (artifact, verdict) pair.
type AttemptRecord struct {
	Attempt      int      `json:"attempt"`
	ArtifactID   string   `json:"artifact_id"`
	ArtifactHash string   `json:"artifact_hash"`
	Producer     string   `json:"producer"`
	Summary      string   `json:"summary,omitempty"`
	Score        int      `json:"score,omitempty"`
	Class        string   `json:"class,omitempty"`
	Feedback     string   `json:"feedback,omitempty"`
	Suggestions  []string `json:"suggestions,omitempty"`
}

// Writer writes audit bundles to disk, one directory per run.
type Writer struct {
	baseDir string
	runDir  string
}

// NewWriter creates an audit writer rooted at baseDir/runID.
func NewWriter(baseDir, runID string) (*Writer, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("base directory is required")
	}
	if runID == "" {
		return nil, fmt.Errorf("run ID is required")
	}

	runDir := filepath.Join(baseDir, runID)
	if err := os.MkdirAll(filepath.Join(runDir, "stages"), 0755); err != nil {
		return nil, err
	}
	return &Writer{baseDir: baseDir, runDir: runDir}, nil
}

// RunDir returns the run directory path.
func (w *Writer) RunDir() string {
	return w.runDir
}

// WriteRun writes run metadata to run.json.
func (w *Writer) WriteRun(record RunRecord) error {
	return writeJSON(filepath.Join(w.runDir, "run.json"), record)
}

// WriteStage writes a stage record to stages/<stage>.json.
func (w *Writer) WriteStage(record StageRecord) error {
	path := filepath.Join(w.runDir, "stages", fmt.Sprintf("%s.json", record.Stage))
	return writeJSON(path, record)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
