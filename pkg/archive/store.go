package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// Store is a content-addressed blob store for generated media. Objects are
// sharded by the first two hash characters so run directories stay browsable
// even after many runs.
type Store struct {
	BasePath string
}

// NewStore creates a media store rooted at basePath, defaulting to
// ~/.shorts/media.
func NewStore(basePath string) (*Store, error) {
	if basePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		basePath = filepath.Join(home, ".shorts", "media")
	}

	if err := os.MkdirAll(filepath.Join(basePath, "objects"), 0755); err != nil {
		return nil, err
	}
	return &Store{BasePath: basePath}, nil
}

// StoreBlob writes raw media bytes (audio, image, video) and returns the
// stored path. ext keeps the file openable by media tools ("mp3", "jpg",
// "mp4"). Storing identical bytes twice yields the same path.
func (s *Store) StoreBlob(data []byte, ext string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("refusing to store empty blob")
	}

	hashBytes := sha256.Sum256(data)
	hash := hex.EncodeToString(hashBytes[:])

	shard := hash[:2]
	dir := filepath.Join(s.BasePath, "objects", shard)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	name := hash
	if ext != "" {
		name = hash + "." + ext
	}
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// StoreFile copies an existing file (e.g. an ffmpeg output) into the store.
func (s *Store) StoreFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	ext := ""
	if e := filepath.Ext(path); len(e) > 1 {
		ext = e[1:]
	}
	return s.StoreBlob(data, ext)
}

// ScratchDir returns a per-run working directory for intermediate files that
// are not worth content-addressing (ffmpeg concat lists, raw segments).
func (s *Store) ScratchDir(runID string) (string, error) {
	dir := filepath.Join(s.BasePath, "scratch", runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
