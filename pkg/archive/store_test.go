package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStoreBlobIsContentAddressed(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	first, err := store.StoreBlob([]byte("audio bytes"), "mp3")
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	second, err := store.StoreBlob([]byte("audio bytes"), "mp3")
	if err != nil {
		t.Fatalf("store again: %v", err)
	}

	if first != second {
		t.Errorf("identical blobs must share a path: %s vs %s", first, second)
	}
	if !strings.HasSuffix(first, ".mp3") {
		t.Errorf("extension lost: %s", first)
	}

	data, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "audio bytes" {
		t.Errorf("content mismatch: %q", data)
	}
}

func TestStoreBlobRejectsEmpty(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.StoreBlob(nil, "mp3"); err == nil {
		t.Fatal("empty blob should fail")
	}
}

func TestStoreFile(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	src := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(src, []byte("video bytes"), 0644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	stored, err := store.StoreFile(src)
	if err != nil {
		t.Fatalf("store file: %v", err)
	}
	if !strings.HasSuffix(stored, ".mp4") {
		t.Errorf("extension should carry over: %s", stored)
	}
}

func TestScratchDir(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	dir, err := store.ScratchDir("run1")
	if err != nil {
		t.Fatalf("scratch dir: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("scratch dir not created: %v", err)
	}
}
