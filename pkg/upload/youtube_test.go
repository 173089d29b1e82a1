package upload

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestClamp(t *testing.T) {
	if clamp("short", 100) != "short" {
		t.Error("short strings should pass through")
	}
	long := strings.Repeat("x", 150)
	if got := clamp(long, 100); len(got) != 100 {
		t.Errorf("clamped to %d chars", len(got))
	}
}

func TestLoadTokenRejectsEmptyToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(path, []byte(`{}`), 0600); err != nil {
		t.Fatalf("write token: %v", err)
	}
	if _, err := loadToken(path); err == nil {
		t.Error("expected error for token file without tokens")
	}
}

func TestLoadTokenReadsRefreshToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(path, []byte(`{"refresh_token":"rt","token_type":"Bearer"}`), 0600); err != nil {
		t.Fatalf("write token: %v", err)
	}
	token, err := loadToken(path)
	if err != nil {
		t.Fatalf("loadToken failed: %v", err)
	}
	if token.RefreshToken != "rt" {
		t.Errorf("refresh token = %q", token.RefreshToken)
	}
}

func TestLoadTokenMissingFile(t *testing.T) {
	if _, err := loadToken(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing token file")
	}
}

func TestNewRequiresCredentialsFile(t *testing.T) {
	_, err := New(context.Background(),
		filepath.Join(t.TempDir(), "absent.json"),
		filepath.Join(t.TempDir(), "token.json"))
	if err == nil {
		t.Error("expected error for missing credentials file")
	}
}

func TestUploadRejectsNilVideo(t *testing.T) {
	u := &Uploader{logf: func(string, ...any) {}}
	if _, err := u.Upload(context.Background(), nil); err == nil {
		t.Error("expected error for nil video")
	}
}
