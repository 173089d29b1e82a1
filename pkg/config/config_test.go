package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestConfigFallsBackToFileValues(t *testing.T) {
	home := t.TempDir()
	setHomeEnv(t, home)

	configDir := filepath.Join(home, ".shorts")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	data := []byte("api_keys:\n  anthropic: file-ant\n  elevenlabs: file-eleven\nreddit:\n  client_id: file-id\n  client_secret: file-secret\npipeline:\n  max_retries: 4\n  stage_timeout: 90s\n")
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), data, 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AnthropicAPIKey != "file-ant" || cfg.ElevenLabsAPIKey != "file-eleven" {
		t.Fatalf("expected file API keys to be used: %+v", cfg)
	}
	if cfg.RedditClientID != "file-id" || cfg.RedditClientSecret != "file-secret" {
		t.Fatalf("expected file reddit credentials to be used")
	}
	if cfg.MaxRetries != 4 {
		t.Errorf("expected max retries 4, got %d", cfg.MaxRetries)
	}
	if cfg.StageTimeout != 90*time.Second {
		t.Errorf("expected 90s stage timeout, got %s", cfg.StageTimeout)
	}
}

func TestConfigEnvOverridesFile(t *testing.T) {
	home := t.TempDir()
	setHomeEnv(t, home)

	configDir := filepath.Join(home, ".shorts")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	data := []byte("api_keys:\n  anthropic: file-ant\n")
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), data, 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	clearEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "env-ant")
	t.Setenv("ELEVENLABS_API_KEY", "env-eleven")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AnthropicAPIKey != "env-ant" {
		t.Errorf("expected env key to win, got %q", cfg.AnthropicAPIKey)
	}
	if cfg.ElevenLabsAPIKey != "env-eleven" {
		t.Errorf("expected env key for elevenlabs, got %q", cfg.ElevenLabsAPIKey)
	}
}

func TestConfigDefaults(t *testing.T) {
	home := t.TempDir()
	setHomeEnv(t, home)
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MaxRetries != defaultMaxRetries {
		t.Errorf("expected default max retries, got %d", cfg.MaxRetries)
	}
	if cfg.StageTimeout != defaultStageTimeout {
		t.Errorf("expected default stage timeout, got %s", cfg.StageTimeout)
	}
	if cfg.OutputDir != filepath.Join(home, ".shorts", "output") {
		t.Errorf("unexpected output dir: %s", cfg.OutputDir)
	}
	if cfg.RecordsDir != filepath.Join(home, ".shorts", "records") {
		t.Errorf("unexpected records dir: %s", cfg.RecordsDir)
	}
	if cfg.HasAdapter("anthropic") || cfg.HasReddit() || cfg.HasNarration() {
		t.Error("no credentials should be configured")
	}
}

func TestConfigRejectsBadTimeout(t *testing.T) {
	home := t.TempDir()
	setHomeEnv(t, home)
	clearEnv(t)
	t.Setenv("SHORTS_STAGE_TIMEOUT", "not-a-duration")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid timeout")
	}
}

func TestHasAdapter(t *testing.T) {
	cfg := &Config{AnthropicAPIKey: "k"}
	if !cfg.HasAdapter("anthropic") {
		t.Error("anthropic adapter should be available")
	}
	if cfg.HasAdapter("openai") {
		t.Error("openai adapter should not be available")
	}
	if cfg.HasAdapter("unknown") {
		t.Error("unknown adapter should not be available")
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range []string{
		"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GOOGLE_API_KEY", "ELEVENLABS_API_KEY",
		"REDDIT_CLIENT_ID", "REDDIT_CLIENT_SECRET", "REDDIT_USERNAME", "REDDIT_PASSWORD",
		"YOUTUBE_CREDENTIALS", "YOUTUBE_TOKEN",
		"SHORTS_OUTPUT_DIR", "SHORTS_RECORDS_DIR", "SHORTS_STAGE_TIMEOUT",
	} {
		t.Setenv(v, "")
	}
}

func setHomeEnv(t *testing.T, home string) {
	t.Helper()
	t.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	}
}
