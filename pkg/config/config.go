package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	AnthropicAPIKey  string
	OpenAIAPIKey     string
	GoogleAPIKey     string
	ElevenLabsAPIKey string

	RedditClientID     string
	RedditClientSecret string
	RedditUsername     string
	RedditPassword     string

	YouTubeCredentials string
	YouTubeToken       string

	OutputDir    string
	RecordsDir   string
	MaxRetries   int
	StageTimeout time.Duration

	ConfigDir string
}

// FileConfig represents the structure of ~/.shorts/config.yaml
type FileConfig struct {
	APIKeys  APIKeysConfig  `yaml:"api_keys"`
	Reddit   RedditConfig   `yaml:"reddit"`
	YouTube  YouTubeConfig  `yaml:"youtube"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// APIKeysConfig holds API key configuration from file.
type APIKeysConfig struct {
	Anthropic  string `yaml:"anthropic"`
	OpenAI     string `yaml:"openai"`
	Google     string `yaml:"google"`
	ElevenLabs string `yaml:"elevenlabs"`
}

// RedditConfig holds Reddit API credentials from file.
type RedditConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
}

// YouTubeConfig holds paths to YouTube OAuth credential files.
type YouTubeConfig struct {
	Credentials string `yaml:"credentials"`
	Token       string `yaml:"token"`
}

// PipelineConfig holds run defaults from file.
type PipelineConfig struct {
	OutputDir    string `yaml:"output_dir"`
	RecordsDir   string `yaml:"records_dir"`
	MaxRetries   int    `yaml:"max_retries"`
	StageTimeout string `yaml:"stage_timeout"`
}

const (
	defaultMaxRetries   = 2
	defaultStageTimeout = 3 * time.Minute
)

// Load reads configuration from the config file and environment variables.
// Environment variables take precedence over file configuration.
func Load() (*Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	fileConfig := loadFileConfig(filepath.Join(configDir, "config.yaml"))

	cfg := &Config{
		AnthropicAPIKey:  getEnvOrDefault("ANTHROPIC_API_KEY", fileConfig.APIKeys.Anthropic),
		OpenAIAPIKey:     getEnvOrDefault("OPENAI_API_KEY", fileConfig.APIKeys.OpenAI),
		GoogleAPIKey:     getEnvOrDefault("GOOGLE_API_KEY", fileConfig.APIKeys.Google),
		ElevenLabsAPIKey: getEnvOrDefault("ELEVENLABS_API_KEY", fileConfig.APIKeys.ElevenLabs),

		RedditClientID:     getEnvOrDefault("REDDIT_CLIENT_ID", fileConfig.Reddit.ClientID),
		RedditClientSecret: getEnvOrDefault("REDDIT_CLIENT_SECRET", fileConfig.Reddit.ClientSecret),
		RedditUsername:     getEnvOrDefault("REDDIT_USERNAME", fileConfig.Reddit.Username),
		RedditPassword:     getEnvOrDefault("REDDIT_PASSWORD", fileConfig.Reddit.Password),

		YouTubeCredentials: getEnvOrDefault("YOUTUBE_CREDENTIALS", fileConfig.YouTube.Credentials),
		YouTubeToken:       getEnvOrDefault("YOUTUBE_TOKEN", fileConfig.YouTube.Token),

		OutputDir:  getEnvOrDefault("SHORTS_OUTPUT_DIR", fileConfig.Pipeline.OutputDir),
		RecordsDir: getEnvOrDefault("SHORTS_RECORDS_DIR", fileConfig.Pipeline.RecordsDir),

		ConfigDir: configDir,
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = filepath.Join(configDir, "output")
	}
	if cfg.RecordsDir == "" {
		cfg.RecordsDir = filepath.Join(configDir, "records")
	}
	if cfg.YouTubeCredentials == "" {
		cfg.YouTubeCredentials = filepath.Join(configDir, "youtube_credentials.json")
	}
	if cfg.YouTubeToken == "" {
		cfg.YouTubeToken = filepath.Join(configDir, "youtube_token.json")
	}

	cfg.MaxRetries = fileConfig.Pipeline.MaxRetries
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	cfg.StageTimeout, err = resolveStageTimeout(fileConfig.Pipeline.StageTimeout)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// HasAdapter returns true if the API key for the given adapter is configured.
func (c *Config) HasAdapter(name string) bool {
	switch name {
	case "anthropic":
		return c.AnthropicAPIKey != ""
	case "openai":
		return c.OpenAIAPIKey != ""
	case "google":
		return c.GoogleAPIKey != ""
	default:
		return false
	}
}

// HasReddit returns true if Reddit API credentials are configured.
func (c *Config) HasReddit() bool {
	return c.RedditClientID != "" && c.RedditClientSecret != ""
}

// HasNarration returns true if the ElevenLabs key is configured.
func (c *Config) HasNarration() bool {
	return c.ElevenLabsAPIKey != ""
}

// loadFileConfig reads the config file, returning empty config if not found.
func loadFileConfig(path string) *FileConfig {
	cfg := &FileConfig{}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg // Return empty config if file doesn't exist
	}

	_ = yaml.Unmarshal(data, cfg) // Ignore parse errors, use defaults
	return cfg
}

func resolveStageTimeout(fileValue string) (time.Duration, error) {
	raw := getEnvOrDefault("SHORTS_STAGE_TIMEOUT", fileValue)
	if raw == "" {
		return defaultStageTimeout, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid stage timeout %q: %w", raw, err)
	}
	return d, nil
}

// getEnvOrDefault returns the environment variable value if set,
// otherwise returns the default value.
func getEnvOrDefault(envVar, defaultValue string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultValue
}

func getConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".shorts")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return configDir, nil
}
