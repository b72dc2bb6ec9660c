// Package config manages application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds tool paths, timeouts, and retry behavior shared by every job.
// Per-run options (URLs, interval, output) live on the CLI, not here.
type Config struct {
	// YtdlpPath is the path to the yt-dlp executable (default: "yt-dlp")
	YtdlpPath string `json:"ytdlp_path"`
	// FfmpegPath is the path to the ffmpeg executable (default: "ffmpeg")
	FfmpegPath string `json:"ffmpeg_path"`
	// FfprobePath is the path to the ffprobe executable (default: "ffprobe")
	FfprobePath string `json:"ffprobe_path"`

	// ResolveTimeout bounds a single metadata fetch
	ResolveTimeout time.Duration `json:"resolve_timeout"`
	// DownloadTimeout bounds a single video download
	DownloadTimeout time.Duration `json:"download_timeout"`

	// SubtitleLang is the preferred caption language (default: "en")
	SubtitleLang string `json:"subtitle_lang"`

	// APIKey enables the YouTube Data API metadata resolver when set
	APIKey string `json:"api_key"`

	// MaxRetries is the maximum number of retries for metadata fetches
	MaxRetries int `json:"max_retries"`
	// InitialBackoff is the initial backoff duration for retries
	InitialBackoff time.Duration `json:"initial_backoff"`
	// MaxBackoff is the maximum backoff duration for retries
	MaxBackoff time.Duration `json:"max_backoff"`
	// BackoffMultiplier is the multiplier for exponential backoff (must be > 1)
	BackoffMultiplier float64 `json:"backoff_multiplier"`
}

// DefaultConfig returns configuration with safe defaults.
func DefaultConfig() *Config {
	return &Config{
		YtdlpPath:         "yt-dlp",
		FfmpegPath:        "ffmpeg",
		FfprobePath:       "ffprobe",
		ResolveTimeout:    2 * time.Minute,
		DownloadTimeout:   15 * time.Minute,
		SubtitleLang:      "en",
		MaxRetries:        3,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// Load loads configuration from a .env file, config file, and environment
// variables, then applies defaults.
// Priority: env vars > config file > defaults
func Load() (*Config, error) {
	// A .env file is optional; variables may be set in the environment.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if err := cfg.loadFromFile(); err != nil {
		// Config file is optional
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile attempts to load config from ytshots.json in the current
// directory or the user config directory.
func (c *Config) loadFromFile() error {
	paths := []string{
		"ytshots.json",
		filepath.Join(os.Getenv("HOME"), ".config", "ytshots", "ytshots.json"),
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}

		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		return nil
	}

	return os.ErrNotExist
}

// loadFromEnv overrides config with environment variables.
func (c *Config) loadFromEnv() {
	if v := os.Getenv("YTSHOTS_YTDLP_PATH"); v != "" {
		c.YtdlpPath = v
	}
	if v := os.Getenv("YTSHOTS_FFMPEG_PATH"); v != "" {
		c.FfmpegPath = v
	}
	if v := os.Getenv("YTSHOTS_FFPROBE_PATH"); v != "" {
		c.FfprobePath = v
	}
	if v := os.Getenv("YTSHOTS_RESOLVE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.ResolveTimeout = d
		}
	}
	if v := os.Getenv("YTSHOTS_DOWNLOAD_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.DownloadTimeout = d
		}
	}
	if v := os.Getenv("YTSHOTS_SUBTITLE_LANG"); v != "" {
		c.SubtitleLang = v
	}
	if v := os.Getenv("YTSHOTS_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("YTSHOTS_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRetries = n
		}
	}
	if v := os.Getenv("YTSHOTS_INITIAL_BACKOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.InitialBackoff = d
		}
	}
	if v := os.Getenv("YTSHOTS_MAX_BACKOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.MaxBackoff = d
		}
	}
}

// Validate checks that configuration values are valid and consistent.
func (c *Config) Validate() error {
	if c.YtdlpPath == "" {
		return fmt.Errorf("ytdlp_path must not be empty")
	}
	if c.FfmpegPath == "" {
		return fmt.Errorf("ffmpeg_path must not be empty")
	}
	if c.FfprobePath == "" {
		return fmt.Errorf("ffprobe_path must not be empty")
	}
	if c.ResolveTimeout <= 0 {
		return fmt.Errorf("resolve_timeout must be positive")
	}
	if c.DownloadTimeout <= 0 {
		return fmt.Errorf("download_timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be non-negative")
	}
	if c.InitialBackoff <= 0 {
		return fmt.Errorf("initial_backoff must be positive")
	}
	if c.MaxBackoff < c.InitialBackoff {
		return fmt.Errorf("max_backoff must be >= initial_backoff")
	}
	if c.BackoffMultiplier <= 1 {
		return fmt.Errorf("backoff_multiplier must be > 1")
	}
	return nil
}
