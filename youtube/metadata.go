package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"ytshots/internal/retry"
)

const (
	defaultYtdlpPath    = "yt-dlp"
	defaultYtdlpTimeout = 2 * time.Minute

	// defaultResolveRPS is a conservative metadata fetch rate. Hammering the
	// metadata endpoint from many workers at once is the fastest way to get
	// a batch 429'd.
	defaultResolveRPS = 2.0
)

// VideoMetadata contains essential metadata about a YouTube video.
type VideoMetadata struct {
	// ID is the YouTube video ID (e.g., "dQw4w9WgXcQ").
	ID string `json:"id"`
	// Title is the video title.
	Title string `json:"title"`
	// Duration is the video length in seconds.
	Duration int `json:"duration"`
	// Uploader is the channel name/display name.
	Uploader string `json:"uploader"`
	// UploadDate is when the video was uploaded in YYYYMMDD format.
	UploadDate string `json:"upload_date"`
	// ViewCount is the total number of views.
	ViewCount int64 `json:"view_count"`
	// SubtitlesAvailable indicates manual or automatic captions exist.
	SubtitlesAvailable bool `json:"subtitles_available"`
	// FetchedAt is the timestamp when this metadata was retrieved.
	FetchedAt time.Time `json:"fetched_at"`
}

// Resolver fetches metadata for a video URL.
type Resolver interface {
	Resolve(ctx context.Context, videoURL string) (*VideoMetadata, error)
}

// YtdlpResolver implements Resolver using yt-dlp as a subprocess.
type YtdlpResolver struct {
	// Path is the path to the yt-dlp executable. Defaults to "yt-dlp".
	Path string

	// Timeout is the maximum time to wait for yt-dlp. Defaults to 2 minutes.
	Timeout time.Duration

	// RetryConfig holds retry behavior configuration.
	RetryConfig *retry.Config

	// limiter throttles metadata fetches across concurrent callers.
	limiter *rate.Limiter
}

// NewYtdlpResolver creates a new yt-dlp based metadata resolver.
func NewYtdlpResolver() *YtdlpResolver {
	cfg := retry.DefaultConfig()
	return &YtdlpResolver{
		Path:        defaultYtdlpPath,
		Timeout:     defaultYtdlpTimeout,
		RetryConfig: &cfg,
		limiter:     rate.NewLimiter(rate.Limit(defaultResolveRPS), 1),
	}
}

// Resolve fetches metadata for videoURL using yt-dlp's JSON dump output.
// Transient failures (timeouts, rate limits) are retried with backoff;
// permanent failures (unknown video, invalid URL) are returned immediately.
func (r *YtdlpResolver) Resolve(ctx context.Context, videoURL string) (*VideoMetadata, error) {
	if strings.TrimSpace(videoURL) == "" {
		return nil, &ResolveError{Source: "ytdlp", URL: videoURL, Err: ErrInvalidURL}
	}

	cfg := r.RetryConfig
	if cfg == nil {
		defaultCfg := retry.DefaultConfig()
		cfg = &defaultCfg
	}

	var metadata *VideoMetadata
	err := retry.Do(ctx, *cfg, resolveErrorClassifier, func(ctx context.Context) error {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		timeout := r.Timeout
		if timeout == 0 {
			timeout = defaultYtdlpTimeout
		}
		cmdCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		cmd := exec.CommandContext(cmdCtx, r.path(), "--dump-json", "--no-playlist", "--no-warnings", videoURL)

		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			if cmdCtx.Err() == context.DeadlineExceeded {
				return &ResolveError{Source: "ytdlp", URL: videoURL, Err: ErrNetworkTimeout}
			}
			if cmdCtx.Err() == context.Canceled {
				return &ResolveError{Source: "ytdlp", URL: videoURL, Err: context.Canceled}
			}
			return &ResolveError{Source: "ytdlp", URL: videoURL, Err: classifyStderr(stderr.String(), err)}
		}

		parsed, parseErr := parseMetadata(stdout.Bytes())
		if parseErr != nil {
			return &ResolveError{Source: "ytdlp", URL: videoURL, Err: parseErr}
		}
		metadata = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}

	return metadata, nil
}

// CheckInstalled verifies that the yt-dlp binary is available.
func (r *YtdlpResolver) CheckInstalled(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, r.path(), "--version")
	if err := cmd.Run(); err != nil {
		return ErrYtdlpNotInstalled
	}
	return nil
}

func (r *YtdlpResolver) path() string {
	if r.Path != "" {
		return r.Path
	}
	return defaultYtdlpPath
}

// classifyStderr maps common yt-dlp error output to sentinel errors.
func classifyStderr(stderr string, err error) error {
	msg := strings.ToLower(stderr)
	switch {
	case strings.Contains(msg, "video unavailable"),
		strings.Contains(msg, "not found"),
		strings.Contains(msg, "does not exist"):
		return ErrVideoNotFound
	case strings.Contains(msg, "is not a valid url"),
		strings.Contains(msg, "unsupported url"):
		return ErrInvalidURL
	case strings.Contains(msg, "429"), strings.Contains(msg, "rate"):
		return ErrRateLimited
	default:
		return fmt.Errorf("yt-dlp failed: %w: %s", err, strings.TrimSpace(stderr))
	}
}

// ytdlpInfo is the subset of yt-dlp's JSON dump that ytshots consumes.
type ytdlpInfo struct {
	ID                string                     `json:"id"`
	Title             string                     `json:"title"`
	Duration          float64                    `json:"duration"`
	Uploader          string                     `json:"uploader"`
	UploadDate        string                     `json:"upload_date"`
	ViewCount         int64                      `json:"view_count"`
	Subtitles         map[string]json.RawMessage `json:"subtitles"`
	AutomaticCaptions map[string]json.RawMessage `json:"automatic_captions"`
}

// parseMetadata parses yt-dlp's JSON dump into a VideoMetadata.
func parseMetadata(data []byte) (*VideoMetadata, error) {
	var info ytdlpInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parse metadata JSON: %w", err)
	}

	if info.ID == "" || info.Title == "" {
		return nil, fmt.Errorf("invalid metadata: required fields missing")
	}

	return &VideoMetadata{
		ID:                 info.ID,
		Title:              info.Title,
		Duration:           int(info.Duration),
		Uploader:           info.Uploader,
		UploadDate:         info.UploadDate,
		ViewCount:          info.ViewCount,
		SubtitlesAvailable: len(info.Subtitles) > 0 || len(info.AutomaticCaptions) > 0,
		FetchedAt:          time.Now().UTC(),
	}, nil
}

// resolveErrorClassifier determines if a resolve error is retryable.
func resolveErrorClassifier(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrVideoNotFound) || errors.Is(err, ErrInvalidURL) {
		return false
	}
	// Retryable: rate limit, timeout, network errors
	return true
}
