// Package youtube provides adapters for fetching YouTube video metadata,
// downloading media, and extracting transcripts. The primary backend is the
// yt-dlp binary invoked as a subprocess; an optional resolver backed by the
// YouTube Data API v3 is available when an API key is configured.
package youtube

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure conditions.
var (
	// ErrVideoNotFound indicates the video does not exist or is unavailable.
	ErrVideoNotFound = errors.New("video not found")
	// ErrRateLimited indicates the operation was rate limited by YouTube.
	ErrRateLimited = errors.New("rate limited")
	// ErrNetworkTimeout indicates a network timeout occurred.
	ErrNetworkTimeout = errors.New("network timeout")
	// ErrInvalidURL indicates the provided URL is not a usable video URL.
	ErrInvalidURL = errors.New("invalid url")
	// ErrYtdlpNotInstalled indicates the yt-dlp binary was not found.
	ErrYtdlpNotInstalled = errors.New("yt-dlp not installed")
)

// ResolveError wraps errors during metadata resolution.
type ResolveError struct {
	// Source identifies the backend ("ytdlp" or "api").
	Source string
	// URL is the video URL being resolved.
	URL string
	// Err is the underlying error.
	Err error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve %s via %s: %v", e.URL, e.Source, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// DownloadError wraps errors during media download.
type DownloadError struct {
	// URL is the video URL being downloaded.
	URL string
	// Err is the underlying error.
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}
