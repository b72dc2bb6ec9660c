package youtube

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"google.golang.org/api/option"
	youtubeapi "google.golang.org/api/youtube/v3"
)

// APIResolver implements Resolver using the YouTube Data API v3.
// It is cheaper and faster than spawning yt-dlp per URL, and gracefully
// falls back to a secondary resolver when the API fails or quota runs out.
type APIResolver struct {
	service *youtubeapi.Service

	mu             sync.Mutex
	quotaExhausted bool
	fallback       Resolver
}

// NewAPIResolver creates a Data API backed metadata resolver.
func NewAPIResolver(ctx context.Context, apiKey string) (*APIResolver, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}

	service, err := youtubeapi.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	return &APIResolver{service: service}, nil
}

// SetFallbackResolver sets the resolver to use when the API is unavailable.
func (a *APIResolver) SetFallbackResolver(r Resolver) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fallback = r
}

// Resolve fetches metadata for videoURL from the Data API, falling back to
// the configured secondary resolver on any API failure.
func (a *APIResolver) Resolve(ctx context.Context, videoURL string) (*VideoMetadata, error) {
	a.mu.Lock()
	exhausted := a.quotaExhausted
	fallback := a.fallback
	a.mu.Unlock()

	if exhausted && fallback != nil {
		return fallback.Resolve(ctx, videoURL)
	}

	videoID := ExtractVideoID(videoURL)
	if videoID == "" {
		return nil, &ResolveError{Source: "api", URL: videoURL, Err: ErrInvalidURL}
	}

	call := a.service.Videos.List([]string{"snippet", "contentDetails", "statistics"}).Id(videoID)
	resp, err := call.Context(ctx).Do()
	if err != nil {
		if isQuotaError(err) {
			a.mu.Lock()
			a.quotaExhausted = true
			a.mu.Unlock()
		}
		if fallback != nil {
			log.Printf("youtube: api resolve failed for %s, falling back to yt-dlp: %v", videoID, err)
			return fallback.Resolve(ctx, videoURL)
		}
		return nil, &ResolveError{Source: "api", URL: videoURL, Err: err}
	}

	if len(resp.Items) == 0 {
		return nil, &ResolveError{Source: "api", URL: videoURL, Err: ErrVideoNotFound}
	}

	item := resp.Items[0]
	metadata := &VideoMetadata{
		ID:                 item.Id,
		Title:              item.Snippet.Title,
		Duration:           int(parseISO8601Duration(item.ContentDetails.Duration).Seconds()),
		Uploader:           item.Snippet.ChannelTitle,
		SubtitlesAvailable: item.ContentDetails.Caption == "true",
		FetchedAt:          time.Now().UTC(),
	}
	if item.Statistics != nil {
		metadata.ViewCount = int64(item.Statistics.ViewCount)
	}
	if t, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
		metadata.UploadDate = t.Format("20060102")
	}

	return metadata, nil
}

// ExtractVideoID pulls the 11-character video ID out of a YouTube URL.
// It accepts watch URLs, youtu.be short links, shorts, and bare IDs.
func ExtractVideoID(videoURL string) string {
	u, err := url.Parse(videoURL)
	if err != nil {
		return ""
	}

	switch {
	case u.Host == "youtu.be":
		return strings.Trim(u.Path, "/")
	case strings.HasPrefix(u.Path, "/shorts/"):
		return strings.TrimPrefix(u.Path, "/shorts/")
	case strings.HasPrefix(u.Path, "/embed/"):
		return strings.TrimPrefix(u.Path, "/embed/")
	}

	if id := u.Query().Get("v"); id != "" {
		return id
	}

	// Bare video ID with no scheme
	if u.Scheme == "" && u.Host == "" && videoIDRegexMatch(videoURL) {
		return videoURL
	}

	return ""
}

// videoIDRegexMatch reports whether s looks like a bare YouTube video ID.
func videoIDRegexMatch(s string) bool {
	if len(s) != 11 {
		return false
	}
	for _, c := range s {
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') && (c < '0' || c > '9') && c != '-' && c != '_' {
			return false
		}
	}
	return true
}

// isQuotaError reports whether err is a Data API quota exhaustion error.
func isQuotaError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "quota") || strings.Contains(msg, "403")
}

// parseISO8601Duration parses YouTube's PT#H#M#S duration format.
func parseISO8601Duration(s string) time.Duration {
	s = strings.TrimPrefix(s, "P")
	s = strings.TrimPrefix(s, "T")

	var total time.Duration
	num := ""
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
			num += string(c)
		case c == 'T':
			// Date/time separator inside the period, e.g. P1DT2H
			num = ""
		default:
			n, err := strconv.Atoi(num)
			if err != nil {
				return total
			}
			switch c {
			case 'D':
				total += time.Duration(n) * 24 * time.Hour
			case 'H':
				total += time.Duration(n) * time.Hour
			case 'M':
				total += time.Duration(n) * time.Minute
			case 'S':
				total += time.Duration(n) * time.Second
			}
			num = ""
		}
	}
	return total
}
