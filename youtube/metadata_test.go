package youtube

import (
	"context"
	"errors"
	"testing"
)

func TestParseMetadata(t *testing.T) {
	data := []byte(`{
		"id": "dQw4w9WgXcQ",
		"title": "Never Gonna Give You Up",
		"duration": 212.5,
		"uploader": "Rick Astley",
		"upload_date": "20091025",
		"view_count": 1400000000,
		"subtitles": {"en": []},
		"automatic_captions": {}
	}`)

	meta, err := parseMetadata(data)
	if err != nil {
		t.Fatalf("parseMetadata() error = %v", err)
	}

	if meta.ID != "dQw4w9WgXcQ" {
		t.Errorf("ID = %q, want %q", meta.ID, "dQw4w9WgXcQ")
	}
	if meta.Title != "Never Gonna Give You Up" {
		t.Errorf("Title = %q, want %q", meta.Title, "Never Gonna Give You Up")
	}
	if meta.Duration != 212 {
		t.Errorf("Duration = %d, want 212", meta.Duration)
	}
	if meta.Uploader != "Rick Astley" {
		t.Errorf("Uploader = %q, want %q", meta.Uploader, "Rick Astley")
	}
	if meta.ViewCount != 1400000000 {
		t.Errorf("ViewCount = %d, want 1400000000", meta.ViewCount)
	}
	if !meta.SubtitlesAvailable {
		t.Error("SubtitlesAvailable = false, want true")
	}
	if meta.FetchedAt.IsZero() {
		t.Error("FetchedAt is zero, want populated")
	}
}

func TestParseMetadata_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "invalid json", data: `{not json`},
		{name: "missing id", data: `{"title": "No ID"}`},
		{name: "missing title", data: `{"id": "abc123def45"}`},
		{name: "empty object", data: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseMetadata([]byte(tt.data)); err == nil {
				t.Error("parseMetadata() error = nil, want error")
			}
		})
	}
}

func TestParseMetadata_NoSubtitles(t *testing.T) {
	data := []byte(`{"id": "abc123def45", "title": "Silent", "duration": 30}`)

	meta, err := parseMetadata(data)
	if err != nil {
		t.Fatalf("parseMetadata() error = %v", err)
	}
	if meta.SubtitlesAvailable {
		t.Error("SubtitlesAvailable = true, want false")
	}
}

func TestClassifyStderr(t *testing.T) {
	cmdErr := errors.New("exit status 1")

	tests := []struct {
		name   string
		stderr string
		want   error
	}{
		{
			name:   "video unavailable",
			stderr: "ERROR: [youtube] abc: Video unavailable",
			want:   ErrVideoNotFound,
		},
		{
			name:   "not found",
			stderr: "ERROR: requested video not found",
			want:   ErrVideoNotFound,
		},
		{
			name:   "invalid url",
			stderr: "ERROR: 'htp://bad' is not a valid URL",
			want:   ErrInvalidURL,
		},
		{
			name:   "unsupported url",
			stderr: "ERROR: Unsupported URL: https://example.com",
			want:   ErrInvalidURL,
		},
		{
			name:   "rate limited",
			stderr: "ERROR: HTTP Error 429: Too Many Requests",
			want:   ErrRateLimited,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyStderr(tt.stderr, cmdErr)
			if !errors.Is(got, tt.want) {
				t.Errorf("classifyStderr(%q) = %v, want %v", tt.stderr, got, tt.want)
			}
		})
	}
}

func TestClassifyStderr_Unrecognized(t *testing.T) {
	cmdErr := errors.New("exit status 1")
	got := classifyStderr("ERROR: something unexpected", cmdErr)

	if !errors.Is(got, cmdErr) {
		t.Errorf("classifyStderr() = %v, want wrapped %v", got, cmdErr)
	}
}

func TestResolveErrorClassifier(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "context canceled", err: context.Canceled, want: false},
		{name: "deadline exceeded", err: context.DeadlineExceeded, want: false},
		{name: "video not found", err: &ResolveError{Source: "ytdlp", URL: "u", Err: ErrVideoNotFound}, want: false},
		{name: "invalid url", err: ErrInvalidURL, want: false},
		{name: "rate limited", err: &ResolveError{Source: "ytdlp", URL: "u", Err: ErrRateLimited}, want: true},
		{name: "network timeout", err: ErrNetworkTimeout, want: true},
		{name: "generic error", err: errors.New("connection reset"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveErrorClassifier(tt.err); got != tt.want {
				t.Errorf("resolveErrorClassifier(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestYtdlpResolver_EmptyURL(t *testing.T) {
	r := NewYtdlpResolver()

	_, err := r.Resolve(context.Background(), "   ")
	if !errors.Is(err, ErrInvalidURL) {
		t.Errorf("Resolve(blank) error = %v, want ErrInvalidURL", err)
	}

	var resolveErr *ResolveError
	if !errors.As(err, &resolveErr) {
		t.Fatalf("Resolve(blank) error type = %T, want *ResolveError", err)
	}
	if resolveErr.Source != "ytdlp" {
		t.Errorf("Source = %q, want %q", resolveErr.Source, "ytdlp")
	}
}
