package youtube

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestQuality_Valid(t *testing.T) {
	tests := []struct {
		q    Quality
		want bool
	}{
		{q: QualityHigh, want: true},
		{q: QualityHighest, want: true},
		{q: Quality("medium"), want: false},
		{q: Quality(""), want: false},
	}

	for _, tt := range tests {
		if got := tt.q.Valid(); got != tt.want {
			t.Errorf("Quality(%q).Valid() = %v, want %v", tt.q, got, tt.want)
		}
	}
}

func TestQuality_FormatSpec(t *testing.T) {
	if got := QualityHigh.FormatSpec(); got != "best[ext=mp4]/best" {
		t.Errorf("QualityHigh.FormatSpec() = %q", got)
	}
	if got := QualityHighest.FormatSpec(); got != "bestvideo+bestaudio/best" {
		t.Errorf("QualityHighest.FormatSpec() = %q", got)
	}
}

func TestParseFinalPath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{
			name:   "single path",
			output: "/tmp/work/video.mp4\n",
			want:   "/tmp/work/video.mp4",
		},
		{
			name:   "path after progress noise",
			output: "[download] 100%\n/tmp/work/video.mp4\n",
			want:   "/tmp/work/video.mp4",
		},
		{
			name:   "trailing blank lines",
			output: "/tmp/work/video.webm\n\n\n",
			want:   "/tmp/work/video.webm",
		},
		{
			name:   "no path present",
			output: "done\n",
			want:   "",
		},
		{
			name:   "empty output",
			output: "",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseFinalPath(tt.output); got != tt.want {
				t.Errorf("parseFinalPath(%q) = %q, want %q", tt.output, got, tt.want)
			}
		})
	}
}

func TestFindDownloadedMedia(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"video.en.srt", "video.info.json", "video.mp4"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	got := findDownloadedMedia(dir)
	if got != filepath.Join(dir, "video.mp4") {
		t.Errorf("findDownloadedMedia() = %q, want video.mp4 path", got)
	}
}

func TestFindDownloadedMedia_OnlySidecars(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"video.en.srt", "video.part"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	if got := findDownloadedMedia(dir); got != "" {
		t.Errorf("findDownloadedMedia() = %q, want empty", got)
	}
}

func TestDownloader_BadOutputDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	d := NewDownloader()
	_, err := d.Download(context.Background(), "https://youtu.be/dQw4w9WgXcQ", &DownloadOptions{
		OutputDir: filepath.Join(blocker, "nested"),
	})

	var dlErr *DownloadError
	if !errors.As(err, &dlErr) {
		t.Fatalf("Download() error type = %T, want *DownloadError", err)
	}
}
