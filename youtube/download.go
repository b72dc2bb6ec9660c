package youtube

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const defaultDownloadTimeout = 15 * time.Minute

// Quality selects the media quality to download.
type Quality string

const (
	// QualityHigh selects the best MP4 stream; frames are saved as JPEG.
	QualityHigh Quality = "high"
	// QualityHighest selects the best available streams; frames are saved
	// as lossless PNG.
	QualityHighest Quality = "highest"
)

// Valid reports whether q is a recognized quality value.
func (q Quality) Valid() bool {
	return q == QualityHigh || q == QualityHighest
}

// FormatSpec returns the yt-dlp format selector for this quality.
func (q Quality) FormatSpec() string {
	if q == QualityHighest {
		return "bestvideo+bestaudio/best"
	}
	return "best[ext=mp4]/best"
}

// DownloadOptions configures a single video download.
type DownloadOptions struct {
	// OutputDir is the directory to save the downloaded media into.
	OutputDir string
	// Quality selects the format to download. Defaults to QualityHigh.
	Quality Quality
	// WantSubtitles also downloads manual and automatic captions,
	// converted to SRT, preferring SubtitleLang.
	WantSubtitles bool
	// SubtitleLang is the preferred caption language. Defaults to "en".
	SubtitleLang string
}

// DownloadResult describes a completed download.
type DownloadResult struct {
	// VideoPath is the path to the downloaded media file.
	VideoPath string
	// SubtitlePath is the path to the downloaded subtitle file, or empty
	// if none was available.
	SubtitlePath string
}

// Downloader downloads videos using yt-dlp.
type Downloader struct {
	// Path is the path to the yt-dlp executable. Defaults to "yt-dlp".
	Path string
	// Timeout is the maximum duration for a single download.
	// Defaults to 15 minutes; large videos may need more.
	Timeout time.Duration
}

// NewDownloader creates a Downloader with default settings.
func NewDownloader() *Downloader {
	return &Downloader{
		Path:    defaultYtdlpPath,
		Timeout: defaultDownloadTimeout,
	}
}

// Download retrieves the media for videoURL into opts.OutputDir and returns
// the final file path. Subtitle files, when requested and available, are
// downloaded alongside the media.
func (d *Downloader) Download(ctx context.Context, videoURL string, opts *DownloadOptions) (*DownloadResult, error) {
	if opts == nil {
		opts = &DownloadOptions{}
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, &DownloadError{URL: videoURL, Err: fmt.Errorf("create output directory: %w", err)}
	}

	quality := opts.Quality
	if quality == "" {
		quality = QualityHigh
	}

	subLang := opts.SubtitleLang
	if subLang == "" {
		subLang = "en"
	}

	outputTemplate := filepath.Join(outputDir, "video.%(ext)s")
	args := []string{
		"-f", quality.FormatSpec(),
		"--no-playlist",
		"--no-warnings",
		"-o", outputTemplate,
		"--print", "after_move:filepath", // Print final path after download
		"--no-simulate",
	}

	if opts.WantSubtitles {
		args = append(args,
			"--write-subs",
			"--write-auto-subs",
			"--sub-lang", subLang,
			"--convert-subs", "srt",
		)
	}

	args = append(args, videoURL)

	timeout := d.Timeout
	if timeout == 0 {
		timeout = defaultDownloadTimeout
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, d.path(), args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if cmdCtx.Err() == context.DeadlineExceeded {
			return nil, &DownloadError{URL: videoURL, Err: ErrNetworkTimeout}
		}
		return nil, &DownloadError{URL: videoURL, Err: classifyStderr(stderr.String(), err)}
	}

	result := &DownloadResult{
		VideoPath: parseFinalPath(stdout.String()),
	}
	if result.VideoPath == "" {
		// Fallback: the output template pins the basename, so scan for it.
		result.VideoPath = findDownloadedMedia(outputDir)
	}
	if result.VideoPath == "" {
		return nil, &DownloadError{URL: videoURL, Err: fmt.Errorf("downloaded file not found in %s", outputDir)}
	}

	if opts.WantSubtitles {
		result.SubtitlePath = FindSubtitleFile(result.VideoPath, subLang)
	}

	return result, nil
}

// CheckInstalled verifies that the yt-dlp binary is available.
func (d *Downloader) CheckInstalled(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, d.path(), "--version")
	if err := cmd.Run(); err != nil {
		return ErrYtdlpNotInstalled
	}
	return nil
}

func (d *Downloader) path() string {
	if d.Path != "" {
		return d.Path
	}
	return defaultYtdlpPath
}

// parseFinalPath extracts the downloaded file path from yt-dlp's
// --print after_move:filepath output. The path is the last non-empty line
// that looks like a path.
func parseFinalPath(output string) string {
	lines := strings.Split(output, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line != "" && strings.Contains(line, string(os.PathSeparator)) {
			return line
		}
	}
	return ""
}

// findDownloadedMedia locates the "video.*" media file in dir.
func findDownloadedMedia(dir string) string {
	matches, err := filepath.Glob(filepath.Join(dir, "video.*"))
	if err != nil {
		return ""
	}
	for _, m := range matches {
		switch filepath.Ext(m) {
		case ".srt", ".vtt", ".json", ".part":
			continue
		}
		return m
	}
	return ""
}
