// Package media wraps ffmpeg and ffprobe for duration probing and
// still-frame extraction.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultFfmpegPath  = "ffmpeg"
	defaultFfprobePath = "ffprobe"

	// defaultFrameTimeout bounds a single frame extraction. Seeking in a
	// local file is fast; anything longer means ffmpeg is wedged.
	defaultFrameTimeout = 30 * time.Second
)

// ErrFfmpegNotInstalled indicates the ffmpeg binary was not found.
var ErrFfmpegNotInstalled = errors.New("ffmpeg not installed")

// ErrFfprobeNotInstalled indicates the ffprobe binary was not found.
var ErrFfprobeNotInstalled = errors.New("ffprobe not installed")

// Format selects the still-frame image encoding.
type Format string

const (
	// FormatJPEG writes frames as highest-quality JPEG.
	FormatJPEG Format = "jpg"
	// FormatPNG writes frames as lossless PNG.
	FormatPNG Format = "png"
)

// Ext returns the file extension for the format, including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// Extractor extracts still frames from media files using ffmpeg.
type Extractor struct {
	// FfmpegPath is the path to the ffmpeg executable. Defaults to "ffmpeg".
	FfmpegPath string
	// FfprobePath is the path to the ffprobe executable. Defaults to "ffprobe".
	FfprobePath string
	// FrameTimeout bounds a single frame extraction. Defaults to 30s.
	FrameTimeout time.Duration
}

// NewExtractor creates an Extractor with default settings.
func NewExtractor() *Extractor {
	return &Extractor{
		FfmpegPath:   defaultFfmpegPath,
		FfprobePath:  defaultFfprobePath,
		FrameTimeout: defaultFrameTimeout,
	}
}

// ProbeDuration returns the duration of the media file in seconds.
func (e *Extractor) ProbeDuration(ctx context.Context, videoPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, e.ffprobePath(),
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("probe duration: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(stdout.String()), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", strings.TrimSpace(stdout.String()), err)
	}
	return duration, nil
}

// ExtractFrame extracts a single frame at timestamp (seconds) into outputPath.
func (e *Extractor) ExtractFrame(ctx context.Context, videoPath string, timestamp int, outputPath string) error {
	args := []string{
		"-ss", strconv.Itoa(timestamp),
		"-i", videoPath,
		"-vframes", "1",
	}
	if strings.HasSuffix(outputPath, FormatJPEG.Ext()) {
		args = append(args, "-q:v", "1") // Highest JPEG quality (1 best, 31 worst)
	}
	args = append(args, "-vf", "scale=iw:ih", "-y", outputPath)

	timeout := e.FrameTimeout
	if timeout == 0 {
		timeout = defaultFrameTimeout
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, e.ffmpegPath(), args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("extract frame at %ds: %w: %s", timestamp, err, lastLine(stderr.String()))
	}

	// ffmpeg can exit zero without producing output when seeking past EOF.
	if info, err := os.Stat(outputPath); err != nil || info.Size() == 0 {
		return fmt.Errorf("extract frame at %ds: no output produced", timestamp)
	}
	return nil
}

// ExtractFrames extracts one frame per scheduled timestamp into outputDir,
// named by zero-padded seconds (e.g. "005s.jpg"). Failures on individual
// timestamps are logged and skipped; the returned paths are the frames that
// were successfully written, in ascending timestamp order.
func (e *Extractor) ExtractFrames(ctx context.Context, videoPath, outputDir string, durationSec float64, intervalSec int, format Format) ([]string, error) {
	if intervalSec <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %d", intervalSec)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create frames directory: %w", err)
	}

	timestamps := Schedule(durationSec, intervalSec)
	if len(timestamps) == 0 {
		return nil, nil
	}
	width := TimestampWidth(timestamps[len(timestamps)-1])

	var frames []string
	for _, t := range timestamps {
		if err := ctx.Err(); err != nil {
			return frames, err
		}

		outputPath := filepath.Join(outputDir, FrameName(t, width, format))
		if err := e.ExtractFrame(ctx, videoPath, t, outputPath); err != nil {
			log.Printf("media: skipping frame: %v", err)
			continue
		}
		frames = append(frames, outputPath)
	}
	return frames, nil
}

// CheckInstalled verifies that ffmpeg and ffprobe binaries are available.
func (e *Extractor) CheckInstalled(ctx context.Context) error {
	if err := exec.CommandContext(ctx, e.ffmpegPath(), "-version").Run(); err != nil {
		return ErrFfmpegNotInstalled
	}
	if err := exec.CommandContext(ctx, e.ffprobePath(), "-version").Run(); err != nil {
		return ErrFfprobeNotInstalled
	}
	return nil
}

func (e *Extractor) ffmpegPath() string {
	if e.FfmpegPath != "" {
		return e.FfmpegPath
	}
	return defaultFfmpegPath
}

func (e *Extractor) ffprobePath() string {
	if e.FfprobePath != "" {
		return e.FfprobePath
	}
	return defaultFfprobePath
}

// Schedule returns the capture timestamps for a video: 0, interval,
// 2*interval, ... strictly below the duration. A video shorter than the
// interval still gets the frame at zero; a zero-length video gets none.
func Schedule(durationSec float64, intervalSec int) []int {
	if durationSec <= 0 || intervalSec <= 0 {
		return nil
	}
	var timestamps []int
	for t := 0; float64(t) < durationSec; t += intervalSec {
		timestamps = append(timestamps, t)
	}
	return timestamps
}

// TimestampWidth returns the zero-pad width for frame names: at least three
// digits, widening as needed to fit the largest timestamp.
func TimestampWidth(maxTimestamp int) int {
	width := len(strconv.Itoa(maxTimestamp))
	if width < 3 {
		width = 3
	}
	return width
}

// FrameName returns the file name for the frame at the given timestamp,
// e.g. FrameName(5, 3, FormatJPEG) == "005s.jpg".
func FrameName(timestamp, width int, format Format) string {
	return fmt.Sprintf("%0*ds%s", width, timestamp, format.Ext())
}

// lastLine returns the last non-empty line of s, for compact error messages
// from ffmpeg's chatty stderr.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
