package youtube

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"ytshots/internal/fsutil"
)

// transcriptWrapWidth is the line width used when wrapping transcript text.
const transcriptWrapWidth = 80

var (
	htmlTagPattern    = regexp.MustCompile(`<[^<]+?>`)
	multiSpacePattern = regexp.MustCompile(`\s+`)
	srtTimingPattern  = regexp.MustCompile(`-->`)
)

// FindSubtitleFile locates the subtitle file yt-dlp wrote next to videoPath.
// yt-dlp names subtitle files after the media with a language infix, so the
// candidates are checked in order of preference.
func FindSubtitleFile(videoPath, lang string) string {
	dir := filepath.Dir(videoPath)
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))

	candidates := []string{
		base + "." + lang + ".srt",
		base + "." + lang + ".vtt",
		base + ".srt",
		base + ".vtt",
	}
	for _, name := range candidates {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConvertSubtitleToText converts an SRT (or VTT) subtitle file into a wrapped
// plain-text transcript at textPath. Cue numbers, timing lines, and markup
// tags are stripped; the result is written atomically.
func ConvertSubtitleToText(subtitlePath, textPath string) error {
	data, err := os.ReadFile(subtitlePath)
	if err != nil {
		return fmt.Errorf("read subtitle file: %w", err)
	}

	var blocks []string
	var current []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			if len(current) > 0 {
				blocks = append(blocks, strings.Join(current, " "))
				current = nil
			}
		case isCueNumber(line), srtTimingPattern.MatchString(line), line == "WEBVTT":
			// Skip cue numbers, timing lines, and the VTT header
		default:
			current = append(current, htmlTagPattern.ReplaceAllString(line, ""))
		}
	}
	if len(current) > 0 {
		blocks = append(blocks, strings.Join(current, " "))
	}

	fullText := multiSpacePattern.ReplaceAllString(strings.Join(blocks, " "), " ")
	fullText = strings.TrimSpace(fullText)

	var sb strings.Builder
	sb.WriteString("VIDEO TRANSCRIPT\n")
	sb.WriteString(strings.Repeat("=", 50))
	sb.WriteString("\n\n")
	sb.WriteString(wrapText(fullText, transcriptWrapWidth))
	sb.WriteString("\n")

	if err := fsutil.WriteFile(textPath, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

// isCueNumber reports whether line is a bare SRT cue index.
func isCueNumber(line string) bool {
	if line == "" {
		return false
	}
	for _, c := range line {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// wrapText greedily wraps text at word boundaries to the given width.
func wrapText(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var sb strings.Builder
	lineLen := 0
	for i, word := range words {
		if i > 0 {
			if lineLen+1+len(word) > width {
				sb.WriteString("\n")
				lineLen = 0
			} else {
				sb.WriteString(" ")
				lineLen++
			}
		}
		sb.WriteString(word)
		lineLen += len(word)
	}
	return sb.String()
}
