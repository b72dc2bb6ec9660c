package batch

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"ytshots/media"
	"ytshots/youtube"
)

// Resolver fetches metadata for a video URL.
type Resolver interface {
	Resolve(ctx context.Context, videoURL string) (*youtube.VideoMetadata, error)
}

// Downloader retrieves the media (and optionally subtitles) for a video URL.
type Downloader interface {
	Download(ctx context.Context, videoURL string, opts *youtube.DownloadOptions) (*youtube.DownloadResult, error)
}

// FrameExtractor probes media duration and extracts still frames.
type FrameExtractor interface {
	ProbeDuration(ctx context.Context, videoPath string) (float64, error)
	ExtractFrames(ctx context.Context, videoPath, outputDir string, durationSec float64, intervalSec int, format media.Format) ([]string, error)
}

// PDFAssembler renders ordered images into a PDF document at the given DPI.
type PDFAssembler interface {
	Assemble(imagePaths []string, pdfPath string, dpi int) error
}

// Executor runs the full pipeline for a single job: resolve, allocate,
// download, extract, dedupe, transcript, PDF, keep/cleanup. Run never lets
// an error or panic escape; every failure is captured into the Result.
type Executor struct {
	resolver   Resolver
	downloader Downloader
	extractor  FrameExtractor
	assembler  PDFAssembler
	dirs       *DirAllocator

	// SubtitleLang is the preferred caption language. Defaults to "en".
	SubtitleLang string
}

// NewExecutor creates an executor sharing the batch-wide directory allocator.
func NewExecutor(resolver Resolver, downloader Downloader, extractor FrameExtractor, assembler PDFAssembler, dirs *DirAllocator) *Executor {
	return &Executor{
		resolver:     resolver,
		downloader:   downloader,
		extractor:    extractor,
		assembler:    assembler,
		dirs:         dirs,
		SubtitleLang: "en",
	}
}

// Run executes the pipeline for job and returns its terminal Result.
func (e *Executor) Run(ctx context.Context, job Job) (result Result) {
	start := time.Now()
	result = Result{JobID: job.ID, URL: job.URL, Status: StatusFailure}
	defer func() {
		if r := recover(); r != nil {
			result.Status = StatusFailure
			result.Err = fmt.Sprintf("panic: %v", r)
		}
		result.Duration = time.Since(start)
	}()

	// Resolve
	log.Printf("batch: [job %d] resolving %s", job.ID, job.URL)
	meta, err := e.resolver.Resolve(ctx, job.URL)
	if err != nil {
		result.Err = fmt.Sprintf("resolve video: %v", err)
		return result
	}

	// Allocate the per-video output directory
	name := e.dirs.Claim(youtube.SanitizeTitle(meta.Title), job.ID)
	videoDir := filepath.Join(job.OutputRoot, name)
	imagesDir := filepath.Join(videoDir, "images")
	if err := os.MkdirAll(imagesDir, 0755); err != nil {
		result.Err = fmt.Sprintf("create output directory: %v", err)
		return result
	}
	result.OutputDir = videoDir

	// Download into a per-job scratch directory
	tempDir, err := os.MkdirTemp("", "ytshots-job-*")
	if err != nil {
		result.Err = fmt.Sprintf("create temp directory: %v", err)
		return result
	}
	defer os.RemoveAll(tempDir)

	log.Printf("batch: [job %d] downloading %q", job.ID, meta.Title)
	dl, err := e.downloader.Download(ctx, job.URL, &youtube.DownloadOptions{
		OutputDir:     tempDir,
		Quality:       job.Quality,
		WantSubtitles: job.WantTranscript,
		SubtitleLang:  e.SubtitleLang,
	})
	if err != nil {
		result.Err = fmt.Sprintf("download video: %v", err)
		return result
	}

	// Transcript is best effort: absence or conversion failure never fails
	// the job.
	if job.WantTranscript {
		if dl.SubtitlePath == "" {
			log.Printf("batch: [job %d] no transcript available", job.ID)
		} else {
			transcriptPath := filepath.Join(videoDir, name+"_transcript.txt")
			if err := youtube.ConvertSubtitleToText(dl.SubtitlePath, transcriptPath); err != nil {
				log.Printf("batch: [job %d] transcript conversion failed: %v", job.ID, err)
			} else {
				result.TranscriptSaved = true
			}
		}
	}

	// Extract frames. The probed duration is authoritative; metadata
	// duration is only a fallback when the container lacks one.
	duration, err := e.extractor.ProbeDuration(ctx, dl.VideoPath)
	if err != nil {
		log.Printf("batch: [job %d] duration probe failed, using metadata: %v", job.ID, err)
		duration = float64(meta.Duration)
	}

	format := media.FormatJPEG
	if job.Quality == youtube.QualityHighest {
		format = media.FormatPNG
	}

	log.Printf("batch: [job %d] extracting frames every %ds over %.1fs", job.ID, job.Interval, duration)
	frames, err := e.extractor.ExtractFrames(ctx, dl.VideoPath, imagesDir, duration, job.Interval, format)
	if err != nil {
		result.Err = fmt.Sprintf("extract frames: %v", err)
		return result
	}
	if len(frames) == 0 {
		result.Err = "no screenshots extracted"
		return result
	}

	if job.Dedupe {
		kept, removed := media.RemoveDuplicates(frames)
		if removed > 0 {
			log.Printf("batch: [job %d] removed %d duplicate frames", job.ID, removed)
		}
		frames = kept
	}
	result.ScreenshotCount = len(frames)

	// PDF assembly failure downgrades to a warning: the frames themselves
	// are the primary artifact.
	if job.WantPDF {
		pdfPath := filepath.Join(videoDir, name+".pdf")
		if err := e.assembler.Assemble(frames, pdfPath, job.PdfDPI); err != nil {
			log.Printf("batch: [job %d] pdf assembly failed: %v", job.ID, err)
		} else {
			result.PDFCreated = true
		}
	}

	if job.KeepVideo {
		finalPath := filepath.Join(videoDir, name+filepath.Ext(dl.VideoPath))
		if err := moveFile(dl.VideoPath, finalPath); err != nil {
			log.Printf("batch: [job %d] keep video failed: %v", job.ID, err)
		}
	}

	result.Status = StatusSuccess
	log.Printf("batch: [job %d] completed %q: %d frames", job.ID, meta.Title, result.ScreenshotCount)
	return result
}

// moveFile renames src to dst, falling back to copy+remove when the rename
// crosses filesystems (temp dirs often live on a different mount).
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copy: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}
	return os.Remove(src)
}
