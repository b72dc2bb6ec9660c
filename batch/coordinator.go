package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"ytshots/internal/fsutil"
	"ytshots/youtube"
)

// Options describes one batch run: the job source plus the configuration
// shared by every job.
type Options struct {
	// URL is a single video URL. Mutually exclusive with BatchFile.
	URL string
	// BatchFile is a path to a URL list. Mutually exclusive with URL.
	BatchFile string
	// Interval is the capture interval in seconds. Must be positive.
	Interval int
	// OutputRoot is the base directory for per-video folders.
	// Defaults to the current directory.
	OutputRoot string
	// Quality selects download quality. Defaults to QualityHigh.
	Quality youtube.Quality
	// PdfDPI is the PDF print resolution. Defaults to 300.
	PdfDPI int
	// Workers caps concurrent jobs; zero means one per CPU.
	Workers int
	// KeepVideo retains downloaded media.
	KeepVideo bool
	// WantTranscript saves captions when available.
	WantTranscript bool
	// WantPDF assembles frames into a PDF.
	WantPDF bool
	// Dedupe removes byte-identical frames.
	Dedupe bool
	// ReportPath, when set, writes the report as JSON after the run.
	ReportPath string
}

// DependencyChecker verifies an external tool is usable before any job runs.
type DependencyChecker interface {
	CheckInstalled(ctx context.Context) error
}

// Coordinator builds the job queue, drives the worker pool, and aggregates
// the final report.
type Coordinator struct {
	resolver   Resolver
	downloader Downloader
	extractor  FrameExtractor
	assembler  PDFAssembler
	checkers   map[string]DependencyChecker

	// SubtitleLang is the preferred caption language for transcripts.
	// Defaults to "en" when empty.
	SubtitleLang string
}

// NewCoordinator wires a coordinator from its collaborators. The checkers
// map names each external tool ("yt-dlp", "ffmpeg") to its probe; all
// checks run before the first job starts.
func NewCoordinator(resolver Resolver, downloader Downloader, extractor FrameExtractor, assembler PDFAssembler, checkers map[string]DependencyChecker) *Coordinator {
	return &Coordinator{
		resolver:   resolver,
		downloader: downloader,
		extractor:  extractor,
		assembler:  assembler,
		checkers:   checkers,
	}
}

// BuildJobs validates opts and constructs one Job per URL, in source order.
// All validation failures surface here, before any job is launched.
func BuildJobs(opts Options) ([]Job, error) {
	if opts.URL == "" && opts.BatchFile == "" {
		return nil, Validationf("exactly one of --url or --batch is required")
	}
	if opts.URL != "" && opts.BatchFile != "" {
		return nil, Validationf("--url and --batch are mutually exclusive")
	}
	if opts.Interval <= 0 {
		return nil, Validationf("interval must be greater than 0, got %d", opts.Interval)
	}
	quality := opts.Quality
	if quality == "" {
		quality = youtube.QualityHigh
	}
	if !quality.Valid() {
		return nil, Validationf("invalid quality %q (use high or highest)", opts.Quality)
	}
	pdfDPI := opts.PdfDPI
	if pdfDPI == 0 {
		pdfDPI = 300
	}
	if pdfDPI < 0 {
		return nil, Validationf("pdf dpi must be positive, got %d", opts.PdfDPI)
	}
	outputRoot := opts.OutputRoot
	if outputRoot == "" {
		outputRoot = "."
	}

	urls := []string{opts.URL}
	if opts.BatchFile != "" {
		fileURLs, err := ReadURLList(opts.BatchFile)
		if err != nil {
			return nil, Validationf("%v", err)
		}
		if len(fileURLs) == 0 {
			return nil, Validationf("no valid URLs found in %s", opts.BatchFile)
		}
		urls = fileURLs
	}

	jobs := make([]Job, 0, len(urls))
	for i, url := range urls {
		jobs = append(jobs, Job{
			ID:             i + 1,
			URL:            url,
			Interval:       opts.Interval,
			OutputRoot:     outputRoot,
			Quality:        quality,
			PdfDPI:         pdfDPI,
			KeepVideo:      opts.KeepVideo,
			WantTranscript: opts.WantTranscript,
			WantPDF:        opts.WantPDF,
			Dedupe:         opts.Dedupe,
		})
	}
	return jobs, nil
}

// CheckDependencies probes every registered external tool. The first
// failure aborts the batch before any work is committed.
func (c *Coordinator) CheckDependencies(ctx context.Context) error {
	for tool, checker := range c.checkers {
		if err := checker.CheckInstalled(ctx); err != nil {
			return &DependencyError{Tool: tool, Err: err}
		}
	}
	return nil
}

// Run validates opts, checks dependencies, executes every job through the
// pool, and returns the aggregate report. Job failures are recorded in the
// report, never returned as errors; the error return is reserved for
// validation and dependency failures that abort before the pool starts.
func (c *Coordinator) Run(ctx context.Context, opts Options) (*Report, error) {
	jobs, err := BuildJobs(opts)
	if err != nil {
		return nil, err
	}

	if err := c.CheckDependencies(ctx); err != nil {
		return nil, err
	}

	executor := NewExecutor(c.resolver, c.downloader, c.extractor, c.assembler, NewDirAllocator())
	if c.SubtitleLang != "" {
		executor.SubtitleLang = c.SubtitleLang
	}
	pool := NewPool(executor, opts.Workers)

	start := time.Now()
	results := pool.ExecuteAll(ctx, jobs)
	report := NewReport(results, time.Since(start))

	if opts.ReportPath != "" {
		if err := WriteReport(report, opts.ReportPath); err != nil {
			log.Printf("batch: write report: %v", err)
		}
	}

	return report, nil
}

// WriteReport writes the report as indented JSON, atomically.
func WriteReport(report *Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return fsutil.WriteFile(path, data, 0644)
}
