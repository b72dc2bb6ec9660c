// Command ytshots downloads YouTube videos and captures periodic
// screenshots, optionally assembling them into a PDF alongside a plain-text
// transcript. It accepts a single URL or a batch file and processes jobs
// with bounded parallelism.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ytshots/batch"
	"ytshots/config"
	"ytshots/internal/retry"
	"ytshots/media"
	"ytshots/pdf"
	"ytshots/youtube"
)

func main() {
	os.Exit(run())
}

func run() int {
	fs := flag.NewFlagSet("ytshots", flag.ExitOnError)
	url := fs.String("url", "", "Single YouTube video URL")
	batchFile := fs.String("batch", "", "Path to text file containing URLs (one per line)")
	interval := fs.Int("interval", 0, "Interval in seconds between screenshots (required)")
	outputDir := fs.String("output-dir", ".", "Base directory for output")
	quality := fs.String("quality", "high", "Screenshot quality: high (JPEG) or highest (PNG)")
	pdfDPI := fs.Int("pdf-dpi", 300, "PDF DPI resolution")
	workers := fs.Int("workers", 0, "Number of parallel workers (0 = number of CPU cores)")
	keepVideo := fs.Bool("keep-video", false, "Keep the downloaded video files")
	noTranscript := fs.Bool("no-transcript", false, "Skip transcript download")
	noPDF := fs.Bool("no-pdf", false, "Skip PDF generation")
	noDedupe := fs.Bool("no-dedupe", false, "Disable duplicate frame removal")
	reportPath := fs.String("report", "", "Write the batch report as JSON to this path")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `ytshots - YouTube screenshot batch processor

Usage:
  ytshots --url <youtube-url> --interval <seconds> [flags]
  ytshots --batch <urls.txt> --interval <seconds> [flags]

The batch file contains one URL per line; blank lines and lines starting
with '#' are ignored.

Flags:
`)
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[1:])

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	coordinator, err := buildCoordinator(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	opts := batch.Options{
		URL:            *url,
		BatchFile:      *batchFile,
		Interval:       *interval,
		OutputRoot:     *outputDir,
		Quality:        youtube.Quality(*quality),
		PdfDPI:         *pdfDPI,
		Workers:        *workers,
		KeepVideo:      *keepVideo,
		WantTranscript: !*noTranscript,
		WantPDF:        !*noPDF,
		Dedupe:         !*noDedupe,
		ReportPath:     *reportPath,
	}

	report, err := coordinator.Run(ctx, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	printSummary(report)

	if !report.AllSucceeded() {
		return 1
	}
	return 0
}

// buildCoordinator wires the production adapters from config.
func buildCoordinator(ctx context.Context, cfg *config.Config) (*batch.Coordinator, error) {
	retryCfg := retry.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxBackoff:     cfg.MaxBackoff,
		Multiplier:     cfg.BackoffMultiplier,
		JitterFraction: 0.2,
	}

	ytdlp := youtube.NewYtdlpResolver()
	ytdlp.Path = cfg.YtdlpPath
	ytdlp.Timeout = cfg.ResolveTimeout
	ytdlp.RetryConfig = &retryCfg

	var resolver batch.Resolver = ytdlp
	if cfg.APIKey != "" {
		api, err := youtube.NewAPIResolver(ctx, cfg.APIKey)
		if err != nil {
			return nil, fmt.Errorf("init youtube api: %w", err)
		}
		api.SetFallbackResolver(ytdlp)
		resolver = api
	}

	downloader := youtube.NewDownloader()
	downloader.Path = cfg.YtdlpPath
	downloader.Timeout = cfg.DownloadTimeout

	extractor := media.NewExtractor()
	extractor.FfmpegPath = cfg.FfmpegPath
	extractor.FfprobePath = cfg.FfprobePath

	coordinator := batch.NewCoordinator(resolver, downloader, extractor, pdf.NewAssembler(), map[string]batch.DependencyChecker{
		"yt-dlp": downloader,
		"ffmpeg": extractor,
	})
	coordinator.SubtitleLang = cfg.SubtitleLang
	return coordinator, nil
}

// printSummary writes the batch outcome in a human-readable form.
func printSummary(report *batch.Report) {
	fmt.Println()
	fmt.Println("============================================================")
	fmt.Println("BATCH PROCESSING SUMMARY")
	fmt.Println("============================================================")
	fmt.Printf("Total videos:      %d\n", report.Total)
	fmt.Printf("Successful:        %d\n", report.Succeeded)
	fmt.Printf("Failed:            %d\n", report.Failed)
	fmt.Printf("Total screenshots: %d\n", report.Screenshots)
	fmt.Printf("Total time:        %s\n", formatElapsed(report.Elapsed))
	if report.Total > 0 {
		fmt.Printf("Average per video: %s\n", formatElapsed(report.Elapsed/time.Duration(report.Total)))
	}

	if failures := report.Failures(); len(failures) > 0 {
		fmt.Println("\nFailed videos:")
		for _, r := range failures {
			fmt.Printf("  - Job %d: %s - %s\n", r.JobID, r.URL, r.Err)
		}
	}
	fmt.Println("============================================================")
}

// formatElapsed renders a duration as seconds, minutes, or hours.
func formatElapsed(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.1fm", d.Minutes())
	default:
		return fmt.Sprintf("%.1fh", d.Hours())
	}
}
