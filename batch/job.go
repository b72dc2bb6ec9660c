// Package batch implements the bounded-parallelism job runner at the heart
// of ytshots: job descriptors, the per-job pipeline executor, the worker
// pool, and the coordinator that turns a URL list into a final report.
package batch

import (
	"time"

	"github.com/google/uuid"

	"ytshots/youtube"
)

// Job is an immutable descriptor for one video's pipeline run. It is created
// once when the batch is built and owned exclusively by the executor
// processing it.
type Job struct {
	// ID is the job's ordinal index within the batch, starting at 1.
	ID int `json:"id"`
	// URL is the video URL to process.
	URL string `json:"url"`
	// Interval is the capture interval in seconds. Must be positive.
	Interval int `json:"interval"`
	// OutputRoot is the directory under which the per-video folder is created.
	OutputRoot string `json:"output_root"`
	// Quality selects download quality and frame format.
	Quality youtube.Quality `json:"quality"`
	// PdfDPI is the print resolution for the assembled PDF.
	PdfDPI int `json:"pdf_dpi"`
	// KeepVideo retains the downloaded media in the output folder.
	KeepVideo bool `json:"keep_video"`
	// WantTranscript fetches and saves captions when available.
	WantTranscript bool `json:"want_transcript"`
	// WantPDF assembles the captured frames into a PDF.
	WantPDF bool `json:"want_pdf"`
	// Dedupe removes byte-identical frames after extraction.
	Dedupe bool `json:"dedupe"`
}

// Status is the terminal outcome of a job.
type Status string

const (
	// StatusSuccess means the job produced at least one frame.
	StatusSuccess Status = "success"
	// StatusFailure means the job failed; Result.Err holds the cause.
	StatusFailure Status = "failure"
)

// Result is the terminal record of one job. Exactly one Result exists per
// Job once the batch completes; a failure is a recorded outcome, not an
// exception.
type Result struct {
	// JobID matches the Job's ordinal index.
	JobID int `json:"job_id"`
	// URL is the video URL the job processed.
	URL string `json:"url"`
	// Status is the terminal outcome.
	Status Status `json:"status"`
	// OutputDir is the per-video output folder, when one was allocated.
	OutputDir string `json:"output_dir,omitempty"`
	// ScreenshotCount is the number of frames that survived extraction
	// (and deduplication, when enabled).
	ScreenshotCount int `json:"screenshot_count"`
	// TranscriptSaved indicates a transcript text file was written.
	TranscriptSaved bool `json:"transcript_saved"`
	// PDFCreated indicates the PDF was assembled.
	PDFCreated bool `json:"pdf_created"`
	// Err is the human-readable failure cause, empty on success.
	Err string `json:"error,omitempty"`
	// Duration is the job's wall-clock processing time.
	Duration time.Duration `json:"duration"`
}

// Succeeded reports whether the job completed successfully.
func (r Result) Succeeded() bool {
	return r.Status == StatusSuccess
}

// Report aggregates all job results for one batch run. It is built after
// every job has drained and never mutated afterwards.
type Report struct {
	// BatchID uniquely identifies this batch run.
	BatchID string `json:"batch_id"`
	// Total is the number of jobs in the batch.
	Total int `json:"total"`
	// Succeeded is the number of successful jobs.
	Succeeded int `json:"succeeded"`
	// Failed is the number of failed jobs.
	Failed int `json:"failed"`
	// Screenshots is the total frame count across all jobs.
	Screenshots int `json:"screenshots"`
	// Elapsed is the wall-clock time for the whole batch.
	Elapsed time.Duration `json:"elapsed"`
	// Results holds one entry per job, in submission order.
	Results []Result `json:"results"`
}

// NewReport builds the terminal report from the pool's results.
func NewReport(results []Result, elapsed time.Duration) *Report {
	report := &Report{
		BatchID: uuid.NewString(),
		Total:   len(results),
		Elapsed: elapsed,
		Results: results,
	}
	for _, r := range results {
		if r.Succeeded() {
			report.Succeeded++
		} else {
			report.Failed++
		}
		report.Screenshots += r.ScreenshotCount
	}
	return report
}

// Failures returns the failed results, in submission order.
func (r *Report) Failures() []Result {
	var failed []Result
	for _, res := range r.Results {
		if !res.Succeeded() {
			failed = append(failed, res)
		}
	}
	return failed
}

// AllSucceeded reports whether every job in the batch succeeded.
func (r *Report) AllSucceeded() bool {
	return r.Failed == 0
}
