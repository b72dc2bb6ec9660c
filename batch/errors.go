package batch

import "fmt"

// ValidationError reports bad batch input (flags, interval, URL list).
// It is always surfaced before any job starts.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// DependencyError reports a missing or broken external tool. It is always
// surfaced before any job starts.
type DependencyError struct {
	// Tool names the missing dependency ("yt-dlp", "ffmpeg", "ffprobe").
	Tool string
	// Err is the underlying error.
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("missing dependency %s: %v", e.Tool, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}
