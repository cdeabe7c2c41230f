// ABOUTME: Installer error taxonomy and the user-facing messages for each outcome
// ABOUTME: Sentinels for root/download failures; ProcessingError wraps everything else

package installer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInstallationRoot means the root is empty or lacks the main executable.
	ErrInvalidInstallationRoot = errors.New("invalid installation root")
	// ErrDownloadFailed means the archive host answered with a non-200 status.
	ErrDownloadFailed = errors.New("download failed")
)

// ProcessingError wraps any failure while handling one item that is not a
// download status failure: transport errors, cache writes, extraction.
type ProcessingError struct {
	Item string
	Err  error
}

func (e *ProcessingError) Error() string {
	if e.Item == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Item, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// Message returns the text shown to the user for an Install error.
func Message(err error) string {
	var pe *ProcessingError
	switch {
	case errors.Is(err, ErrInvalidInstallationRoot):
		return "Invalid steam location is specified in settings!"
	case errors.Is(err, ErrDownloadFailed):
		return "Failed to download!"
	case errors.As(err, &pe):
		return "Error: " + pe.Err.Error()
	default:
		return "Error: " + err.Error()
	}
}

// SuccessMessage returns the text shown after a successful batch.
func SuccessMessage(r *Result) string {
	return fmt.Sprintf("Done! (%.3f seconds)", r.Elapsed.Seconds())
}
