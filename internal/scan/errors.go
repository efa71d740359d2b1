package scan

import (
	"errors"
	"fmt"
)

// ErrScanActive is returned by Start when the poller is already driving a
// scan. The caller must cancel the active scan before starting a new one.
var ErrScanActive = errors.New("a scan is already active on this poller")

// SubmissionError indicates that a scan request was rejected before polling
// began, either by local validation or by the backend.
type SubmissionError struct {
	Reason string
	Err    error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scan submission rejected: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("scan submission rejected: %s", e.Reason)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// PollError indicates that a single status poll failed. It is transient:
// the poll loop keeps running after reporting it.
type PollError struct {
	ScanID string
	Err    error
}

func (e *PollError) Error() string {
	return fmt.Sprintf("poll failed for scan %s: %v", e.ScanID, e.Err)
}

func (e *PollError) Unwrap() error { return e.Err }

// CancelError indicates that the backend cancellation call failed. The local
// poller still stops; the error is informational.
type CancelError struct {
	ScanID string
	Err    error
}

func (e *CancelError) Error() string {
	return fmt.Sprintf("cancel failed for scan %s: %v", e.ScanID, e.Err)
}

func (e *CancelError) Unwrap() error { return e.Err }
