package driven

import (
	"context"

	"github.com/alorle/iptv-console/internal/scan"
)

// ScanAPI defines the interface for the backend scan endpoints.
// This is a driven port implemented by concrete adapters (e.g., HTTP client).
type ScanAPI interface {
	// StartScan submits a scan request and returns the handle for it.
	StartScan(ctx context.Context, req scan.Request) (scan.Handle, error)

	// GetScan fetches the current snapshot for a scan.
	GetScan(ctx context.Context, scanID string) (scan.Snapshot, error)

	// CancelScan requests backend cancellation of a scan. It returns
	// whether the backend acknowledged the cancellation.
	CancelScan(ctx context.Context, scanID string) (bool, error)
}
