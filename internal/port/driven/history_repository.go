package driven

import (
	"context"
	"time"

	"github.com/alorle/iptv-console/internal/scan"
)

// HistoryRepository defines the interface for local scan-history
// persistence. Only terminal snapshots are recorded.
type HistoryRepository interface {
	// Save persists a terminal snapshot.
	Save(ctx context.Context, snap scan.Snapshot) error

	// FindAll returns recorded snapshots ordered by start time
	// descending (most recent first).
	FindAll(ctx context.Context) ([]scan.Snapshot, error)

	// FindByScanID returns the recorded snapshot for a scan.
	FindByScanID(ctx context.Context, scanID string) (scan.Snapshot, error)

	// DeleteBefore removes snapshots of scans started before the given
	// time. This is used for retention/cleanup.
	DeleteBefore(ctx context.Context, before time.Time) error
}
