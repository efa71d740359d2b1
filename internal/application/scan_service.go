package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/alorle/iptv-console/internal/port/driven"
	"github.com/alorle/iptv-console/internal/scan"
)

// ScanService couples the poller with local history: every terminal
// snapshot is recorded so past scans can be reviewed after the session is
// gone.
type ScanService struct {
	poller  *ScanPoller
	history driven.HistoryRepository
	logger  *slog.Logger
}

// NewScanService creates a ScanService. The observers are forwarded to the
// underlying poller after history recording.
func NewScanService(
	api driven.ScanAPI,
	history driven.HistoryRepository,
	cfg PollerConfig,
	logger *slog.Logger,
	onSnapshot SnapshotObserver,
	onError PollErrorObserver,
) *ScanService {
	s := &ScanService{
		history: history,
		logger:  logger,
	}

	s.poller = NewScanPoller(api, cfg, logger, func(snapshot scan.Snapshot) {
		if snapshot.Status.Terminal() {
			s.recordHistory(snapshot)
		}
		if onSnapshot != nil {
			onSnapshot(snapshot)
		}
	}, onError)

	return s
}

// Start submits a scan and begins polling.
func (s *ScanService) Start(ctx context.Context, request scan.Request) (scan.Handle, error) {
	return s.poller.Start(ctx, request)
}

// Cancel stops the active scan.
func (s *ScanService) Cancel(ctx context.Context) {
	s.poller.Cancel(ctx)
}

// Latest returns the most recent snapshot of the current session.
func (s *ScanService) Latest() (scan.Snapshot, bool) {
	return s.poller.Latest()
}

// Done returns the current session's completion channel.
func (s *ScanService) Done() <-chan struct{} {
	return s.poller.Done()
}

// History returns recorded terminal snapshots, most recent first.
func (s *ScanService) History(ctx context.Context) ([]scan.Snapshot, error) {
	return s.history.FindAll(ctx)
}

// HistoryFor returns the recorded snapshot for one scan.
func (s *ScanService) HistoryFor(ctx context.Context, scanID string) (scan.Snapshot, error) {
	return s.history.FindByScanID(ctx, scanID)
}

// Prune removes history entries for scans started before the given time.
func (s *ScanService) Prune(ctx context.Context, before time.Time) error {
	return s.history.DeleteBefore(ctx, before)
}

// recordHistory persists a terminal snapshot. Recording is best-effort:
// the snapshot was already delivered to the observer, so a storage error
// must not disturb the session.
func (s *ScanService) recordHistory(snapshot scan.Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.history.Save(ctx, snapshot); err != nil {
		s.logger.Warn("failed to record scan history", "scan_id", snapshot.ScanID, "error", err)
	}
}
