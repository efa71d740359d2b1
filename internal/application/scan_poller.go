package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/alorle/iptv-console/circuitbreaker"
	"github.com/alorle/iptv-console/internal/port/driven"
	"github.com/alorle/iptv-console/internal/scan"
	"github.com/alorle/iptv-console/metrics"
)

// DefaultPollInterval is the cadence of scan status polls when the
// configuration does not override it.
const DefaultPollInterval = time.Second

// SnapshotObserver receives every snapshot the poller obtains, including
// the final terminal one and the synthetic cancelled snapshot.
type SnapshotObserver func(scan.Snapshot)

// PollErrorObserver receives transient poll failures. The loop keeps
// running after reporting one.
type PollErrorObserver func(error)

// PollerConfig tunes a ScanPoller.
type PollerConfig struct {
	// Interval between status polls. Defaults to DefaultPollInterval.
	Interval time.Duration

	// Breaker bounds consecutive poll failures. When the breaker opens,
	// the poller gives up on the scan and reports it as failed instead
	// of polling a dead backend forever.
	Breaker circuitbreaker.Config
}

// ScanPoller drives one scan from submission to terminal status. Each
// Start binds a fresh session to the new scan id; the session polls the
// backend at a fixed cadence until it observes a terminal status or the
// user cancels. Stopping happens exactly once per session.
type ScanPoller struct {
	api        driven.ScanAPI
	logger     *slog.Logger
	interval   time.Duration
	breakerCfg circuitbreaker.Config
	onSnapshot SnapshotObserver
	onError    PollErrorObserver

	mu       sync.Mutex
	starting bool
	session  *pollSession
}

// NewScanPoller creates a poller over the given scan API. Observers may be
// nil when the caller only needs Latest and Done.
func NewScanPoller(api driven.ScanAPI, cfg PollerConfig, logger *slog.Logger, onSnapshot SnapshotObserver, onError PollErrorObserver) *ScanPoller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	return &ScanPoller{
		api:        api,
		logger:     logger,
		interval:   interval,
		breakerCfg: cfg.Breaker,
		onSnapshot: onSnapshot,
		onError:    onError,
	}
}

// Start validates and submits the request, then begins polling. It returns
// ErrScanActive while a previous scan is still being polled: the caller
// must Cancel first, which prevents orphaned timers.
func (p *ScanPoller) Start(ctx context.Context, request scan.Request) (scan.Handle, error) {
	if err := request.Validate(); err != nil {
		return scan.Handle{}, &scan.SubmissionError{Reason: "invalid request", Err: err}
	}

	// Reserve the slot before submitting so two concurrent Starts
	// cannot both pass the active-session check while StartScan is
	// in flight.
	p.mu.Lock()
	if p.starting || (p.session != nil && !p.session.stopped()) {
		p.mu.Unlock()
		return scan.Handle{}, scan.ErrScanActive
	}
	p.starting = true
	p.mu.Unlock()

	handle, err := p.api.StartScan(ctx, request)
	if err != nil {
		p.mu.Lock()
		p.starting = false
		p.mu.Unlock()
		return scan.Handle{}, err
	}

	metrics.RecordScanStarted(string(request.Mode))

	breakerCfg := p.breakerCfg
	breakerCfg.Logger = p.logger
	breakerCfg.Name = handle.ScanID

	session := &pollSession{
		scanID:     handle.ScanID,
		api:        p.api,
		interval:   p.interval,
		logger:     p.logger,
		breaker:    circuitbreaker.New(breakerCfg),
		onSnapshot: p.onSnapshot,
		onError:    p.onError,
		done:       make(chan struct{}),
	}
	session.latest = scan.Snapshot{
		ScanID:    handle.ScanID,
		Status:    handle.Status,
		Total:     handle.Total,
		StartedAt: time.Now(),
	}

	p.mu.Lock()
	p.session = session
	p.starting = false
	p.mu.Unlock()

	p.logger.Info("poll session started",
		"scan_id", handle.ScanID,
		"mode", request.Mode,
		"total", handle.Total,
		"interval", p.interval,
	)

	go session.run(ctx)

	return handle, nil
}

// Cancel stops the active poll session immediately and reports a cancelled
// snapshot, then requests backend cancellation in the background. The
// user's intent to stop observing takes precedence over backend
// confirmation, so a failing DELETE only gets logged. Cancel on an idle
// poller is a no-op.
func (p *ScanPoller) Cancel(ctx context.Context) {
	p.mu.Lock()
	session := p.session
	p.mu.Unlock()

	if session == nil {
		return
	}

	session.cancel(ctx)
}

// Latest returns the most recent snapshot of the current or last session.
// The second return is false before any Start.
func (p *ScanPoller) Latest() (scan.Snapshot, bool) {
	p.mu.Lock()
	session := p.session
	p.mu.Unlock()

	if session == nil {
		return scan.Snapshot{}, false
	}

	return session.snapshot(), true
}

// Done returns a channel closed when the current session stops. It returns
// nil before any Start.
func (p *ScanPoller) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session == nil {
		return nil
	}
	return p.session.done
}

// pollSession owns the poll loop for one scan id. No state is shared
// between sessions; a new Start produces a new session.
type pollSession struct {
	scanID     string
	api        driven.ScanAPI
	interval   time.Duration
	logger     *slog.Logger
	breaker    circuitbreaker.CircuitBreaker
	onSnapshot SnapshotObserver
	onError    PollErrorObserver

	// stopMu serializes stopping with snapshot publication. Whichever of
	// run, cancel or giveUp holds it first wins the race: a poll response
	// that was in flight when the session stopped is discarded instead of
	// following the terminal snapshot.
	stopMu   sync.Mutex
	stopOnce sync.Once
	done     chan struct{}

	mu     sync.Mutex
	latest scan.Snapshot
}

// run executes the poll loop. One request is in flight at a time: the next
// tick is armed only after the previous response has been handled.
func (s *pollSession) run(ctx context.Context) {
	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			s.logger.Info("poll session context cancelled", "scan_id", s.scanID)
			s.stop()
			return
		case <-timer.C:
		}

		snapshot, ok := s.poll(ctx)
		if !ok {
			// Breaker open: the backend is considered gone. Give
			// up and surface a failed scan.
			s.giveUp()
			return
		}

		if snapshot != nil {
			if !s.publish(*snapshot) {
				// Cancellation won the race while the request
				// was in flight; its response is discarded.
				return
			}

			if snapshot.Status.Terminal() {
				s.logger.Info("scan reached terminal status",
					"scan_id", s.scanID,
					"status", snapshot.Status,
					"valid", snapshot.Valid,
					"invalid", snapshot.Invalid,
				)
				metrics.RecordScanFinished(string(snapshot.Status))
				return
			}
		}

		timer.Reset(s.interval)
	}
}

// publish records and delivers a polled snapshot unless the session has
// already stopped. The stopped check, the recording and the delivery form
// one critical section under stopMu, and a terminal snapshot closes the
// session inside that same section, so no snapshot can ever be observed
// after a terminal one. It reports whether the snapshot was accepted.
func (s *pollSession) publish(snapshot scan.Snapshot) bool {
	s.stopMu.Lock()
	defer s.stopMu.Unlock()

	if s.stopped() {
		return false
	}

	s.record(snapshot)
	s.deliver(snapshot)

	if snapshot.Status.Terminal() {
		s.stop()
	}

	return true
}

// poll issues one status request through the breaker. It returns a nil
// snapshot after a transient failure, and ok=false once the breaker is
// open and the session should give up.
func (s *pollSession) poll(ctx context.Context) (*scan.Snapshot, bool) {
	var snapshot scan.Snapshot

	err := s.breaker.Execute(func() error {
		// Counted inside the breaker so ticks short-circuited by an
		// open breaker do not show up as issued polls.
		metrics.PollsIssued.Inc()
		var pollErr error
		snapshot, pollErr = s.api.GetScan(ctx, s.scanID)
		return pollErr
	})

	metrics.SetCircuitBreakerState(s.scanID, s.breaker.State().String())

	if err == nil {
		metrics.ScanProgress.WithLabelValues(s.scanID).Set(float64(snapshot.Progress))
		return &snapshot, true
	}

	if errors.Is(err, circuitbreaker.ErrCircuitOpen) || errors.Is(err, circuitbreaker.ErrHalfOpenLimitReached) {
		return nil, false
	}

	metrics.PollFailures.Inc()
	s.logger.Warn("poll failed, will retry on next tick", "scan_id", s.scanID, "error", err)
	s.reportError(err)

	return nil, true
}

// cancel stops the loop and reports a cancelled snapshot immediately, then
// notifies the backend without blocking the caller.
func (s *pollSession) cancel(ctx context.Context) {
	s.stopMu.Lock()

	var first bool
	s.stopOnce.Do(func() {
		first = true
		close(s.done)
	})
	if !first {
		s.stopMu.Unlock()
		return
	}

	snapshot := s.snapshot()
	snapshot.Status = scan.StatusCancelled
	now := time.Now()
	snapshot.CompletedAt = &now
	s.record(snapshot)
	s.deliver(snapshot)
	s.stopMu.Unlock()

	metrics.RecordScanFinished(string(scan.StatusCancelled))
	s.logger.Info("poll session cancelled", "scan_id", s.scanID)

	go func() {
		if _, err := s.api.CancelScan(ctx, s.scanID); err != nil {
			s.logger.Warn("backend cancellation failed", "scan_id", s.scanID, "error", err)
			s.reportError(err)
		}
	}()
}

// giveUp converts an open breaker into a failed terminal snapshot.
func (s *pollSession) giveUp() {
	s.stopMu.Lock()

	var first bool
	s.stopOnce.Do(func() {
		first = true
		close(s.done)
	})
	if !first {
		s.stopMu.Unlock()
		return
	}

	snapshot := s.snapshot()
	snapshot.Status = scan.StatusFailed
	if snapshot.Error == "" {
		snapshot.Error = "backend unreachable: poll circuit breaker open"
	}
	now := time.Now()
	snapshot.CompletedAt = &now
	s.record(snapshot)
	s.deliver(snapshot)
	s.stopMu.Unlock()

	metrics.RecordScanFinished(string(scan.StatusFailed))
	s.logger.Error("giving up on scan, backend unreachable", "scan_id", s.scanID)
}

func (s *pollSession) stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
}

func (s *pollSession) stopped() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *pollSession) record(snapshot scan.Snapshot) {
	s.mu.Lock()
	s.latest = snapshot
	s.mu.Unlock()
}

func (s *pollSession) snapshot() scan.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

func (s *pollSession) deliver(snapshot scan.Snapshot) {
	if s.onSnapshot != nil {
		s.onSnapshot(snapshot)
	}
}

func (s *pollSession) reportError(err error) {
	if s.onError != nil {
		s.onError(err)
	}
}
