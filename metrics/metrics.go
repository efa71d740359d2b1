package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScansStarted tracks submitted scans by mode
	ScansStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iptv_console_scans_started_total",
		Help: "Total number of scans submitted to the backend",
	}, []string{"mode"})

	// ScansFinished tracks scans that reached a terminal status
	ScansFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iptv_console_scans_finished_total",
		Help: "Total number of scans that reached a terminal status",
	}, []string{"status"})

	// PollsIssued tracks status polls sent to the backend
	PollsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iptv_console_polls_issued_total",
		Help: "Total number of scan status polls issued",
	})

	// PollFailures tracks transient poll failures
	PollFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iptv_console_poll_failures_total",
		Help: "Total number of failed scan status polls",
	})

	// ScanProgress tracks the progress counter of the active scan
	ScanProgress = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "iptv_console_scan_progress",
		Help: "Progress counter of the active scan",
	}, []string{"scan_id"})

	// CircuitBreakerState tracks the current state of the poll circuit breaker
	// 0=closed, 1=open, 2=half-open
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "iptv_console_poll_circuit_breaker_state",
		Help: "Current state of the poll circuit breaker (0=closed, 1=open, 2=half-open)",
	}, []string{"scan_id"})
)

// SetCircuitBreakerState updates the circuit breaker state metric
// state should be one of: "CLOSED" (0), "OPEN" (1), "HALF-OPEN" (2)
func SetCircuitBreakerState(scanID, state string) {
	var value float64
	switch state {
	case "CLOSED":
		value = 0
	case "OPEN":
		value = 1
	case "HALF-OPEN":
		value = 2
	}
	CircuitBreakerState.WithLabelValues(scanID).Set(value)
}

// RecordScanStarted increments the started counter for a scan mode
func RecordScanStarted(mode string) {
	ScansStarted.WithLabelValues(mode).Inc()
}

// RecordScanFinished increments the finished counter for a terminal status
func RecordScanFinished(status string) {
	ScansFinished.WithLabelValues(status).Inc()
}
