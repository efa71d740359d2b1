package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsEndpoint(t *testing.T) {
	// Initialize metrics - including vector metrics to ensure they appear
	RecordScanStarted("template")
	RecordScanFinished("completed")
	PollsIssued.Inc()
	PollFailures.Inc()
	ScanProgress.WithLabelValues("init").Set(0)
	SetCircuitBreakerState("init", "CLOSED")

	// Create a test server with the Prometheus handler
	handler := promhttp.Handler()
	server := httptest.NewServer(handler)
	defer server.Close()

	// Make a request to the /metrics endpoint
	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("Failed to get metrics: %v", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			t.Errorf("failed to close response body: %v", closeErr)
		}
	}()

	// Check status code
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	// Read response body
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}

	output := string(body)

	// Check for expected metrics
	expectedMetrics := []string{
		"iptv_console_scans_started_total",
		"iptv_console_scans_finished_total",
		"iptv_console_polls_issued_total",
		"iptv_console_poll_failures_total",
		"iptv_console_scan_progress",
		"iptv_console_poll_circuit_breaker_state",
	}

	for _, metric := range expectedMetrics {
		if !strings.Contains(output, metric) {
			t.Errorf("Expected metric %s not found in output", metric)
		}
	}
}

func TestSetCircuitBreakerState(t *testing.T) {
	tests := []struct {
		state string
		want  float64
	}{
		{"CLOSED", 0},
		{"OPEN", 1},
		{"HALF-OPEN", 2},
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			SetCircuitBreakerState("scan-test", tt.state)

			got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("scan-test"))
			if got != tt.want {
				t.Errorf("expected gauge %v, got %v", tt.want, got)
			}
		})
	}
}
