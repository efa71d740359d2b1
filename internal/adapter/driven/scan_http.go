package driven

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/alorle/iptv-console/internal/scan"
)

// ScanHTTPAdapter implements the ScanAPI port using HTTP calls to the
// discovery backend.
type ScanHTTPAdapter struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewScanHTTPAdapter creates a new HTTP adapter for the scan endpoints.
// baseURL should point to the discovery backend API root
// (e.g., http://localhost:9090/api).
func NewScanHTTPAdapter(baseURL string, logger *slog.Logger) *ScanHTTPAdapter {
	return &ScanHTTPAdapter{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// SetHTTPClient allows replacing the default HTTP client.
// Useful for testing with custom transports or timeouts.
func (a *ScanHTTPAdapter) SetHTTPClient(client *http.Client) {
	a.httpClient = client
}

// StartScan submits a scan request via POST /scan/start.
func (a *ScanHTTPAdapter) StartScan(ctx context.Context, request scan.Request) (scan.Handle, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return scan.Handle{}, fmt.Errorf("failed to encode scan request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/scan/start", a.baseURL)

	a.logger.Debug("submitting scan", "mode", request.Mode, "url", reqURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return scan.Handle{}, fmt.Errorf("failed to create scan start request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Error("failed to reach backend for scan start", "mode", request.Mode, "error", err)
		return scan.Handle{}, &scan.SubmissionError{Reason: "backend unreachable", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		a.logger.Error("backend rejected scan", "mode", request.Mode, "status", resp.StatusCode, "body", string(respBody))
		return scan.Handle{}, &scan.SubmissionError{
			Reason: fmt.Sprintf("backend returned status %d: %s", resp.StatusCode, string(respBody)),
		}
	}

	var handle scan.Handle
	if err := json.NewDecoder(resp.Body).Decode(&handle); err != nil {
		return scan.Handle{}, fmt.Errorf("failed to decode scan handle: %w", err)
	}

	if handle.ScanID == "" {
		return scan.Handle{}, &scan.SubmissionError{Reason: "backend did not return a scan id"}
	}

	a.logger.Info("scan submitted", "scan_id", handle.ScanID, "status", handle.Status, "total", handle.Total)

	return handle, nil
}

// GetScan fetches the current snapshot via GET /scan/{scan_id}.
func (a *ScanHTTPAdapter) GetScan(ctx context.Context, scanID string) (scan.Snapshot, error) {
	reqURL := fmt.Sprintf("%s/scan/%s", a.baseURL, scanID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return scan.Snapshot{}, fmt.Errorf("failed to create scan status request: %w", err)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return scan.Snapshot{}, &scan.PollError{ScanID: scanID, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return scan.Snapshot{}, &scan.PollError{
			ScanID: scanID,
			Err:    fmt.Errorf("backend returned status %d: %s", resp.StatusCode, string(respBody)),
		}
	}

	var snapshot scan.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return scan.Snapshot{}, &scan.PollError{ScanID: scanID, Err: fmt.Errorf("failed to decode snapshot: %w", err)}
	}

	if err := snapshot.Validate(); err != nil {
		return scan.Snapshot{}, &scan.PollError{ScanID: scanID, Err: fmt.Errorf("backend sent inconsistent snapshot: %w", err)}
	}

	return snapshot, nil
}

// CancelScan requests cancellation via DELETE /scan/{scan_id}.
func (a *ScanHTTPAdapter) CancelScan(ctx context.Context, scanID string) (bool, error) {
	reqURL := fmt.Sprintf("%s/scan/%s", a.baseURL, scanID)

	a.logger.Debug("cancelling scan", "scan_id", scanID, "url", reqURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, reqURL, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create scan cancel request: %w", err)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Error("failed to reach backend for scan cancel", "scan_id", scanID, "error", err)
		return false, &scan.CancelError{ScanID: scanID, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return false, &scan.CancelError{
			ScanID: scanID,
			Err:    fmt.Errorf("backend returned status %d: %s", resp.StatusCode, string(respBody)),
		}
	}

	var result struct {
		ScanID    string      `json:"scan_id"`
		Status    scan.Status `json:"status"`
		Cancelled bool        `json:"cancelled"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, &scan.CancelError{ScanID: scanID, Err: fmt.Errorf("failed to decode cancel response: %w", err)}
	}

	a.logger.Info("scan cancel acknowledged", "scan_id", scanID, "cancelled", result.Cancelled)

	return result.Cancelled, nil
}
