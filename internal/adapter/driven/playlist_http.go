package driven

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/alorle/iptv-console/internal/port/driven"
)

// PlaylistHTTPAdapter implements the PlaylistAPI port using HTTP calls to
// the discovery backend.
type PlaylistHTTPAdapter struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewPlaylistHTTPAdapter creates a new HTTP adapter for the playlist
// endpoints. Import uploads can be large, so this adapter uses a longer
// timeout than the other clients.
func NewPlaylistHTTPAdapter(baseURL string, logger *slog.Logger) *PlaylistHTTPAdapter {
	return &PlaylistHTTPAdapter{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
		logger: logger,
	}
}

// SetHTTPClient allows replacing the default HTTP client.
func (a *PlaylistHTTPAdapter) SetHTTPClient(client *http.Client) {
	a.httpClient = client
}

// ImportPlaylist uploads raw M3U content via POST /playlists/import.
func (a *PlaylistHTTPAdapter) ImportPlaylist(ctx context.Context, name string, content []byte) (driven.ImportResult, error) {
	params := url.Values{}
	params.Set("name", name)

	reqURL := fmt.Sprintf("%s/playlists/import?%s", a.baseURL, params.Encode())

	a.logger.Debug("uploading playlist", "name", name, "bytes", len(content))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(content))
	if err != nil {
		return driven.ImportResult{}, fmt.Errorf("failed to create import request: %w", err)
	}
	req.Header.Set("Content-Type", "audio/x-mpegurl")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Error("failed to upload playlist", "name", name, "error", err)
		return driven.ImportResult{}, fmt.Errorf("failed to upload playlist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return driven.ImportResult{}, fmt.Errorf("backend returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result driven.ImportResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return driven.ImportResult{}, fmt.Errorf("failed to decode import result: %w", err)
	}

	a.logger.Info("playlist imported", "name", name, "playlist_id", result.PlaylistID, "imported", result.Imported, "skipped", result.Skipped)

	return result, nil
}

// ExportPlaylist downloads the backend's channel set as M3U via
// GET /playlists/export and copies it into dst.
func (a *PlaylistHTTPAdapter) ExportPlaylist(ctx context.Context, group string, dst io.Writer) error {
	params := url.Values{}
	if group != "" {
		params.Set("group", group)
	}

	reqURL := fmt.Sprintf("%s/playlists/export", a.baseURL)
	if encoded := params.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create export request: %w", err)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Error("failed to download playlist export", "group", group, "error", err)
		return fmt.Errorf("failed to download playlist export: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("backend returned status %d: %s", resp.StatusCode, string(respBody))
	}

	written, err := io.Copy(dst, resp.Body)
	if err != nil {
		return fmt.Errorf("failed to write playlist export: %w", err)
	}

	a.logger.Info("playlist exported", "group", group, "bytes", written)

	return nil
}
