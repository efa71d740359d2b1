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

	"github.com/alorle/iptv-console/internal/channel"
)

// ChannelHTTPAdapter implements the ChannelAPI port using HTTP calls to the
// discovery backend.
type ChannelHTTPAdapter struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewChannelHTTPAdapter creates a new HTTP adapter for the channel endpoints.
func NewChannelHTTPAdapter(baseURL string, logger *slog.Logger) *ChannelHTTPAdapter {
	return &ChannelHTTPAdapter{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// SetHTTPClient allows replacing the default HTTP client.
func (a *ChannelHTTPAdapter) SetHTTPClient(client *http.Client) {
	a.httpClient = client
}

// ListChannels fetches channels via GET /channels, optionally filtered by
// group and free-text search.
func (a *ChannelHTTPAdapter) ListChannels(ctx context.Context, filter channel.Filter) ([]channel.Channel, error) {
	params := url.Values{}
	if filter.Group != "" {
		params.Set("group", filter.Group)
	}
	if filter.Search != "" {
		params.Set("search", filter.Search)
	}

	reqURL := fmt.Sprintf("%s/channels", a.baseURL)
	if encoded := params.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}

	var channels []channel.Channel
	if err := a.doJSON(ctx, http.MethodGet, reqURL, nil, &channels); err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}

	return channels, nil
}

// GetChannel fetches a single channel via GET /channels/{id}.
func (a *ChannelHTTPAdapter) GetChannel(ctx context.Context, id string) (channel.Channel, error) {
	reqURL := fmt.Sprintf("%s/channels/%s", a.baseURL, url.PathEscape(id))

	var ch channel.Channel
	if err := a.doJSON(ctx, http.MethodGet, reqURL, nil, &ch); err != nil {
		return channel.Channel{}, fmt.Errorf("failed to get channel %s: %w", id, err)
	}

	return ch, nil
}

// UpdateChannel edits a channel via PUT /channels/{id}.
func (a *ChannelHTTPAdapter) UpdateChannel(ctx context.Context, id string, update channel.Update) (channel.Channel, error) {
	reqURL := fmt.Sprintf("%s/channels/%s", a.baseURL, url.PathEscape(id))

	body, err := json.Marshal(update)
	if err != nil {
		return channel.Channel{}, fmt.Errorf("failed to encode channel update: %w", err)
	}

	var ch channel.Channel
	if err := a.doJSON(ctx, http.MethodPut, reqURL, body, &ch); err != nil {
		return channel.Channel{}, fmt.Errorf("failed to update channel %s: %w", id, err)
	}

	a.logger.Info("channel updated", "channel_id", id)

	return ch, nil
}

// DeleteChannel removes a channel via DELETE /channels/{id}.
func (a *ChannelHTTPAdapter) DeleteChannel(ctx context.Context, id string) error {
	reqURL := fmt.Sprintf("%s/channels/%s", a.baseURL, url.PathEscape(id))

	if err := a.doJSON(ctx, http.MethodDelete, reqURL, nil, nil); err != nil {
		return fmt.Errorf("failed to delete channel %s: %w", id, err)
	}

	a.logger.Info("channel deleted", "channel_id", id)

	return nil
}

// doJSON performs a request with an optional JSON body and decodes the JSON
// response into out when out is non-nil. 404 responses are mapped to
// channel.ErrChannelNotFound.
func (a *ChannelHTTPAdapter) doJSON(ctx context.Context, method, reqURL string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Error("backend request failed", "method", method, "url", reqURL, "error", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return channel.ErrChannelNotFound
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("backend returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
