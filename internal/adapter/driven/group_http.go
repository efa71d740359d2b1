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

// GroupHTTPAdapter implements the GroupAPI port using HTTP calls to the
// discovery backend.
type GroupHTTPAdapter struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewGroupHTTPAdapter creates a new HTTP adapter for the group endpoints.
func NewGroupHTTPAdapter(baseURL string, logger *slog.Logger) *GroupHTTPAdapter {
	return &GroupHTTPAdapter{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// SetHTTPClient allows replacing the default HTTP client.
func (a *GroupHTTPAdapter) SetHTTPClient(client *http.Client) {
	a.httpClient = client
}

// ListGroups fetches all groups via GET /groups.
func (a *GroupHTTPAdapter) ListGroups(ctx context.Context) ([]channel.Group, error) {
	reqURL := fmt.Sprintf("%s/groups", a.baseURL)

	var groups []channel.Group
	if err := a.doJSON(ctx, http.MethodGet, reqURL, nil, &groups); err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	return groups, nil
}

// RenameGroup renames a group via POST /groups/{id}/rename.
func (a *GroupHTTPAdapter) RenameGroup(ctx context.Context, id, name string) (channel.Group, error) {
	reqURL := fmt.Sprintf("%s/groups/%s/rename", a.baseURL, url.PathEscape(id))

	body, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return channel.Group{}, fmt.Errorf("failed to encode rename request: %w", err)
	}

	var group channel.Group
	if err := a.doJSON(ctx, http.MethodPost, reqURL, body, &group); err != nil {
		return channel.Group{}, fmt.Errorf("failed to rename group %s: %w", id, err)
	}

	a.logger.Info("group renamed", "group_id", id, "name", name)

	return group, nil
}

// MergeGroups merges two groups via POST /groups/merge.
func (a *GroupHTTPAdapter) MergeGroups(ctx context.Context, sourceID, targetID string) (channel.Group, error) {
	reqURL := fmt.Sprintf("%s/groups/merge", a.baseURL)

	body, err := json.Marshal(map[string]string{
		"source_id": sourceID,
		"target_id": targetID,
	})
	if err != nil {
		return channel.Group{}, fmt.Errorf("failed to encode merge request: %w", err)
	}

	var group channel.Group
	if err := a.doJSON(ctx, http.MethodPost, reqURL, body, &group); err != nil {
		return channel.Group{}, fmt.Errorf("failed to merge group %s into %s: %w", sourceID, targetID, err)
	}

	a.logger.Info("groups merged", "source_id", sourceID, "target_id", targetID)

	return group, nil
}

// DeleteGroup removes a group via DELETE /groups/{id}.
func (a *GroupHTTPAdapter) DeleteGroup(ctx context.Context, id string) error {
	reqURL := fmt.Sprintf("%s/groups/%s", a.baseURL, url.PathEscape(id))

	if err := a.doJSON(ctx, http.MethodDelete, reqURL, nil, nil); err != nil {
		return fmt.Errorf("failed to delete group %s: %w", id, err)
	}

	a.logger.Info("group deleted", "group_id", id)

	return nil
}

// AssignChannels moves channels into a group via POST /groups/{id}/channels.
func (a *GroupHTTPAdapter) AssignChannels(ctx context.Context, groupID string, channelIDs []string) error {
	reqURL := fmt.Sprintf("%s/groups/%s/channels", a.baseURL, url.PathEscape(groupID))

	body, err := json.Marshal(map[string][]string{"channel_ids": channelIDs})
	if err != nil {
		return fmt.Errorf("failed to encode assign request: %w", err)
	}

	if err := a.doJSON(ctx, http.MethodPost, reqURL, body, nil); err != nil {
		return fmt.Errorf("failed to assign channels to group %s: %w", groupID, err)
	}

	a.logger.Info("channels assigned", "group_id", groupID, "count", len(channelIDs))

	return nil
}

func (a *GroupHTTPAdapter) doJSON(ctx context.Context, method, reqURL string, body []byte, out any) error {
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
		return channel.ErrGroupNotFound
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
