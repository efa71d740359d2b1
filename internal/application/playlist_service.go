package application

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alorle/iptv-console/fetcher"
	"github.com/alorle/iptv-console/internal/m3u"
	"github.com/alorle/iptv-console/internal/port/driven"
)

// PlaylistService handles M3U import and export. Imports are parsed
// locally before upload so a broken file is rejected without touching the
// backend; URL imports go through the caching fetcher, which can serve a
// stale copy when the source is flaky.
type PlaylistService struct {
	api    driven.PlaylistAPI
	fetch  fetcher.Interface
	logger *slog.Logger
}

// NewPlaylistService creates a new PlaylistService.
func NewPlaylistService(api driven.PlaylistAPI, fetch fetcher.Interface, logger *slog.Logger) *PlaylistService {
	return &PlaylistService{
		api:    api,
		fetch:  fetch,
		logger: logger,
	}
}

// ImportReader validates and uploads M3U content from r.
func (s *PlaylistService) ImportReader(ctx context.Context, name string, r io.Reader) (driven.ImportResult, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return driven.ImportResult{}, fmt.Errorf("failed to read playlist: %w", err)
	}

	return s.importContent(ctx, name, content, false)
}

// ImportURL downloads an M3U playlist and uploads it. The download falls
// back to the local cache when the source is unreachable.
func (s *PlaylistService) ImportURL(ctx context.Context, name, url string) (driven.ImportResult, error) {
	if strings.TrimSpace(url) == "" {
		return driven.ImportResult{}, fmt.Errorf("playlist URL cannot be empty")
	}

	content, fromCache, err := s.fetch.FetchWithCacheFallback(url)
	if err != nil {
		return driven.ImportResult{}, fmt.Errorf("failed to download playlist: %w", err)
	}

	return s.importContent(ctx, name, content, fromCache)
}

func (s *PlaylistService) importContent(ctx context.Context, name string, content []byte, fromCache bool) (driven.ImportResult, error) {
	channels, err := m3u.Decode(bytes.NewReader(content))
	if err != nil {
		return driven.ImportResult{}, fmt.Errorf("playlist rejected before upload: %w", err)
	}
	if len(channels) == 0 {
		return driven.ImportResult{}, fmt.Errorf("playlist rejected before upload: no channels found")
	}

	s.logger.Info("uploading playlist",
		"name", name,
		"channels", len(channels),
		"from_cache", fromCache,
	)

	result, err := s.api.ImportPlaylist(ctx, name, content)
	if err != nil {
		return driven.ImportResult{}, fmt.Errorf("failed to import playlist: %w", err)
	}

	return result, nil
}

// Preview parses M3U content without uploading anything, for inspecting a
// playlist before committing to an import.
func (s *PlaylistService) Preview(r io.Reader) ([]*m3u.Channel, error) {
	return m3u.Decode(r)
}

// Export streams the backend's channel set as M3U into w.
func (s *PlaylistService) Export(ctx context.Context, group string, w io.Writer) error {
	if err := s.api.ExportPlaylist(ctx, group, w); err != nil {
		return fmt.Errorf("failed to export playlist: %w", err)
	}
	return nil
}
