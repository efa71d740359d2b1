package driven

import (
	"context"
	"io"
)

// ImportResult summarizes a playlist import on the backend side.
type ImportResult struct {
	PlaylistID string `json:"playlist_id"`
	Imported   int    `json:"imported"`
	Skipped    int    `json:"skipped"`
}

// PlaylistAPI defines the interface for the backend playlist endpoints.
type PlaylistAPI interface {
	// ImportPlaylist uploads raw M3U content. The backend parses it and
	// answers with the import summary.
	ImportPlaylist(ctx context.Context, name string, content []byte) (ImportResult, error)

	// ExportPlaylist streams the backend's current channel set as M3U
	// into dst. An empty group exports everything.
	ExportPlaylist(ctx context.Context, group string, dst io.Writer) error
}
