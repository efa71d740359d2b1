package application

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/alorle/iptv-console/fetcher"
	"github.com/alorle/iptv-console/internal/port/driven"
)

const samplePlaylist = `#EXTM3U
#EXTINF:-1 tvg-id="la1.es" group-title="General",La 1
http://backend:8080/stream/192.168.1.1
#EXTINF:-1 group-title="Deportes",Teledeporte
http://backend:8080/stream/192.168.1.2
`

type fakePlaylistAPI struct {
	imported []byte
	name     string
	result   driven.ImportResult
	err      error
	exported string
}

func (f *fakePlaylistAPI) ImportPlaylist(ctx context.Context, name string, content []byte) (driven.ImportResult, error) {
	if f.err != nil {
		return driven.ImportResult{}, f.err
	}
	f.name = name
	f.imported = content
	return f.result, nil
}

func (f *fakePlaylistAPI) ExportPlaylist(ctx context.Context, group string, dst io.Writer) error {
	if f.err != nil {
		return f.err
	}
	_, err := dst.Write([]byte(f.exported))
	return err
}

func TestPlaylistServiceImportReader(t *testing.T) {
	api := &fakePlaylistAPI{result: driven.ImportResult{PlaylistID: "pl-1", Imported: 2}}
	service := NewPlaylistService(api, &fetcher.MockFetcher{}, discardLogger())

	result, err := service.ImportReader(context.Background(), "spain", strings.NewReader(samplePlaylist))
	if err != nil {
		t.Fatalf("ImportReader() error = %v", err)
	}
	if result.PlaylistID != "pl-1" || result.Imported != 2 {
		t.Errorf("ImportReader() result = %+v", result)
	}
	if api.name != "spain" {
		t.Errorf("uploaded name = %q, want spain", api.name)
	}
	if !bytes.Equal(api.imported, []byte(samplePlaylist)) {
		t.Error("uploaded content differs from input")
	}
}

func TestPlaylistServiceImportRejectsBrokenContent(t *testing.T) {
	api := &fakePlaylistAPI{}
	service := NewPlaylistService(api, &fetcher.MockFetcher{}, discardLogger())

	cases := []struct {
		name    string
		content string
	}{
		{"not m3u", "<html>not a playlist</html>"},
		{"empty playlist", "#EXTM3U\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := service.ImportReader(context.Background(), "broken", strings.NewReader(tc.content)); err == nil {
				t.Error("ImportReader() accepted broken playlist")
			}
			if api.imported != nil {
				t.Error("broken playlist reached the backend")
			}
		})
	}
}

func TestPlaylistServiceImportURL(t *testing.T) {
	api := &fakePlaylistAPI{result: driven.ImportResult{PlaylistID: "pl-2", Imported: 2}}
	fetch := &fetcher.MockFetcher{
		FetchWithCacheFallbackFunc: func(url string) ([]byte, bool, error) {
			return []byte(samplePlaylist), true, nil
		},
	}
	service := NewPlaylistService(api, fetch, discardLogger())

	result, err := service.ImportURL(context.Background(), "provider", "http://provider.example/list.m3u")
	if err != nil {
		t.Fatalf("ImportURL() error = %v", err)
	}
	if result.PlaylistID != "pl-2" {
		t.Errorf("ImportURL() result = %+v", result)
	}

	if _, err := service.ImportURL(context.Background(), "provider", "  "); err == nil {
		t.Error("ImportURL() accepted empty URL")
	}
}

func TestPlaylistServiceImportURLDownloadFailure(t *testing.T) {
	fetch := &fetcher.MockFetcher{
		FetchWithCacheFallbackFunc: func(url string) ([]byte, bool, error) {
			return nil, false, errors.New("source unreachable, no cache")
		},
	}
	service := NewPlaylistService(&fakePlaylistAPI{}, fetch, discardLogger())

	if _, err := service.ImportURL(context.Background(), "provider", "http://provider.example/list.m3u"); err == nil {
		t.Error("ImportURL() succeeded despite download failure")
	}
}

func TestPlaylistServicePreview(t *testing.T) {
	service := NewPlaylistService(&fakePlaylistAPI{}, &fetcher.MockFetcher{}, discardLogger())

	channels, err := service.Preview(strings.NewReader(samplePlaylist))
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if len(channels) != 2 {
		t.Fatalf("Preview() channels = %d, want 2", len(channels))
	}
	if channels[0].Title != "La 1" || channels[1].TVGTags.GroupTitle != "Deportes" {
		t.Errorf("Preview() parsed %+v", channels)
	}
}

func TestPlaylistServiceExport(t *testing.T) {
	api := &fakePlaylistAPI{exported: samplePlaylist}
	service := NewPlaylistService(api, &fetcher.MockFetcher{}, discardLogger())

	var buf bytes.Buffer
	if err := service.Export(context.Background(), "General", &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if buf.String() != samplePlaylist {
		t.Error("Export() did not stream backend content")
	}
}
