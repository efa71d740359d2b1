package fetcher

// Interface is what the playlist import service depends on: playlist
// downloads that survive a flaky or dead source by serving cached
// copies. Implemented by Fetcher and by MockFetcher in tests.
type Interface interface {
	// FetchWithCache serves the cached playlist while it is fresh and
	// only hits the source once it has expired. A stale copy is served
	// when the refresh fails. Returns content, fromCache, stale, error.
	FetchWithCache(url string) ([]byte, bool, bool, error)

	// FetchWithCacheFallback always tries the source first and falls
	// back to whatever is cached when the download fails. Returns
	// content, fromCache, error.
	FetchWithCacheFallback(url string) ([]byte, bool, error)

	// IsExpired reports whether the cached playlist for url has aged
	// past the configured TTL. A missing entry counts as expired.
	IsExpired(url string) (bool, error)
}
