package fetcher

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/alorle/iptv-console/cache"
)

// Fetcher handles fetching M3U content with cache fallback
type Fetcher struct {
	client   *http.Client
	storage  cache.Storage
	cacheTTL time.Duration
	logger   *slog.Logger
}

// New creates a new Fetcher with the specified timeout and cache configuration
func New(timeout time.Duration, storage cache.Storage, cacheTTL time.Duration, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		storage:  storage,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// FetchWithCacheFallback fetches M3U content from the URL with cache fallback
// Returns the content and a boolean indicating whether it was served from cache
func (f *Fetcher) FetchWithCacheFallback(url string) ([]byte, bool, error) {
	cacheKey := cache.DeriveKeyFromURL(url)

	// Attempt to fetch from the source
	f.logger.Debug("fetching playlist from source", "url", url)

	content, err := f.fetchFromURL(url)
	if err == nil {
		// Success: update cache and return fresh content
		if setErr := f.storage.Set(cacheKey, content); setErr != nil {
			f.logger.Warn("failed to update cache", "url", url, "error", setErr)
		}

		return content, false, nil
	}

	// Fetch failed: log the error and try cache fallback
	f.logger.Warn("fetch failed, attempting cache fallback", "url", url, "error", err)

	// Check if we have cached content (even if expired)
	entry, cacheErr := f.storage.Get(cacheKey)
	if cacheErr != nil {
		// No cache available either
		f.logger.Warn("cache miss", "url", url, "error", cacheErr)
		return nil, false, fmt.Errorf("upstream fetch failed and no cache available: %w", err)
	}

	// Serve stale cache as fallback
	f.logger.Info("serving stale cache", "url", url, "cached_at", entry.Timestamp.Format(time.RFC3339))
	return entry.Content, true, nil
}

// fetchFromURL performs the actual HTTP fetch with timeout
func (f *Fetcher) fetchFromURL(url string) ([]byte, error) {
	resp, err := f.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			f.logger.Warn("failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP request returned status %d: %s", resp.StatusCode, resp.Status)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return content, nil
}

// IsExpired checks if the cached content for the URL is expired
func (f *Fetcher) IsExpired(url string) (bool, error) {
	cacheKey := cache.DeriveKeyFromURL(url)
	return f.storage.IsExpired(cacheKey, f.cacheTTL)
}

// FetchWithCache fetches M3U content with cache-first strategy
// Checks cache freshness first, only fetches if expired
// Returns the content, whether it was from cache, and whether cache was stale
func (f *Fetcher) FetchWithCache(url string) ([]byte, bool, bool, error) {
	cacheKey := cache.DeriveKeyFromURL(url)

	// Step 1: Check if cached content exists
	entry, cacheErr := f.storage.Get(cacheKey)

	if cacheErr == nil {
		// Cache exists - check if it's fresh
		expired, expErr := f.storage.IsExpired(cacheKey, f.cacheTTL)
		if expErr != nil {
			f.logger.Warn("failed to check cache expiration", "url", url, "error", expErr)
			// Treat as expired and continue to fetch
		} else if !expired {
			// Cache is fresh - serve immediately
			f.logger.Debug("serving fresh cache",
				"url", url,
				"cached_at", entry.Timestamp.Format(time.RFC3339),
				"age", time.Since(entry.Timestamp).String(),
			)
			return entry.Content, true, false, nil
		}

		f.logger.Debug("cache expired", "url", url, "cached_at", entry.Timestamp.Format(time.RFC3339))
	} else {
		f.logger.Debug("no cache found", "url", url)
	}

	// Step 2: Cache is expired or doesn't exist - attempt to fetch
	content, fetchErr := f.fetchFromURL(url)
	if fetchErr == nil {
		// Fetch succeeded - update cache and serve new content
		if setErr := f.storage.Set(cacheKey, content); setErr != nil {
			f.logger.Warn("failed to update cache", "url", url, "error", setErr)
		}

		return content, false, false, nil
	}

	// Step 3: Fetch failed - check if we can serve stale cache
	f.logger.Warn("fetch failed", "url", url, "error", fetchErr)

	if cacheErr != nil {
		// No cache available at all
		return nil, false, false, fmt.Errorf("upstream fetch failed and no cache available: %w", fetchErr)
	}

	// Serve stale cache with warning
	f.logger.Warn("serving stale cache",
		"url", url,
		"cached_at", entry.Timestamp.Format(time.RFC3339),
		"age", time.Since(entry.Timestamp).String(),
	)

	return entry.Content, true, true, nil
}
