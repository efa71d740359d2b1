package fetcher

import "fmt"

// MockFetcher is a func-field test double for Interface. Unset download
// fields fail with a not-faked error so a test cannot silently import an
// empty playlist; IsExpired defaults to expired like an empty cache.
type MockFetcher struct {
	FetchWithCacheFunc         func(url string) ([]byte, bool, bool, error)
	FetchWithCacheFallbackFunc func(url string) ([]byte, bool, error)
	IsExpiredFunc              func(url string) (bool, error)
}

func (m *MockFetcher) FetchWithCache(url string) ([]byte, bool, bool, error) {
	if m.FetchWithCacheFunc != nil {
		return m.FetchWithCacheFunc(url)
	}
	return nil, false, false, fmt.Errorf("mock fetcher: no response faked for %s", url)
}

func (m *MockFetcher) FetchWithCacheFallback(url string) ([]byte, bool, error) {
	if m.FetchWithCacheFallbackFunc != nil {
		return m.FetchWithCacheFallbackFunc(url)
	}
	return nil, false, fmt.Errorf("mock fetcher: no response faked for %s", url)
}

func (m *MockFetcher) IsExpired(url string) (bool, error) {
	if m.IsExpiredFunc != nil {
		return m.IsExpiredFunc(url)
	}
	return true, nil
}
