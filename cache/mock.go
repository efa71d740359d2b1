package cache

import (
	"fmt"
	"os"
	"time"
)

// MockStorage is a func-field test double for Storage. Unset fields
// behave like an empty cache: Get reports not-found and IsExpired
// reports expired, matching what FileStorage does on a fresh directory.
type MockStorage struct {
	GetFunc       func(key string) (*Entry, error)
	SetFunc       func(key string, content []byte) error
	IsExpiredFunc func(key string, ttl time.Duration) (bool, error)
}

func (m *MockStorage) Get(key string) (*Entry, error) {
	if m.GetFunc != nil {
		return m.GetFunc(key)
	}
	return nil, fmt.Errorf("cache entry not found: %w", os.ErrNotExist)
}

func (m *MockStorage) Set(key string, content []byte) error {
	if m.SetFunc != nil {
		return m.SetFunc(key, content)
	}
	return nil
}

func (m *MockStorage) IsExpired(key string, ttl time.Duration) (bool, error) {
	if m.IsExpiredFunc != nil {
		return m.IsExpiredFunc(key, ttl)
	}
	return true, nil
}
