// Package cache stores downloaded playlist payloads so imports keep
// working while the source is unreachable and repeated imports of the
// same URL do not hit the network.
package cache

import "time"

// Storage is the contract the playlist fetcher caches through. Keys are
// playlist source URLs, derived with DeriveKeyFromURL.
type Storage interface {
	// Get returns the entry stored under key, or an error wrapping
	// os.ErrNotExist when nothing is cached yet.
	Get(key string) (*Entry, error)

	// Set stores content under key, stamping it with the current time.
	Set(key string, content []byte) error

	// IsExpired reports whether the entry under key is older than ttl.
	// A missing entry counts as expired.
	IsExpired(key string, ttl time.Duration) (bool, error)
}

// Entry is one cached playlist payload and the time it was fetched.
type Entry struct {
	Content   []byte    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
