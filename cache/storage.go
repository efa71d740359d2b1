package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileStorage keeps each cached playlist as a JSON file under a base
// directory. Playlist URLs carry slashes, queries and credentials, so
// the key is hashed into the filename instead of used directly.
type FileStorage struct {
	baseDir string
}

// NewFileStorage creates the cache directory if needed and returns a
// storage rooted there.
func NewFileStorage(baseDir string) (*FileStorage, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("cache directory cannot be empty")
	}

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &FileStorage{
		baseDir: baseDir,
	}, nil
}

// Get reads the cached playlist stored under key.
func (fs *FileStorage) Get(key string) (*Entry, error) {
	filePath := fs.getFilePath(key)

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("cache entry not found: %w", err)
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}

	return &entry, nil
}

// Set stores a playlist payload under key, replacing any previous
// version and stamping it with the current time.
func (fs *FileStorage) Set(key string, content []byte) error {
	entry := Entry{
		Content:   content,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	filePath := fs.getFilePath(key)

	// The base directory can disappear between runs, for example when
	// it lives under a cleaned tmp dir.
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create cache subdirectory: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}

// IsExpired reports whether the playlist under key is older than ttl.
// A missing entry counts as expired so callers refetch it.
func (fs *FileStorage) IsExpired(key string, ttl time.Duration) (bool, error) {
	entry, err := fs.Get(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return true, nil
		}
		return false, fmt.Errorf("failed to check expiration: %w", err)
	}

	age := time.Since(entry.Timestamp)
	return age > ttl, nil
}

// getFilePath hashes the key into a filesystem-safe filename.
func (fs *FileStorage) getFilePath(key string) string {
	hash := sha256.Sum256([]byte(key))
	filename := hex.EncodeToString(hash[:]) + ".json"
	return filepath.Join(fs.baseDir, filename)
}

// DeriveKeyFromURL maps a playlist source URL to its cache key. The URL
// itself is the key; FileStorage hashes it before touching the disk, so
// no sanitizing is needed here.
func DeriveKeyFromURL(url string) string {
	return url
}
