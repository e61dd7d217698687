// Package store provides bounded local persistence for conversation state.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var (
	// ErrQuotaExceeded is returned when a write would push the store past
	// its byte quota. Callers degrade the payload and retry.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrNotFound is returned when a key has no stored value.
	ErrNotFound = errors.New("key not found")
)

// KV is a small size-constrained key/value store.
type KV interface {
	Set(key string, value []byte) error
	Get(key string) ([]byte, error)
	Delete(key string) error
}

// FileKV stores each key as a JSON file under a directory, enforcing a
// total byte quota across all keys. Quota 0 means unlimited.
type FileKV struct {
	dir   string
	quota int64
	mu    sync.Mutex
}

// NewFileKV creates a file-backed store rooted at dir.
func NewFileKV(dir string, quota int64) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return &FileKV{dir: dir, quota: quota}, nil
}

// Dir returns the backing directory.
func (kv *FileKV) Dir() string {
	return kv.dir
}

// Set writes value under key atomically (temp file + rename). The write is
// rejected with ErrQuotaExceeded when the resulting total store size would
// exceed the quota.
func (kv *FileKV) Set(key string, value []byte) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	if kv.quota > 0 {
		used, err := kv.usedExcept(key)
		if err != nil {
			return err
		}
		if used+int64(len(value)) > kv.quota {
			return ErrQuotaExceeded
		}
	}

	path := kv.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to commit %s: %w", key, err)
	}
	return nil
}

// Get reads the value stored under key.
func (kv *FileKV) Get(key string) ([]byte, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	data, err := os.ReadFile(kv.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Delete removes the value stored under key. Missing keys are a no-op.
func (kv *FileKV) Delete(key string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	if err := os.Remove(kv.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (kv *FileKV) path(key string) string {
	return filepath.Join(kv.dir, key+".json")
}

// usedExcept sums the stored bytes of every key other than skip.
func (kv *FileKV) usedExcept(skip string) (int64, error) {
	entries, err := os.ReadDir(kv.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to scan data dir: %w", err)
	}

	var used int64
	skipName := skip + ".json"
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" || entry.Name() == skipName {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		used += info.Size()
	}
	return used, nil
}
