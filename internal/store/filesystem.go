package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileSystemStore keeps every key in a single JSON object on disk:
//
//	<root>/
//	  storage.json   {"settings": {...}, "activityLog": [...]}
//
// Writes replace the file atomically (temp file + rename).
type FileSystemStore struct {
	root string
	path string
	mu   sync.Mutex
}

// NewFileSystemStore creates a store rooted at the given directory.
func NewFileSystemStore(root string) (*FileSystemStore, error) {
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileSystemStore{root: root, path: filepath.Join(root, "storage.json")}, nil
}

// Get reads the requested keys from the storage file.
func (s *FileSystemStore) Get(_ context.Context, keys ...string) (map[string]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll()
	if err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage, len(keys))
	for _, k := range keys {
		if v, ok := all[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

// Set merges values into the storage file.
func (s *FileSystemStore) Set(_ context.Context, values map[string]json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll()
	if err != nil {
		return err
	}
	for k, v := range values {
		all[k] = v
	}
	data, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("encoding storage file: %w", err)
	}
	return s.writeFile(data)
}

// Close is a no-op; every Set is already on disk.
func (s *FileSystemStore) Close() error { return nil }

func (s *FileSystemStore) readAll() (map[string]json.RawMessage, error) {
	all := make(map[string]json.RawMessage)
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return all, nil
		}
		return nil, fmt.Errorf("failed to read storage file: %w", err)
	}
	if len(data) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("failed to parse storage file %s: %w", s.path, err)
	}
	return all, nil
}

// writeFile writes data using atomic write (temp file + rename).
func (s *FileSystemStore) writeFile(data []byte) error {
	// Create temp file in the same directory to ensure atomic rename works
	tmpFile, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileSystemStore implements Store
var _ Store = (*FileSystemStore)(nil)
