package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mitchellh/go-homedir"
)

// storeFile is the on-disk layout: one record per device fingerprint.
type storeFile struct {
	Customers map[string]Record `json:"customers"`
}

// FileStore persists session records in a single JSON file keyed by
// fingerprint. Saves are atomic (temp file + rename) and the whole
// read-modify-write sequence is serialized, so concurrent refreshes for the
// same fingerprint cannot interleave partial writes.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store at the given path, expanding a leading ~ and
// creating parent directories as needed.
func NewFileStore(path string) (*FileStore, error) {
	expandedPath, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand store path: %w", err)
	}

	dir := filepath.Dir(expandedPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	return &FileStore{path: expandedPath}, nil
}

// Load returns the record for a fingerprint, or ErrNotFound.
func (s *FileStore) Load(fingerprint string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.read()
	if err != nil {
		return Record{}, err
	}

	rec, ok := file.Customers[fingerprint]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// Save overwrites the record for its fingerprint, leaving other fingerprints'
// records untouched.
func (s *FileStore) Save(record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.read()
	if err != nil {
		return err
	}

	file.Customers[record.Fingerprint] = record

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session records: %w", err)
	}

	// Write to a temp file first so a cancelled process never leaves a
	// half-written store behind.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write session records: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace session records: %w", err)
	}

	return nil
}

// read loads the store file; a missing file is an empty store.
func (s *FileStore) read() (storeFile, error) {
	file := storeFile{Customers: make(map[string]Record)}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return file, nil
		}
		return file, fmt.Errorf("failed to read session records: %w", err)
	}

	if err := json.Unmarshal(data, &file); err != nil {
		return file, fmt.Errorf("failed to unmarshal session records: %w", err)
	}
	if file.Customers == nil {
		file.Customers = make(map[string]Record)
	}
	return file, nil
}
