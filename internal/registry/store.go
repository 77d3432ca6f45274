// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Workspace record persistence

package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

const (
	recordsFile = "workspaces.yaml"
	lockFile    = "registry.lock"
)

// Store persists workspace records as a yaml list. Mutations happen under
// an exclusive file lock and land via temp-file rename, so a crash mid-write
// never leaves a half-written record.
type Store struct {
	dir  string
	lock *flock.Flock
}

// NewStore creates a store rooted at the configuration directory
func NewStore(dir string) *Store {
	return &Store{
		dir:  dir,
		lock: flock.New(filepath.Join(dir, lockFile)),
	}
}

// Path returns the records file location
func (s *Store) Path() string {
	return filepath.Join(s.dir, recordsFile)
}

// Load reads all workspace records in creation order.
// A missing records file yields an empty list.
func (s *Store) Load() ([]*Workspace, error) {
	data, err := os.ReadFile(s.Path())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read workspace records: %w", err)
	}

	var records []*Workspace
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse workspace records: %w", err)
	}

	return records, nil
}

// Save atomically replaces the records file
func (s *Store) Save(records []*Workspace) error {
	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to serialize workspace records: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, recordsFile+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp records file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write workspace records: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp records file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.Path()); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace workspace records: %w", err)
	}

	return nil
}

// Acquire takes the exclusive registry lock. The returned release function
// must be called once the mutation is complete.
func (s *Store) Acquire() (func(), error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create registry directory: %w", err)
	}

	if err := s.lock.Lock(); err != nil {
		return nil, fmt.Errorf("failed to acquire registry lock: %w", err)
	}

	return func() { _ = s.lock.Unlock() }, nil
}

// TryAcquire takes the registry lock without blocking. It reports false
// when another invocation holds the lock.
func (s *Store) TryAcquire() (func(), bool, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, false, fmt.Errorf("failed to create registry directory: %w", err)
	}

	ok, err := s.lock.TryLock()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire registry lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	return func() { _ = s.lock.Unlock() }, true, nil
}
