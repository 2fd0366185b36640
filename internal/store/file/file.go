// Package file persists activities in a single JSON document.
//
// Every operation re-reads the document under a cross-process lockfile, so
// several ecotrack processes may share one file. Writes go through a temp
// file and rename.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/rshade/ecotrack/internal/activity"
	"github.com/rshade/ecotrack/internal/store"
)

// Version is the schema version of the activity document.
const Version = 1

// DefaultFileName is the document name inside the ecotrack home directory.
const DefaultFileName = "activities.json"

const (
	lockRetries  = 50
	lockDelay    = 100 * time.Millisecond
	staleLockAge = 30 * time.Second
)

type document struct {
	Version int                            `json:"version"`
	Users   map[string][]activity.Activity `json:"users"`
}

// Store is an activity store backed by a JSON file.
type Store struct {
	mu   sync.Mutex
	path string
}

// New returns a Store for path. The file is created on first append.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("activity file path cannot be empty")
	}
	return &Store{path: path}, nil
}

// Path returns the document location.
func (s *Store) Path() string {
	return s.path
}

// AppendNext implements store.Store. The lockfile is held from the read
// to the rename of the rewritten document.
func (s *Store) AppendNext(ctx context.Context, userID string, next store.AppendFunc) ([]activity.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.acquireFileLock(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring file lock: %w", err)
	}
	defer unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}

	existing := append([]activity.Activity{}, doc.Users[userID]...)
	added, err := next(existing)
	if err != nil {
		return nil, err
	}
	if err := store.CheckOwner(userID, added); err != nil {
		return nil, err
	}
	if len(added) == 0 {
		return added, nil
	}

	doc.Users[userID] = append(doc.Users[userID], added...)
	if err := s.write(doc); err != nil {
		return nil, err
	}
	return added, nil
}

// QueryByUser implements store.Store.
func (s *Store) QueryByUser(ctx context.Context, userID string) ([]activity.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.acquireFileLock(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring file lock: %w", err)
	}
	defer unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	records := doc.Users[userID]
	if records == nil {
		return []activity.Activity{}, nil
	}
	return records, nil
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// read loads the document. A missing file is an empty document; an
// undecodable one is ErrStoreCorrupted and is never silently replaced.
func (s *Store) read() (document, error) {
	empty := document{Version: Version, Users: make(map[string][]activity.Activity)}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return empty, nil
		}
		return document{}, fmt.Errorf("reading activity file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return document{}, fmt.Errorf("%w: %w", store.ErrStoreCorrupted, err)
	}
	if doc.Version != Version {
		return document{}, fmt.Errorf("%w: unsupported version %d (expected %d)",
			store.ErrStoreCorrupted, doc.Version, Version)
	}
	if doc.Users == nil {
		doc.Users = empty.Users
	}
	return doc, nil
}

func (s *Store) write(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling activities: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("creating activity directory: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing activity temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming activity temp file: %w", err)
	}
	return nil
}

func (s *Store) lockFilePath() string {
	return s.path + ".lock"
}

// acquireFileLock creates the lockfile exclusively, retrying until it is
// free or the context ends. The returned func releases the lock.
func (s *Store) acquireFileLock(ctx context.Context) (func(), error) {
	lockPath := s.lockFilePath()
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}

	for range lockRetries {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			_, _ = fmt.Fprintf(f, "%d", os.Getpid())
			_ = f.Close()
			return func() { _ = os.Remove(lockPath) }, nil
		}

		if removeStaleLock(lockPath, staleLockAge) {
			continue
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockDelay):
		}
	}

	return nil, fmt.Errorf("could not acquire lock on %s after retries", lockPath)
}

// removeStaleLock removes a lockfile older than maxAge whose owner is gone.
// It reports whether the lock was removed.
func removeStaleLock(lockPath string, maxAge time.Duration) bool {
	info, err := os.Stat(lockPath)
	if err != nil || time.Since(info.ModTime()) <= maxAge {
		return false
	}
	if lockHeldByLiveProcess(lockPath) {
		return false
	}
	_ = os.Remove(lockPath)
	return true
}

func lockHeldByLiveProcess(lockPath string) bool {
	data, err := os.ReadFile(lockPath)
	if err != nil || len(data) == 0 {
		return false
	}
	var pid int
	if _, err := fmt.Sscanf(string(data), "%d", &pid); err != nil || pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// Signal 0 probes for existence.
	return proc.Signal(syscall.Signal(0)) == nil
}
