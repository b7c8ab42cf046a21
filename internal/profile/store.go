package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store persists profiles keyed by user ID. Get reports found=false rather
// than an error for unknown users; errors are reserved for backend failures.
type Store interface {
	Get(ctx context.Context, userID string) (Profile, bool, error)
	Put(ctx context.Context, p Profile) error
	Close() error
}

// MemoryStore keeps profiles in process memory. It is the default backend
// and the one used in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]Profile)}
}

func (s *MemoryStore) Get(_ context.Context, userID string) (Profile, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	return p, ok, nil
}

func (s *MemoryStore) Put(_ context.Context, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserID] = p
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// FileStore persists the whole profile map as one JSON document. Every
// mutation rewrites the file via a temp file and rename, so readers never
// observe a partial write. A missing file on startup is an empty store.
type FileStore struct {
	path string

	mu       sync.Mutex
	profiles map[string]Profile
}

var _ Store = (*FileStore)(nil)

// NewFileStore opens (or initializes) the store at path.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, profiles: make(map[string]Profile)}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("profile: read store %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &s.profiles); err != nil {
		return nil, fmt.Errorf("profile: parse store %s: %w", path, err)
	}
	return s, nil
}

func (s *FileStore) Get(_ context.Context, userID string) (Profile, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	return p, ok, nil
}

func (s *FileStore) Put(_ context.Context, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, hadPrev := s.profiles[p.UserID]
	s.profiles[p.UserID] = p
	if err := s.flushLocked(); err != nil {
		// Keep the in-memory view consistent with the file.
		if hadPrev {
			s.profiles[p.UserID] = prev
		} else {
			delete(s.profiles, p.UserID)
		}
		return err
	}
	return nil
}

func (s *FileStore) flushLocked() error {
	data, err := json.MarshalIndent(s.profiles, "", "  ")
	if err != nil {
		return fmt.Errorf("profile: encode store: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".profiles-*.json")
	if err != nil {
		return fmt.Errorf("profile: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("profile: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("profile: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("profile: replace store %s: %w", s.path, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
