// Package localstore is a small synchronous key/value store backed by a
// JSON file. It carries timer and idle state across restarts on a single
// device. It is deliberately forgiving: if the file cannot be read or
// written the store keeps working in memory for the rest of the session
// and never surfaces an error to callers.
package localstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

type Store struct {
	mu   sync.Mutex
	path string // empty means memory-only
	vals map[string]string
}

// Open loads the store at path, creating parent directories as needed.
// Any failure to read or parse the existing file leaves the store empty;
// Open never fails.
func Open(path string) *Store {
	s := &Store{path: path, vals: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var vals map[string]string
	if err := json.Unmarshal(data, &vals); err != nil {
		return s
	}
	s.vals = vals
	return s
}

// Memory returns a store with no file backing, used in tests and as the
// degraded mode when no usable path exists.
func Memory() *Store {
	return &Store{vals: make(map[string]string)}
}

func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vals[key]
	return v, ok
}

func (s *Store) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vals[key] = value
	s.flush()
}

func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.vals, key)
	s.flush()
}

// flush writes the file best-effort. Called with the lock held. Write
// failures are swallowed: in-memory state remains authoritative and the
// next Set tries again.
func (s *Store) flush() {
	if s.path == "" {
		return
	}
	data, err := json.MarshalIndent(s.vals, "", "  ")
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return
	}
	_ = os.WriteFile(s.path, data, 0o644)
}

// DefaultStatePath returns ~/.config/timekeep/state.json
func DefaultStatePath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "timekeep", "state.json"), nil
}
