// Package store persists custom metric definitions as a single JSON file
// keyed by metric id. Writes go through a temp file and an atomic rename
// so a crashed write never corrupts the saved set.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

type Store struct {
	path string
	mu   sync.RWMutex
}

func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &Store{path: path}, nil
}

// load reads the whole file. A missing or unreadable file is treated as an
// empty set, matching how the dashboard always behaved.
func (s *Store) load() map[string]json.RawMessage {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return map[string]json.RawMessage{}
	}
	out := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &out); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("metrics file unreadable, starting empty")
		return map[string]json.RawMessage{}
	}
	return out
}

func (s *Store) write(metrics map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".metrics-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Get returns the raw definition for id, or false when absent.
func (s *Store) Get(id string, v interface{}) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.load()[id]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, v)
}

// List calls decode for every saved definition in id order.
func (s *Store) List(decode func(id string, raw json.RawMessage) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	metrics := s.load()
	ids := make([]string, 0, len(metrics))
	for id := range metrics {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := decode(id, metrics[id]); err != nil {
			return err
		}
	}
	return nil
}

// Put saves or replaces the definition under id.
func (s *Store) Put(id string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	metrics := s.load()
	metrics[id] = raw
	return s.write(metrics)
}

// Delete removes id; reports whether it was present.
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	metrics := s.load()
	if _, ok := metrics[id]; !ok {
		return false, nil
	}
	delete(metrics, id)
	return true, s.write(metrics)
}
