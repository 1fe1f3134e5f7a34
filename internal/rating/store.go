package rating

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Saved is a persisted manual rating for one experiment. Ratings are keyed by
// the sample's index within the successful subsequence that was reviewed.
type Saved struct {
	Ratings  map[int]int `json:"ratings"`
	Accuracy float64     `json:"accuracy"`
}

// Store persists manual ratings to a JSON file, keyed by experiment ID. The
// file acts as a local overlay over server-side experiment records; the
// server never sees manual ratings.
type Store struct {
	mu   sync.Mutex
	path string
	data map[string]Saved
}

// OpenStore loads the overlay file at path, creating an empty store when the
// file does not exist yet.
func OpenStore(path string) (*Store, error) {
	s := &Store{path: path, data: make(map[string]Saved)}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading ratings file: %w", err)
	}
	if len(raw) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("parsing ratings file %s: %w", path, err)
	}
	return s, nil
}

// Get returns the saved rating for an experiment, if any.
func (s *Store) Get(experimentID string) (Saved, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved, ok := s.data[experimentID]
	return saved, ok
}

// All returns a copy of every saved rating keyed by experiment ID.
func (s *Store) All() map[string]Saved {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Saved, len(s.data))
	for id, saved := range s.data {
		out[id] = saved
	}
	return out
}

// Put records a rating for an experiment, replacing any prior rating, and
// writes the overlay file.
func (s *Store) Put(experimentID string, saved Saved) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[experimentID] = saved
	return s.flush()
}

// Delete removes the rating for a single experiment, if present.
func (s *Store) Delete(experimentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[experimentID]; !ok {
		return nil
	}
	delete(s.data, experimentID)
	return s.flush()
}

// Clear discards every saved rating.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]Saved)
	return s.flush()
}

// Len returns the number of experiments with a saved rating.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

func (s *Store) flush() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating ratings directory: %w", err)
		}
	}
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding ratings: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("writing ratings file: %w", err)
	}
	return nil
}
