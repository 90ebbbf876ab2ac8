package store

import (
	"fmt"
	"log"
	"sync"
)

// Store holds face records in insertion order and persists the full sequence
// to a snapshot file after every mutation. All operations are safe for
// concurrent use; a single RWMutex guards the record sequence.
type Store struct {
	mu      sync.RWMutex
	path    string
	records []FaceRecord
}

// Open creates a store backed by the snapshot file at path and loads any
// existing snapshot. A missing or corrupt snapshot is logged and the store
// starts empty; construction never fails.
func Open(path string) *Store {
	s := &Store{path: path}
	if err := s.Load(); err != nil {
		log.Printf("store: %v, starting with empty store", err)
	}
	return s
}

// Load replaces the in-memory records with the snapshot contents.
// A missing snapshot file yields an empty store and no error.
func (s *Store) Load() error {
	records, err := readSnapshot(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()

	if len(records) > 0 {
		log.Printf("store: loaded %d face encodings from %s", len(records), s.path)
	}
	return nil
}

// Add stores the first encoding from the encoder output together with the
// user's metadata and persists the store. It returns false when the encoder
// detected no face; that is the ordinary negative outcome, not an error.
// A failed snapshot write rolls the append back and is returned to the caller.
func (s *Store) Add(encodings [][]float32, userID string, metadata map[string]string) (bool, error) {
	if len(encodings) == 0 {
		return false, nil
	}
	if len(encodings) > 1 {
		log.Printf("store: %d faces detected, using the first one", len(encodings))
	}
	encoding := encodings[0]

	meta := cloneMetadata(metadata)
	meta[KeyUserID] = userID

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) > 0 && len(encoding) != len(s.records[0].Encoding) {
		return false, fmt.Errorf("adding face for user %s: %w", userID, ErrDimensionMismatch)
	}

	s.records = append(s.records, FaceRecord{Encoding: encoding, Metadata: meta})

	if err := writeSnapshot(s.path, s.records); err != nil {
		// Roll back so memory never disagrees with the last durable snapshot.
		s.records = s.records[:len(s.records)-1]
		return false, fmt.Errorf("persisting store after add: %w", err)
	}
	return true, nil
}

// Identify compares the first encoding from the encoder output against every
// stored record and returns the globally nearest one, provided its Euclidean
// distance is within tolerance. Ties break toward the first-stored record.
// Returns nil when no face was detected, the store is empty, or the nearest
// record is outside tolerance.
func (s *Store) Identify(encodings [][]float32, tolerance float64) *Match {
	if len(encodings) == 0 {
		return nil
	}
	if len(encodings) > 1 {
		log.Printf("store: %d faces detected, using the first one", len(encodings))
	}
	query := encodings[0]

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return nil
	}

	bestIndex := -1
	bestDistance := 0.0
	for i := range s.records {
		d := EuclideanDistance(query, s.records[i].Encoding)
		// Strict less-than keeps the lowest insertion index on ties.
		if bestIndex == -1 || d < bestDistance {
			bestIndex = i
			bestDistance = d
		}
	}

	if bestDistance > tolerance {
		return nil
	}

	return &Match{
		Metadata:   cloneMetadata(s.records[bestIndex].Metadata),
		Distance:   bestDistance,
		Confidence: 1 - bestDistance,
	}
}

// Delete removes every record whose user_id equals userID and persists the
// store. It reports whether at least one record was removed; when nothing
// matches the store is left untouched and no snapshot is written.
func (s *Store) Delete(userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]FaceRecord, 0, len(s.records))
	for _, r := range s.records {
		if r.Metadata[KeyUserID] != userID {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(s.records) {
		return false, nil
	}

	previous := s.records
	s.records = kept

	if err := writeSnapshot(s.path, s.records); err != nil {
		s.records = previous
		return false, fmt.Errorf("persisting store after delete: %w", err)
	}

	log.Printf("store: deleted %d face(s) for user_id %s", len(previous)-len(kept), userID)
	return true, nil
}

// Clear removes all records unconditionally and persists the empty snapshot.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.records
	s.records = nil

	if err := writeSnapshot(s.path, s.records); err != nil {
		s.records = previous
		return fmt.Errorf("persisting store after clear: %w", err)
	}
	return nil
}

// List returns an independent copy of all stored metadata in insertion order.
// Encodings are never exposed.
func (s *Store) List() []map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]map[string]string, len(s.records))
	for i, r := range s.records {
		out[i] = cloneMetadata(r.Metadata)
	}
	return out
}

// Count returns the number of stored records.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
