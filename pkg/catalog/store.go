package catalog

import (
	"fmt"
	"sync"
)

// Store persists trips keyed by code.
type Store interface {
	// List returns every trip in the store
	List() ([]Trip, error)

	// Get returns the trip for code or ErrTripNotFound
	Get(code string) (Trip, error)

	// Put inserts or replaces the trip with the same code
	Put(trip Trip) error

	// Close releases the store
	Close() error
}

// MemoryStore keeps trips in insertion order.
type MemoryStore struct {
	trips  []Trip
	byCode map[string]int
	closed bool
	mu     sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byCode: make(map[string]int)}
}

func (s *MemoryStore) List() ([]Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	out := make([]Trip, len(s.trips))
	copy(out, s.trips)
	return out, nil
}

func (s *MemoryStore) Get(code string) (Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return Trip{}, ErrStoreClosed
	}
	i, ok := s.byCode[code]
	if !ok {
		return Trip{}, fmt.Errorf("%w: %s", ErrTripNotFound, code)
	}
	return s.trips[i], nil
}

func (s *MemoryStore) Put(trip Trip) error {
	if err := trip.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	if i, ok := s.byCode[trip.Code]; ok {
		s.trips[i] = trip
		return nil
	}
	s.byCode[trip.Code] = len(s.trips)
	s.trips = append(s.trips, trip)
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
