package cart

import (
	"fmt"
	"sync"
)

// Store persists carts keyed by user id.
type Store interface {
	// Get returns the user's cart or ErrCartNotFound
	Get(userID string) (Cart, error)

	// Put inserts or replaces the user's cart
	Put(c Cart) error
}

// MemoryStore keeps carts in a map.
type MemoryStore struct {
	carts map[string]Cart
	mu    sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]Cart)}
}

func (s *MemoryStore) Get(userID string) (Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[userID]
	if !ok {
		return Cart{}, fmt.Errorf("%w: %s", ErrCartNotFound, userID)
	}
	c.Items = append([]Item{}, c.Items...)
	return c, nil
}

func (s *MemoryStore) Put(c Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Items = append([]Item{}, c.Items...)
	s.carts[c.UserID] = c
	return nil
}
