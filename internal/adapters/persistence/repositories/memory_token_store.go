package repositories

import (
	"context"
	"sync"

	"retail-console/internal/core/domain"
)

// memoryTokenStore keeps the pair in process memory
type memoryTokenStore struct {
	mu     sync.RWMutex
	tokens domain.TokenPair
}

// NewMemoryTokenStore creates an in-memory token store
func NewMemoryTokenStore() TokenStore {
	return &memoryTokenStore{}
}

func (s *memoryTokenStore) Save(_ context.Context, tokens domain.TokenPair) error {
	s.mu.Lock()
	s.tokens = tokens
	s.mu.Unlock()
	return nil
}

func (s *memoryTokenStore) Access(_ context.Context) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens.Access, s.tokens.Access != ""
}

func (s *memoryTokenStore) Refresh(_ context.Context) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens.Refresh, s.tokens.Refresh != ""
}

func (s *memoryTokenStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.tokens = domain.TokenPair{}
	s.mu.Unlock()
	return nil
}
