package auth

import (
	"sync"
	"time"
)

// TokenStore is a deny-list: a token absent from the store is still
// active, presence means it was explicitly revoked before its natural
// expiry. Swappable for a shared store when running more than one
// process.
type TokenStore interface {
	Revoke(jti string, until time.Time)
	IsRevoked(jti string) bool
}

// MemoryTokenStore keeps revoked token ids with their expiry timestamps.
// Entries for expired tokens are dropped lazily on write, so the map
// stays bounded by the number of logouts within one token lifetime.
type MemoryTokenStore struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{
		revoked: make(map[string]time.Time),
	}
}

func (s *MemoryTokenStore) Revoke(jti string, until time.Time) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, exp := range s.revoked {
		if exp.Before(now) {
			delete(s.revoked, id)
		}
	}
	s.revoked[jti] = until
}

func (s *MemoryTokenStore) IsRevoked(jti string) bool {
	s.mu.RLock()
	until, ok := s.revoked[jti]
	s.mu.RUnlock()

	return ok && time.Now().Before(until)
}
