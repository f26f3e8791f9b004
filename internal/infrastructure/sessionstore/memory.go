package sessionstore

import (
	"context"
	"sync"
	"time"
)

// MemoryRevocations keeps revoked tokens in process memory. Entries are
// pruned lazily once they pass their expiry.
type MemoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (m *MemoryRevocations) Revoke(_ context.Context, token string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.revoked[tokenKey(token)] = until
	for key, expiry := range m.revoked {
		if !now.Before(expiry) {
			delete(m.revoked, key)
		}
	}
	return nil
}

func (m *MemoryRevocations) IsRevoked(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.revoked[tokenKey(token)]
	return ok && m.now().Before(until), nil
}
