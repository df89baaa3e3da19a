package revocation

import (
	"context"
	"sync"
	"time"
)

// MemoryList is a process-local revocation list for tests and single-instance
// deployments. Expired entries are pruned lazily on lookup.
type MemoryList struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
}

func NewMemoryList() *MemoryList {
	return &MemoryList{revoked: make(map[string]time.Time)}
}

func (l *MemoryList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.revoked[jti] = time.Now().Add(ttl)
	return nil
}

func (l *MemoryList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}

	l.mu.RLock()
	expiry, ok := l.revoked[jti]
	l.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		l.mu.Lock()
		delete(l.revoked, jti)
		l.mu.Unlock()
		return false, nil
	}
	return true, nil
}
