// Package lock provides the per-slot advisory lock the scheduling engine
// serializes mutating operations with. The uniqueness constraints in the
// store remain the final arbiter; the lock only narrows the race window.
package lock

import (
	"context"
	"sync"
	"time"
)

type Locker interface {
	// Lock tries to take the key; false means another holder has it.
	Lock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// KeyMutex is a process-local Locker used when no Redis address is
// configured, and in tests. Entries expire by TTL so a crashed request
// cannot wedge a key.
type KeyMutex struct {
	mu   sync.Mutex
	held map[string]time.Time
}

func NewKeyMutex() *KeyMutex {
	return &KeyMutex{held: make(map[string]time.Time)}
}

func (m *KeyMutex) Lock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if until, ok := m.held[key]; ok && time.Now().Before(until) {
		return false, nil
	}
	m.held[key] = time.Now().Add(ttl)
	return true, nil
}

func (m *KeyMutex) Unlock(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.held, key)
	return nil
}
