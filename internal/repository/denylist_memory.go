package repository

import (
	"context"
	"sync"
	"time"
)

// memoryDenylist is a process-local TokenDenylist for local mode and tests,
// where a Redis instance is not available.
type memoryDenylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

// NewMemoryDenylist creates an in-process TokenDenylist.
func NewMemoryDenylist() TokenDenylist {
	return &memoryDenylist{entries: map[string]time.Time{}}
}

func (d *memoryDenylist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[jti] = time.Now().Add(ttl)
	return nil
}

func (d *memoryDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	exp, ok := d.entries[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(exp) {
		delete(d.entries, jti)
		return false, nil
	}
	return true, nil
}

func (d *memoryDenylist) Close() error { return nil }
