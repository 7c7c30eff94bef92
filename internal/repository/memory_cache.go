package repository

import (
	"context"
	"sync"
	"time"

	"github.com/fakhrymubarak/weather-forecast-redis/internal/model"
)

type memoryEntry struct {
	payload   model.ForecastPayload
	expiresAt time.Time
}

// MemoryForecastCache is an in-process ForecastCache. Entries expire passively on
// read; StartJanitor adds an optional background sweep.
type MemoryForecastCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryForecastCache() *MemoryForecastCache {
	return &MemoryForecastCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryForecastCache) Get(_ context.Context, key string) (model.ForecastPayload, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || !m.now().Before(entry.expiresAt) {
		return nil, false, nil
	}
	return clonePayload(entry.payload), true, nil
}

func (m *MemoryForecastCache) Set(_ context.Context, key string, payload model.ForecastPayload, ttl time.Duration) error {
	stored := clonePayload(payload)
	m.mu.Lock()
	m.entries[key] = memoryEntry{payload: stored, expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

// clonePayload keeps stored entries independent of the caller's slices.
func clonePayload(payload model.ForecastPayload) model.ForecastPayload {
	out := make(model.ForecastPayload, len(payload))
	copy(out, payload)
	return out
}

func (m *MemoryForecastCache) Ping(context.Context) error {
	return nil
}

// TTL returns the remaining lifetime of key, or 0 if it is absent or expired.
func (m *MemoryForecastCache) TTL(key string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[key]
	if !ok {
		return 0
	}
	if left := entry.expiresAt.Sub(m.now()); left > 0 {
		return left
	}
	return 0
}

// Len counts stored entries, expired ones included until they are swept.
func (m *MemoryForecastCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Sweep removes every expired entry and returns how many were dropped.
func (m *MemoryForecastCache) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for key, entry := range m.entries {
		if !now.Before(entry.expiresAt) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

// StartJanitor sweeps expired entries every interval until ctx is done.
func (m *MemoryForecastCache) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Sweep()
			}
		}
	}()
}

var _ ForecastCache = (*MemoryForecastCache)(nil)
