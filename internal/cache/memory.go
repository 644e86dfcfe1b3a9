package cache

import (
	"context"
	"sync"
	"time"

	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
)

type memoryEntry struct {
	breakdown mortgage.PaymentBreakdown
	expiresAt time.Time
}

// Memory is an in-process cache with per-entry expiry. When maxEntries is
// reached the entry closest to expiry is evicted.
type Memory struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[string]memoryEntry
	now        func() time.Time
}

// NewMemory creates a memory cache. maxEntries <= 0 means unbounded.
func NewMemory(ttl time.Duration, maxEntries int) *Memory {
	return &Memory{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]memoryEntry),
		now:        time.Now,
	}
}

// Get returns an unexpired entry.
func (m *Memory) Get(_ context.Context, key string) (mortgage.PaymentBreakdown, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return mortgage.PaymentBreakdown{}, false
	}
	if !m.now().Before(entry.expiresAt) {
		delete(m.entries, key)
		return mortgage.PaymentBreakdown{}, false
	}
	return entry.breakdown, true
}

// Set stores b under key.
func (m *Memory) Set(_ context.Context, key string, b mortgage.PaymentBreakdown) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if _, exists := m.entries[key]; !exists && m.maxEntries > 0 && len(m.entries) >= m.maxEntries {
		m.cleanExpiredLocked(now)
		if len(m.entries) >= m.maxEntries {
			m.evictOldestLocked()
		}
	}

	m.entries[key] = memoryEntry{breakdown: b, expiresAt: now.Add(m.ttl)}
	return nil
}

// Size returns the number of stored entries, expired or not.
func (m *Memory) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// CleanExpired removes expired entries and returns how many were removed.
func (m *Memory) CleanExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cleanExpiredLocked(m.now())
}

// StartCleanup removes expired entries every interval until ctx is done.
func (m *Memory) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.CleanExpired()
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *Memory) cleanExpiredLocked(now time.Time) int {
	removed := 0
	for key, entry := range m.entries {
		if !now.Before(entry.expiresAt) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

func (m *Memory) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for key, entry := range m.entries {
		if oldestKey == "" || entry.expiresAt.Before(oldest) {
			oldestKey, oldest = key, entry.expiresAt
		}
	}
	delete(m.entries, oldestKey)
}
