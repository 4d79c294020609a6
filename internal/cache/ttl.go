// Package cache provides the in-memory TTL stores that keep derived game
// state warm between completion exchanges. Nothing here survives a process
// restart; every entry is rebuildable from the next game snapshot.
package cache

import (
	"sync"
	"time"

	"github.com/bnema/tablemind/internal/ports"
)

type entry[V any] struct {
	value     V
	writtenAt time.Time
}

// TTL is a keyed store where every entry shares the instance's time-to-live.
// A Get on an absent or expired key is the same miss signal; callers follow
// the miss with a recompute-and-Put. Safe for concurrent use.
type TTL[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]entry[V]
	ttl     time.Duration
	clock   ports.Clock
}

func NewTTL[K comparable, V any](ttl time.Duration, clock ports.Clock) *TTL[K, V] {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &TTL[K, V]{
		entries: make(map[K]entry[V]),
		ttl:     ttl,
		clock:   clock,
	}
}

// Get returns the live value for key. Expired entries read as misses; they
// are physically removed by Sweep, not here.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.clock.Now().Sub(e.writtenAt) > c.ttl {
		var zero V
		return zero, false
	}

	return e.value, true
}

// Put stores value under key, unconditionally overwriting any prior entry
// and resetting its age.
func (c *TTL[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{value: value, writtenAt: c.clock.Now()}
}

// Sweep removes every entry past its TTL and returns how many were removed.
func (c *TTL[K, V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	removed := 0
	for key, e := range c.entries {
		if now.Sub(e.writtenAt) > c.ttl {
			delete(c.entries, key)
			removed++
		}
	}

	return removed
}

// Len counts all stored entries, expired ones included until swept.
func (c *TTL[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
