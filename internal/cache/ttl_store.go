// Package cache provides an in-memory key/value store with per-entry expiry.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLStore is an in-memory store whose entries expire after a fixed TTL.
// Expired entries are invisible to reads and are removed by Sweep.
// It is safe for concurrent use.
type TTLStore[K comparable, V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[K]entry[V]
}

// Option configures a TTLStore.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// NewTTLStore creates a store whose entries live for ttl.
func NewTTLStore[K comparable, V any](ttl time.Duration, opts ...Option) *TTLStore[K, V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &TTLStore[K, V]{
		ttl:     ttl,
		now:     o.now,
		entries: make(map[K]entry[V]),
	}
}

// Get returns the live value for key.
func (s *TTLStore[K, V]) Get(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || !s.now().Before(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with a fresh TTL.
func (s *TTLStore[K, V]) Set(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry[V]{value: value, expiresAt: s.now().Add(s.ttl)}
}

// Update atomically replaces the value under key with fn(current, found)
// and returns the new value with its expiry.
// An expired entry is reported as not found and its expiry is renewed;
// a live entry keeps its original expiry.
func (s *TTLStore[K, V]) Update(key K, fn func(current V, found bool) V) (V, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.entries[key]
	if !ok || !now.Before(e.expiresAt) {
		var zero V
		e = entry[V]{value: fn(zero, false), expiresAt: now.Add(s.ttl)}
		s.entries[key] = e
		return e.value, e.expiresAt
	}

	e.value = fn(e.value, true)
	s.entries[key] = e
	return e.value, e.expiresAt
}

// ExpiresAt returns when the entry under key expires.
func (s *TTLStore[K, V]) ExpiresAt(key K) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return time.Time{}, false
	}
	return e.expiresAt, true
}

// Delete removes key.
func (s *TTLStore[K, V]) Delete(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
}

// Sweep removes every entry expired at now and returns how many were removed.
func (s *TTLStore[K, V]) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (s *TTLStore[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}
