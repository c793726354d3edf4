// Package kvstore is the persistence layer for cart and wishlist
// blobs: a string key/value store with a change-notification channel.
// The memory backend covers a single process; the Redis backend adds
// cross-process notifications via pub/sub.
package kvstore

import (
	"context"
	"sync"
)

// Store is a persistent string key/value store with change
// notifications. Subscribers receive the changed key name only and
// are expected to re-read the store.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	// Subscribe registers fn for changes to key. The returned
	// function unsubscribes. fn runs on the notifying goroutine and
	// must return promptly. Which changes are delivered is
	// backend-specific: the memory backend notifies on every local
	// write (and the writer's goroutine is the notifying goroutine,
	// so fn must not call back into the writer), the Redis backend
	// only on writes made by other processes.
	Subscribe(key string, fn func(key string)) (unsubscribe func())
}

// Memory is an in-process Store. Mutations are serialized by a single
// writer lock; subscriber fanout happens after the write settles.
type Memory struct {
	mu     sync.RWMutex
	data   map[string]string
	subs   map[string]map[int]func(string)
	nextID int
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]string),
		subs: make(map[string]map[int]func(string)),
	}
}

// Get returns the value for key and whether it exists.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set stores value under key and notifies subscribers.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.data[key] = value
	fns := m.subscribers(key)
	m.mu.Unlock()

	for _, fn := range fns {
		fn(key)
	}
	return nil
}

// Remove deletes key and notifies subscribers.
func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	fns := m.subscribers(key)
	m.mu.Unlock()

	for _, fn := range fns {
		fn(key)
	}
	return nil
}

// Subscribe registers fn for changes to key.
func (m *Memory) Subscribe(key string, fn func(string)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.subs[key] == nil {
		m.subs[key] = make(map[int]func(string))
	}
	id := m.nextID
	m.nextID++
	m.subs[key][id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs[key], id)
	}
}

// subscribers snapshots the callbacks for key; caller holds mu.
func (m *Memory) subscribers(key string) []func(string) {
	fns := make([]func(string), 0, len(m.subs[key]))
	for _, fn := range m.subs[key] {
		fns = append(fns, fn)
	}
	return fns
}
