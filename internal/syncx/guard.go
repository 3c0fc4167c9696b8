// Package syncx provides extended synchronization primitives
package syncx

import "sync"

// Guard wraps RWMutex around a single value with scoped lock helpers.
type Guard[T any] struct {
	mu    sync.RWMutex
	value T
}

// NewGuard creates a guarded value.
func NewGuard[T any](initial T) *Guard[T] {
	return &Guard[T]{value: initial}
}

// With executes fn while holding the read lock.
func (g *Guard[T]) With(fn func(T)) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	fn(g.value)
}

// Update executes fn while holding the write lock, fn receives pointer for mutation.
func (g *Guard[T]) Update(fn func(*T)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(&g.value)
}

// Get returns a copy of the value (T should be value type or immutable).
func (g *Guard[T]) Get() T {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.value
}

// Set atomically replaces the value.
func (g *Guard[T]) Set(v T) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.value = v
}

// Swap atomically replaces and returns old value.
func (g *Guard[T]) Swap(v T) T {
	g.mu.Lock()
	defer g.mu.Unlock()
	old := g.value
	g.value = v
	return old
}

// CompareAndClear resets the value to zero only if match reports true for
// the current value. It returns whether the value was cleared.
func (g *Guard[T]) CompareAndClear(match func(T) bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !match(g.value) {
		return false
	}
	var zero T
	g.value = zero
	return true
}
