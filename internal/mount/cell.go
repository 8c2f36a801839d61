package mount

import "sync"

// guardedCell is a mutex-protected container holding a single value of type
// T. Reads and writes are whole-value copies; callers never see a partially
// written value and never hold the lock across more than one operation.
type guardedCell[T any] struct {
	mu    sync.Mutex
	value T
}

func newGuardedCell[T any](initial T) *guardedCell[T] {
	return &guardedCell[T]{value: initial}
}

func (c *guardedCell[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

func (c *guardedCell[T]) Set(v T) {
	c.mu.Lock()
	c.value = v
	c.mu.Unlock()
}

// Swap stores v and returns the previous value.
func (c *guardedCell[T]) Swap(v T) T {
	c.mu.Lock()
	prev := c.value
	c.value = v
	c.mu.Unlock()
	return prev
}
