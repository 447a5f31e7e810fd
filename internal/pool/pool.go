// Package pool implements a recycle pool for one kind of object.
package pool

// Pool hands out idle instances before asking its factory for new ones.
// Growth is unbounded; the idle set only shrinks through Clear.
// Not safe for concurrent use: a pool belongs to the game loop.
type Pool[T any] struct {
	factory func() (T, error)
	reset   func(T)
	idle    []T

	created  int
	acquired int
	recycled int
}

// New creates a pool. reset runs on every recycled instance and may be nil.
func New[T any](factory func() (T, error), reset func(T)) *Pool[T] {
	return &Pool[T]{
		factory: factory,
		reset:   reset,
		idle:    make([]T, 0, 16),
	}
}

// Acquire returns the most recently recycled idle instance, or a fresh one
// from the factory. It fails only when the factory fails.
func (p *Pool[T]) Acquire() (T, error) {
	if n := len(p.idle); n > 0 {
		obj := p.idle[n-1]
		var zero T
		p.idle[n-1] = zero
		p.idle = p.idle[:n-1]
		p.acquired++
		return obj, nil
	}
	obj, err := p.factory()
	if err != nil {
		var zero T
		return zero, err
	}
	p.created++
	p.acquired++
	return obj, nil
}

// Recycle resets obj and returns it to the idle set. Recycling the same
// instance twice is the caller's bug; it is not detected here.
func (p *Pool[T]) Recycle(obj T) {
	if p.reset != nil {
		p.reset(obj)
	}
	p.idle = append(p.idle, obj)
	p.recycled++
}

// Clear drains the idle set, handing each instance to destroy (may be nil).
func (p *Pool[T]) Clear(destroy func(T)) {
	for i, obj := range p.idle {
		if destroy != nil {
			destroy(obj)
		}
		var zero T
		p.idle[i] = zero
	}
	p.idle = p.idle[:0]
}

// Idle is the number of instances ready for reuse.
func (p *Pool[T]) Idle() int { return len(p.idle) }

// Created is the number of instances the factory has produced.
func (p *Pool[T]) Created() int { return p.created }

// Live is acquires minus recycles: instances currently held by callers.
func (p *Pool[T]) Live() int {
	if n := p.acquired - p.recycled; n > 0 {
		return n
	}
	return 0
}
