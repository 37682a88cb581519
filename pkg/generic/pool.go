// Package generic holds small type-safe wrappers over the standard library.
package generic

import "sync"

// Pool is a typed sync.Pool.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
}

// NewPool creates a pool. reset, when not nil, runs on every value handed
// back with Put.
func NewPool[T any](generate func() T, reset func(T)) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return generate()
			},
		},
		reset: reset,
	}
}

func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

func (p *Pool[T]) Put(value T) {
	if p.reset != nil {
		p.reset(value)
	}
	p.pool.Put(value)
}
