package memory

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrExhausted is returned by Get when the pool's budget is spent.
var ErrExhausted = errors.New("memory: pool budget exhausted")

// Pool is a typed object pool.
// Objects handed out by Get are counted as live until they come back through Put.
// A non-zero budget caps the number of live objects.
type Pool[T any] struct {
	p      *sync.Pool
	live   atomic.Int64
	budget int64
}

func NewPool[T any](ctor func() *T) *Pool[T] {
	return NewBoundedPool(0, ctor)
}

// NewBoundedPool creates a pool that refuses to hand out more than budget
// live objects. A budget of 0 means unbounded.
func NewBoundedPool[T any](budget int64, ctor func() *T) *Pool[T] {
	return &Pool[T]{
		p: &sync.Pool{
			New: func() any { return ctor() },
		},
		budget: budget,
	}
}

func (p *Pool[T]) Get() (*T, error) {
	if n := p.live.Add(1); p.budget > 0 && n > p.budget {
		p.live.Add(-1)
		return nil, ErrExhausted
	}
	return p.p.Get().(*T), nil
}

func (p *Pool[T]) Put(v *T) {
	if v == nil {
		return
	}
	p.live.Add(-1)
	var zero T
	*v = zero
	p.p.Put(v)
}

// Live reports objects currently handed out.
func (p *Pool[T]) Live() int64 {
	return p.live.Load()
}
