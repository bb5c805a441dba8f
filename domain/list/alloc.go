package list

import "linkedlist/infra/memory"

// Allocator supplies and reclaims nodes.
// Free is called exactly once for every node Alloc handed out.
type Allocator[V Value] interface {
	Alloc() (*Node[V], error)
	Free(*Node[V])
}

type heapAllocator[V Value] struct{}

func (heapAllocator[V]) Alloc() (*Node[V], error) {
	return &Node[V]{}, nil
}

func (heapAllocator[V]) Free(*Node[V]) {}

// PoolAllocator recycles nodes through a memory.Pool.
type PoolAllocator[V Value] struct {
	pool *memory.Pool[Node[V]]
}

// NewPoolAllocator returns a pooled allocator. A non-zero budget caps
// the number of live nodes across every list sharing the allocator.
func NewPoolAllocator[V Value](budget int64) *PoolAllocator[V] {
	return &PoolAllocator[V]{
		pool: memory.NewBoundedPool(budget, func() *Node[V] {
			return &Node[V]{}
		}),
	}
}

func (a *PoolAllocator[V]) Alloc() (*Node[V], error) {
	return a.pool.Get()
}

func (a *PoolAllocator[V]) Free(n *Node[V]) {
	a.pool.Put(n)
}

// Live reports nodes currently owned by lists.
func (a *PoolAllocator[V]) Live() int64 {
	return a.pool.Live()
}
