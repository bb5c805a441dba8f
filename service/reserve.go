package service

import (
	"fmt"

	"linkedlist/domain/list"
)

// reserver hands out at most one node taken ahead of a mutation, so the
// allocation can be checked before the mutation is logged. It wraps the
// allocator every list of the service shares and is used under s.mu.
type reserver struct {
	list.Allocator[int16]
	held *list.Node[int16]
}

func newReserver(a list.Allocator[int16]) *reserver {
	if a == nil {
		a = heap{}
	}
	return &reserver{Allocator: a}
}

// reserve takes a node from the underlying allocator and keeps it for
// the next Alloc.
func (r *reserver) reserve() error {
	if r.held != nil {
		return nil
	}
	n, err := r.Allocator.Alloc()
	if err != nil {
		return fmt.Errorf("%w: %w", list.ErrAllocationFailure, err)
	}
	r.held = n
	return nil
}

// cancel returns a reserved node that was not used.
func (r *reserver) cancel() {
	if r.held != nil {
		r.Allocator.Free(r.held)
		r.held = nil
	}
}

func (r *reserver) Alloc() (*list.Node[int16], error) {
	if n := r.held; n != nil {
		r.held = nil
		return n, nil
	}
	return r.Allocator.Alloc()
}

type heap struct{}

func (heap) Alloc() (*list.Node[int16], error) { return new(list.Node[int16]), nil }

func (heap) Free(*list.Node[int16]) {}
