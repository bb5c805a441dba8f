package list

import (
	"fmt"
	"io"
	"iter"
	"strings"
)

// List is a handle to the head of a non-empty chain of nodes.
type List[V Value] struct {
	head  *Node[V]
	alloc Allocator[V]
}

// Action is applied to every value by ForEach.
type Action[V Value] func(V)

// Visitor is the single-method form of Action.
type Visitor[V Value] interface {
	Visit(V)
}

// Visit lets an Action be used where a Visitor is expected.
func (f Action[V]) Visit(v V) {
	f(v)
}

// New creates a single-node list holding v on the heap.
func New[V Value](v V) (*List[V], error) {
	return NewWithAllocator[V](nil, v)
}

// NewWithAllocator creates a single-node list whose nodes come from a.
// A nil allocator means the heap.
func NewWithAllocator[V Value](a Allocator[V], v V) (*List[V], error) {
	if a == nil {
		a = heapAllocator[V]{}
	}
	head, err := allocNode(a, v)
	if err != nil {
		return nil, fmt.Errorf("construct: %w", err)
	}
	return &List[V]{head: head, alloc: a}, nil
}

// FromValues builds a list holding vs in order.
func FromValues[V Value](vs ...V) (*List[V], error) {
	return FromValuesWithAllocator[V](nil, vs...)
}

// FromValuesWithAllocator is FromValues with nodes taken from a.
// On failure every node already allocated is released.
func FromValuesWithAllocator[V Value](a Allocator[V], vs ...V) (*List[V], error) {
	if len(vs) == 0 {
		return nil, ErrEmpty
	}
	l, err := NewWithAllocator(a, vs[0])
	if err != nil {
		return nil, err
	}
	for _, v := range vs[1:] {
		if err := l.Append(v); err != nil {
			l.Release()
			return nil, err
		}
	}
	return l, nil
}

// Head returns the first node.
func (l *List[V]) Head() *Node[V] {
	return l.head
}

// Len counts the nodes from head to tail, head included.
func (l *List[V]) Len() int {
	n := 0
	for cur := l.head; cur != nil; cur = cur.next {
		n++
	}
	return n
}

// Append links a new node holding v after the current tail.
// The node is allocated before anything is linked, so a failed
// allocation leaves the list as it was.
func (l *List[V]) Append(v V) error {
	tail := l.head
	for tail.next != nil {
		tail = tail.next
	}

	n, err := allocNode(l.alloc, v)
	if err != nil {
		return fmt.Errorf("append: %w", err)
	}
	tail.next = n
	return nil
}

// ForEach calls action once per value, head first.
func (l *List[V]) ForEach(action Action[V]) {
	for cur := l.head; cur != nil; cur = cur.next {
		action(cur.value)
	}
}

// Visit is ForEach for a Visitor.
func (l *List[V]) Visit(v Visitor[V]) {
	l.ForEach(v.Visit)
}

// All returns an iterator over the values, head first.
func (l *List[V]) All() iter.Seq[V] {
	return func(yield func(V) bool) {
		for cur := l.head; cur != nil; cur = cur.next {
			if !yield(cur.value) {
				return
			}
		}
	}
}

// Values copies the values into a slice.
func (l *List[V]) Values() []V {
	out := make([]V, 0, 8)
	l.ForEach(func(v V) {
		out = append(out, v)
	})
	return out
}

// String renders every value as a character.
func (l *List[V]) String() string {
	var sb strings.Builder
	l.ForEach(PrintAsChar[V](&sb))
	return sb.String()
}

// Release returns every node to the allocator, head to tail.
// The list must not be used afterwards.
func (l *List[V]) Release() {
	cur := l.head
	l.head = nil
	for cur != nil {
		next := cur.next
		cur.next = nil
		l.alloc.Free(cur)
		cur = next
	}
}

// PrintAsChar returns an Action writing each value to w as one
// character. Write errors are dropped.
func PrintAsChar[V Value](w io.Writer) Action[V] {
	return func(v V) {
		_, _ = w.Write([]byte{byte(v)})
	}
}

func allocNode[V Value](a Allocator[V], v V) (*Node[V], error) {
	n, err := a.Alloc()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAllocationFailure, err)
	}
	n.value = v
	n.next = nil
	return n, nil
}
