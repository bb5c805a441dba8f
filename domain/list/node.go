package list

// Value is the set of scalar kinds a list can hold.
type Value interface {
	~int8 | ~uint8 | ~int16
}

// Node holds one value and the link to its successor.
// A nil successor marks the tail.
type Node[V Value] struct {
	value V
	next  *Node[V]
}

// Read-only traversal helpers
func (n *Node[V]) Value() V {
	return n.value
}

func (n *Node[V]) Next() *Node[V] {
	return n.next
}
