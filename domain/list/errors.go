package list

import "errors"

var (
	// ErrAllocationFailure is returned when the node allocator cannot
	// supply a node. The list is left unchanged.
	ErrAllocationFailure = errors.New("list: node allocation failed")

	// ErrEmpty is returned when a list is requested from no values.
	ErrEmpty = errors.New("list: no values")
)
