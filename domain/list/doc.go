// Package list implements a singly-linked, forward-only list of small
// scalar values (character codes and other byte-range integers).
//
// A list is never empty: it is created holding one value and only
// grows by appending at the tail. Each node is owned by its
// predecessor, the head is owned by the List handle, and Release hands
// every node back to its allocator exactly once.
//
// The container performs no locking. Callers that share a list across
// goroutines must serialize access themselves.
package list
