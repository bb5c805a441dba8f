// Package memory provides the low-level primitives for node
// allocation. Pool hands out reusable objects, tracks how many are
// live, and can enforce a budget so that callers observe allocation
// failure as an error instead of a runtime crash.
//
// The memory package is dependency-free and forms the foundation
// for node reuse in the list container.
package memory
