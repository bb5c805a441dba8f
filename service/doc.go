// Package service owns the named lists and coordinates the
// mutation log, snapshot store, outbox and metrics around them.
//
// The list container is not safe for concurrent use, so every
// operation here runs under the service lock. Transports such as
// gRPC call into this package and never touch a list directly.
package service
