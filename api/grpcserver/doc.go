// Package grpcserver exposes the list service over gRPC.
//
// The wire contract uses protobuf well-known types only, so no
// generated code is needed on either side; the service descriptor in
// service_desc.go is written out the way protoc-gen-go-grpc would emit it.
package grpcserver
