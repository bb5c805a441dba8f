package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The service is described over well-known protobuf types:
//
//	service ListService {
//	  rpc Construct(google.protobuf.Struct) returns (google.protobuf.UInt64Value);
//	  rpc Append(google.protobuf.Struct) returns (google.protobuf.UInt64Value);
//	  rpc Length(google.protobuf.StringValue) returns (google.protobuf.UInt64Value);
//	  rpc ForEach(google.protobuf.StringValue) returns (stream google.protobuf.Int32Value);
//	}
//
// Construct and Append take {"list": <name>, "value": <number or one-character string>}.
const (
	ServiceName = "linkedlist.v1.ListService"

	ListService_Construct_FullMethodName = "/" + ServiceName + "/Construct"
	ListService_Append_FullMethodName    = "/" + ServiceName + "/Append"
	ListService_Length_FullMethodName    = "/" + ServiceName + "/Length"
	ListService_ForEach_FullMethodName   = "/" + ServiceName + "/ForEach"
)

// ListServiceServer is the server API for ListService.
type ListServiceServer interface {
	Construct(context.Context, *structpb.Struct) (*wrapperspb.UInt64Value, error)
	Append(context.Context, *structpb.Struct) (*wrapperspb.UInt64Value, error)
	Length(context.Context, *wrapperspb.StringValue) (*wrapperspb.UInt64Value, error)
	ForEach(*wrapperspb.StringValue, ListService_ForEachServer) error
}

// UnimplementedListServiceServer can be embedded to have forward
// compatible implementations.
type UnimplementedListServiceServer struct{}

func (UnimplementedListServiceServer) Construct(context.Context, *structpb.Struct) (*wrapperspb.UInt64Value, error) {
	return nil, status.Error(codes.Unimplemented, "method Construct not implemented")
}

func (UnimplementedListServiceServer) Append(context.Context, *structpb.Struct) (*wrapperspb.UInt64Value, error) {
	return nil, status.Error(codes.Unimplemented, "method Append not implemented")
}

func (UnimplementedListServiceServer) Length(context.Context, *wrapperspb.StringValue) (*wrapperspb.UInt64Value, error) {
	return nil, status.Error(codes.Unimplemented, "method Length not implemented")
}

func (UnimplementedListServiceServer) ForEach(*wrapperspb.StringValue, ListService_ForEachServer) error {
	return status.Error(codes.Unimplemented, "method ForEach not implemented")
}

func RegisterListServiceServer(s grpc.ServiceRegistrar, srv ListServiceServer) {
	s.RegisterService(&ListService_ServiceDesc, srv)
}

type ListService_ForEachServer interface {
	Send(*wrapperspb.Int32Value) error
	grpc.ServerStream
}

type listServiceForEachServer struct {
	grpc.ServerStream
}

func (x *listServiceForEachServer) Send(m *wrapperspb.Int32Value) error {
	return x.ServerStream.SendMsg(m)
}

func _ListService_Construct_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ListServiceServer).Construct(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListService_Construct_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ListServiceServer).Construct(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _ListService_Append_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ListServiceServer).Append(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListService_Append_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ListServiceServer).Append(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _ListService_Length_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ListServiceServer).Length(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListService_Length_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ListServiceServer).Length(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _ListService_ForEach_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(wrapperspb.StringValue)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(ListServiceServer).ForEach(m, &listServiceForEachServer{stream})
}

// ListService_ServiceDesc is the grpc.ServiceDesc for ListService.
var ListService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ListServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Construct", Handler: _ListService_Construct_Handler},
		{MethodName: "Append", Handler: _ListService_Append_Handler},
		{MethodName: "Length", Handler: _ListService_Length_Handler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "ForEach", Handler: _ListService_ForEach_Handler, ServerStreams: true},
	},
	Metadata: "linkedlist/v1/list.proto",
}
