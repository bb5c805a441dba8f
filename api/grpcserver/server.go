package grpcserver

import (
	"context"
	"errors"
	"math"
	"time"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"linkedlist/domain/list"
	"linkedlist/service"
)

// Server adapts ListService to gRPC.
type Server struct {
	UnimplementedListServiceServer
	svc *service.ListService
}

func NewServer(svc *service.ListService) *Server {
	return &Server{svc: svc}
}

// -------------------- Commands --------------------

func (s *Server) Construct(
	ctx context.Context,
	req *structpb.Struct,
) (*wrapperspb.UInt64Value, error) {
	name, v, err := parseMutation(req)
	if err != nil {
		return nil, err
	}
	n, err := s.svc.Create(name, v)
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.UInt64(uint64(n)), nil
}

func (s *Server) Append(
	ctx context.Context,
	req *structpb.Struct,
) (*wrapperspb.UInt64Value, error) {
	name, v, err := parseMutation(req)
	if err != nil {
		return nil, err
	}
	n, err := s.svc.Append(name, v)
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.UInt64(uint64(n)), nil
}

// -------------------- Queries --------------------

func (s *Server) Length(
	ctx context.Context,
	req *wrapperspb.StringValue,
) (*wrapperspb.UInt64Value, error) {
	n, err := s.svc.Length(req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.UInt64(uint64(n)), nil
}

// ForEach streams the values head first. The values are copied out
// first so the service lock is not held while the client reads.
func (s *Server) ForEach(
	req *wrapperspb.StringValue,
	stream ListService_ForEachServer,
) error {
	values, err := s.svc.Values(req.GetValue())
	if err != nil {
		return toStatus(err)
	}
	for _, v := range values {
		if err := stream.Send(wrapperspb.Int32(int32(v))); err != nil {
			return err
		}
	}
	return nil
}

// -------------------- Interceptors --------------------

// UnaryLogger logs every unary call with its duration and status code.
func UnaryLogger() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		entry := log.WithFields(log.Fields{
			"method":   info.FullMethod,
			"code":     status.Code(err).String(),
			"duration": time.Since(start),
		})
		if err != nil {
			entry.WithError(err).Warn("gRPC call failed")
		} else {
			entry.Debug("gRPC call")
		}
		return resp, err
	}
}

// -------------------- Converters --------------------

func parseMutation(req *structpb.Struct) (string, int16, error) {
	fields := req.GetFields()

	name := fields["list"].GetStringValue()
	if name == "" {
		return "", 0, status.Error(codes.InvalidArgument, "list name is required")
	}

	raw, ok := fields["value"]
	if !ok {
		return "", 0, status.Error(codes.InvalidArgument, "value is required")
	}

	switch k := raw.GetKind().(type) {
	case *structpb.Value_NumberValue:
		f := k.NumberValue
		if f != math.Trunc(f) || f < math.MinInt16 || f > math.MaxInt16 {
			return "", 0, status.Errorf(codes.InvalidArgument, "value %v is not a 16-bit integer", f)
		}
		return name, int16(f), nil
	case *structpb.Value_StringValue:
		r, size := utf8.DecodeRuneInString(k.StringValue)
		if size == 0 || size != len(k.StringValue) || r > math.MaxInt16 {
			return "", 0, status.Errorf(codes.InvalidArgument, "value %q is not a single character", k.StringValue)
		}
		return name, int16(r), nil
	default:
		return "", 0, status.Error(codes.InvalidArgument, "value must be a number or a character")
	}
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, service.ErrInvalidName):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, list.ErrAllocationFailure):
		return status.Error(codes.ResourceExhausted, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
