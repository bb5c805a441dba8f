package grpcserver

import (
	"context"
	"errors"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client calls ListService over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Construct(ctx context.Context, name string, v int16) (int, error) {
	return c.mutate(ctx, ListService_Construct_FullMethodName, name, v)
}

func (c *Client) Append(ctx context.Context, name string, v int16) (int, error) {
	return c.mutate(ctx, ListService_Append_FullMethodName, name, v)
}

func (c *Client) Length(ctx context.Context, name string) (int, error) {
	out := new(wrapperspb.UInt64Value)
	if err := c.cc.Invoke(ctx, ListService_Length_FullMethodName, wrapperspb.String(name), out); err != nil {
		return 0, err
	}
	return int(out.GetValue()), nil
}

// ForEach calls action for every value streamed back, head first.
func (c *Client) ForEach(ctx context.Context, name string, action func(int16)) error {
	stream, err := c.cc.NewStream(ctx, &ListService_ServiceDesc.Streams[0], ListService_ForEach_FullMethodName)
	if err != nil {
		return err
	}
	if err := stream.SendMsg(wrapperspb.String(name)); err != nil {
		return err
	}
	if err := stream.CloseSend(); err != nil {
		return err
	}
	for {
		m := new(wrapperspb.Int32Value)
		if err := stream.RecvMsg(m); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		action(int16(m.GetValue()))
	}
}

func (c *Client) mutate(ctx context.Context, method, name string, v int16) (int, error) {
	in, err := structpb.NewStruct(map[string]interface{}{
		"list":  name,
		"value": int(v),
	})
	if err != nil {
		return 0, err
	}
	out := new(wrapperspb.UInt64Value)
	if err := c.cc.Invoke(ctx, method, in, out); err != nil {
		return 0, err
	}
	return int(out.GetValue()), nil
}
