package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "factoryflow.quote.v1.QuoteService"

// QuoteServiceServer is the server API. Every message is a
// google.protobuf.Struct carrying the same JSON shapes as the HTTP API.
type QuoteServiceServer interface {
	Preview(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Submit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListJobs(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Suggest(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(QuoteServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(QuoteServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(QuoteServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc describes QuoteService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*QuoteServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Preview", Handler: unaryHandler("Preview", QuoteServiceServer.Preview)},
		{MethodName: "Submit", Handler: unaryHandler("Submit", QuoteServiceServer.Submit)},
		{MethodName: "ListJobs", Handler: unaryHandler("ListJobs", QuoteServiceServer.ListJobs)},
		{MethodName: "Suggest", Handler: unaryHandler("Suggest", QuoteServiceServer.Suggest)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "factoryflow/quote/v1/quote.proto",
}

// Register mounts srv on s.
func Register(s *grpc.Server, srv QuoteServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls QuoteService.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient returns a Client on cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Preview calls QuoteService.Preview.
func (c *Client) Preview(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Preview", in, opts...)
}

// Submit calls QuoteService.Submit.
func (c *Client) Submit(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Submit", in, opts...)
}

// ListJobs calls QuoteService.ListJobs.
func (c *Client) ListJobs(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "ListJobs", in, opts...)
}

// Suggest calls QuoteService.Suggest.
func (c *Client) Suggest(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Suggest", in, opts...)
}
