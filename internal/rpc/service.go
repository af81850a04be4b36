// Package rpc exposes sessions over gRPC. Payloads are google.protobuf.Struct
// values so the service needs no generated code.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "gacha.v1.GachaService"

// GachaServer is the server API for GachaService.
type GachaServer interface {
	CreateSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Draw(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Status(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ConfigurePity(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetGuaranteed(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Summary(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type method func(GachaServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call method) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(GachaServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(GachaServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// FullMethod is the wire path of a method, e.g. "/gacha.v1.GachaService/Draw".
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// ServiceDesc describes GachaService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GachaServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateSession", GachaServer.CreateSession),
		unary("Draw", GachaServer.Draw),
		unary("Status", GachaServer.Status),
		unary("ConfigurePity", GachaServer.ConfigurePity),
		unary("SetGuaranteed", GachaServer.SetGuaranteed),
		unary("Summary", GachaServer.Summary),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gacha/v1/gacha.proto",
}

// Register attaches srv to s.
func Register(s grpc.ServiceRegistrar, srv GachaServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls GachaService on any connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method with fields as the request struct.
func (c *Client) Call(ctx context.Context, method string, fields map[string]any) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out); err != nil {
		return nil, err
	}
	return out, nil
}
