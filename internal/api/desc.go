// Package api serves the tool registry over gRPC on the daemon's Unix
// socket. Messages are google.protobuf.Struct and Empty, so the service is
// described by hand instead of generated from a .proto file.
package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "wppmcp.v1.ToolService"

// Full method names, as used by clients.
const (
	MethodListTools   = "/" + ServiceName + "/ListTools"
	MethodCallTool    = "/" + ServiceName + "/CallTool"
	MethodGetStatus   = "/" + ServiceName + "/GetStatus"
	MethodWatchEvents = "/" + ServiceName + "/WatchEvents"
)

// ToolServiceServer is the server API for the tool service.
type ToolServiceServer interface {
	ListTools(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	CallTool(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	WatchEvents(*emptypb.Empty, grpc.ServerStream) error
}

// Register attaches srv to s.
func Register(s grpc.ServiceRegistrar, srv ToolServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ToolServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListTools",
			Handler: unary(MethodListTools, func(srv ToolServiceServer, ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error) {
				return srv.ListTools(ctx, in)
			}),
		},
		{
			MethodName: "CallTool",
			Handler: unary(MethodCallTool, func(srv ToolServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return srv.CallTool(ctx, in)
			}),
		},
		{
			MethodName: "GetStatus",
			Handler: unary(MethodGetStatus, func(srv ToolServiceServer, ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error) {
				return srv.GetStatus(ctx, in)
			}),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchEvents",
			Handler:       watchEventsHandler,
			ServerStreams: true,
		},
	},
	Metadata: "wppmcp/v1/tools.proto",
}

// unary builds the method handler protoc-gen-go-grpc would generate for a
// single request/response call.
func unary[Req any, PReq interface {
	*Req
	proto.Message
}](fullMethod string, call func(ToolServiceServer, context.Context, PReq) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := PReq(new(Req))
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ToolServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ToolServiceServer), ctx, req.(PReq))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func watchEventsHandler(srv any, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(ToolServiceServer).WatchEvents(in, stream)
}
