package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Messages are google.protobuf.Struct so the service needs no generated
// code; field names match the HTTP API's JSON.
const (
	ImportServiceName                        = "weddingledger.v1.ImportService"
	ImportService_Extract_FullMethodName     = "/weddingledger.v1.ImportService/Extract"
	ImportService_ImportBatch_FullMethodName = "/weddingledger.v1.ImportService/ImportBatch"
	ImportService_ListCouples_FullMethodName = "/weddingledger.v1.ImportService/ListCouples"
)

type ImportServiceServer interface {
	Extract(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ImportBatch(*structpb.Struct, grpc.ServerStreamingServer[structpb.Struct]) error
	ListCouples(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterImportServiceServer(s grpc.ServiceRegistrar, srv ImportServiceServer) {
	s.RegisterService(&ImportService_ServiceDesc, srv)
}

func unaryHandler(method string, call func(ImportServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ImportServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ImportServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func importBatchHandler(srv any, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(ImportServiceServer).ImportBatch(in, &grpc.GenericServerStream[structpb.Struct, structpb.Struct]{ServerStream: stream})
}

var ImportService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ImportServiceName,
	HandlerType: (*ImportServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Extract",
			Handler:    unaryHandler(ImportService_Extract_FullMethodName, ImportServiceServer.Extract),
		},
		{
			MethodName: "ListCouples",
			Handler:    unaryHandler(ImportService_ListCouples_FullMethodName, ImportServiceServer.ListCouples),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "ImportBatch",
			Handler:       importBatchHandler,
			ServerStreams: true,
		},
	},
	Metadata: "weddingledger/v1/import.proto",
}

// ImportServiceClient is the client side of ImportService.
type ImportServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewImportServiceClient(cc grpc.ClientConnInterface) *ImportServiceClient {
	return &ImportServiceClient{cc: cc}
}

func (c *ImportServiceClient) Extract(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ImportService_Extract_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ImportServiceClient) ListCouples(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ImportService_ListCouples_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ImportServiceClient) ImportBatch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &ImportService_ServiceDesc.Streams[0], ImportService_ImportBatch_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[structpb.Struct, structpb.Struct]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
