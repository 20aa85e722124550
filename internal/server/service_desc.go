package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	LabelService_Extract_FullMethodName      = "/labels.v1.LabelService/Extract"
	LabelService_ListRecords_FullMethodName  = "/labels.v1.LabelService/ListRecords"
	LabelService_ExportLabels_FullMethodName = "/labels.v1.LabelService/ExportLabels"
)

// LabelServiceServer is the server API for labels.v1.LabelService. Messages
// are google.protobuf.Struct so clients need no generated stubs.
type LabelServiceServer interface {
	Extract(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListRecords(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExportLabels(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedLabelServiceServer can be embedded to have forward compatible implementations.
type UnimplementedLabelServiceServer struct{}

func (UnimplementedLabelServiceServer) Extract(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Extract not implemented")
}
func (UnimplementedLabelServiceServer) ListRecords(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListRecords not implemented")
}
func (UnimplementedLabelServiceServer) ExportLabels(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ExportLabels not implemented")
}

func RegisterLabelServiceServer(s grpc.ServiceRegistrar, srv LabelServiceServer) {
	s.RegisterService(&LabelService_ServiceDesc, srv)
}

func unaryHandler(fullMethod string, call func(LabelServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LabelServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(LabelServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// LabelService_ServiceDesc is the grpc.ServiceDesc for labels.v1.LabelService.
var LabelService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "labels.v1.LabelService",
	HandlerType: (*LabelServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Extract",
			Handler:    unaryHandler(LabelService_Extract_FullMethodName, LabelServiceServer.Extract),
		},
		{
			MethodName: "ListRecords",
			Handler:    unaryHandler(LabelService_ListRecords_FullMethodName, LabelServiceServer.ListRecords),
		},
		{
			MethodName: "ExportLabels",
			Handler:    unaryHandler(LabelService_ExportLabels_FullMethodName, LabelServiceServer.ExportLabels),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "labels/v1/labels.proto",
}
