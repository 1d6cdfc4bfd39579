package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// AgendaServiceName は gRPC のサービス名です。
const AgendaServiceName = "agenda.v1.AgendaService"

// AgendaServiceServer は AgendaService のサーバー側インターフェースです。
// メッセージは well-known types で表現します。
type AgendaServiceServer interface {
	GetEmployee(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	GetJob(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	GetDepartment(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	Size(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	InsertBatch(context.Context, *structpb.ListValue) (*emptypb.Empty, error)
}

// AgendaServiceDesc は AgendaService の grpc.ServiceDesc です。
var AgendaServiceDesc = grpc.ServiceDesc{
	ServiceName: AgendaServiceName,
	HandlerType: (*AgendaServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetEmployee",
			Handler:    unaryHandler("GetEmployee", newInt64Value, AgendaServiceServer.GetEmployee),
		},
		{
			MethodName: "GetJob",
			Handler:    unaryHandler("GetJob", newInt64Value, AgendaServiceServer.GetJob),
		},
		{
			MethodName: "GetDepartment",
			Handler:    unaryHandler("GetDepartment", newInt64Value, AgendaServiceServer.GetDepartment),
		},
		{
			MethodName: "Size",
			Handler:    unaryHandler("Size", newEmpty, AgendaServiceServer.Size),
		},
		{
			MethodName: "InsertBatch",
			Handler:    unaryHandler("InsertBatch", newListValue, AgendaServiceServer.InsertBatch),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "agenda/v1/agenda.proto",
}

// RegisterAgendaServiceServer は srv を AgendaService として登録します。
func RegisterAgendaServiceServer(s grpc.ServiceRegistrar, srv AgendaServiceServer) {
	s.RegisterService(&AgendaServiceDesc, srv)
}

func fullMethod(method string) string {
	return "/" + AgendaServiceName + "/" + method
}

func newInt64Value() *wrapperspb.Int64Value { return new(wrapperspb.Int64Value) }

func newEmpty() *emptypb.Empty { return new(emptypb.Empty) }

func newListValue() *structpb.ListValue { return new(structpb.ListValue) }

func unaryHandler[Req proto.Message, Resp proto.Message](
	method string,
	newReq func() Req,
	call func(AgendaServiceServer, context.Context, Req) (Resp, error),
) grpc.MethodHandler {
	name := fullMethod(method)
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AgendaServiceServer), ctx, in)
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AgendaServiceServer), ctx, req.(Req))
		}
		return interceptor(ctx, in, &grpc.UnaryServerInfo{Server: srv, FullMethod: name}, handler)
	}
}
