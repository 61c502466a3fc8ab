// Package rosterv1 は roster.v1.RosterService の gRPC 定義です。
// メッセージには protobuf の well-known type を用い、既定の proto コーデックで送受信します。
package rosterv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName は gRPC のサービス名です。
const ServiceName = "roster.v1.RosterService"

const (
	RosterService_ListActiveRecords_FullMethodName     = "/roster.v1.RosterService/ListActiveRecords"
	RosterService_ListAllRecords_FullMethodName        = "/roster.v1.RosterService/ListAllRecords"
	RosterService_GetRecord_FullMethodName             = "/roster.v1.RosterService/GetRecord"
	RosterService_ListRecordsByHireDate_FullMethodName = "/roster.v1.RosterService/ListRecordsByHireDate"
	RosterService_CreateRecord_FullMethodName          = "/roster.v1.RosterService/CreateRecord"
	RosterService_DeactivateRecord_FullMethodName      = "/roster.v1.RosterService/DeactivateRecord"
	RosterService_ReactivateRecord_FullMethodName      = "/roster.v1.RosterService/ReactivateRecord"
	RosterService_DeleteRecord_FullMethodName          = "/roster.v1.RosterService/DeleteRecord"
)

// RosterServiceServer は RosterService のサーバー側インターフェースです。
type RosterServiceServer interface {
	ListActiveRecords(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ListAllRecords(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetRecord(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	ListRecordsByHireDate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateRecord(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeactivateRecord(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	ReactivateRecord(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	DeleteRecord(context.Context, *wrapperspb.Int64Value) (*emptypb.Empty, error)
}

// UnimplementedRosterServiceServer はすべてのメソッドで Unimplemented を返します。
// 実装側に埋め込むことで、メソッド追加時もコンパイルが通ります。
type UnimplementedRosterServiceServer struct{}

func (UnimplementedRosterServiceServer) ListActiveRecords(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ListActiveRecords not implemented")
}

func (UnimplementedRosterServiceServer) ListAllRecords(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ListAllRecords not implemented")
}

func (UnimplementedRosterServiceServer) GetRecord(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetRecord not implemented")
}

func (UnimplementedRosterServiceServer) ListRecordsByHireDate(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ListRecordsByHireDate not implemented")
}

func (UnimplementedRosterServiceServer) CreateRecord(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateRecord not implemented")
}

func (UnimplementedRosterServiceServer) DeactivateRecord(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method DeactivateRecord not implemented")
}

func (UnimplementedRosterServiceServer) ReactivateRecord(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ReactivateRecord not implemented")
}

func (UnimplementedRosterServiceServer) DeleteRecord(context.Context, *wrapperspb.Int64Value) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteRecord not implemented")
}

// RegisterRosterServiceServer は srv を s に登録します。
func RegisterRosterServiceServer(s grpc.ServiceRegistrar, srv RosterServiceServer) {
	s.RegisterService(&RosterService_ServiceDesc, srv)
}

// RosterService_ServiceDesc は RosterService の grpc.ServiceDesc です。
var RosterService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RosterServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListActiveRecords",
			Handler:    unaryHandler(RosterService_ListActiveRecords_FullMethodName, RosterServiceServer.ListActiveRecords),
		},
		{
			MethodName: "ListAllRecords",
			Handler:    unaryHandler(RosterService_ListAllRecords_FullMethodName, RosterServiceServer.ListAllRecords),
		},
		{
			MethodName: "GetRecord",
			Handler:    unaryHandler(RosterService_GetRecord_FullMethodName, RosterServiceServer.GetRecord),
		},
		{
			MethodName: "ListRecordsByHireDate",
			Handler:    unaryHandler(RosterService_ListRecordsByHireDate_FullMethodName, RosterServiceServer.ListRecordsByHireDate),
		},
		{
			MethodName: "CreateRecord",
			Handler:    unaryHandler(RosterService_CreateRecord_FullMethodName, RosterServiceServer.CreateRecord),
		},
		{
			MethodName: "DeactivateRecord",
			Handler:    unaryHandler(RosterService_DeactivateRecord_FullMethodName, RosterServiceServer.DeactivateRecord),
		},
		{
			MethodName: "ReactivateRecord",
			Handler:    unaryHandler(RosterService_ReactivateRecord_FullMethodName, RosterServiceServer.ReactivateRecord),
		},
		{
			MethodName: "DeleteRecord",
			Handler:    unaryHandler(RosterService_DeleteRecord_FullMethodName, RosterServiceServer.DeleteRecord),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "proto/roster/v1/roster.proto",
}

func unaryHandler[Req, Resp any](fullMethod string, call func(RosterServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RosterServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(RosterServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// RosterServiceClient は RosterService のクライアント側インターフェースです。
type RosterServiceClient interface {
	ListActiveRecords(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListAllRecords(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetRecord(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListRecordsByHireDate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	CreateRecord(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	DeactivateRecord(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error)
	ReactivateRecord(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error)
	DeleteRecord(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*emptypb.Empty, error)
}

type rosterServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewRosterServiceClient は RosterServiceClient を生成します。
func NewRosterServiceClient(cc grpc.ClientConnInterface) RosterServiceClient {
	return &rosterServiceClient{cc: cc}
}

func (c *rosterServiceClient) ListActiveRecords(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, RosterService_ListActiveRecords_FullMethodName, in, opts)
}

func (c *rosterServiceClient) ListAllRecords(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, RosterService_ListAllRecords_FullMethodName, in, opts)
}

func (c *rosterServiceClient) GetRecord(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, RosterService_GetRecord_FullMethodName, in, opts)
}

func (c *rosterServiceClient) ListRecordsByHireDate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, RosterService_ListRecordsByHireDate_FullMethodName, in, opts)
}

func (c *rosterServiceClient) CreateRecord(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, RosterService_CreateRecord_FullMethodName, in, opts)
}

func (c *rosterServiceClient) DeactivateRecord(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, RosterService_DeactivateRecord_FullMethodName, in, opts)
}

func (c *rosterServiceClient) ReactivateRecord(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, RosterService_ReactivateRecord_FullMethodName, in, opts)
}

func (c *rosterServiceClient) DeleteRecord(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, RosterService_DeleteRecord_FullMethodName, in, opts)
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
