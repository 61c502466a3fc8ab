package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ogurasousui/roster-grpc-clean-arch/internal/adapters/grpc/rosterv1"
	"github.com/ogurasousui/roster-grpc-clean-arch/internal/core/roster"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// RosterGrpcHandler は RosterService の gRPC 実装です。
type RosterGrpcHandler struct {
	svc roster.UseCase
	rosterv1.UnimplementedRosterServiceServer
}

// NewRosterGrpcHandler は RosterGrpcHandler を生成します。
func NewRosterGrpcHandler(svc roster.UseCase) *RosterGrpcHandler {
	return &RosterGrpcHandler{svc: svc}
}

// ListActiveRecords はアクティブなレコードを返します。
func (h *RosterGrpcHandler) ListActiveRecords(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	records, err := h.svc.ListActive(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}
	return rosterv1.RecordsResponse(toProtoRecords(records)), nil
}

// ListAllRecords はすべてのレコードを返します。
func (h *RosterGrpcHandler) ListAllRecords(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	records, err := h.svc.ListAll(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}
	return rosterv1.RecordsResponse(toProtoRecords(records)), nil
}

// GetRecord はレコードと直属の部下を返します。
func (h *RosterGrpcHandler) GetRecord(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	found, err := h.svc.GetWithDirectReports(ctx, roster.GetRecordInput{ID: req.GetValue()})
	if err != nil {
		return nil, toStatusError(err)
	}

	return rosterv1.RecordWithReportsResponse(toProtoRecord(found.Record), toProtoRecords(found.DirectReports)), nil
}

// ListRecordsByHireDate は入社日の範囲でレコードを検索します。
func (h *RosterGrpcHandler) ListRecordsByHireDate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	in, err := rosterv1.ParseHireDateRange(req)
	if err != nil {
		return nil, toStatusError(err)
	}

	start, err := parseDate(in.StartDate)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("start_date: %v", err))
	}
	end, err := parseDate(in.EndDate)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("end_date: %v", err))
	}

	records, err := h.svc.ListByHireDateRange(ctx, roster.HireDateRangeInput{Start: start, End: end})
	if err != nil {
		return nil, toStatusError(err)
	}
	return rosterv1.RecordsResponse(toProtoRecords(records)), nil
}

// CreateRecord はレコードを作成します。
func (h *RosterGrpcHandler) CreateRecord(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	in, err := rosterv1.ParseCreateRequest(req)
	if err != nil {
		return nil, toStatusError(err)
	}

	hireDate, err := parseDate(in.HireDate)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("hire_date: %v", err))
	}

	created, err := h.svc.Create(ctx, roster.CreateRecordInput{
		ID:            in.ID,
		Name:          in.Name,
		Position:      in.Position,
		HireDate:      hireDate,
		DirectReports: in.DirectReports,
		ManagerID:     in.ManagerID,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	return rosterv1.RecordResponse(toProtoRecord(*created)), nil
}

// DeactivateRecord はレコードを無効化します。
func (h *RosterGrpcHandler) DeactivateRecord(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	updated, err := h.svc.Deactivate(ctx, roster.DeactivateRecordInput{ID: req.GetValue()})
	if err != nil {
		return nil, toStatusError(err)
	}
	return rosterv1.RecordResponse(toProtoRecord(*updated)), nil
}

// ReactivateRecord はレコードを再有効化します。
func (h *RosterGrpcHandler) ReactivateRecord(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	updated, err := h.svc.Reactivate(ctx, roster.ReactivateRecordInput{ID: req.GetValue()})
	if err != nil {
		return nil, toStatusError(err)
	}
	return rosterv1.RecordResponse(toProtoRecord(*updated)), nil
}

// DeleteRecord はレコードを削除します。
func (h *RosterGrpcHandler) DeleteRecord(ctx context.Context, req *wrapperspb.Int64Value) (*emptypb.Empty, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	if err := h.svc.Delete(ctx, roster.DeleteRecordInput{ID: req.GetValue()}); err != nil {
		return nil, toStatusError(err)
	}
	return &emptypb.Empty{}, nil
}

func toProtoRecords(records []roster.Record) []rosterv1.Record {
	out := make([]rosterv1.Record, 0, len(records))
	for _, r := range records {
		out = append(out, toProtoRecord(r))
	}
	return out
}

func toProtoRecord(r roster.Record) rosterv1.Record {
	var hireDate string
	if r.HireDate != nil {
		hireDate = r.HireDate.Format(rosterv1.DateLayout)
	}
	reports := r.DirectReports
	if reports == nil {
		reports = []int64{}
	}
	return rosterv1.Record{
		ID:            r.ID,
		Name:          r.Name,
		Position:      r.Position,
		Active:        r.Active,
		HireDate:      hireDate,
		DirectReports: reports,
		IsBase:        r.IsBase,
	}
}

func parseDate(value string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(rosterv1.DateLayout, trimmed, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid format, expected YYYY-MM-DD")
	}
	return &t, nil
}
