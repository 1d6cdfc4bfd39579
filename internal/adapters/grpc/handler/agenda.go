package handler

import (
	"context"
	"log/slog"

	"github.com/alejandroviegener/g-challenge/internal/core/agenda"
	"github.com/alejandroviegener/g-challenge/internal/platform/logging"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// AgendaHandler は AgendaService の gRPC 実装です。
type AgendaHandler struct {
	store  agenda.Store
	logger *slog.Logger
}

var _ AgendaServiceServer = (*AgendaHandler)(nil)

// NewAgendaHandler は AgendaHandler を生成します。
// store は並行アクセスに耐える実装 (agenda.SyncRegistry) を渡してください。
func NewAgendaHandler(store agenda.Store, logger *slog.Logger) *AgendaHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AgendaHandler{store: store, logger: logger}
}

// GetEmployee は社員を ID で取得します。
func (h *AgendaHandler) GetEmployee(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	e, ok := h.store.GetEmployee(req.GetValue())
	if !ok {
		return nil, toStatusError(&agenda.NotFoundError{Kind: "employee", ID: req.GetValue()})
	}
	return employeeToStruct(e), nil
}

// GetJob は職種を ID で取得します。
func (h *AgendaHandler) GetJob(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	j, ok := h.store.GetJob(req.GetValue())
	if !ok {
		return nil, toStatusError(&agenda.NotFoundError{Kind: "job", ID: req.GetValue()})
	}
	return jobToStruct(j), nil
}

// GetDepartment は部署を ID で取得します。
func (h *AgendaHandler) GetDepartment(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	d, ok := h.store.GetDepartment(req.GetValue())
	if !ok {
		return nil, toStatusError(&agenda.NotFoundError{Kind: "department", ID: req.GetValue()})
	}
	return departmentToStruct(d), nil
}

// Size は登録件数を返します。
func (h *AgendaHandler) Size(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return sizeToStruct(h.store.Size()), nil
}

// InsertBatch は社員のバッチを原子的に登録します。
func (h *AgendaHandler) InsertBatch(ctx context.Context, req *structpb.ListValue) (*emptypb.Empty, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	batch, err := batchFromList(req)
	if err != nil {
		return nil, toStatusError(err)
	}

	if err := h.store.InsertBatch(batch); err != nil {
		logging.FromContext(ctx, h.logger).Warn("insert batch rejected",
			"size", len(batch),
			"error", err,
		)
		return nil, toStatusError(err)
	}

	logging.FromContext(ctx, h.logger).Info("inserted batch", "size", len(batch))
	return &emptypb.Empty{}, nil
}
