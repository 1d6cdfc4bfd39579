package handler

import (
	"context"

	"github.com/alejandroviegener/g-challenge/internal/core/agenda"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// AgendaClient は AgendaService のクライアントです。応答はドメイン型に変換して返します。
type AgendaClient struct {
	cc grpc.ClientConnInterface
}

// NewAgendaClient は AgendaClient を生成します。
func NewAgendaClient(cc grpc.ClientConnInterface) *AgendaClient {
	return &AgendaClient{cc: cc}
}

// GetEmployee は社員を取得します。未登録の場合は codes.NotFound を返します。
func (c *AgendaClient) GetEmployee(ctx context.Context, id int64, opts ...grpc.CallOption) (agenda.Employee, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("GetEmployee"), wrapperspb.Int64(id), out, opts...); err != nil {
		return agenda.Employee{}, err
	}
	return employeeFromStruct(out)
}

// GetJob は職種を取得します。
func (c *AgendaClient) GetJob(ctx context.Context, id int64, opts ...grpc.CallOption) (agenda.Job, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("GetJob"), wrapperspb.Int64(id), out, opts...); err != nil {
		return agenda.Job{}, err
	}
	return jobFromStruct(out)
}

// GetDepartment は部署を取得します。
func (c *AgendaClient) GetDepartment(ctx context.Context, id int64, opts ...grpc.CallOption) (agenda.Department, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("GetDepartment"), wrapperspb.Int64(id), out, opts...); err != nil {
		return agenda.Department{}, err
	}
	return departmentFromStruct(out)
}

// Size は登録件数を取得します。
func (c *AgendaClient) Size(ctx context.Context, opts ...grpc.CallOption) (agenda.Size, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("Size"), &emptypb.Empty{}, out, opts...); err != nil {
		return agenda.Size{}, err
	}
	return sizeFromStruct(out)
}

// InsertBatch はバッチを送信します。
func (c *AgendaClient) InsertBatch(ctx context.Context, batch []agenda.Employee, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, fullMethod("InsertBatch"), batchToList(batch), new(emptypb.Empty), opts...)
}
