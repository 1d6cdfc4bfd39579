package handler

import (
	"context"
	"log/slog"
	"net"
	"testing"

	"github.com/alejandroviegener/g-challenge/internal/core/agenda"
	"github.com/google/go-cmp/cmp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func mustEmployee(t *testing.T, id int64, jobID int64, jobName string, deptID int64, deptName string) agenda.Employee {
	t.Helper()

	job, err := agenda.NewJob(jobID, jobName)
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	department, err := agenda.NewDepartment(deptID, deptName)
	if err != nil {
		t.Fatalf("NewDepartment: %v", err)
	}
	e, err := agenda.NewEmployee(id, "John", "Doe", "2020-01-01", job, department)
	if err != nil {
		t.Fatalf("NewEmployee: %v", err)
	}
	return e
}

func startAgendaServer(t *testing.T, store agenda.Store) *AgendaClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterAgendaServiceServer(srv, NewAgendaHandler(store, slog.New(slog.DiscardHandler)))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("failed to dial bufconn: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return NewAgendaClient(conn)
}

func TestAgendaHandler_GetEmployee(t *testing.T) {
	t.Parallel()

	store := agenda.NewSyncRegistry(nil)
	want := mustEmployee(t, 1, 1, "Developer", 1, "IT")
	if err := store.InsertBatch([]agenda.Employee{want}); err != nil {
		t.Fatalf("InsertBatch: %v", err)
	}

	h := NewAgendaHandler(store, nil)

	resp, err := h.GetEmployee(context.Background(), wrapperspb.Int64(1))
	if err != nil {
		t.Fatalf("GetEmployee returned error: %v", err)
	}
	if got := resp.GetFields()["hiring_date"].GetStringValue(); got != "2020-01-01" {
		t.Errorf("expected hiring_date 2020-01-01, got %q", got)
	}
	if got := resp.GetFields()["job"].GetStructValue().GetFields()["name"].GetStringValue(); got != "Developer" {
		t.Errorf("expected job Developer, got %q", got)
	}

	_, err = h.GetEmployee(context.Background(), wrapperspb.Int64(2))
	if status.Code(err) != codes.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}

	_, err = h.GetEmployee(context.Background(), nil)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument for nil request, got %v", err)
	}
}

func TestAgendaHandler_InsertBatch_ErrorMapping(t *testing.T) {
	t.Parallel()

	store := agenda.NewSyncRegistry(nil)
	if err := store.InsertBatch([]agenda.Employee{mustEmployee(t, 1, 1, "Developer", 1, "IT")}); err != nil {
		t.Fatalf("InsertBatch: %v", err)
	}
	h := NewAgendaHandler(store, slog.New(slog.DiscardHandler))

	tests := []struct {
		name  string
		batch []agenda.Employee
		want  codes.Code
	}{
		{
			name:  "duplicate ids",
			batch: []agenda.Employee{mustEmployee(t, 5, 1, "Developer", 1, "IT"), mustEmployee(t, 5, 1, "Developer", 1, "IT")},
			want:  codes.InvalidArgument,
		},
		{
			name:  "already exists",
			batch: []agenda.Employee{mustEmployee(t, 1, 1, "Developer", 1, "IT")},
			want:  codes.AlreadyExists,
		},
		{
			name:  "inconsistent job",
			batch: []agenda.Employee{mustEmployee(t, 2, 1, "Manager", 1, "IT")},
			want:  codes.FailedPrecondition,
		},
	}

	for _, tt := range tests {
		_, err := h.InsertBatch(context.Background(), batchToList(tt.batch))
		if status.Code(err) != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}

	if got := store.Size(); got != (agenda.Size{Employees: 1, Jobs: 1, Departments: 1}) {
		t.Fatalf("rejected batches must not change the registry, got %+v", got)
	}
}

func TestAgendaHandler_InsertBatch_Malformed(t *testing.T) {
	t.Parallel()

	h := NewAgendaHandler(agenda.NewSyncRegistry(nil), slog.New(slog.DiscardHandler))

	bad, err := structpb.NewList([]any{
		map[string]any{"id": 1.5, "first_name": "John"},
	})
	if err != nil {
		t.Fatalf("NewList: %v", err)
	}
	_, err = h.InsertBatch(context.Background(), bad)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}

	notObject, err := structpb.NewList([]any{"employee"})
	if err != nil {
		t.Fatalf("NewList: %v", err)
	}
	_, err = h.InsertBatch(context.Background(), notObject)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestAgendaClient_RoundTrip(t *testing.T) {
	t.Parallel()

	client := startAgendaServer(t, agenda.NewSyncRegistry(nil))
	ctx := context.Background()

	batch := []agenda.Employee{
		mustEmployee(t, 1, 1, "Developer", 1, "IT"),
		mustEmployee(t, 2, 2, "Manager", 1, "IT"),
	}
	if err := client.InsertBatch(ctx, batch); err != nil {
		t.Fatalf("InsertBatch returned error: %v", err)
	}

	got, err := client.GetEmployee(ctx, 2)
	if err != nil {
		t.Fatalf("GetEmployee returned error: %v", err)
	}
	if diff := cmp.Diff(batch[1], got); diff != "" {
		t.Fatalf("employee mismatch (-want +got):\n%s", diff)
	}

	job, err := client.GetJob(ctx, 2)
	if err != nil || job.Name() != "Manager" {
		t.Fatalf("unexpected job %+v, err=%v", job, err)
	}

	department, err := client.GetDepartment(ctx, 1)
	if err != nil || department.Name() != "IT" {
		t.Fatalf("unexpected department %+v, err=%v", department, err)
	}

	size, err := client.Size(ctx)
	if err != nil {
		t.Fatalf("Size returned error: %v", err)
	}
	if size != (agenda.Size{Employees: 2, Jobs: 2, Departments: 1}) {
		t.Fatalf("unexpected size %+v", size)
	}

	err = client.InsertBatch(ctx, batch[:1])
	if status.Code(err) != codes.AlreadyExists {
		t.Fatalf("expected AlreadyExists, got %v", err)
	}

	_, err = client.GetDepartment(ctx, 9)
	if status.Code(err) != codes.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestAgendaClient_LargeIDs(t *testing.T) {
	t.Parallel()

	client := startAgendaServer(t, agenda.NewSyncRegistry(nil))
	ctx := context.Background()

	const id = 1<<53 + 1
	want := mustEmployee(t, id, id, "Developer", id+2, "IT")
	if err := client.InsertBatch(ctx, []agenda.Employee{want}); err != nil {
		t.Fatalf("InsertBatch returned error: %v", err)
	}

	got, err := client.GetEmployee(ctx, id)
	if err != nil {
		t.Fatalf("GetEmployee returned error: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("employee mismatch (-want +got):\n%s", diff)
	}

	if _, err := client.GetEmployee(ctx, id-1); status.Code(err) != codes.NotFound {
		t.Fatalf("expected NotFound for neighbouring id, got %v", err)
	}

	job, err := client.GetJob(ctx, id)
	if err != nil || job.ID() != id {
		t.Fatalf("unexpected job %+v, err=%v", job, err)
	}
	department, err := client.GetDepartment(ctx, id+2)
	if err != nil || department.ID() != id+2 {
		t.Fatalf("unexpected department %+v, err=%v", department, err)
	}
}
