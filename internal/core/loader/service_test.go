package loader

import (
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"
	"strings"
	"testing"

	"github.com/alejandroviegener/g-challenge/internal/core/agenda"
	"github.com/google/uuid"
)

type recordingTelemetry struct {
	messages []string
}

func (r *recordingTelemetry) Log(message string) {
	r.messages = append(r.messages, message)
}

type fixedIDs struct{ id uuid.UUID }

func (f fixedIDs) NewID() uuid.UUID { return f.id }

// scriptedSource は事前に決めたバッチとエラーを順に返します。
type scriptedSource struct {
	steps []scriptedStep
}

type scriptedStep struct {
	batch []agenda.Employee
	err   error
}

func (s scriptedSource) Employees(_ context.Context, _ int) iter.Seq2[[]agenda.Employee, error] {
	return func(yield func([]agenda.Employee, error) bool) {
		for _, step := range s.steps {
			if !yield(step.batch, step.err) {
				return
			}
		}
	}
}

func newTestService() *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(logger, fixedIDs{id: uuid.MustParse("00000000-0000-0000-0000-000000000001")})
}

func employee(t *testing.T, id int64, first, date string, jobID int64, jobName string, deptID int64, deptName string) agenda.Employee {
	t.Helper()
	job, err := agenda.NewJob(jobID, jobName)
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	dept, err := agenda.NewDepartment(deptID, deptName)
	if err != nil {
		t.Fatalf("NewDepartment: %v", err)
	}
	e, err := agenda.NewEmployee(id, first, "Doe", date, job, dept)
	if err != nil {
		t.Fatalf("NewEmployee: %v", err)
	}
	return e
}

func TestService_Run_LoadsAllBatches(t *testing.T) {
	t.Parallel()

	reg := agenda.NewRegistry()
	tel := &recordingTelemetry{}
	src := SliceSource{
		employee(t, 1, "John", "2022-12-31", 1, "Data Scientist", 1, "Analytics"),
		employee(t, 2, "Jane", "2022-12-31", 2, "Software Developer", 1, "Analytics"),
		employee(t, 3, "Mark", "2022-12-31", 3, "Project Manager", 2, "Applied Research"),
	}

	report, err := newTestService().Run(context.Background(), src, reg, tel, 2)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if got, want := reg.Size(), (agenda.Size{Employees: 3, Jobs: 3, Departments: 2}); got != want {
		t.Fatalf("unexpected size: want %+v got %+v", want, got)
	}

	want := []string{"Added employees [1, 2]", "Added employees [3]"}
	if len(tel.messages) != len(want) {
		t.Fatalf("expected %d messages, got %v", len(want), tel.messages)
	}
	for i := range want {
		if tel.messages[i] != want[i] {
			t.Fatalf("message %d: want %q got %q", i, want[i], tel.messages[i])
		}
	}

	for id, name := range map[int64]string{1: "John", 2: "Jane", 3: "Mark"} {
		e, ok := reg.GetEmployee(id)
		if !ok || e.FirstName() != name {
			t.Fatalf("employee %d: expected %s, got %+v", id, name, e)
		}
	}

	if report.RunID != "00000000-0000-0000-0000-000000000001" {
		t.Fatalf("unexpected run id %s", report.RunID)
	}
	if report.Batches != 2 || report.Succeeded != 2 || report.Failed != 0 || report.Inserted != 3 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestService_Run_ContinuesAfterRejectedBatch(t *testing.T) {
	t.Parallel()

	reg := agenda.NewRegistry()
	tel := &recordingTelemetry{}
	src := SliceSource{
		employee(t, 1, "John", "2022-08-11", 1, "Data Scientist", 1, "Analytics"),
		employee(t, 2, "Jane", "2022-09-24", 2, "Software Developer", 1, "Analytics"),
		employee(t, 2, "Mark", "2022-12-30", 3, "Project Manager", 2, "Applied Research"),
		employee(t, 3, "Alex", "2022-11-20", 3, "Project Manager", 2, "Applied Research"),
		employee(t, 4, "Mary", "2022-11-20", 3, "Project Manager", 2, "Applied Research"),
	}

	report, err := newTestService().Run(context.Background(), src, reg, tel, 2)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if got, want := reg.Size(), (agenda.Size{Employees: 3, Jobs: 3, Departments: 2}); got != want {
		t.Fatalf("unexpected size: want %+v got %+v", want, got)
	}

	if len(tel.messages) != 3 {
		t.Fatalf("expected 3 messages, got %v", tel.messages)
	}
	if tel.messages[0] != "Added employees [1, 2]" {
		t.Fatalf("unexpected first message %q", tel.messages[0])
	}
	if !strings.HasPrefix(tel.messages[1], "Error adding employees chunk [2, 3]: ") {
		t.Fatalf("unexpected second message %q", tel.messages[1])
	}
	if !strings.Contains(tel.messages[1], "already exists") {
		t.Fatalf("failure reason missing from %q", tel.messages[1])
	}
	if tel.messages[2] != "Added employees [4]" {
		t.Fatalf("unexpected third message %q", tel.messages[2])
	}

	if e, _ := reg.GetEmployee(2); e.FirstName() != "Jane" {
		t.Fatalf("employee 2 must be Jane, got %s", e.FirstName())
	}
	if _, ok := reg.GetEmployee(3); ok {
		t.Fatal("employee 3 belongs to the rejected batch")
	}
	if e, _ := reg.GetEmployee(4); e.FirstName() != "Mary" {
		t.Fatalf("employee 4 must be Mary, got %s", e.FirstName())
	}

	if report.Succeeded != 2 || report.Failed != 1 || report.Inserted != 3 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestService_Run_UnreadableBatch(t *testing.T) {
	t.Parallel()

	reg := agenda.NewRegistry()
	tel := &recordingTelemetry{}
	src := scriptedSource{steps: []scriptedStep{
		{err: errors.New("line 3: employee id -1: must not be negative")},
		{batch: []agenda.Employee{employee(t, 7, "Ann", "2021-01-01", 1, "Dev", 1, "IT")}},
	}}

	report, err := newTestService().Run(context.Background(), src, reg, tel, 10)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	want := []string{
		"Error reading employees chunk: line 3: employee id -1: must not be negative",
		"Added employees [7]",
	}
	if len(tel.messages) != len(want) {
		t.Fatalf("expected %v, got %v", want, tel.messages)
	}
	for i := range want {
		if tel.messages[i] != want[i] {
			t.Fatalf("message %d: want %q got %q", i, want[i], tel.messages[i])
		}
	}
	if report.Unreadable != 1 || report.Succeeded != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestService_Run_DefaultBatchSize(t *testing.T) {
	t.Parallel()

	src := make(SliceSource, 0, DefaultBatchSize+1)
	for i := 0; i <= DefaultBatchSize; i++ {
		src = append(src, employee(t, int64(i), "Emp", "2020-01-01", 1, "Dev", 1, "IT"))
	}

	reg := agenda.NewRegistry()
	tel := &recordingTelemetry{}
	report, err := newTestService().Run(context.Background(), src, reg, tel, 0)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if report.Batches != 2 {
		t.Fatalf("expected 2 batches with default size, got %d", report.Batches)
	}
	if reg.Size().Employees != DefaultBatchSize+1 {
		t.Fatalf("unexpected size: %+v", reg.Size())
	}
}

func TestService_Run_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reg := agenda.NewRegistry()
	tel := &recordingTelemetry{}
	src := SliceSource{employee(t, 1, "John", "2022-12-31", 1, "Dev", 1, "IT")}

	_, err := newTestService().Run(ctx, src, reg, tel, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if reg.Size().Employees != 0 {
		t.Fatal("nothing must be inserted after cancellation")
	}
	if len(tel.messages) != 0 {
		t.Fatalf("unexpected telemetry: %v", tel.messages)
	}
}

func TestService_Run_RequiresCollaborators(t *testing.T) {
	t.Parallel()

	if _, err := newTestService().Run(context.Background(), nil, agenda.NewRegistry(), &recordingTelemetry{}, 1); err == nil {
		t.Fatal("expected error for nil source")
	}
}

func TestSliceSource_Chunks(t *testing.T) {
	t.Parallel()

	src := SliceSource{
		employee(t, 1, "A", "2020-01-01", 1, "Dev", 1, "IT"),
		employee(t, 2, "B", "2020-01-01", 1, "Dev", 1, "IT"),
		employee(t, 3, "C", "2020-01-01", 1, "Dev", 1, "IT"),
	}

	var sizes []int
	for batch, err := range src.Employees(context.Background(), 2) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		sizes = append(sizes, len(batch))
	}
	if len(sizes) != 2 || sizes[0] != 2 || sizes[1] != 1 {
		t.Fatalf("unexpected chunk sizes %v", sizes)
	}
}

func TestFormatIDs(t *testing.T) {
	t.Parallel()

	if got := formatIDs(nil); got != "[]" {
		t.Fatalf("unexpected empty format %q", got)
	}
	batch := []agenda.Employee{
		employee(t, 2, "A", "2020-01-01", 1, "Dev", 1, "IT"),
		employee(t, 10, "B", "2020-01-01", 1, "Dev", 1, "IT"),
	}
	if got := formatIDs(batch); got != "[2, 10]" {
		t.Fatalf("unexpected format %q", got)
	}
}
