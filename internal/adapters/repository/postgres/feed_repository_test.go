package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/alejandroviegener/g-challenge/internal/core/agenda"
	pgdb "github.com/alejandroviegener/g-challenge/internal/platform/db/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

var feedRowColumns = []string{
	"row_id", "employee_id", "first_name", "last_name", "hiring_date",
	"job_id", "job_name", "department_id", "department_name",
}

func feedDate(raw string) time.Time {
	d, err := time.Parse(agenda.DateLayout, raw)
	if err != nil {
		panic(err)
	}
	return d
}

func collectFeed(t *testing.T, src *EmployeeSource, chunkSize int) ([][]agenda.Employee, []error) {
	t.Helper()

	var (
		batches [][]agenda.Employee
		errs    []error
	)
	for batch, err := range src.Employees(context.Background(), chunkSize) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		batches = append(batches, batch)
	}
	return batches, errs
}

func TestEmployeeSource_Pages(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	src := NewEmployeeSource(mock, pgdb.NewTransactionManager(mock))
	query := regexp.QuoteMeta(selectFeedPageSQL)

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadOnly})
	mock.ExpectQuery(query).
		WithArgs(int64(0), 2).
		WillReturnRows(pgxmock.NewRows(feedRowColumns).
			AddRow(int64(1), int64(1), "John", "Doe", feedDate("2020-01-01"), int64(1), "Developer", int64(1), "IT").
			AddRow(int64(2), int64(2), "Jane", "Roe", feedDate("2021-06-15"), int64(1), "Developer", int64(2), "HR"))
	mock.ExpectCommit()

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadOnly})
	mock.ExpectQuery(query).
		WithArgs(int64(2), 2).
		WillReturnRows(pgxmock.NewRows(feedRowColumns).
			AddRow(int64(3), int64(3), "Max", "Poe", feedDate("2022-03-03"), int64(2), "Manager", int64(1), "IT"))
	mock.ExpectCommit()

	batches, errs := collectFeed(t, src, 2)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(batches) != 2 || len(batches[0]) != 2 || len(batches[1]) != 1 {
		t.Fatalf("unexpected batch layout: %v", batches)
	}

	jane := batches[0][1]
	if jane.ID() != 2 || jane.FirstName() != "Jane" || jane.Department().Name() != "HR" {
		t.Fatalf("unexpected employee: %+v", jane)
	}
	if got := jane.HiringDate().Format(agenda.DateLayout); got != "2021-06-15" {
		t.Fatalf("expected hiring date 2021-06-15, got %s", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeSource_FullLastPageQueriesOnceMore(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	src := NewEmployeeSource(mock, nil)
	query := regexp.QuoteMeta(selectFeedPageSQL)

	mock.ExpectQuery(query).
		WithArgs(int64(0), 1).
		WillReturnRows(pgxmock.NewRows(feedRowColumns).
			AddRow(int64(7), int64(1), "John", "Doe", feedDate("2020-01-01"), int64(1), "Developer", int64(1), "IT"))
	mock.ExpectQuery(query).
		WithArgs(int64(7), 1).
		WillReturnRows(pgxmock.NewRows(feedRowColumns))

	batches, errs := collectFeed(t, src, 1)
	if len(errs) != 0 || len(batches) != 1 {
		t.Fatalf("expected one batch and no errors, got %v / %v", batches, errs)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeSource_InvalidRowSkipsPage(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	src := NewEmployeeSource(mock, nil)
	query := regexp.QuoteMeta(selectFeedPageSQL)

	mock.ExpectQuery(query).
		WithArgs(int64(0), 2).
		WillReturnRows(pgxmock.NewRows(feedRowColumns).
			AddRow(int64(1), int64(1), "John", "Doe", feedDate("2020-01-01"), int64(1), "Developer", int64(1), "IT").
			AddRow(int64(2), int64(2), "Jane", "Roe", feedDate("2021-06-15"), int64(1), "   ", int64(2), "HR"))
	mock.ExpectQuery(query).
		WithArgs(int64(2), 2).
		WillReturnRows(pgxmock.NewRows(feedRowColumns).
			AddRow(int64(3), int64(3), "Max", "Poe", feedDate("2022-03-03"), int64(2), "Manager", int64(1), "IT"))

	batches, errs := collectFeed(t, src, 2)
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}

	var rowErr *FeedRowError
	if !errors.As(errs[0], &rowErr) || rowErr.RowID != 2 {
		t.Fatalf("expected FeedRowError for row 2, got %v", errs[0])
	}
	if !errors.Is(errs[0], agenda.ErrValidation) {
		t.Fatalf("expected validation error, got %v", errs[0])
	}
	if len(batches) != 1 || batches[0][0].ID() != 3 {
		t.Fatalf("expected only the second page, got %v", batches)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeSource_QueryErrorStops(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	src := NewEmployeeSource(mock, pgdb.NewTransactionManager(mock))
	queryErr := errors.New("relation does not exist")

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadOnly})
	mock.ExpectQuery(regexp.QuoteMeta(selectFeedPageSQL)).
		WithArgs(int64(0), 10).
		WillReturnError(queryErr)
	mock.ExpectRollback()

	batches, errs := collectFeed(t, src, 10)
	if len(batches) != 0 || len(errs) != 1 {
		t.Fatalf("expected a single error, got %v / %v", batches, errs)
	}
	if !errors.Is(errs[0], queryErr) {
		t.Fatalf("expected wrapped query error, got %v", errs[0])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeSource_InvalidChunkSize(t *testing.T) {
	t.Parallel()

	batches, errs := collectFeed(t, NewEmployeeSource(nil, nil), 0)
	if len(batches) != 0 || len(errs) != 1 {
		t.Fatalf("expected a single error, got %v / %v", batches, errs)
	}
}

func TestFeedRepository_Append(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	job, _ := agenda.NewJob(1, "Developer")
	department, _ := agenda.NewDepartment(1, "IT")
	first, _ := agenda.NewEmployee(1, "John", "Doe", "2020-01-01", job, department)
	second, _ := agenda.NewEmployee(2, "Jane", "Roe", "2021-06-15", job, department)

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadWrite})
	mock.ExpectCopyFrom(pgx.Identifier{"employee_feed"}, feedColumns).WillReturnResult(2)
	mock.ExpectCommit()

	repo := NewFeedRepository(mock, pgdb.NewTransactionManager(mock))
	n, err := repo.Append(context.Background(), []agenda.Employee{first, second})
	if err != nil {
		t.Fatalf("Append returned error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 copied rows, got %d", n)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFeedRepository_AppendEmpty(t *testing.T) {
	t.Parallel()

	n, err := NewFeedRepository(nil, nil).Append(context.Background(), nil)
	if err != nil || n != 0 {
		t.Fatalf("expected no-op, got %d, %v", n, err)
	}
}

func TestTranslateFeedPgError(t *testing.T) {
	t.Parallel()

	checkErr := &pgconn.PgError{Code: feedCheckViolationCode, Message: "violates check constraint"}
	if !errors.Is(translateFeedPgError(checkErr), ErrFeedRowRejected) {
		t.Fatalf("expected check violation to map to ErrFeedRowRejected")
	}

	other := errors.New("broken pipe")
	translated := translateFeedPgError(other)
	if !errors.Is(translated, other) || errors.Is(translated, ErrFeedRowRejected) {
		t.Fatalf("unexpected translation for generic error: %v", translated)
	}

	if translateFeedPgError(nil) != nil {
		t.Fatalf("nil must stay nil")
	}
}
