package postgres

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/alejandroviegener/g-challenge/internal/core/agenda"
	pgdb "github.com/alejandroviegener/g-challenge/internal/platform/db/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	feedUniqueViolationCode = "23505"
	feedCheckViolationCode  = "23514"
)

const selectFeedPageSQL = `
        SELECT row_id,
               employee_id,
               first_name,
               last_name,
               hiring_date,
               job_id,
               job_name,
               department_id,
               department_name
          FROM employee_feed
         WHERE row_id > $1
         ORDER BY row_id
         LIMIT $2
    `

var (
	feedTable   = pgx.Identifier{"employee_feed"}
	feedColumns = []string{
		"employee_id",
		"first_name",
		"last_name",
		"hiring_date",
		"job_id",
		"job_name",
		"department_id",
		"department_name",
	}
)

// ErrFeedRowRejected はフィードへの書き込みが制約違反で拒否されたことを表します。
var ErrFeedRowRejected = errors.New("postgres: feed row rejected")

// FeedRowError はフィードの 1 行がエンティティとして不正であることを表します。
type FeedRowError struct {
	RowID int64
	Err   error
}

func (e *FeedRowError) Error() string {
	return fmt.Sprintf("employee_feed row %d: %v", e.RowID, e.Err)
}

func (e *FeedRowError) Unwrap() error { return e.Err }

// EmployeeSource は employee_feed テーブルを row_id 順にページ単位で読み出すソースです。
type EmployeeSource struct {
	pool pgdb.Queryer
	tx   *pgdb.TransactionManager
}

// NewEmployeeSource は EmployeeSource を生成します。tx が nil の場合はトランザクションを張りません。
func NewEmployeeSource(pool pgdb.Queryer, tx *pgdb.TransactionManager) *EmployeeSource {
	return &EmployeeSource{pool: pool, tx: tx}
}

type feedPage struct {
	employees []agenda.Employee
	rows      int
	lastRowID int64
	invalid   error
}

// Employees は chunkSize 行ずつフィードを読み出します。
// 不正な行を含むページはエラーとして渡され、続くページの読み込みは継続します。
// クエリ自体が失敗した場合はエラーを渡して終了します。
func (s *EmployeeSource) Employees(ctx context.Context, chunkSize int) iter.Seq2[[]agenda.Employee, error] {
	return func(yield func([]agenda.Employee, error) bool) {
		if chunkSize <= 0 {
			yield(nil, fmt.Errorf("postgres: chunk size must be positive, got %d", chunkSize))
			return
		}

		var cursor int64
		for {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			var page feedPage
			err := s.tx.WithinReadOnly(ctx, func(ctx context.Context) error {
				var err error
				page, err = s.fetchPage(ctx, cursor, chunkSize)
				return err
			})
			if err != nil {
				yield(nil, err)
				return
			}
			if page.rows == 0 {
				return
			}
			cursor = page.lastRowID

			if page.invalid != nil {
				if !yield(nil, page.invalid) {
					return
				}
			} else if !yield(page.employees, nil) {
				return
			}

			if page.rows < chunkSize {
				return
			}
		}
	}
}

func (s *EmployeeSource) fetchPage(ctx context.Context, after int64, limit int) (feedPage, error) {
	exec := pgdb.QueryerFromContext(ctx, s.pool)
	rows, err := exec.Query(ctx, selectFeedPageSQL, after, limit)
	if err != nil {
		return feedPage{}, fmt.Errorf("postgres: query employee_feed: %w", err)
	}
	defer rows.Close()

	page := feedPage{employees: make([]agenda.Employee, 0, limit)}
	for rows.Next() {
		rowID, emp, err := scanFeedRow(rows)
		if err != nil {
			var invalid *FeedRowError
			if !errors.As(err, &invalid) {
				return feedPage{}, fmt.Errorf("postgres: scan employee_feed: %w", err)
			}
			if page.invalid == nil {
				page.invalid = invalid
			}
		}
		page.rows++
		page.lastRowID = rowID
		if page.invalid == nil {
			page.employees = append(page.employees, emp)
		}
	}
	if err := rows.Err(); err != nil {
		return feedPage{}, fmt.Errorf("postgres: read employee_feed: %w", err)
	}
	return page, nil
}

func scanFeedRow(row pgx.Row) (int64, agenda.Employee, error) {
	var (
		rowID          int64
		employeeID     int64
		firstName      string
		lastName       string
		hiringDate     time.Time
		jobID          int64
		jobName        string
		departmentID   int64
		departmentName string
	)

	if err := row.Scan(
		&rowID,
		&employeeID,
		&firstName,
		&lastName,
		&hiringDate,
		&jobID,
		&jobName,
		&departmentID,
		&departmentName,
	); err != nil {
		return 0, agenda.Employee{}, err
	}

	job, err := agenda.NewJob(jobID, jobName)
	if err != nil {
		return rowID, agenda.Employee{}, &FeedRowError{RowID: rowID, Err: err}
	}
	department, err := agenda.NewDepartment(departmentID, departmentName)
	if err != nil {
		return rowID, agenda.Employee{}, &FeedRowError{RowID: rowID, Err: err}
	}
	emp, err := agenda.NewEmployee(employeeID, firstName, lastName, hiringDate.UTC().Format(agenda.DateLayout), job, department)
	if err != nil {
		return rowID, agenda.Employee{}, &FeedRowError{RowID: rowID, Err: err}
	}
	return rowID, emp, nil
}

// FeedRepository は employee_feed テーブルへの書き込みを提供します。
type FeedRepository struct {
	pool pgdb.Queryer
	tx   *pgdb.TransactionManager
}

// NewFeedRepository は FeedRepository を生成します。
func NewFeedRepository(pool pgdb.Queryer, tx *pgdb.TransactionManager) *FeedRepository {
	return &FeedRepository{pool: pool, tx: tx}
}

// Append は社員をフィードの末尾に COPY で追記し、書き込んだ行数を返します。
func (r *FeedRepository) Append(ctx context.Context, employees []agenda.Employee) (int64, error) {
	if len(employees) == 0 {
		return 0, nil
	}

	var copied int64
	err := r.tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		exec := pgdb.QueryerFromContext(ctx, r.pool)
		n, err := exec.CopyFrom(ctx, feedTable, feedColumns, pgx.CopyFromSlice(len(employees), func(i int) ([]any, error) {
			return feedValues(employees[i]), nil
		}))
		if err != nil {
			return translateFeedPgError(err)
		}
		copied = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return copied, nil
}

func feedValues(e agenda.Employee) []any {
	return []any{
		e.ID(),
		e.FirstName(),
		e.LastName(),
		e.HiringDate(),
		e.Job().ID(),
		e.Job().Name(),
		e.Department().ID(),
		e.Department().Name(),
	}
}

func translateFeedPgError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case feedUniqueViolationCode, feedCheckViolationCode:
			return fmt.Errorf("%w: %s", ErrFeedRowRejected, pgErr.Message)
		}
	}
	return fmt.Errorf("postgres: copy employee_feed: %w", err)
}
