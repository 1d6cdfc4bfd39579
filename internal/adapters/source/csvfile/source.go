// Package csvfile は CSV ファイルを社員バッチのデータソースとして扱います。
//
// 先頭行はヘッダーとして扱い、列は名前で対応付けます。必要な列は
// id, first_name, last_name, hiring_date, job_id, job_name, department_id, department_name です。
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strconv"
	"strings"

	"github.com/alejandroviegener/g-challenge/internal/core/agenda"
)

// Columns は CSV に必要な列名です。
var Columns = []string{
	"id",
	"first_name",
	"last_name",
	"hiring_date",
	"job_id",
	"job_name",
	"department_id",
	"department_name",
}

var (
	// ErrMissingColumn はヘッダーに必要な列が無い場合に返却されます。
	ErrMissingColumn = errors.New("csvfile: missing column")
	// ErrEmptyFile はヘッダー行が存在しない場合に返却されます。
	ErrEmptyFile = errors.New("csvfile: empty file")
)

// RowError は特定の行の変換に失敗したことを表します。
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Source は CSV を読み込む loader.Source の実装です。
type Source struct {
	name string
	open func() (io.ReadCloser, error)
}

// NewFileSource は path の CSV ファイルを読み込む Source を生成します。
// ファイルは Employees の呼び出しごとに開き直します。
func NewFileSource(path string) *Source {
	return &Source{
		name: path,
		open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// NewReaderSource は r を読み込む Source を生成します。r は 1 度しか読めません。
func NewReaderSource(name string, r io.Reader) *Source {
	return &Source{
		name: name,
		open: func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
	}
}

// Name は読み込み元の名前を返します。
func (s *Source) Name() string { return s.name }

// Employees は CSV を chunkSize 行ずつ社員バッチに変換して返します。
//
// バッチ内に変換できない行がある場合、そのバッチは *RowError として返却され、
// 次のバッチの読み込みを続けます。ヘッダー不正や CSV 構文エラーの場合は
// エラーを返して終了します。
func (s *Source) Employees(ctx context.Context, chunkSize int) iter.Seq2[[]agenda.Employee, error] {
	return func(yield func([]agenda.Employee, error) bool) {
		if chunkSize <= 0 {
			yield(nil, fmt.Errorf("csvfile: chunk size must be positive, got %d", chunkSize))
			return
		}

		rc, err := s.open()
		if err != nil {
			yield(nil, fmt.Errorf("csvfile: open %s: %w", s.name, err))
			return
		}
		defer rc.Close()

		reader := csv.NewReader(rc)
		reader.TrimLeadingSpace = true
		reader.ReuseRecord = true

		index, err := readHeader(reader)
		if err != nil {
			yield(nil, fmt.Errorf("csvfile: %s: %w", s.name, err))
			return
		}

		var (
			batch    = make([]agenda.Employee, 0, chunkSize)
			rows     int
			chunkErr error
		)

		flush := func() bool {
			defer func() {
				batch = make([]agenda.Employee, 0, chunkSize)
				rows = 0
				chunkErr = nil
			}()
			if chunkErr != nil {
				return yield(nil, chunkErr)
			}
			return yield(batch, nil)
		}

		for {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				yield(nil, fmt.Errorf("csvfile: %s: %w", s.name, err))
				return
			}

			line, _ := reader.FieldPos(0)
			rows++

			emp, err := parseRecord(index, record)
			if err != nil {
				if chunkErr == nil {
					chunkErr = &RowError{Line: line, Err: err}
				}
			} else if chunkErr == nil {
				batch = append(batch, emp)
			}

			if rows == chunkSize {
				if !flush() {
					return
				}
			}
		}

		if rows > 0 {
			flush()
		}
	}
}

func readHeader(reader *csv.Reader) (map[string]int, error) {
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}

	for _, col := range Columns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, col)
		}
	}

	return index, nil
}

func parseRecord(index map[string]int, record []string) (agenda.Employee, error) {
	field := func(name string) string {
		i := index[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	id, err := parseID("id", field("id"))
	if err != nil {
		return agenda.Employee{}, err
	}
	jobID, err := parseID("job_id", field("job_id"))
	if err != nil {
		return agenda.Employee{}, err
	}
	deptID, err := parseID("department_id", field("department_id"))
	if err != nil {
		return agenda.Employee{}, err
	}

	job, err := agenda.NewJob(jobID, field("job_name"))
	if err != nil {
		return agenda.Employee{}, err
	}
	dept, err := agenda.NewDepartment(deptID, field("department_name"))
	if err != nil {
		return agenda.Employee{}, err
	}

	return agenda.NewEmployee(id, field("first_name"), field("last_name"), field("hiring_date"), job, dept)
}

func parseID(column, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: not an integer", column, raw)
	}
	return id, nil
}
