package loader

import (
	"context"
	"iter"

	"github.com/alejandroviegener/g-challenge/internal/core/agenda"
)

// DefaultBatchSize はバッチサイズ未指定時に用いる件数です。
const DefaultBatchSize = 1000

// Source は社員のバッチを順方向に 1 度だけ供給するデータソースです。
//
// Employees は最大 chunkSize 件のバッチを遅延評価で返します。バッチを生成できなかった
// 場合はエラーを返し、続きを供給できるかどうかはデータソース側が判断します。
type Source interface {
	Employees(ctx context.Context, chunkSize int) iter.Seq2[[]agenda.Employee, error]
}

// Telemetry はバッチごとの結果を受け取るログ出力先です。
// Log は呼び出し元に失敗を通知しません。
type Telemetry interface {
	Log(message string)
}

// BatchInserter は Registry の一括登録操作です。
type BatchInserter interface {
	InsertBatch(batch []agenda.Employee) error
}

// UseCase はバッチ取り込みユースケースの公開インターフェースです。
type UseCase interface {
	Run(ctx context.Context, src Source, reg BatchInserter, tel Telemetry, batchSize int) (*Report, error)
}

// Report は 1 回の取り込み結果の集計です。
type Report struct {
	RunID      string
	Batches    int
	Succeeded  int
	Failed     int
	Unreadable int
	Inserted   int
}

// SliceSource はメモリ上の社員一覧を chunkSize ごとに分割して供給します。
type SliceSource []agenda.Employee

// Employees は SliceSource を chunkSize 件ずつ返します。
func (s SliceSource) Employees(ctx context.Context, chunkSize int) iter.Seq2[[]agenda.Employee, error] {
	return func(yield func([]agenda.Employee, error) bool) {
		if chunkSize <= 0 {
			chunkSize = DefaultBatchSize
		}
		for start := 0; start < len(s); start += chunkSize {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			end := min(start+chunkSize, len(s))
			if !yield(s[start:end:end], nil) {
				return
			}
		}
	}
}

// TelemetryFunc は関数を Telemetry として扱うためのアダプタです。
type TelemetryFunc func(message string)

// Log は f(message) を呼び出します。
func (f TelemetryFunc) Log(message string) { f(message) }
