package loader

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alejandroviegener/g-challenge/internal/core/agenda"
	"github.com/google/uuid"
)

// IDGenerator は取り込み実行ごとの ID を採番します。
type IDGenerator interface {
	NewID() uuid.UUID
}

type randomIDGenerator struct{}

func (randomIDGenerator) NewID() uuid.UUID {
	return uuid.New()
}

// Service はデータソースから Registry への取り込みを行います。
// Service 自体は状態を持たず、データソースの読み進め位置のみが実行中の状態です。
type Service struct {
	logger *slog.Logger
	ids    IDGenerator
}

// NewService は Service を生成します。
func NewService(logger *slog.Logger, ids IDGenerator) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if ids == nil {
		ids = randomIDGenerator{}
	}
	return &Service{logger: logger, ids: ids}
}

// Run は src が尽きるまでバッチを取り出し、reg に一括登録して結果を tel に記録します。
//
// 1 つのバッチの失敗は取り込み全体を中断しません。Run がエラーを返すのは ctx が
// キャンセルされた場合のみです。batchSize が 0 以下の場合は DefaultBatchSize を用います。
func (s *Service) Run(ctx context.Context, src Source, reg BatchInserter, tel Telemetry, batchSize int) (*Report, error) {
	if src == nil || reg == nil || tel == nil {
		return nil, fmt.Errorf("loader: source, registry and telemetry are required")
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	report := &Report{RunID: s.ids.NewID().String()}
	logger := s.logger.With("run_id", report.RunID, "batch_size", batchSize)
	logger.Info("load started")

	for batch, err := range src.Employees(ctx, batchSize) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			logger.Warn("load cancelled", "batches", report.Batches, "error", ctxErr)
			return report, fmt.Errorf("loader: %w", ctxErr)
		}

		report.Batches++

		if err != nil {
			report.Unreadable++
			tel.Log(fmt.Sprintf("Error reading employees chunk: %v", err))
			logger.Warn("batch unreadable", "batch", report.Batches, "error", err)
			continue
		}

		ids := formatIDs(batch)
		if err := reg.InsertBatch(batch); err != nil {
			report.Failed++
			tel.Log(fmt.Sprintf("Error adding employees chunk %s: %v", ids, err))
			logger.Warn("batch rejected", "batch", report.Batches, "employees", len(batch), "error", err)
			continue
		}

		report.Succeeded++
		report.Inserted += len(batch)
		tel.Log(fmt.Sprintf("Added employees %s", ids))
		logger.Debug("batch inserted", "batch", report.Batches, "employees", len(batch))
	}

	if err := ctx.Err(); err != nil {
		logger.Warn("load cancelled", "batches", report.Batches, "error", err)
		return report, fmt.Errorf("loader: %w", err)
	}

	logger.Info("load finished",
		"batches", report.Batches,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"unreadable", report.Unreadable,
		"inserted", report.Inserted,
	)

	return report, nil
}

// formatIDs は社員 ID を "[1, 2, 3]" の形式で並べます。
func formatIDs(batch []agenda.Employee) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, e := range batch {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatInt(e.ID(), 10))
	}
	b.WriteByte(']')
	return b.String()
}
