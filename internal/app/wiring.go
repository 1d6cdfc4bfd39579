// Package app は設定から取り込み元・テレメトリ・ローダーを組み立てます。
// cmd/server と cmd/agendactl の双方から利用されます。
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	repo "github.com/alejandroviegener/g-challenge/internal/adapters/repository/postgres"
	"github.com/alejandroviegener/g-challenge/internal/adapters/source/csvfile"
	"github.com/alejandroviegener/g-challenge/internal/adapters/telemetry"
	"github.com/alejandroviegener/g-challenge/internal/core/loader"
	"github.com/alejandroviegener/g-challenge/internal/platform/config"
	pgdb "github.com/alejandroviegener/g-challenge/internal/platform/db/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrPoolRequired は PostgreSQL を使う設定なのにプールが渡されなかった場合に返却されます。
var ErrPoolRequired = errors.New("app: database pool is required")

// BuildSource は loader 設定から取り込み元を生成します。source が none の場合は nil を返します。
func BuildSource(cfg config.LoaderConfig, pool *pgxpool.Pool) (loader.Source, error) {
	switch cfg.Source {
	case config.SourceNone, "":
		return nil, nil
	case config.SourceCSV:
		return csvfile.NewFileSource(cfg.CSVPath), nil
	case config.SourcePostgres:
		if pool == nil {
			return nil, fmt.Errorf("loader.source postgres: %w", ErrPoolRequired)
		}
		return repo.NewEmployeeSource(pool, pgdb.NewTransactionManager(pool)), nil
	default:
		return nil, fmt.Errorf("app: unsupported loader source %q", cfg.Source)
	}
}

// BuildTelemetry は telemetry 設定からシンクを生成します。
// PostgreSQL シンクは sessionID ごとに load_events へ記録します。
func BuildTelemetry(cfg config.TelemetryConfig, pool *pgxpool.Pool, sessionID uuid.UUID, logger *slog.Logger) (loader.Telemetry, error) {
	sinks := make([]loader.Telemetry, 0, len(cfg.Sinks))
	for _, name := range cfg.Sinks {
		switch name {
		case config.SinkLog:
			sinks = append(sinks, telemetry.NewLogSink(logger))
		case config.SinkPostgres:
			if pool == nil {
				return nil, fmt.Errorf("telemetry sink postgres: %w", ErrPoolRequired)
			}
			sinks = append(sinks, repo.NewLoadEventSink(pool, sessionID, nil, logger))
		default:
			return nil, fmt.Errorf("app: unsupported telemetry sink %q", name)
		}
	}
	return telemetry.NewFanout(sinks...), nil
}

// Load は設定された取り込み元から dst へ一括登録します。
// source が none の場合は何もせず nil を返します。
func Load(ctx context.Context, cfg *config.Config, dst loader.BatchInserter, pool *pgxpool.Pool, logger *slog.Logger) (*loader.Report, error) {
	if logger == nil {
		logger = slog.Default()
	}

	src, err := BuildSource(cfg.Loader, pool)
	if err != nil {
		return nil, err
	}
	if src == nil {
		logger.Info("no loader source configured")
		return nil, nil
	}

	sessionID := uuid.New()
	svc := loader.NewService(logger, sessionIDs(sessionID))
	tel, err := BuildTelemetry(cfg.Telemetry, pool, sessionID, logger)
	if err != nil {
		return nil, err
	}

	return svc.Run(ctx, src, dst, tel, cfg.Loader.BatchSize)
}

// sessionIDs は load_events.session_id と loader の run_id を揃えます。
type sessionIDs uuid.UUID

func (s sessionIDs) NewID() uuid.UUID { return uuid.UUID(s) }
