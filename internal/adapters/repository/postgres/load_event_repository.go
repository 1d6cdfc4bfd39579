package postgres

import (
	"context"
	"log/slog"
	"time"

	pgdb "github.com/alejandroviegener/g-challenge/internal/platform/db/postgres"
	"github.com/google/uuid"
)

const insertLoadEventSQL = `
        INSERT INTO load_events (id, session_id, message, created_at)
        VALUES ($1, $2, $3, $4)
    `

// Clock は現在時刻を返します。
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// LoadEventSink はロード中のテレメトリメッセージを load_events テーブルに記録します。
// 1 つの Sink は 1 つのセッション ID を持ちます。
type LoadEventSink struct {
	pool      pgdb.Queryer
	sessionID uuid.UUID
	clock     Clock
	logger    *slog.Logger
}

// NewLoadEventSink は LoadEventSink を生成します。
func NewLoadEventSink(pool pgdb.Queryer, sessionID uuid.UUID, clock Clock, logger *slog.Logger) *LoadEventSink {
	if clock == nil {
		clock = systemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LoadEventSink{pool: pool, sessionID: sessionID, clock: clock, logger: logger}
}

// SessionID はこの Sink が記録するセッション ID を返します。
func (s *LoadEventSink) SessionID() uuid.UUID { return s.sessionID }

// Log はメッセージを 1 行挿入します。失敗はログに残して無視します。
func (s *LoadEventSink) Log(message string) {
	ctx := context.Background()
	if _, err := s.pool.Exec(ctx, insertLoadEventSQL, uuid.New(), s.sessionID, message, s.clock.Now()); err != nil {
		s.logger.Warn("failed to record load event",
			"session_id", s.sessionID.String(),
			"error", err,
		)
	}
}
