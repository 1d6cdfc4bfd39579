// Package telemetry は取り込み結果の出力先 (loader.Telemetry) を提供します。
package telemetry

import (
	"context"
	"log/slog"

	"github.com/alejandroviegener/g-challenge/internal/core/loader"
)

// LogSink は取り込み結果を slog に出力します。
type LogSink struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogSink は LogSink を生成します。logger が nil の場合は slog.Default を用います。
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger.With("component", "telemetry"), level: slog.LevelInfo}
}

// Log はメッセージを 1 行出力します。
func (s *LogSink) Log(message string) {
	s.logger.Log(context.Background(), s.level, message)
}

// Fanout は複数の出力先へ同じメッセージを送ります。
type Fanout []loader.Telemetry

// NewFanout は nil を除いた出力先から Fanout を生成します。
func NewFanout(sinks ...loader.Telemetry) Fanout {
	out := make(Fanout, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Log はすべての出力先に message を渡します。
func (f Fanout) Log(message string) {
	for _, s := range f {
		s.Log(message)
	}
}

var (
	_ loader.Telemetry = (*LogSink)(nil)
	_ loader.Telemetry = Fanout(nil)
)
