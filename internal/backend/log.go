package backend

import (
	"context"

	"go.uber.org/zap"

	"nbpulse/internal/event"
)

// LogSink writes records to the logger instead of a remote service. Used for
// debugging and as the default backend when nothing else is configured.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink returns a sink logging at info level on logger.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Track(_ context.Context, rec *event.Record) error {
	s.logger.Info("track",
		zap.String("event", string(rec.Name)),
		zap.String("identity", rec.Identity),
		zap.Any("properties", rec.Properties))
	return nil
}

func (s *LogSink) Close() error { return nil }

// Noop discards every record. Used when sending is disabled.
type Noop struct{}

func (Noop) Track(context.Context, *event.Record) error { return nil }
func (Noop) Close() error                               { return nil }
