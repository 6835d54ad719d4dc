package logger

import (
	"context"
	"fmt"
	"log/slog"
)

type slogLogger struct {
	log *slog.Logger
}

var _ Logger = &slogLogger{}

// NewSlog adapts a *slog.Logger. Messages are formatted before being
// handed to slog, so they end up in the record's msg field.
func NewSlog(log *slog.Logger) Logger {
	if log == nil {
		log = slog.Default()
	}
	return &slogLogger{log: log}
}

func (s *slogLogger) Debugf(format string, args ...any) {
	s.logf(slog.LevelDebug, format, args...)
}

func (s *slogLogger) Infof(format string, args ...any) {
	s.logf(slog.LevelInfo, format, args...)
}

func (s *slogLogger) Warnf(format string, args ...any) {
	s.logf(slog.LevelWarn, format, args...)
}

func (s *slogLogger) Errorf(format string, args ...any) {
	s.logf(slog.LevelError, format, args...)
}

func (s *slogLogger) logf(level slog.Level, format string, args ...any) {
	ctx := context.Background()
	if !s.log.Enabled(ctx, level) {
		return
	}
	s.log.Log(ctx, level, fmt.Sprintf(format, args...))
}
