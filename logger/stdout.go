package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// writerLogger prints one "neos [LEVEL] message" line per call.
type writerLogger struct {
	mu sync.Mutex
	w  io.Writer
}

var _ Logger = &writerLogger{}

// NewStdOut logs to standard output.
func NewStdOut() Logger {
	return NewWriter(os.Stdout)
}

// NewWriter logs to w. Lines from concurrent clients are not interleaved.
func NewWriter(w io.Writer) Logger {
	return &writerLogger{w: w}
}

func (l *writerLogger) Debugf(format string, args ...any) {
	l.printf("DEBUG", format, args...)
}

func (l *writerLogger) Infof(format string, args ...any) {
	l.printf("INFO", format, args...)
}

func (l *writerLogger) Warnf(format string, args ...any) {
	l.printf("WARN", format, args...)
}

func (l *writerLogger) Errorf(format string, args ...any) {
	l.printf("ERROR", format, args...)
}

func (l *writerLogger) printf(level string, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = fmt.Fprintf(l.w, "neos [%s] %s\n", level, msg)
}
