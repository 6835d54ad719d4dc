package logger

// Logger is the logging interface used across the Neos API client.
// It lets callers plug in their logging library of choice (slog, zap,
// logrus, the standard log package) or disable logging with Noop.
//
// The client logs:
// - rate limit sleeps and 429 responses
// - request dispatch and transport failures (debug level)
// - client state transitions (login, logout, downgrade)
//
// Usage Example:
//
//	client := neos_go.NewUnauthenticated(userAgent, neos_go.WithLogger(myLogger))
//
//	// Route client logs into log/slog
//	client := neos_go.NewUnauthenticated(userAgent, neos_go.WithLogger(logger.NewSlog(slog.Default())))
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
