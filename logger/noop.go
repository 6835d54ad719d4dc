package logger

// Noop discards everything. It is the default logger of the client, the
// rate limit tracker and the retry helpers.
type Noop struct{}

var _ Logger = Noop{}

func (Noop) Debugf(string, ...any) {}
func (Noop) Infof(string, ...any)  {}
func (Noop) Warnf(string, ...any)  {}
func (Noop) Errorf(string, ...any) {}
