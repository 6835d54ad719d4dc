package rate

import (
	"context"
	"time"

	timerate "golang.org/x/time/rate"
)

// DefaultMinInterval is the minimum spacing between two requests sent
// through the same dispatcher.
const DefaultMinInterval = 100 * time.Millisecond

// Spacer enforces a minimum interval between request starts, regardless
// of any rate limit signal from the API.
//
// It is a token bucket with a burst of one: every Wait reserves the next
// free slot, so concurrent callers sharing a Spacer are spread at least
// one interval apart. Callers race for slots; no FIFO order is promised.
type Spacer struct {
	limiter  *timerate.Limiter
	interval time.Duration
}

// NewSpacer returns a Spacer with the given interval. A non-positive
// interval disables spacing.
func NewSpacer(interval time.Duration) *Spacer {
	limit := timerate.Inf
	if interval > 0 {
		limit = timerate.Every(interval)
	}
	return &Spacer{
		limiter:  timerate.NewLimiter(limit, 1),
		interval: interval,
	}
}

// Wait blocks until the caller may start its request.
func (s *Spacer) Wait(ctx context.Context) error {
	return s.limiter.Wait(ctx)
}

func (s *Spacer) Interval() time.Duration {
	return s.interval
}
