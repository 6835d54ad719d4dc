package retry

import (
	"context"
	"errors"

	neoserrors "github.com/neos-go/neos-go/errors"
)

// Retry runs an operation until it succeeds, gives up, or runs out of
// attempts.
//
// The client itself never retries: a 429 only holds back the following
// requests until the deadline announced by the API. Retry is for callers
// that want to resend, such as the neosctl command. Since the dispatcher
// already waits for the rate limit deadline, the backoff here only
// spaces out attempts that failed for other reasons.
//
// Usage Example:
//
//	r := retry.NewExponentialRetry(
//	    retry.WithInitialDuration(100*time.Millisecond),
//	    retry.WithLogger(myLogger),
//	)
//
//	err := r.Do(ctx, 3, "online-users", func(attempt int) (error, retry.ExitStrategy) {
//	    count, err = client.Stats().OnlineUsers(ctx)
//	    return err, retry.Transient(err)
//	})
//
// The RetriableFn function receives the current attempt number (0-based) and returns
// an error and an ExitStrategy. The ExitStrategy determines whether to continue
// retrying (Continue) or stop immediately (StopNow), regardless of remaining attempts.
//
// NOTE: if attempts is 0, the fn is never called.
type Retry interface {
	Do(ctx context.Context, attempts int, fnName string, fn RetriableFn) error
}

type RetriableFn func(attempt int) (error, ExitStrategy)

type ExitStrategy bool

var StopNow ExitStrategy = true
var Continue ExitStrategy = false

// Transient decides if a Neos API error is worth retrying: rate limits,
// 5xx responses and transport failures are; everything else is not.
func Transient(err error) ExitStrategy {
	if err == nil {
		return StopNow
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return StopNow
	}

	var reqErr *neoserrors.RequestError
	if !errors.As(err, &reqErr) {
		return StopNow
	}
	switch reqErr.Kind {
	case neoserrors.KIND_RESPONSE_CODE:
		if neoserrors.IsRateLimited(reqErr) || reqErr.StatusCode >= 500 {
			return Continue
		}
	case neoserrors.KIND_OTHER:
		if reqErr.Stage == neoserrors.STAGE_REQUEST {
			return Continue
		}
	}
	return StopNow
}
