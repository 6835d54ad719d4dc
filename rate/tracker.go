package rate

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/neos-go/neos-go/logger"
)

const (
	HeaderRemaining  = "X-Rate-Limit-Remaining"
	HeaderReset      = "X-Rate-Limit-Reset"
	HeaderRetryAfter = "Retry-After"

	// DefaultDelay is how long requests are held back after a rate limit
	// signal that carries no usable reset or retry hint.
	DefaultDelay = 2 * time.Second
)

// SleepFn suspends the caller for d, or until ctx is done.
type SleepFn func(ctx context.Context, d time.Duration) error

type trackerConfig struct {
	now          func() time.Time
	sleep        SleepFn
	defaultDelay time.Duration
	logger       logger.Logger
}

func defaultTrackerConfig() trackerConfig {
	return trackerConfig{
		now:          time.Now,
		sleep:        Sleep,
		defaultDelay: DefaultDelay,
		logger:       logger.Noop{},
	}
}

type TrackerOption func(c *trackerConfig)

func WithClock(now func() time.Time) TrackerOption {
	return func(c *trackerConfig) {
		c.now = now
	}
}

func WithSleep(sleep SleepFn) TrackerOption {
	return func(c *trackerConfig) {
		c.sleep = sleep
	}
}

func WithDefaultDelay(d time.Duration) TrackerOption {
	return func(c *trackerConfig) {
		c.defaultDelay = d
	}
}

func WithLogger(log logger.Logger) TrackerOption {
	return func(c *trackerConfig) {
		c.logger = log
	}
}

// Tracker holds the "do not send before" deadline announced by the API.
//
// A single Tracker is meant to be shared by pointer between every client
// derived from the same root client, so a rate limit observed by one of
// them holds back all of them. It is safe for concurrent use; updates are
// last-write-wins since the latest response is the authoritative one.
type Tracker struct {
	mu           sync.RWMutex
	blockedUntil time.Time

	config trackerConfig
}

func NewTracker(opts ...TrackerOption) *Tracker {
	config := defaultTrackerConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return &Tracker{config: config}
}

// WaitIfBlocked sleeps until the stored deadline has passed and then
// clears it. A deadline moved further out during the sleep is waited for
// as well, so a nil return means no deadline lies in the future. There is
// no upper bound on the sleep; cancelling ctx is the only way to abort it,
// in which case the deadline is left in place and ctx's error is returned.
func (t *Tracker) WaitIfBlocked(ctx context.Context) error {
	for {
		t.mu.RLock()
		until := t.blockedUntil
		t.mu.RUnlock()

		if until.IsZero() {
			return nil
		}

		if wait := until.Sub(t.config.now()); wait > 0 {
			t.config.logger.Infof("Neos API rate limited, sleeping: %dms", wait.Milliseconds())
			if err := t.config.sleep(ctx, wait); err != nil {
				return err
			}
			continue
		}

		t.mu.Lock()
		if t.blockedUntil.Equal(until) {
			t.blockedUntil = time.Time{}
			t.mu.Unlock()
			return nil
		}
		t.mu.Unlock()
	}
}

// Blocked reports whether the stored deadline is still in the future.
func (t *Tracker) Blocked() bool {
	t.mu.RLock()
	until := t.blockedUntil
	t.mu.RUnlock()
	return !until.IsZero() && until.After(t.config.now())
}

// Observe updates the deadline from a response. It returns true when the
// response itself was a rate limit rejection (429).
//
// A 429 always sets a deadline. Any other response sets one only when the
// remaining-calls header reports zero, which delays later requests without
// failing this one. Header values that do not parse are treated as absent.
func (t *Tracker) Observe(status int, header http.Header) bool {
	if status == http.StatusTooManyRequests {
		t.block(header)
		return true
	}

	remaining := strings.TrimSpace(header.Get(HeaderRemaining))
	if remaining == "" {
		return false
	}
	if n, err := strconv.ParseUint(remaining, 10, 32); err == nil && n == 0 {
		t.block(header)
	}
	return false
}

// BlockedUntil returns the current deadline, if any.
func (t *Tracker) BlockedUntil() (time.Time, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.blockedUntil, !t.blockedUntil.IsZero()
}

// Block stores until as the deadline, replacing whatever was there.
func (t *Tracker) Block(until time.Time) {
	t.mu.Lock()
	t.blockedUntil = until
	t.mu.Unlock()
}

func (t *Tracker) block(header http.Header) {
	until := t.deadlineFrom(header)
	t.config.logger.Debugf("Neos API rate limit deadline set to %s", until.Format(time.RFC3339Nano))
	t.Block(until)
}

// deadlineFrom prefers the absolute reset timestamp, then the relative
// Retry-After seconds, then the default delay. A reset timestamp that is
// not after now is ignored.
func (t *Tracker) deadlineFrom(header http.Header) time.Time {
	now := t.config.now()

	if reset, ok := parseReset(header.Get(HeaderReset)); ok && reset.After(now) {
		return reset
	}

	if secs, ok := parseRetryAfter(header.Get(HeaderRetryAfter)); ok {
		return now.Add(time.Duration(secs) * time.Second)
	}

	return now.Add(t.config.defaultDelay)
}

func parseReset(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if reset, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return reset, true
	}
	if reset, err := http.ParseTime(value); err == nil {
		return reset, true
	}
	return time.Time{}, false
}

func parseRetryAfter(value string) (int64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	secs, err := strconv.ParseInt(value, 10, 64)
	if err != nil || secs < 0 || secs > math.MaxInt64/int64(time.Second) {
		return 0, false
	}
	return secs, true
}

// Sleep is the default SleepFn: a timer that gives up early when ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
