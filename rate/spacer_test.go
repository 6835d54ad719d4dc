package rate

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// The limiter stamps a slot when Wait is entered and the caller observes
// it a little later, so measured gaps can fall short by scheduling noise.
const spacingTolerance = 10 * time.Millisecond

func TestSpacer_firstWaitIsImmediate(t *testing.T) {
	s := NewSpacer(time.Second)

	start := time.Now()
	require.NoError(t, s.Wait(context.Background()))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestSpacer_backToBack(t *testing.T) {
	interval := 50 * time.Millisecond
	s := NewSpacer(interval)

	require.NoError(t, s.Wait(context.Background()))
	first := time.Now()
	require.NoError(t, s.Wait(context.Background()))
	second := time.Now()

	assert.GreaterOrEqual(t, second.Sub(first), interval-spacingTolerance)
	assert.Equal(t, interval, s.Interval())
}

func TestSpacer_concurrent(t *testing.T) {
	interval := 50 * time.Millisecond
	s := NewSpacer(interval)

	var mu sync.Mutex
	var starts []time.Time

	g := errgroup.Group{}
	for range 5 {
		g.Go(func() error {
			if err := s.Wait(context.Background()); err != nil {
				return err
			}
			mu.Lock()
			starts = append(starts, time.Now())
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })
	for i := 1; i < len(starts); i++ {
		assert.GreaterOrEqual(t, starts[i].Sub(starts[i-1]), interval-spacingTolerance)
	}
}

func TestSpacer_disabled(t *testing.T) {
	s := NewSpacer(0)

	start := time.Now()
	for range 10 {
		require.NoError(t, s.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestSpacer_cancelled(t *testing.T) {
	s := NewSpacer(time.Hour)
	require.NoError(t, s.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, s.Wait(ctx))
}
