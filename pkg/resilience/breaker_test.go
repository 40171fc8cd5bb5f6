package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRedisDown = errors.New("dial tcp: connection refused")

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestBreaker(threshold int, cooldown time.Duration) (*Breaker, *fakeClock) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	b := NewBreaker("redis-cache", threshold, cooldown)
	b.now = clock.now
	return b, clock
}

func fail() error { return errRedisDown }
func ok() error   { return nil }

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)

	for i := 0; i < 2; i++ {
		assert.Equal(t, errRedisDown, b.Do(fail))
	}
	require.NoError(t, b.Do(ok), "a success resets the failure count")
	for i := 0; i < 2; i++ {
		assert.Equal(t, errRedisDown, b.Do(fail))
	}
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, errRedisDown, b.Do(fail))
	assert.Equal(t, StateOpen, b.State())

	called := false
	err := b.Do(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreakerTrialAfterCooldown(t *testing.T) {
	b, clock := newTestBreaker(1, 30*time.Second)
	_ = b.Do(fail)
	require.Equal(t, StateOpen, b.State())

	clock.t = clock.t.Add(29 * time.Second)
	assert.ErrorIs(t, b.Do(ok), ErrCircuitOpen)

	clock.t = clock.t.Add(time.Second)
	assert.Equal(t, errRedisDown, b.Do(fail), "the trial call reaches the dependency")
	assert.Equal(t, StateOpen, b.State())
	assert.ErrorIs(t, b.Do(ok), ErrCircuitOpen, "a failed trial restarts the cooldown")

	clock.t = clock.t.Add(30 * time.Second)
	require.NoError(t, b.Do(ok))
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "closed", b.State().String())
}

func TestBreakerAllowsOneTrialAtATime(t *testing.T) {
	b, clock := newTestBreaker(1, time.Second)
	_ = b.Do(fail)
	clock.t = clock.t.Add(time.Second)

	inTrial := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error)
	go func() {
		done <- b.Do(func() error {
			close(inTrial)
			<-release
			return nil
		})
	}()
	<-inTrial
	assert.Equal(t, StateHalfOpen, b.State())
	assert.ErrorIs(t, b.Do(ok), ErrCircuitOpen)
	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerIgnoresCallerCancellation(t *testing.T) {
	b, _ := newTestBreaker(1, time.Minute)
	err := b.Do(func() error {
		return fmt.Errorf("redis lookup: %w", context.Canceled)
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, b.State())

	_ = b.Do(func() error { return context.DeadlineExceeded })
	assert.Equal(t, StateOpen, b.State(), "a slow dependency still counts")
}

func TestBreakerReportsTransitions(t *testing.T) {
	b, clock := newTestBreaker(1, time.Second)
	var seen []string
	b.OnStateChange(func(from, to State) {
		seen = append(seen, from.String()+"->"+to.String())
	})

	_ = b.Do(fail)
	clock.t = clock.t.Add(time.Second)
	_ = b.Do(ok)

	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, seen)
}

func TestNewBreakerDefaults(t *testing.T) {
	b := NewBreaker("redis-cache", 0, 0)
	assert.Equal(t, 1, b.threshold)
	assert.Equal(t, 30*time.Second, b.cooldown)
	assert.Equal(t, "unknown", State(9).String())
}
