package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"payja-lending/internal/pkg/config"
	errs "payja-lending/internal/pkg/downstream/error_handling"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// instantTimer fires as soon as it starts and records every requested delay.
type instantTimer struct {
	delays []time.Duration
	c      chan time.Time
}

func (t *instantTimer) Start(d time.Duration) {
	t.delays = append(t.delays, d)
	t.c = make(chan time.Time, 1)
	t.c <- time.Now()
}

func (t *instantTimer) Stop() {}

func (t *instantTimer) C() <-chan time.Time { return t.c }

// stuckTimer never fires.
type stuckTimer struct{}

func (stuckTimer) Start(time.Duration) {}
func (stuckTimer) Stop()               {}
func (stuckTimer) C() <-chan time.Time { return nil }

func TestBackoffDoublesUpToCap(t *testing.T) {
	p := Policy{InitialBackoff: 100 * time.Millisecond, MaxBackoff: 500 * time.Millisecond}

	assert.Equal(t, 100*time.Millisecond, p.Backoff(1))
	assert.Equal(t, 200*time.Millisecond, p.Backoff(2))
	assert.Equal(t, 400*time.Millisecond, p.Backoff(3))
	assert.Equal(t, 500*time.Millisecond, p.Backoff(4))
	assert.Equal(t, 500*time.Millisecond, p.Backoff(30))
	assert.Equal(t, time.Duration(0), p.Backoff(0))
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	timer := &instantTimer{}
	p := Policy{MaxAttempts: 4, InitialBackoff: 10 * time.Millisecond, MaxBackoff: time.Second, Timer: timer}

	calls := 0
	err := p.Do(context.Background(), "disburse", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("timeout")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, timer.delays)
}

func TestDoReturnsLastError(t *testing.T) {
	timer := &instantTimer{}
	p := Policy{MaxAttempts: 3, InitialBackoff: time.Millisecond, Timer: timer}

	calls := 0
	err := p.Do(context.Background(), "eligibility", func(context.Context) error {
		calls++
		return fmt.Errorf("attempt %d failed", calls)
	})
	assert.EqualError(t, err, "attempt 3 failed")
	assert.Equal(t, 3, calls)
	assert.Len(t, timer.delays, 2)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	timer := &instantTimer{}
	p := Policy{MaxAttempts: 5, Timer: timer}

	calls := 0
	err := p.Do(context.Background(), "disburse", func(context.Context) error {
		calls++
		return errs.NewBankAPIError(errors.New("invalid account"), 400)
	})
	var apiErr *errs.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)
	assert.Equal(t, 1, calls)
	assert.Empty(t, timer.delays)
}

func TestDoReturnsLastErrorWhenCancelledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := Policy{MaxAttempts: 5, InitialBackoff: time.Second, Timer: stuckTimer{}}

	calls := 0
	err := p.Do(ctx, "credit", func(context.Context) error {
		calls++
		cancel()
		return errors.New("503")
	})
	assert.EqualError(t, err, "503")
	assert.Equal(t, 1, calls)
}

func TestDoZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_ = Policy{}.Do(context.Background(), "x", func(context.Context) error {
		calls++
		return errors.New("fail")
	})
	assert.Equal(t, 1, calls)
}

func TestFromConfig(t *testing.T) {
	p := FromConfig(config.RetryConfig{MaxAttempts: 3, InitialBackoffMs: 200, MaxBackoffMs: 2000}).WithMaxAttempts(5)
	assert.Equal(t, 5, p.MaxAttempts)
	assert.Equal(t, 200*time.Millisecond, p.InitialBackoff)
	assert.Equal(t, 2*time.Second, p.MaxBackoff)
}
