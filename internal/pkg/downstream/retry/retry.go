package retry

import (
	"context"
	"errors"
	"time"

	"payja-lending/internal/pkg/config"
	"payja-lending/internal/pkg/log_messages"
	"payja-lending/internal/pkg/logger"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Policy is a bounded exponential backoff: the delay before attempt n+1 is
// InitialBackoff * 2^(n-1), capped at MaxBackoff. Delays carry no jitter so a
// partner sees the same cadence on every call.
type Policy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// Timer waits between attempts; nil uses a real timer.
	Timer backoff.Timer
}

// permanent is implemented by errors that must not be retried.
type permanent interface {
	Permanent() bool
}

func FromConfig(cfg config.RetryConfig) Policy {
	return Policy{
		MaxAttempts:    cfg.MaxAttempts,
		InitialBackoff: time.Duration(cfg.InitialBackoffMs) * time.Millisecond,
		MaxBackoff:     time.Duration(cfg.MaxBackoffMs) * time.Millisecond,
	}
}

// WithMaxAttempts returns a copy with a different attempt budget.
func (p Policy) WithMaxAttempts(n int) Policy {
	if n > 0 {
		p.MaxAttempts = n
	}
	return p
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p Policy) exponential() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialBackoff
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = p.MaxBackoff
	if b.MaxInterval <= 0 {
		b.MaxInterval = backoff.DefaultMaxInterval
	}
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Backoff returns the delay after the given failed attempt (1-based).
func (p Policy) Backoff(attempt int) time.Duration {
	if attempt < 1 || p.InitialBackoff <= 0 {
		return 0
	}
	b := p.exponential()
	var d time.Duration
	for i := 0; i < attempt; i++ {
		d = b.NextBackOff()
	}
	return d
}

// Do runs op until it succeeds, returns a permanent error, or the attempt budget
// is spent. The error of the last attempt is returned unchanged, also when ctx
// ends while waiting for the next one.
func (p Policy) Do(ctx context.Context, name string, op func(ctx context.Context) error) error {
	attempts := p.attempts()
	b := backoff.WithContext(backoff.WithMaxRetries(p.exponential(), uint64(attempts-1)), ctx)

	var lastErr error
	attempt := 0
	operation := func() error {
		attempt++
		lastErr = op(ctx)
		var perm permanent
		if errors.As(lastErr, &perm) && perm.Permanent() {
			return backoff.Permanent(lastErr)
		}
		return lastErr
	}
	notify := func(err error, delay time.Duration) {
		logger.CtxWarn(ctx, log_messages.RetryAttemptFailed,
			zap.String("operation", name),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
	}

	err := backoff.RetryNotifyWithTimer(operation, b, notify, p.Timer)
	if err != nil && lastErr != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		// cancelled between attempts; the caller still gets the real failure
		return lastErr
	}
	return err
}
