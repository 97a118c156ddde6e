// Package retry provides a bounded, context-aware retry engine with
// exponential backoff and jitter.
//
// The pipeline retries only transient provider failures; schema and
// generation failures are permanent and must not be retried. Callers
// express that split with the Retryable predicate:
//
//	err := retry.Do(ctx, retry.DefaultConfig(), completion.IsRetryable, func() error {
//	    return generator.Generate(ctx, artifact)
//	})
package retry

import (
	"context"
	"math/rand/v2"
	"time"
)

// Config controls retry behaviour.
type Config struct {
	// MaxAttempts is the total number of attempts including the first.
	// Values below 1 are treated as 1.
	MaxAttempts int

	// InitDelay is the delay before the first retry; it doubles each
	// subsequent attempt.
	InitDelay time.Duration

	// MaxDelay caps any single delay.
	MaxDelay time.Duration

	// Jitter adds up to ±25% random variation to each delay.
	Jitter bool
}

// DefaultConfig returns the pipeline default: 3 attempts, exponential
// backoff from 250ms capped at 2s, with jitter.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		InitDelay:   250 * time.Millisecond,
		MaxDelay:    2 * time.Second,
		Jitter:      true,
	}
}

// sleeper abstracts waiting so tests can skip real delays.
type sleeper interface {
	sleep(ctx context.Context, d time.Duration) error
}

type realSleeper struct{}

func (realSleeper) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do executes fn up to cfg.MaxAttempts times. It returns nil on the
// first success, or the last error. An error for which retryable
// returns false is returned immediately without further attempts; a nil
// retryable retries every error. Context cancellation returns ctx.Err().
func Do(ctx context.Context, cfg Config, retryable func(error) bool, fn func() error) error {
	return doWithSleeper(ctx, cfg, retryable, fn, realSleeper{})
}

func doWithSleeper(ctx context.Context, cfg Config, retryable func(error) bool, fn func() error, s sleeper) error {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := range attempts {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if retryable != nil && !retryable(lastErr) {
			return lastErr
		}

		if attempt < attempts-1 {
			if err := s.sleep(ctx, backoff(cfg, attempt)); err != nil {
				return err
			}
		}
	}
	return lastErr
}

// backoff computes the delay after a given attempt (0-indexed).
func backoff(cfg Config, attempt int) time.Duration {
	delay := cfg.InitDelay << attempt
	if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	if cfg.Jitter && delay > 0 {
		quarter := int64(delay) / 4
		if quarter > 0 {
			j := time.Duration(rand.Int64N(quarter))
			if rand.IntN(2) == 0 {
				delay += j
			} else {
				delay -= j
			}
		}
	}
	return delay
}
