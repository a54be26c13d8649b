// Package retry reruns an operation with exponential backoff until it
// succeeds, the error is classified as permanent, or attempts run out.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strings"
	"time"
)

// ErrNoAttempts is returned when Config.Attempts is not positive.
var ErrNoAttempts = errors.New("retry: attempts must be greater than 0")

// Backoff describes the delay between two attempts.
type Backoff struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	// Jitter is the fraction of the delay randomly added or removed, 0 disables it.
	Jitter float64
}

// Delay returns the wait before attempt n+1 (n is zero-based).
func (b Backoff) Delay(n int) time.Duration {
	if n < 0 {
		n = 0
	}
	d := float64(b.Initial) * math.Pow(b.Multiplier, float64(n))
	if b.Max > 0 && d > float64(b.Max) {
		d = float64(b.Max)
	}
	if b.Jitter > 0 {
		//nolint:gosec // jitter only
		d += d * b.Jitter * (rand.Float64()*2 - 1)
	}
	return time.Duration(d)
}

// Config controls Do.
type Config struct {
	Attempts int
	Backoff  Backoff
	// Retryable reports whether err is worth another attempt. Nil retries everything.
	Retryable func(err error) bool
	// OnRetry is called before sleeping between attempts.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// DefaultConfig returns five attempts starting at one second, doubling up to thirty.
func DefaultConfig() Config {
	return Config{
		Attempts: 5,
		Backoff: Backoff{
			Initial:    time.Second,
			Max:        30 * time.Second,
			Multiplier: 2,
			Jitter:     0.1,
		},
	}
}

// ConnectConfig is DefaultConfig restricted to transient connection errors.
func ConnectConfig() Config {
	cfg := DefaultConfig()
	cfg.Retryable = MatchAny(ConnectErrors...)
	return cfg
}

// ConnectErrors are message fragments of errors a database emits while it is
// unreachable or still starting.
var ConnectErrors = []string{
	"connection refused",
	"connection reset",
	"connection timed out",
	"i/o timeout",
	"dial tcp",
	"network is unreachable",
	"no such host",
	"server closed the connection",
	"too many connections",
	"database system is starting up",
	"database is locked",
}

// MatchAny classifies an error as retryable when its message contains one of
// the fragments, ignoring case.
func MatchAny(fragments ...string) func(error) bool {
	lowered := make([]string, len(fragments))
	for i, f := range fragments {
		lowered[i] = strings.ToLower(f)
	}
	return func(err error) bool {
		if err == nil {
			return false
		}
		msg := strings.ToLower(err.Error())
		for _, f := range lowered {
			if strings.Contains(msg, f) {
				return true
			}
		}
		return false
	}
}

// Do runs fn until it returns nil.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	_, err := DoWithResult(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// DoWithResult runs fn until it returns a nil error and hands back its result.
// The last error is returned once attempts are exhausted; context errors win
// over it when ctx ends while waiting.
func DoWithResult[T any](ctx context.Context, cfg Config, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if cfg.Attempts <= 0 {
		return zero, ErrNoAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if cfg.Retryable != nil && !cfg.Retryable(err) {
			return zero, err
		}
		if attempt == cfg.Attempts {
			break
		}

		wait := cfg.Backoff.Delay(attempt - 1)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, lastErr
}
