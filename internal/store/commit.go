package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Backoff selects how the wait between commit attempts grows.
type Backoff string

const (
	// BackoffFixed waits Interval between every attempt.
	BackoffFixed Backoff = "fixed"
	// BackoffExponential doubles the wait after each attempt, capped at
	// MaxInterval.
	BackoffExponential Backoff = "exponential"
)

// DefaultCommitInterval is the wait between commit attempts under
// BackoffFixed.
const DefaultCommitInterval = 100 * time.Millisecond

// RetryPolicy controls how Commit reacts to lock contention.
type RetryPolicy struct {
	Backoff     Backoff
	Interval    time.Duration
	MaxInterval time.Duration // exponential cap; 0 means no cap
	MaxAttempts int           // 0 means retry until the commit succeeds
}

// DefaultRetryPolicy retries every 100ms with no attempt bound.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Backoff:  BackoffFixed,
		Interval: DefaultCommitInterval,
	}
}

// ParseBackoff parses a backoff name. The empty string means BackoffFixed.
func ParseBackoff(s string) (Backoff, error) {
	switch Backoff(strings.ToLower(strings.TrimSpace(s))) {
	case "", BackoffFixed:
		return BackoffFixed, nil
	case BackoffExponential:
		return BackoffExponential, nil
	default:
		return "", fmt.Errorf("unknown backoff %q (want %s or %s)", s, BackoffFixed, BackoffExponential)
	}
}

// Validate rejects negative durations and attempt counts.
func (p RetryPolicy) Validate() error {
	if p.Interval < 0 || p.MaxInterval < 0 {
		return fmt.Errorf("retry policy: negative interval")
	}
	if p.MaxAttempts < 0 {
		return fmt.Errorf("retry policy: negative max attempts %d", p.MaxAttempts)
	}
	if _, err := ParseBackoff(string(p.Backoff)); err != nil {
		return fmt.Errorf("retry policy: %w", err)
	}
	return nil
}

// delay returns the wait after the given failed attempt (1-based).
func (p RetryPolicy) delay(attempt int) time.Duration {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultCommitInterval
	}
	if p.Backoff != BackoffExponential {
		return interval
	}

	d := interval
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxInterval > 0 && d >= p.MaxInterval {
			return p.MaxInterval
		}
	}
	if p.MaxInterval > 0 && d > p.MaxInterval {
		return p.MaxInterval
	}
	return d
}

// Committer runs a commit function until it succeeds, fails with a
// non-contention error, or the policy runs out of attempts.
type Committer struct {
	policy RetryPolicy
	log    *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewCommitter returns a Committer for the given policy. A nil logger uses
// slog.Default().
func NewCommitter(policy RetryPolicy, log *slog.Logger) *Committer {
	if log == nil {
		log = slog.Default()
	}
	return &Committer{
		policy: policy,
		log:    log,
		sleep:  sleepContext,
	}
}

// Policy returns the committer's retry policy.
func (c *Committer) Policy() RetryPolicy {
	return c.policy
}

// Run calls commit until it succeeds. Lock contention (see IsLockError) is
// retried after the policy's delay; anything else is returned unchanged.
// When MaxAttempts is exhausted Run returns *LockContentionError. A cancelled
// context stops the wait and returns the context error.
//
// Run returns the number of attempts made.
func (c *Committer) Run(ctx context.Context, commit func(context.Context) error) (int, error) {
	for attempt := 1; ; attempt++ {
		err := commit(ctx)
		if err == nil {
			if attempt > 1 {
				c.log.Debug("commit succeeded after contention", "attempts", attempt)
			}
			return attempt, nil
		}
		if !IsLockError(err) {
			return attempt, err
		}

		if c.policy.MaxAttempts > 0 && attempt >= c.policy.MaxAttempts {
			c.log.Warn("commit abandoned", "attempts", attempt, "error", err)
			return attempt, &LockContentionError{Attempts: attempt, Err: err}
		}

		wait := c.policy.delay(attempt)
		c.log.Debug("failed to commit, retrying", "attempt", attempt, "wait", wait, "error", err)

		if err := c.sleep(ctx, wait); err != nil {
			return attempt, err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
