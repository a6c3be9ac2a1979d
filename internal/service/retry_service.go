package service

import (
	"context"
	"errors"
	"time"

	"commerce-sync-service/internal/core/domain"

	"github.com/rs/zerolog"
)

// RetryPolicy bounds retries of a single remote call. Stateless between
// invocations: each Execute keeps its own attempt counter.
type RetryPolicy struct {
	MaxAttempts       int
	BaseDelay         time.Duration
	Multiplier        float64
	MaxDelay          time.Duration
	RetryAfterDefault time.Duration
}

// DefaultRetryPolicy matches the upstream API's documented guidance.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:       3,
		BaseDelay:         time.Second,
		Multiplier:        2,
		MaxDelay:          30 * time.Second,
		RetryAfterDefault: 5 * time.Second,
	}
}

// backoffDelay returns BaseDelay * Multiplier^(failures-1), capped at
// MaxDelay. Computed in float64 so large failure counts saturate at the cap
// instead of overflowing.
func (p RetryPolicy) backoffDelay(failures int) time.Duration {
	d := float64(p.BaseDelay)
	for i := 1; i < failures; i++ {
		d *= p.Multiplier
		if d >= float64(p.MaxDelay) {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(d)
}

// RetryExecutor wraps remote calls with bounded retry, exponential backoff,
// and explicit rate-limit handling.
type RetryExecutor struct {
	policy RetryPolicy
	log    zerolog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewRetryExecutor creates an executor for the given policy.
func NewRetryExecutor(policy RetryPolicy, log zerolog.Logger) *RetryExecutor {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	if policy.Multiplier <= 0 {
		policy.Multiplier = 1
	}
	return &RetryExecutor{
		policy: policy,
		log:    log,
		sleep:  sleepContext,
	}
}

// Execute runs op up to MaxAttempts times.
//
// Rate-limit responses wait for the server's retry-after hint (or the
// configured default); that wait is authoritative and does not escalate the
// exponential backoff schedule. Other retryable failures wait
// BaseDelay * Multiplier^(n-1) for the n-th such failure, capped at
// MaxDelay. Non-retryable failures surface immediately; an exhausted budget
// surfaces *domain.ExhaustedRetriesError wrapping the last failure.
func (e *RetryExecutor) Execute(ctx context.Context, op func(context.Context) error) error {
	var last error
	backoffFailures := 0

	for attempt := 1; attempt <= e.policy.MaxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !domain.IsRetryable(err) {
			return err
		}
		last = err
		if attempt == e.policy.MaxAttempts {
			break
		}

		var wait time.Duration
		var rl *domain.RateLimitError
		if errors.As(err, &rl) {
			wait = rl.RetryAfter
			if wait <= 0 {
				wait = e.policy.RetryAfterDefault
			}
			e.log.Warn().
				Int("attempt", attempt).
				Dur("wait", wait).
				Msg("retry: rate limited, honoring retry-after")
		} else {
			backoffFailures++
			wait = e.policy.backoffDelay(backoffFailures)
			e.log.Warn().
				Err(err).
				Int("attempt", attempt).
				Dur("wait", wait).
				Msg("retry: transient failure, backing off")
		}

		if err := e.sleep(ctx, wait); err != nil {
			return err
		}
	}

	return &domain.ExhaustedRetriesError{Attempts: e.policy.MaxAttempts, Last: last}
}

// ExecuteValue runs op through e and returns its value alongside the final
// error.
func ExecuteValue[T any](ctx context.Context, e *RetryExecutor, op func(context.Context) (T, error)) (T, error) {
	var out T
	err := e.Execute(ctx, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
