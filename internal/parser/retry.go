package parser

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"invoicerecon/internal/config"
	"invoicerecon/internal/logger"
	"invoicerecon/internal/port"
)

// RetryPolicy is the backoff applied around a single extractor call.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxJitter   time.Duration
}

// PolicyFromConfig builds a RetryPolicy from the retry config section.
func PolicyFromConfig(cfg config.RetryConfig) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.BaseDelay,
		MaxJitter:   cfg.MaxJitter,
	}
}

// Delay returns the wait before the attempt following attempt (0-based).
// r is a uniform sample in [0, 1).
func (p RetryPolicy) Delay(attempt int, r float64) time.Duration {
	backoff := p.BaseDelay << uint(attempt)
	if backoff < 0 {
		backoff = p.BaseDelay
	}
	return backoff + time.Duration(r*float64(p.MaxJitter))
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RetryingExtractor wraps an Extractor with exponential backoff and jitter.
// It implements port.Extractor.
type RetryingExtractor struct {
	next   port.Extractor
	policy RetryPolicy
	sleep  Sleeper
	rnd    func() float64
	log    zerolog.Logger
}

// NewRetryingExtractor wraps next with the given policy.
func NewRetryingExtractor(next port.Extractor, policy RetryPolicy, log zerolog.Logger) *RetryingExtractor {
	return NewRetryingExtractorWithSleeper(next, policy, log, sleepContext)
}

// NewRetryingExtractorWithSleeper allows tests to observe delays instead of sleeping.
func NewRetryingExtractorWithSleeper(next port.Extractor, policy RetryPolicy, log zerolog.Logger, sleep Sleeper) *RetryingExtractor {
	return &RetryingExtractor{
		next:   next,
		policy: policy,
		sleep:  sleep,
		rnd:    rand.Float64,
		log:    logger.Component(log, "retrying_extractor"),
	}
}

func (r *RetryingExtractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	attempts := r.policy.attempts()
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		out, err := r.next.Extract(ctx, input)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !IsRetryable(err) || ctx.Err() != nil {
			return nil, err
		}
		if attempt == attempts-1 {
			break
		}

		delay := r.policy.Delay(attempt, r.rnd())
		var rlErr *RateLimitError
		if errors.As(err, &rlErr) && rlErr.RetryAfter > delay {
			delay = rlErr.RetryAfter
		}

		r.log.Warn().
			Err(err).
			Str("file", input.FileName).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("extraction failed, retrying")

		if err := r.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("extraction failed after %d attempts: %w", attempts, lastErr)
}
