package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

type retrying struct {
	next   Provider
	policy RetryConfig
}

// WithRetry retries temporary ProviderErrors with capped exponential
// backoff. A MaxAttempts below 1 means a single attempt.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &retrying{next: p, policy: cfg}
}

func (r *retrying) Complete(ctx context.Context, p Prompt) (*Completion, error) {
	for attempt := 1; ; attempt++ {
		c, err := r.next.Complete(ctx, p)
		if err == nil {
			return c, nil
		}

		var pe *ProviderError
		if !errors.As(err, &pe) || !pe.Temporary() || attempt >= r.policy.MaxAttempts {
			return nil, err
		}

		wait := pe.RetryAfter
		if wait <= 0 {
			wait = r.policy.delay(attempt)
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

func (r *retrying) Name() string { return r.next.Name() }

// delay doubles InitialWait per attempt up to MaxWait, then jitters by up to
// a fifth either way.
func (c RetryConfig) delay(attempt int) time.Duration {
	d := c.InitialWait << (attempt - 1)
	if d <= 0 || (c.MaxWait > 0 && d > c.MaxWait) {
		d = c.MaxWait
	}
	jitter := time.Duration(float64(d) * 0.2 * (2*rand.Float64() - 1))
	return max(d+jitter, 0)
}
