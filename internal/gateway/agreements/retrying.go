package agreements

import (
	"context"
	"errors"
	"net/http"
	"time"

	"bookbridge-delivery/internal/domain"
	"bookbridge-delivery/internal/logx"
)

type gateway interface {
	Get(context.Context, int64) (*domain.BorrowAgreement, error)
}

type counter interface {
	Inc()
}

// RetryConfig describes RetryingGateway behavior.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RetryingGateway wraps an agreements gateway with bounded retries on
// transient upstream failures.
type RetryingGateway struct {
	next    gateway
	logger  logx.Logger
	retries counter
	cfg     RetryConfig
}

// NewRetryingGateway checks that next is not nil and returns a RetryingGateway.
func NewRetryingGateway(next gateway, logger logx.Logger, retries counter, cfg RetryConfig) *RetryingGateway {
	if next == nil {
		return nil
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &RetryingGateway{next: next, logger: logger, retries: retries, cfg: cfg}
}

// Get fetches a borrow agreement, retrying transient upstream errors.
func (g *RetryingGateway) Get(ctx context.Context, id int64) (*domain.BorrowAgreement, error) {
	var lastErr error
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		agreement, err := g.next.Get(ctx, id)
		if err == nil {
			return agreement, nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == g.cfg.MaxAttempts || !isRetryable(err) {
			break
		}

		delay := backoff(g.cfg.BaseDelay, g.cfg.MaxDelay, attempt)
		if g.retries != nil {
			g.retries.Inc()
		}
		g.logger.Warn("agreements gateway retry",
			logx.Int64("agreement_id", id),
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Err(err),
		)
		if !sleepWithContext(ctx, delay) {
			break
		}
	}
	return nil, lastErr
}

// isRetryable reports whether the error is a transient upstream failure.
func isRetryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.status == http.StatusTooManyRequests || se.status >= 500
	}
	var te *transportError
	return errors.As(err, &te)
}

// backoff computes the retry delay for an attempt.
func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if d > max {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
