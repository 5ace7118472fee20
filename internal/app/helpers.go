package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"bookbridge-delivery/internal/repository"
)

var newPool = repository.NewPool

const connectAttemptTimeout = 3 * time.Second

// connectDbWithRetry dials postgres up to retries times, sleeping delay
// between attempts. Each attempt gets its own timeout so a hanging dial
// cannot eat the whole budget.
func connectDbWithRetry(ctx context.Context, dsn string, retries int, delay time.Duration) (*pgxpool.Pool, error) {
	var lastErr error
	for attempt := 1; ; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, connectAttemptTimeout)
		pool, err := newPool(attemptCtx, dsn)
		cancel()
		if err == nil {
			log.Printf("postgres ready (attempt %d)", attempt)
			return pool, nil
		}
		lastErr = err
		log.Printf("postgres not ready, attempt %d/%d: %v", attempt, retries, err)

		if attempt >= retries {
			return nil, fmt.Errorf("postgres unreachable after %d attempts: %w", retries, lastErr)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}
