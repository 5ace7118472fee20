package app

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"bookbridge-delivery/internal/config"
	"bookbridge-delivery/internal/http/handlers"
	ratelimitmw "bookbridge-delivery/internal/http/middleware/ratelimit"
	"bookbridge-delivery/internal/http/router"
	"bookbridge-delivery/internal/logx"
	"bookbridge-delivery/internal/ratelimit"
)

func newRateLimiter(cfg *config.Config) ratelimit.Limiter {
	rl := cfg.RateLimit
	if rl.Limit <= 0 {
		return ratelimit.NopLimiter{}
	}
	return ratelimit.NewTokenBucketPerWindow(
		ratelimit.RealClock{},
		rl.Limit,
		rl.Window,
		rateLimitBucketTTL,
		rateLimitMaxBuckets,
	)
}

const (
	rateLimitBucketTTL  = 10 * time.Minute
	rateLimitMaxBuckets = 100000
)

type rateLimitIn struct {
	dig.In
	Cfg     *config.Config
	Logger  logx.Logger
	Counter prometheus.Counter `name:"rate_limit_exceeded_total"`
}

func newRateLimitMiddleware(in rateLimitIn) *ratelimitmw.Middleware {
	return ratelimitmw.New(in.Logger, in.Counter, newRateLimiter(in.Cfg))
}

func routerProvider(
	logger logx.Logger,
	base *handlers.Handlers,
	deliveries *handlers.DeliveryHandler,
	webhooks *handlers.WebhookHandler,
	mw *ratelimitmw.Middleware,
) http.Handler {
	return router.New(logger, base, deliveries, webhooks, mw.Handler())
}
