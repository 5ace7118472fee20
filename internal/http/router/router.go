package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bookbridge-delivery/internal/http/handlers"
	mw "bookbridge-delivery/internal/http/middleware"
	"bookbridge-delivery/internal/logx"
)

// New constructs a chi-based http.Handler with base middleware and routes.
// rateLimit may be nil, in which case no limiting is applied.
func New(
	logger logx.Logger,
	base *handlers.Handlers,
	deliveries *handlers.DeliveryHandler,
	webhooks *handlers.WebhookHandler,
	rateLimit func(http.Handler) http.Handler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.Observability(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/ping", base.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(base.HealthcheckHead))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/deliveries", func(r chi.Router) {
		if rateLimit != nil {
			r.Use(rateLimit)
		}
		r.Post("/", deliveries.Create)
		r.Get("/available", deliveries.Available)
		r.Post("/{id}/assign", deliveries.Assign)
		r.Post("/{id}/pay", deliveries.Pay)
		r.Post("/{id}/verify", deliveries.Verify)
		r.Patch("/{id}/status", deliveries.UpdateStatus)
		r.Post("/{id}/cancel", deliveries.Cancel)
		r.Get("/{id}/tracking", deliveries.Track)
	})

	// webhook is authenticated by signature, not by user header, and is
	// not rate limited so the processor never sees spurious 429s
	r.Post("/webhooks/payments", webhooks.Receive)

	r.NotFound(http.HandlerFunc(base.NotFound))

	return r
}
