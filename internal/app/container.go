package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"bookbridge-delivery/internal/config"
	"bookbridge-delivery/internal/gateway/agreements"
	"bookbridge-delivery/internal/gateway/payment"
	"bookbridge-delivery/internal/gateway/users"
	"bookbridge-delivery/internal/http/handlers"
	"bookbridge-delivery/internal/logx"
	"bookbridge-delivery/internal/metrics"
	"bookbridge-delivery/internal/notify"
	"bookbridge-delivery/internal/ratelimit"
	"bookbridge-delivery/internal/repository"
	"bookbridge-delivery/internal/service/delivery"
	"bookbridge-delivery/internal/service/payments"
)

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	dbConnect func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error)
	logFatalf func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dbConnect: connectDbWithRetry,
		logFatalf: log.Fatalf,
	}
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(
	fn func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error),
) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds and returns a new dig container
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerMetrics(container); err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	if err := registerDb(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerGateways(container); err != nil {
		return nil, fmt.Errorf("gateways: %w", err)
	}
	if err := registerService(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds and returns a new dig container
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func registerCore(container *dig.Container, ctx context.Context) error {
	return provideAll(container,
		func() context.Context { return ctx },
		func() *log.Logger { return log.Default() },
		NewLogger,
		config.Load,
	)
}

// registerCollector adds c to the default registry, reusing an already
// registered collector when the container is built more than once.
func registerCollector(c prometheus.Counter) prometheus.Counter {
	if err := prometheus.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector.(prometheus.Counter)
		}
	}
	return c
}

func registerMetrics(container *dig.Container) error {
	type provider struct {
		name string
		fn   func() prometheus.Counter
	}
	for _, p := range []provider{
		{"rate_limit_exceeded_total", metrics.NewRateLimitExceededTotal},
		{"gateway_retries_total", metrics.NewGatewayRetriesTotal},
		{"verify_failed_total", metrics.NewVerifyFailedTotal},
		{"webhook_rejected_total", metrics.NewWebhookRejectedTotal},
	} {
		fn := p.fn
		providerFn := func() prometheus.Counter { return registerCollector(fn()) }
		if err := container.Provide(providerFn, dig.Name(p.name)); err != nil {
			return fmt.Errorf("provide counter %s: %w", p.name, err)
		}
	}
	return nil
}

func registerDb(
	container *dig.Container,
	dbConnect func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error),
) error {
	providerDB := func(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
		return dbConnect(ctx, cfg.DB.DSN(), 10, time.Second)
	}
	return provideAll(container, providerDB)
}

type agreementsGatewayIn struct {
	dig.In
	Cfg     *config.Config
	Logger  logx.Logger
	Retries prometheus.Counter `name:"gateway_retries_total"`
}

func registerGateways(container *dig.Container) error {
	return provideAll(container,
		func(cfg *config.Config, logger logx.Logger) *payment.HTTPGateway {
			return payment.NewHTTPGateway(
				cfg.Payments.BaseURL,
				cfg.Payments.KeyID,
				cfg.Payments.KeySecret,
				nil,
				logger,
			)
		},
		func(in agreementsGatewayIn) *agreements.RetryingGateway {
			base := agreements.NewHTTPGateway(in.Cfg.Agreements.BaseURL, nil)
			return agreements.NewRetryingGateway(base, in.Logger, in.Retries, agreements.RetryConfig{
				MaxAttempts: in.Cfg.Agreements.MaxAttempts,
				BaseDelay:   in.Cfg.Agreements.BaseDelay,
				MaxDelay:    in.Cfg.Agreements.MaxDelay,
			})
		},
		func(cfg *config.Config) *users.HTTPGateway {
			return users.NewHTTPGateway(cfg.Agreements.BaseURL, nil)
		},
		func(cfg *config.Config, logger logx.Logger) (notify.Dispatcher, error) {
			kd, err := notify.NewKafkaDispatcher(cfg.Kafka.Brokers, cfg.Kafka.NotifyTopic, logger)
			if err != nil {
				return nil, err
			}
			if kd == nil {
				return notify.Nop(), nil
			}
			return kd, nil
		},
	)
}

type deliveryServiceIn struct {
	dig.In
	Repo        *repository.DeliveryRepo
	Agreements  *agreements.RetryingGateway
	Users       *users.HTTPGateway
	Payments    *payment.HTTPGateway
	Dispatcher  notify.Dispatcher
	Cfg         *config.Config
	Logger      logx.Logger
	VerifyFails prometheus.Counter `name:"verify_failed_total"`
}

func registerService(container *dig.Container) error {
	return provideAll(container,
		repository.NewDeliveryRepo,
		func(in deliveryServiceIn) *delivery.Service {
			verifyLimiter := ratelimit.NewTokenBucketPerWindow(
				ratelimit.RealClock{},
				in.Cfg.Delivery.VerifyMaxAttempts,
				in.Cfg.Delivery.VerifyWindow,
				10*time.Minute,
				100000,
			)
			return delivery.NewService(in.Repo, in.Agreements, in.Users, in.Payments, in.Logger, delivery.Options{
				Dispatcher:    in.Dispatcher,
				VerifyLimiter: verifyLimiter,
				VerifyFails:   in.VerifyFails,
				Policy: delivery.Policy{
					Ordering:  delivery.OrderingPolicy(in.Cfg.Delivery.Ordering),
					FeeAmount: in.Cfg.Delivery.FeeAmount,
				},
				CaptureTimeout: in.Cfg.Payments.CaptureTimeout,
			})
		},
		func(repo *repository.DeliveryRepo, logger logx.Logger) *payments.Processor {
			return payments.NewProcessor(repo, logger)
		},
	)
}

type webhookHandlerIn struct {
	dig.In
	Logger    logx.Logger
	Processor *payments.Processor
	Cfg       *config.Config
	Rejected  prometheus.Counter `name:"webhook_rejected_total"`
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	return provideAll(container,
		handlers.New,
		handlers.NewDeliveryUsecase,
		handlers.NewDeliveryHandler,
		func(in webhookHandlerIn) *handlers.WebhookHandler {
			proc := handlers.NewPaymentEventProcessor(in.Processor)
			return handlers.NewWebhookHandler(in.Logger, proc, in.Cfg.Payments.WebhookSecret, in.Rejected)
		},
		newRateLimitMiddleware,
		routerProvider,
		serverProvider,
	)
}
