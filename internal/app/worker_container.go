package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"

	"bookbridge-delivery/internal/config"
	"bookbridge-delivery/internal/logx"
	"bookbridge-delivery/internal/repository"
	"bookbridge-delivery/internal/service/payments"
	"bookbridge-delivery/internal/transport/kafka"
)

// WorkerContainerBuilder builds the DI container for the payment-events
// worker: no HTTP surface, just the store, the processor and the
// consumer.
type WorkerContainerBuilder struct {
	dbConnect func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error)
	logFatalf func(string, ...interface{})
}

// NewWorkerContainerBuilder returns a new worker container builder
func NewWorkerContainerBuilder() *WorkerContainerBuilder {
	return &WorkerContainerBuilder{
		dbConnect: connectDbWithRetry,
		logFatalf: log.Fatalf,
	}
}

// WithDBConnect sets the database connection function
func (b *WorkerContainerBuilder) WithDBConnect(
	fn func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error),
) *WorkerContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// MustBuild builds and returns a new dig container
func (b *WorkerContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build worker container: %v", err)
	}
	return container
}

func (b *WorkerContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerDb(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := provideAll(container,
		repository.NewDeliveryRepo,
		func(repo *repository.DeliveryRepo, logger logx.Logger) *payments.Processor {
			return payments.NewProcessor(repo, logger)
		},
		func(cfg *config.Config, p *payments.Processor, logger logx.Logger) (*kafka.Consumer, error) {
			return kafka.NewConsumer(
				cfg.Kafka.Brokers,
				cfg.Kafka.GroupID,
				cfg.Kafka.PaymentsTopic,
				p.Handle,
				logger,
			)
		},
	); err != nil {
		return nil, fmt.Errorf("worker: %w", err)
	}
	return container, nil
}

// MustBuildWorkerContainer builds and returns the worker container
func MustBuildWorkerContainer(ctx context.Context) *dig.Container {
	return NewWorkerContainerBuilder().MustBuild(ctx)
}
