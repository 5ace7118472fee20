package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"

	"bookbridge-delivery/internal/notify"
)

const shutdownTimeout = 15 * time.Second

// MustRun serves HTTP until the container context is cancelled, then
// shuts down gracefully.
func MustRun(container *dig.Container) {
	err := run(container)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		log.Println("shutdown requested, exiting")
	case errors.Is(err, context.DeadlineExceeded):
		log.Println("startup aborted: startup timeout exceeded")
	default:
		log.Fatalf("run error: %v", err)
	}
}

func run(container *dig.Container) error {
	return container.Invoke(func(server *http.Server, ctx context.Context, pool *pgxpool.Pool, dispatcher notify.Dispatcher, logger *log.Logger) error {
		go func() {
			logger.Printf("service-delivery listening on %s", server.Addr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("listen error: %v", err)
			}
		}()

		<-ctx.Done()
		logger.Println("shutting down service-delivery...")

		gracefulShutdown(server, logger, shutdownTimeout)
		closeResources(pool, server, dispatcher, logger)
		return nil
	})
}

func gracefulShutdown(srv *http.Server, logger *log.Logger, timeout time.Duration) {
	shCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Printf("graceful shutdown error: %v", err)
	}
}

func closeResources(pool *pgxpool.Pool, server *http.Server, dispatcher notify.Dispatcher, logger *log.Logger) {
	if err := server.Close(); err != nil {
		logger.Printf("server close error: %v", err)
	}
	// drain in-flight notification publishes before dropping the broker
	if closer, ok := dispatcher.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Printf("dispatcher close error: %v", err)
		}
	}
	if pool != nil {
		pool.Close()
	}
}
