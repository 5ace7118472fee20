package app

import (
	"context"
	"log"
	"net/http"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"

	"bookbridge-delivery/internal/notify"
)

func TestGracefulShutdown_DoesNotPanic(t *testing.T) {
	t.Parallel()

	srv := &http.Server{
		Addr:    "127.0.0.1:0",
		Handler: http.NewServeMux(),
	}
	logger := log.New(log.Writer(), "", 0)

	require.NotPanics(t, func() {
		gracefulShutdown(srv, logger, 100*time.Millisecond)
	})
}

func TestRun_InvokesServerLifecycleViaContainer(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container := dig.New()

	require.NoError(t, container.Provide(func() context.Context {
		return ctx
	}))
	require.NoError(t, container.Provide(func() *log.Logger {
		return log.New(log.Writer(), "", 0)
	}))
	require.NoError(t, container.Provide(func() *pgxpool.Pool {
		return nil
	}))
	require.NoError(t, container.Provide(func() notify.Dispatcher {
		return notify.Nop()
	}))
	require.NoError(t, container.Provide(func() *http.Server {
		return &http.Server{
			Addr:    "127.0.0.1:0",
			Handler: http.NewServeMux(),
		}
	}))

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := run(container)
	require.NoError(t, err)
}
