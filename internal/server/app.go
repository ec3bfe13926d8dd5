// Package server runs the development stub of the cloud drive service over
// HTTP and shuts it down gracefully on SIGINT, SIGTERM or SIGQUIT.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/clouddrive/internal/logging"
	"github.com/dmitrijs2005/clouddrive/internal/server/config"
	"github.com/dmitrijs2005/clouddrive/internal/testutil/stubserver"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	handler http.Handler
}

func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	if c.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	stub := stubserver.New([]byte(c.SecretKey),
		stubserver.WithTokenTTL(c.AccessTokenValidityDuration),
		stubserver.WithLogger(logger),
	)
	return &App{config: c, logger: logger, handler: stub.Handler()}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Serve accepts connections on l until ctx is cancelled. On cancellation it
// returns only after in-flight requests have drained or shutdownTimeout passed.
func (app *App) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveDone := make(chan struct{})
	shutdownDone := make(chan struct{})

	go func() {
		defer close(shutdownDone)
		select {
		case <-ctx.Done():
		case <-serveDone:
			return
		}

		app.logger.Info(context.Background(), "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "shutdown failed", "error", err.Error())
		}
	}()

	app.logger.Info(ctx, "Stub server listening", "addr", l.Addr().String())
	err := srv.Serve(l)
	close(serveDone)
	<-shutdownDone

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Run listens on the configured address and blocks until a termination
// signal arrives or the server fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	l, err := net.Listen("tcp", app.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", app.config.ListenAddr, err)
	}

	var (
		wg     sync.WaitGroup
		runErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.Serve(ctx, l); err != nil {
			runErr = err
			cancelFunc()
		}
	}()

	wg.Wait()
	return runErr
}
