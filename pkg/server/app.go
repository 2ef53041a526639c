package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	drepo "CoinLake/internal/domain/repository"
	"CoinLake/internal/usecase"
	pkgch "CoinLake/pkg/clickhouse"
	"CoinLake/pkg/config"
	xhttp "CoinLake/pkg/http"
	applogger "CoinLake/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	sup        *usecase.Supervisor
	handler    xhttp.Handler
	chClient   *pkgch.Client
	pub        drepo.BatchPublisher
	store      drepo.ObjectStore
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	sup *usecase.Supervisor,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	pub drepo.BatchPublisher,
	store drepo.ObjectStore,
) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		sup:      sup,
		handler:  handler,
		chClient: chClient,
		pub:      pub,
		store:    store,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.ensureContainers(ctx); err != nil {
		return err
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	supDone := make(chan struct{})
	go func() {
		defer close(supDone)
		if err := a.sup.Run(ctx); err != nil {
			a.log.Error("supervisor error", applogger.Error(err))
		}
	}()

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("backend", a.cfg.Backend.Type),
		applogger.Int("port", a.cfg.Server.Port),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown(supDone)
}

// ensureContainers creates the storage namespaces up front so the first
// flush never races container creation.
func (a *App) ensureContainers(ctx context.Context) error {
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	for _, name := range []string{usecase.BronzeContainer, usecase.HistoricalContainer} {
		if err := a.store.CreateContainer(cctx, name); err != nil {
			return err
		}
	}
	return nil
}

// shutdown waits for the supervisor drain, then stops the HTTP server and
// closes infrastructure clients.
func (a *App) shutdown(supDone <-chan struct{}) error {
	select {
	case <-supDone:
	case <-time.After(30 * time.Second):
		a.log.Warn("supervisor did not stop in time")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.pub != nil {
		if err := a.pub.Close(); err != nil {
			a.log.Warn("publisher close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
