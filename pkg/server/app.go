package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"MarketBrief/internal/handler/api"
	"MarketBrief/internal/service/events"
	"MarketBrief/internal/usecase"
	"MarketBrief/pkg/cache"
	"MarketBrief/pkg/config"
	xhttp "MarketBrief/pkg/http"
	applogger "MarketBrief/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg       *config.Config
	logger    *applogger.Logger
	handler   *api.AnalysisHandler
	uc        *usecase.AnalysisUsecase
	cache     cache.Service
	publisher *events.Publisher

	httpServer *xhttp.Server
	cron       *cron.Cron
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	handler *api.AnalysisHandler,
	uc *usecase.AnalysisUsecase,
	cacheSvc cache.Service,
	publisher *events.Publisher,
) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		handler:   handler,
		uc:        uc,
		cache:     cacheSvc,
		publisher: publisher,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
	)

	if err := a.startScheduler(ctx); err != nil {
		return err
	}

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("serving",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Strings("symbols", a.cfg.Symbols))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// startScheduler arms the cron trigger when one is configured. Scheduled
// runs execute in the background; results only reach logs and the event
// stream.
func (a *App) startScheduler(ctx context.Context) error {
	spec := a.cfg.Schedule.Cron
	if spec == "" {
		return nil
	}

	a.cron = cron.New()
	_, err := a.cron.AddFunc(spec, func() {
		a.logger.Info("scheduled trigger initiated")
		a.uc.Run(ctx, usecase.TriggerScheduled)
	})
	if err != nil {
		a.logger.Error("invalid cron expression",
			applogger.String("cron", spec), applogger.Error(err))
		return err
	}

	a.cron.Start()
	a.logger.Info("scheduler armed", applogger.String("cron", spec))
	return nil
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	if a.cron != nil {
		// Wait for an in-flight scheduled run before tearing down.
		<-a.cron.Stop().Done()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	a.logger.RemoveCollector()
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("event publisher close error", applogger.Error(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("cache close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
