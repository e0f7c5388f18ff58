package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/kirillkom/blood-insights/internal/adapters/http"
	"github.com/kirillkom/blood-insights/internal/bootstrap"
	"github.com/kirillkom/blood-insights/internal/config"
	"github.com/kirillkom/blood-insights/internal/observability/logging"
)

const serviceName = "blood-dashboard"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, serviceName, logger)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	router := httpadapter.NewRouter(cfg, httpadapter.Services{
		Auth:     app.Auth,
		Session:  app.Session,
		Catalog:  app.Catalog,
		Analysis: app.Analysis,
		History:  app.History,
		Speech:   app.Narrator,
		Metrics:  app.Metrics,
	}).Handler()
	server := &http.Server{
		Addr:              ":" + cfg.DashboardPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		// Backend calls carry no client timeout, so responses are not cut short here either.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("dashboard_listening",
			"port", cfg.DashboardPort,
			"backend_mode", cfg.BackendMode,
			"session_store", cfg.SessionStore,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("dashboard_server_error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("dashboard_shutdown_error", "error", err)
	}
}
