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

	"github.com/edumate/edumate-orchestrator/internal/bootstrap"
	"github.com/edumate/edumate-orchestrator/internal/config"
	"github.com/edumate/edumate-orchestrator/internal/core/domain"
	"github.com/edumate/edumate-orchestrator/internal/observability/logging"
	"github.com/edumate/edumate-orchestrator/internal/observability/metrics"
)

const serviceName = "edumate-worker"

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, serviceName)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           metrics.Handler(app.Registry),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("worker_metrics_server_failed", "error", err)
		}
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSRequestSubject, "queue_group", cfg.NATSQueueGroup)
	err = app.Queue.SubscribeProcessRequests(ctx, func(handlerCtx context.Context, req domain.ProcessRequest) error {
		_, err := app.ProcessUC.Process(handlerCtx, req)
		return err
	})
	if err != nil {
		slog.Error("worker_subscribe_failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)
}
