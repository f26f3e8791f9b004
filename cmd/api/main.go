package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/netutil"

	httpadapter "github.com/edumate/edumate-orchestrator/internal/adapters/http"
	"github.com/edumate/edumate-orchestrator/internal/bootstrap"
	"github.com/edumate/edumate-orchestrator/internal/config"
	"github.com/edumate/edumate-orchestrator/internal/observability/logging"
	"github.com/edumate/edumate-orchestrator/internal/observability/metrics"
)

const serviceName = "edumate-api"

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

	router := httpadapter.NewRouter(cfg, httpadapter.Dependencies{
		Ingest:      app.IngestUC,
		Process:     app.ProcessUC,
		Runs:        app.RunsUC,
		Queue:       app.Queue,
		Provision:   app.ProvisionUC,
		Attachments: app.AttachmentsUC,
		Gradebook:   app.GradebookUC,
		Sessions:    app.SessionUC,

		Metrics:        metrics.NewHTTPServerMetrics(app.Registry, serviceName),
		MetricsHandler: metrics.Handler(app.Registry),
	}).Handler()

	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		slog.Error("api_listen_failed", "addr", server.Addr, "error", err)
		os.Exit(1)
	}
	if cfg.MaxConnections > 0 {
		listener = netutil.LimitListener(listener, cfg.MaxConnections)
	}

	go func() {
		slog.Info("api_listening", "addr", server.Addr, "max_connections", cfg.MaxConnections)
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_failed", "error", err)
	}
}
