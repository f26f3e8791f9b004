package bootstrap

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/edumate/edumate-orchestrator/internal/config"
	"github.com/edumate/edumate-orchestrator/internal/core/ports"
	"github.com/edumate/edumate-orchestrator/internal/core/usecase"
	"github.com/edumate/edumate-orchestrator/internal/infrastructure/auth"
	"github.com/edumate/edumate-orchestrator/internal/infrastructure/export/xlsx"
	"github.com/edumate/edumate-orchestrator/internal/infrastructure/grading"
	"github.com/edumate/edumate-orchestrator/internal/infrastructure/inspect"
	"github.com/edumate/edumate-orchestrator/internal/infrastructure/queue/nats"
	"github.com/edumate/edumate-orchestrator/internal/infrastructure/repository/postgres"
	"github.com/edumate/edumate-orchestrator/internal/infrastructure/resilience"
	"github.com/edumate/edumate-orchestrator/internal/infrastructure/restclient"
	"github.com/edumate/edumate-orchestrator/internal/infrastructure/roster"
	"github.com/edumate/edumate-orchestrator/internal/infrastructure/sessionstore"
	"github.com/edumate/edumate-orchestrator/internal/observability/metrics"
)

type App struct {
	Config   config.Config
	Registry *prometheus.Registry

	Queue ports.ProcessQueue

	IngestUC      ports.ImageIngestor
	ProcessUC     ports.SubmissionProcessor
	RunsUC        ports.RunReader
	ProvisionUC   ports.AssignmentProvisioner
	AttachmentsUC ports.RubricAttachmentManager
	GradebookUC   ports.GradebookService
	SessionUC     ports.SessionService

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, service string) (*App, error) {
	registry := metrics.NewRegistry()
	outboundMetrics := metrics.NewOutboundMetrics(registry)
	runMetrics := metrics.NewOrchestratorMetrics(registry, service)

	db, err := postgres.OpenDB(ctx, cfg.PostgresDSN, postgres.PoolOptions{
		MaxOpenConns: cfg.PostgresMaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	runs := postgres.NewRunRepository(db)
	if err := runs.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	executor := resilience.NewExecutor(
		resiliencePolicy(cfg),
		resilience.WithRetryHook(outboundMetrics.ObserveRetry),
		resilience.WithBreakerHook(outboundMetrics.ObserveBreakerState),
	)

	bus, err := nats.Connect(cfg.NATSURL, nats.Options{
		RequestSubject:     cfg.NATSRequestSubject,
		OutcomeSubject:     cfg.NATSOutcomeSubject,
		QueueGroup:         cfg.NATSQueueGroup,
		ResilienceExecutor: executor,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message bus: %w", err)
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.OutboundRateLimit), max(cfg.OutboundRateBurst, 1))
	gradingClient := restclient.New(cfg.GradingServiceURL, restclient.Options{
		Service:  "grading",
		Timeout:  cfg.HTTPClientTimeout,
		Executor: executor,
		Limiter:  limiter,
	})
	rosterClient := restclient.New(cfg.RosterServiceURL, restclient.Options{
		Service:  "roster",
		Timeout:  cfg.HTTPClientTimeout,
		Executor: executor,
		Limiter:  limiter,
	})
	authClient := restclient.New(cfg.AuthServiceURL, restclient.Options{
		Service: "auth",
		Timeout: cfg.HTTPClientTimeout,
	})

	submissions := grading.NewSubmissions(gradingClient)
	analyses := grading.NewAnalyses(gradingClient)
	rubrics := grading.NewRubrics(gradingClient)
	inspector := inspect.New()

	revocations, closeRevocations, err := revocationStore(ctx, cfg)
	if err != nil {
		bus.Close()
		_ = db.Close()
		return nil, err
	}

	processUC := usecase.NewProcessSubmissionUseCase(
		submissions,
		usecase.NewAnalysisResolver(analyses),
		runs,
		bus,
		runMetrics,
	)

	return &App{
		Config:   cfg,
		Registry: registry,
		Queue:    bus,

		IngestUC:      usecase.NewImageIngestionUseCase(submissions, inspector),
		ProcessUC:     processUC,
		RunsUC:        processUC,
		ProvisionUC:   usecase.NewProvisionAssignmentUseCase(roster.NewDirectory(rosterClient), rubrics, submissions, cfg.ProvisionParallelism),
		AttachmentsUC: usecase.NewRubricAttachmentUseCase(rubrics, inspector),
		GradebookUC:   usecase.NewGradebookUseCase(submissions, analyses, xlsx.NewGradebookRenderer()),
		SessionUC:     usecase.NewSessionUseCase(auth.NewClient(authClient), auth.NewTokenInspector(), revocations),

		closeFn: func() {
			bus.Close()
			closeRevocations()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// revocationStore shares logouts through Redis when REDIS_ADDR is set and
// falls back to process memory otherwise.
func revocationStore(ctx context.Context, cfg config.Config) (ports.RevocationStore, func(), error) {
	if cfg.RedisAddr == "" {
		return sessionstore.NewMemoryRevocations(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	return sessionstore.NewRedisRevocations(rdb), func() { _ = rdb.Close() }, nil
}

func resiliencePolicy(cfg config.Config) resilience.Policy {
	policy := resilience.DefaultPolicy()
	policy.RetryMaxAttempts = cfg.RetryMaxAttempts
	policy.RetryInitialBackoff = cfg.RetryInitialBackoff
	policy.RetryMaxBackoff = cfg.RetryMaxBackoff
	policy.RetryJitter = cfg.RetryJitter
	policy.BreakerEnabled = cfg.BreakerEnabled
	if cfg.BreakerMinRequests > 0 {
		policy.BreakerMinRequests = uint32(cfg.BreakerMinRequests)
	}
	policy.BreakerFailureRatio = cfg.BreakerFailureRatio
	policy.BreakerOpenTimeout = cfg.BreakerOpenTimeout
	return policy
}
