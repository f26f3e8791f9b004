package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/edumate/edumate-orchestrator/internal/core/domain"
	"github.com/edumate/edumate-orchestrator/internal/infrastructure/resilience"
)

const (
	DefaultRequestSubject = "submissions.process"
	DefaultOutcomeSubject = "submissions.processed"
	DefaultQueueGroup     = "orchestrators"
)

// Bus carries process requests to workers and run outcomes to listeners.
type Bus struct {
	conn           *nats.Conn
	requestSubject string
	outcomeSubject string
	queueGroup     string
	executor       *resilience.Executor
}

type Options struct {
	RequestSubject       string
	OutcomeSubject       string
	QueueGroup           string
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
}

func (o Options) withDefaults() Options {
	if o.RequestSubject == "" {
		o.RequestSubject = DefaultRequestSubject
	}
	if o.OutcomeSubject == "" {
		o.OutcomeSubject = DefaultOutcomeSubject
	}
	if o.QueueGroup == "" {
		o.QueueGroup = DefaultQueueGroup
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = 2 * time.Second
	}
	if o.ReconnectWait <= 0 {
		o.ReconnectWait = 2 * time.Second
	}
	if o.MaxReconnects <= 0 {
		o.MaxReconnects = 60
	}
	return o
}

func Connect(url string, options Options) (*Bus, error) {
	options = options.withDefaults()
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}

	conn, err := nats.Connect(
		url,
		nats.Name("edumate-orchestrator"),
		nats.Timeout(options.ConnectTimeout),
		nats.ReconnectWait(options.ReconnectWait),
		nats.MaxReconnects(options.MaxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Bus{
		conn:           conn,
		requestSubject: options.RequestSubject,
		outcomeSubject: options.OutcomeSubject,
		queueGroup:     options.QueueGroup,
		executor:       options.ResilienceExecutor,
	}, nil
}

func (b *Bus) Close() {
	if b.conn != nil {
		b.conn.Close()
	}
}

func (b *Bus) PublishProcessRequest(ctx context.Context, req domain.ProcessRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal process request: %w", err)
	}
	return b.publish(ctx, "nats.publish_process_request", b.requestSubject, payload)
}

func (b *Bus) PublishRunOutcome(ctx context.Context, outcome domain.RunOutcome) error {
	payload, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("marshal run outcome: %w", err)
	}
	return b.publish(ctx, "nats.publish_run_outcome", b.outcomeSubject, payload)
}

func (b *Bus) publish(ctx context.Context, operation, subject string, payload []byte) error {
	call := func(_ context.Context) error {
		if err := b.conn.Publish(subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	var err error
	if b.executor != nil {
		err = b.executor.Do(ctx, operation, call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapTemporaryIfNeeded(operation, err)
	}
	return nil
}

// SubscribeProcessRequests blocks until ctx is done, then drains the subscription.
func (b *Bus) SubscribeProcessRequests(ctx context.Context, handler func(context.Context, domain.ProcessRequest) error) error {
	sub, err := b.conn.QueueSubscribe(b.requestSubject, b.queueGroup, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		handleProcessMessage(ctx, msg.Data, handler)
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := b.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := b.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

func handleProcessMessage(ctx context.Context, data []byte, handler func(context.Context, domain.ProcessRequest) error) {
	var req domain.ProcessRequest
	if err := json.Unmarshal(data, &req); err != nil {
		slog.Error("process_request_malformed", "error", err, "payload_bytes", len(data))
		return
	}
	if req.SubmissionID <= 0 {
		slog.Error("process_request_malformed", "error", "submission id is required")
		return
	}

	// A panicking handler must not take the subscription goroutine down;
	// the message is dropped and a resume request can pick the run up again.
	defer func() {
		if r := recover(); r != nil {
			slog.Error("process_request_panicked",
				"submission_id", req.SubmissionID,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
		}
	}()

	handlerCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := handler(handlerCtx, req); err != nil {
		attrs := []any{"submission_id", req.SubmissionID, "error", err}
		if phase, ok := domain.FailedPhase(err); ok {
			attrs = append(attrs, "phase", string(phase))
		}
		slog.Error("process_request_failed", attrs...)
	}
}
