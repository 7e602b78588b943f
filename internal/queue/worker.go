package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zombar/docready/internal/service"
	"github.com/zombar/docready/internal/tracing"
)

// Worker consumes document tasks and runs them through the pipeline
type Worker struct {
	server  *asynq.Server
	service *service.Service
	logger  *slog.Logger
}

// NewWorker creates a queue worker. concurrency bounds in-flight tasks.
func NewWorker(redisAddr string, svc *service.Service, concurrency int) *Worker {
	logger := slog.Default()

	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr},
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				QueueDocuments: 10,
				"default":      1,
			},
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				// 10s, 20s, 40s
				return time.Duration(10*(1<<n)) * time.Second
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logger.Error("task failed",
					"type", task.Type(),
					"retried", retried,
					"max_retry", maxRetry,
					"error", err,
				)
			}),
		},
	)

	return &Worker{server: server, service: svc, logger: logger}
}

// Run starts the worker and blocks until shutdown
func (w *Worker) Run() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeProcessDocument, w.handleProcessDocument)

	if err := w.server.Run(mux); err != nil {
		return fmt.Errorf("queue worker failed: %w", err)
	}
	return nil
}

// Shutdown stops the worker, waiting for in-flight tasks
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

func (w *Worker) handleProcessDocument(ctx context.Context, task *asynq.Task) error {
	var payload ProcessDocumentPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	if payload.TraceID != "" && payload.SpanID != "" {
		ctx = tracing.ContextWithRemoteSpan(ctx, payload.TraceID, payload.SpanID)
	}
	ctx, span := tracing.Tracer().Start(ctx, "queue.ProcessDocument",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("report.id", payload.ReportID),
			attribute.String("document.filename", payload.Filename),
		),
	)
	defer span.End()

	w.logger.Info("processing queued document",
		"report_id", payload.ReportID,
		"filename", payload.Filename,
		"queued_for", time.Since(payload.EnqueuedAt).String(),
	)

	_, err := w.service.Process(ctx, payload.ReportID, payload.FilePath, payload.Filename)
	if err != nil {
		var permanent *service.PermanentError
		if errors.As(err, &permanent) {
			// Corrupt or unsupported documents will not improve on retry
			w.logger.Warn("dropping unprocessable document",
				"report_id", payload.ReportID,
				"error", err,
			)
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	return nil
}
