package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/zombar/docready/internal/tracing"
)

// Client enqueues document processing tasks
type Client struct {
	client *asynq.Client
	logger *slog.Logger
}

// NewClient creates a queue client connected to Redis at redisAddr
func NewClient(redisAddr string) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr}),
		logger: slog.Default(),
	}
}

// Close releases the Redis connection
func (c *Client) Close() error {
	return c.client.Close()
}

// EnqueueProcessDocument queues a document for background analysis. The
// report ID doubles as the task ID, so re-enqueueing the same report while
// a task is pending is a no-op rather than a duplicate.
func (c *Client) EnqueueProcessDocument(ctx context.Context, reportID, filePath, filename string) error {
	payload := ProcessDocumentPayload{
		ReportID:   reportID,
		FilePath:   filePath,
		Filename:   filename,
		TraceID:    tracing.TraceIDFromContext(ctx),
		SpanID:     tracing.SpanIDFromContext(ctx),
		EnqueuedAt: time.Now().UTC(),
	}

	task, err := NewProcessDocumentTask(payload)
	if err != nil {
		return err
	}

	info, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueDocuments),
		asynq.TaskID(reportID),
		asynq.MaxRetry(3),
		asynq.Timeout(5*time.Minute),
		asynq.Retention(7*24*time.Hour),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue document task: %w", err)
	}

	c.logger.Info("enqueued document for processing",
		"task_id", info.ID,
		"queue", info.Queue,
		"report_id", reportID,
		"filename", filename,
	)
	return nil
}
