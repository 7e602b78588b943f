// Package queue moves document processing off the request path using
// asynq over Redis. The API enqueues one task per upload; the worker runs
// the same pipeline the synchronous path uses.
package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// TypeProcessDocument is the task type for the analysis pipeline
const TypeProcessDocument = "docready:process_document"

// QueueDocuments is the queue name document tasks land on
const QueueDocuments = "document-processing"

// ProcessDocumentPayload carries everything the worker needs to run the
// pipeline, plus trace identifiers so worker spans link back to the
// enqueuing request.
type ProcessDocumentPayload struct {
	ReportID   string    `json:"report_id"`
	FilePath   string    `json:"file_path"`
	Filename   string    `json:"filename"`
	TraceID    string    `json:"trace_id,omitempty"`
	SpanID     string    `json:"span_id,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewProcessDocumentTask builds the asynq task for a document
func NewProcessDocumentTask(payload ProcessDocumentPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task payload: %w", err)
	}
	return asynq.NewTask(TypeProcessDocument, data), nil
}
