package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProcessDocumentTask(t *testing.T) {
	payload := ProcessDocumentPayload{
		ReportID:   "report-123",
		FilePath:   "/uploads/report-123.docx",
		Filename:   "quarterly.docx",
		TraceID:    "4bf92f3577b34da6a3ce929d0e0e4736",
		SpanID:     "00f067aa0ba902b7",
		EnqueuedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	task, err := NewProcessDocumentTask(payload)
	require.NoError(t, err)

	assert.Equal(t, TypeProcessDocument, task.Type())

	var decoded ProcessDocumentPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	assert.Equal(t, payload, decoded)
}

func TestProcessDocumentPayloadOmitsEmptyTrace(t *testing.T) {
	task, err := NewProcessDocumentTask(ProcessDocumentPayload{
		ReportID: "report-1",
		FilePath: "/uploads/report-1.docx",
		Filename: "doc.docx",
	})
	require.NoError(t, err)

	assert.NotContains(t, string(task.Payload()), "trace_id")
	assert.NotContains(t, string(task.Payload()), "span_id")
}
