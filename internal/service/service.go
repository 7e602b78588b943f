// Package service orchestrates the document pipeline: metadata capture,
// optional format conversion, validation, parsing, analysis and
// persistence. Both the synchronous API path and the queue worker run the
// same Process method, so a document gets identical treatment regardless
// of how it arrived.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/zombar/docready/internal/analyzer"
	"github.com/zombar/docready/internal/converter"
	"github.com/zombar/docready/internal/database"
	"github.com/zombar/docready/internal/docx"
	"github.com/zombar/docready/internal/metrics"
	"github.com/zombar/docready/internal/models"
	"github.com/zombar/docready/internal/tracing"
)

// operation names recorded in the audit log
const (
	OpMetadataCapture = "metadata_capture"
	OpConversion      = "format_conversion"
	OpValidation      = "validation"
	OpAnalysis        = "analysis"
)

// PermanentError marks a failure that retrying cannot fix, such as a
// corrupt or unsupported document. The queue worker drops the task instead
// of retrying.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Service runs the analysis pipeline
type Service struct {
	db         *database.DB
	analyzer   *analyzer.Analyzer
	converter  *converter.Converter
	metrics    *metrics.Metrics
	convertDir string
	logger     *slog.Logger
}

// New creates a Service. convertDir receives converted .docx files.
func New(db *database.DB, conv *converter.Converter, m *metrics.Metrics, convertDir string) *Service {
	return &Service{
		db:         db,
		analyzer:   analyzer.New(),
		converter:  conv,
		metrics:    m,
		convertDir: convertDir,
		logger:     slog.Default(),
	}
}

// Process runs the full pipeline on the file at path and persists the
// resulting report under reportID. filename is the original upload name
// used in the report and audit log.
func (s *Service) Process(ctx context.Context, reportID, path, filename string) (*models.Report, error) {
	ctx, span := tracing.Tracer().Start(ctx, "service.Process")
	defer span.End()
	tracing.SetSpanAttributes(ctx,
		attribute.String("report.id", reportID),
		attribute.String("document.filename", filename),
	)

	logger := s.logger.With("report_id", reportID, "filename", filename)

	info, err := docx.Stat(path)
	if err != nil {
		s.fail(ctx, OpMetadataCapture, filename, err)
		return nil, fmt.Errorf("failed to stat document: %w", err)
	}
	s.audit(ctx, OpMetadataCapture, filename, map[string]any{
		"size_bytes": info.SizeBytes,
		"extension":  info.Extension,
	})

	if converter.ConversionNeeded(path) {
		start := time.Now()
		converted, err := s.converter.ConvertToDOCX(ctx, path, s.convertDir)
		if err != nil {
			s.metrics.RecordConversion("error", time.Since(start))
			s.fail(ctx, OpConversion, filename, err)
			s.metrics.RecordDocumentProcessed("error")
			return nil, fmt.Errorf("failed to convert document: %w", err)
		}
		s.metrics.RecordConversion("success", time.Since(start))
		s.audit(ctx, OpConversion, filename, map[string]any{
			"source_format": filepath.Ext(path),
			"output":        filepath.Base(converted),
		})
		logger.Info("converted document", "source", path, "output", converted)
		path = converted
	}

	if err := docx.Validate(path); err != nil {
		s.fail(ctx, OpValidation, filename, err)
		s.metrics.RecordDocumentProcessed("error")
		return nil, &PermanentError{Err: fmt.Errorf("document validation failed: %w", err)}
	}
	s.audit(ctx, OpValidation, filename, nil)

	doc, err := docx.Read(path)
	if err != nil {
		s.fail(ctx, OpAnalysis, filename, err)
		s.metrics.RecordDocumentProcessed("error")
		return nil, &PermanentError{Err: fmt.Errorf("failed to read document: %w", err)}
	}

	start := time.Now()
	analysis := s.analyzer.Analyze(doc)
	s.metrics.RecordAnalysis(time.Since(start))
	s.metrics.RecordReadinessScore(analysis.ReadinessScore)

	now := time.Now().UTC()
	report := &models.Report{
		ID:        reportID,
		Filename:  filename,
		Analysis:  analysis,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.db.SaveReport(ctx, report); err != nil {
		s.fail(ctx, OpAnalysis, filename, err)
		s.metrics.RecordDocumentProcessed("error")
		return nil, fmt.Errorf("failed to save report: %w", err)
	}

	s.audit(ctx, OpAnalysis, filename, map[string]any{
		"report_id":       reportID,
		"readiness_score": analysis.ReadinessScore,
		"ready":           analysis.Ready,
	})
	s.metrics.RecordDocumentProcessed("success")

	logger.Info("document analyzed",
		"ready", analysis.Ready,
		"score", analysis.ReadinessScore,
		"segments", analysis.Structure.TotalElements,
	)

	return report, nil
}

// Summary returns the condensed view of a stored report's analysis
func (s *Service) Summary(ctx context.Context, id string) (*models.Summary, error) {
	report, err := s.db.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}
	summary := analyzer.Summarize(report.Analysis)
	return &summary, nil
}

// audit records a successful pipeline step, logging but not failing the
// pipeline when the audit write itself fails.
func (s *Service) audit(ctx context.Context, op, filename string, details map[string]any) {
	err := s.db.LogOperation(ctx, &models.Operation{
		Operation: op,
		Filename:  filename,
		Status:    "success",
		Details:   details,
	})
	if err != nil {
		s.logger.Warn("failed to write audit log", "operation", op, "error", err)
	}
}

func (s *Service) fail(ctx context.Context, op, filename string, cause error) {
	err := s.db.LogOperation(ctx, &models.Operation{
		Operation: op,
		Filename:  filename,
		Status:    "error",
		Error:     cause.Error(),
	})
	if err != nil {
		s.logger.Warn("failed to write audit log", "operation", op, "error", err)
	}
}
