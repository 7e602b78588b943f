// Package api exposes the document readiness pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zombar/docready/internal/converter"
	"github.com/zombar/docready/internal/database"
	"github.com/zombar/docready/internal/metrics"
	"github.com/zombar/docready/internal/models"
	"github.com/zombar/docready/internal/service"
	"github.com/zombar/docready/internal/tracing"
	"github.com/zombar/docready/pkg/logging"
)

// maxUploadBytes bounds multipart upload memory and disk use
const maxUploadBytes = 50 << 20

// QueueClient enqueues documents for background processing. A nil client
// makes the handler process uploads inline.
type QueueClient interface {
	EnqueueProcessDocument(ctx context.Context, reportID, filePath, filename string) error
}

// Handler handles HTTP requests
type Handler struct {
	db          *database.DB
	service     *service.Service
	converter   *converter.Converter
	queueClient QueueClient
	uploadDir   string
	mux         *http.ServeMux
}

// NewHandler creates the API handler with CORS, tracing and metrics wired
func NewHandler(db *database.DB, svc *service.Service, conv *converter.Converter, m *metrics.Metrics, queueClient QueueClient, uploadDir string) http.Handler {
	h := &Handler{
		db:          db,
		service:     svc,
		converter:   conv,
		queueClient: queueClient,
		uploadDir:   uploadDir,
		mux:         http.NewServeMux(),
	}

	h.setupRoutes(m)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return c.Handler(tracing.HTTPMiddleware(instrumentHTTP(m, h.mux)))
}

// statusRecorder captures the status code written by the wrapped handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

// instrumentHTTP records request counts and latency per route. Paths with
// embedded IDs are collapsed to their route pattern so label cardinality
// stays bounded.
func instrumentHTTP(m *metrics.Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		m.RecordHTTPRequest(r.Method, routePattern(r.URL.Path),
			strconv.Itoa(recorder.status), time.Since(start))
	})
}

func routePattern(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/jobs/"):
		return "/api/jobs/{id}"
	case strings.HasPrefix(path, "/api/reports/"):
		if strings.HasSuffix(path, "/summary") {
			return "/api/reports/{id}/summary"
		}
		return "/api/reports/{id}"
	default:
		return path
	}
}

// setupRoutes configures all API routes
func (h *Handler) setupRoutes(m *metrics.Metrics) {
	h.mux.Handle("/metrics", m.Handler())
	h.mux.HandleFunc("/api/documents", h.handleUploadDocument)
	h.mux.HandleFunc("/api/analyze", h.handleAnalyzePath)
	h.mux.HandleFunc("/api/jobs/", h.handleJobStatus)
	h.mux.HandleFunc("/api/reports", h.handleListReports)
	h.mux.HandleFunc("/api/reports/", h.handleReportOperations)
	h.mux.HandleFunc("/api/search", h.handleSearchByLanguage)
	h.mux.HandleFunc("/api/summary", h.handleProcessingSummary)
	h.mux.HandleFunc("/api/formats", h.handleFormats)
	h.mux.HandleFunc("/health", h.handleHealth)
}

// handleHealth handles health check requests
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleFormats lists the file formats the service accepts
func (h *Handler) handleFormats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	respondJSON(w, map[string]interface{}{
		"supported_formats":    h.converter.SupportedFormats(),
		"conversion_available": h.converter.Available(),
	}, http.StatusOK)
}

// handleUploadDocument accepts a multipart upload and queues it for
// analysis. With no queue configured the document is processed inline and
// the finished report is returned directly.
func (h *Handler) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, r, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		respondError(w, r, "Document file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !formatSupported(ext, h.converter.SupportedFormats()) {
		respondError(w, r, fmt.Sprintf("Unsupported file format: %s", ext), http.StatusUnsupportedMediaType)
		return
	}

	reportID := uuid.New().String()
	storedPath := filepath.Join(h.uploadDir, reportID+ext)
	if err := saveUpload(file, storedPath); err != nil {
		respondError(w, r, fmt.Sprintf("Failed to store upload: %v", err), http.StatusInternalServerError)
		return
	}

	tracing.SetSpanAttributes(r.Context(),
		attribute.String("report.id", reportID),
		attribute.String("document.filename", header.Filename),
		attribute.Int64("document.size_bytes", header.Size))

	ctx := r.Context()
	if h.queueClient != nil {
		if err := h.queueClient.EnqueueProcessDocument(ctx, reportID, storedPath, header.Filename); err != nil {
			respondError(w, r, fmt.Sprintf("Failed to enqueue document: %v", err), http.StatusInternalServerError)
			return
		}
		respondJSON(w, map[string]interface{}{
			"job_id":  reportID,
			"status":  "queued",
			"message": "Document queued for analysis",
		}, http.StatusAccepted)
		return
	}

	report, err := h.service.Process(ctx, reportID, storedPath, header.Filename)
	if err != nil {
		respondError(w, r, fmt.Sprintf("Failed to process document: %v", err), http.StatusUnprocessableEntity)
		return
	}
	respondJSON(w, report, http.StatusCreated)
}

// handleAnalyzePath synchronously analyzes a file already on local disk
func (h *Handler) handleAnalyzePath(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		FilePath string `json:"file_path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.FilePath == "" {
		respondError(w, r, "file_path field is required", http.StatusBadRequest)
		return
	}

	reportID := uuid.New().String()
	report, err := h.service.Process(r.Context(), reportID, req.FilePath, filepath.Base(req.FilePath))
	if err != nil {
		respondError(w, r, fmt.Sprintf("Failed to analyze document: %v", err), http.StatusUnprocessableEntity)
		return
	}

	respondJSON(w, report, http.StatusOK)
}

// handleJobStatus reports queued-document progress. A report row means the
// pipeline finished; its absence means the task is still pending or failed.
func (h *Handler) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jobID := r.URL.Path[len("/api/jobs/"):]
	if idx := strings.Index(jobID, "/"); idx != -1 {
		jobID = jobID[:idx]
	}
	if jobID == "" {
		respondError(w, r, "Job ID is required", http.StatusBadRequest)
		return
	}

	report, err := h.db.GetReport(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondJSON(w, map[string]interface{}{
				"job_id":  jobID,
				"status":  "pending",
				"message": "Report not available yet - the document may still be processing",
			}, http.StatusNotFound)
			return
		}
		respondError(w, r, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]interface{}{
		"job_id":     jobID,
		"status":     "completed",
		"created_at": report.CreatedAt,
		"updated_at": report.UpdatedAt,
		"report":     report,
	}, http.StatusOK)
}

// handleListReports lists reports with pagination
func (h *Handler) handleListReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 10
	offset := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	resultChan := make(chan []*models.Report)
	errorChan := make(chan error)

	go func() {
		reports, err := h.db.ListReports(r.Context(), limit, offset)
		if err != nil {
			errorChan <- err
			return
		}
		resultChan <- reports
	}()

	select {
	case reports := <-resultChan:
		respondJSON(w, reports, http.StatusOK)
	case err := <-errorChan:
		respondError(w, r, err.Error(), http.StatusInternalServerError)
	case <-time.After(30 * time.Second):
		respondError(w, r, "Request timeout", http.StatusRequestTimeout)
	}
}

// handleReportOperations handles GET and DELETE for specific reports, plus
// GET of the condensed summary at /api/reports/{id}/summary.
func (h *Handler) handleReportOperations(w http.ResponseWriter, r *http.Request) {
	rest := r.URL.Path[len("/api/reports/"):]
	id := rest
	wantSummary := false
	if idx := strings.Index(rest, "/"); idx != -1 {
		id = rest[:idx]
		wantSummary = rest[idx+1:] == "summary"
		if !wantSummary {
			http.NotFound(w, r)
			return
		}
	}
	if id == "" {
		respondError(w, r, "Report ID is required", http.StatusBadRequest)
		return
	}

	switch {
	case r.Method == http.MethodGet && wantSummary:
		h.getReportSummary(w, r, id)
	case r.Method == http.MethodGet:
		h.getReport(w, r, id)
	case r.Method == http.MethodDelete && !wantSummary:
		h.deleteReport(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// getReport retrieves a specific report
func (h *Handler) getReport(w http.ResponseWriter, r *http.Request, id string) {
	resultChan := make(chan *models.Report)
	errorChan := make(chan error)

	go func() {
		report, err := h.db.GetReport(r.Context(), id)
		if err != nil {
			errorChan <- err
			return
		}
		resultChan <- report
	}()

	select {
	case report := <-resultChan:
		respondJSON(w, report, http.StatusOK)
	case err := <-errorChan:
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, r, err.Error(), http.StatusNotFound)
		} else {
			respondError(w, r, err.Error(), http.StatusInternalServerError)
		}
	case <-time.After(30 * time.Second):
		respondError(w, r, "Request timeout", http.StatusRequestTimeout)
	}
}

// getReportSummary retrieves the condensed summary of a report
func (h *Handler) getReportSummary(w http.ResponseWriter, r *http.Request, id string) {
	resultChan := make(chan *models.Summary)
	errorChan := make(chan error)

	go func() {
		summary, err := h.service.Summary(r.Context(), id)
		if err != nil {
			errorChan <- err
			return
		}
		resultChan <- summary
	}()

	select {
	case summary := <-resultChan:
		respondJSON(w, summary, http.StatusOK)
	case err := <-errorChan:
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, r, err.Error(), http.StatusNotFound)
		} else {
			respondError(w, r, err.Error(), http.StatusInternalServerError)
		}
	case <-time.After(30 * time.Second):
		respondError(w, r, "Request timeout", http.StatusRequestTimeout)
	}
}

// deleteReport deletes a specific report
func (h *Handler) deleteReport(w http.ResponseWriter, r *http.Request, id string) {
	errorChan := make(chan error)
	doneChan := make(chan bool)

	go func() {
		if err := h.db.DeleteReport(r.Context(), id); err != nil {
			errorChan <- err
			return
		}
		doneChan <- true
	}()

	select {
	case <-doneChan:
		w.WriteHeader(http.StatusNoContent)
	case err := <-errorChan:
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, r, err.Error(), http.StatusNotFound)
		} else {
			respondError(w, r, err.Error(), http.StatusInternalServerError)
		}
	case <-time.After(30 * time.Second):
		respondError(w, r, "Request timeout", http.StatusRequestTimeout)
	}
}

// handleSearchByLanguage finds reports whose analysis hinted at a language
func (h *Handler) handleSearchByLanguage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	lang := r.URL.Query().Get("lang")
	if lang == "" {
		respondError(w, r, "Lang parameter is required", http.StatusBadRequest)
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	resultChan := make(chan []*models.Report)
	errorChan := make(chan error)

	go func() {
		reports, err := h.db.GetReportsByLanguage(r.Context(), lang, limit)
		if err != nil {
			errorChan <- err
			return
		}
		resultChan <- reports
	}()

	select {
	case reports := <-resultChan:
		respondJSON(w, reports, http.StatusOK)
	case err := <-errorChan:
		respondError(w, r, err.Error(), http.StatusInternalServerError)
	case <-time.After(30 * time.Second):
		respondError(w, r, "Request timeout", http.StatusRequestTimeout)
	}
}

// handleProcessingSummary aggregates the audit log over a trailing window
func (h *Handler) handleProcessingSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	hours := 24
	if hoursStr := r.URL.Query().Get("hours"); hoursStr != "" {
		if hrs, err := strconv.Atoi(hoursStr); err == nil && hrs > 0 {
			hours = hrs
		}
	}

	resultChan := make(chan *models.ProcessingSummary)
	errorChan := make(chan error)

	go func() {
		summary, err := h.db.ProcessingSummary(r.Context(), hours)
		if err != nil {
			errorChan <- err
			return
		}
		resultChan <- summary
	}()

	select {
	case summary := <-resultChan:
		respondJSON(w, summary, http.StatusOK)
	case err := <-errorChan:
		respondError(w, r, err.Error(), http.StatusInternalServerError)
	case <-time.After(30 * time.Second):
		respondError(w, r, "Request timeout", http.StatusRequestTimeout)
	}
}

func formatSupported(ext string, supported []string) bool {
	for _, s := range supported {
		if s == ext {
			return true
		}
	}
	return false
}

func saveUpload(src io.Reader, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, src); err != nil {
		return err
	}
	return out.Close()
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response and logs it in structured form
func respondError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	logging.HTTPErrorLogger(slog.Default(), statusCode, errors.New(message), r)
	respondJSON(w, map[string]string{"error": message}, statusCode)
}
