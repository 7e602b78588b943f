package api

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zombar/docready/internal/converter"
	"github.com/zombar/docready/internal/database"
	"github.com/zombar/docready/internal/metrics"
	"github.com/zombar/docready/internal/models"
	"github.com/zombar/docready/internal/service"
)

type fakeQueue struct {
	enqueued []string
}

func (f *fakeQueue) EnqueueProcessDocument(ctx context.Context, reportID, filePath, filename string) error {
	f.enqueued = append(f.enqueued, reportID)
	return nil
}

type testEnv struct {
	handler http.Handler
	db      *database.DB
	queue   *fakeQueue
}

// newTestEnv builds a handler over a fresh database. queued toggles the
// background-queue path; otherwise uploads are processed inline.
func newTestEnv(t *testing.T, queued bool) *testEnv {
	t.Helper()

	dir := t.TempDir()
	db, err := database.New(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	conv := converter.New("/nonexistent/soffice")
	m := metrics.New()
	svc := service.New(db, conv, m, filepath.Join(dir, "converted"))

	env := &testEnv{db: db}
	var qc QueueClient
	if queued {
		env.queue = &fakeQueue{}
		qc = env.queue
	}
	env.handler = NewHandler(db, svc, conv, m, qc, filepath.Join(dir, "uploads"))
	return env
}

// docxUpload builds a multipart body carrying a minimal valid .docx
func docxUpload(t *testing.T, filename, bodyText string) (*bytes.Buffer, string) {
	t.Helper()

	var archive bytes.Buffer
	zw := zip.NewWriter(&archive)
	parts := map[string]string{
		"[Content_Types].xml": `<Types><Default Extension="xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`,
		"word/document.xml": `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
			`<w:body><w:p><w:r><w:t>` + bodyText + `</w:t></w:r></w:p></w:body></w:document>`,
	}
	for name, content := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("document", filename)
	require.NoError(t, err)
	_, err = fw.Write(archive.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &body, mw.FormDataContentType()
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t, false)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestFormatsEndpoint(t *testing.T) {
	env := newTestEnv(t, false)

	req := httptest.NewRequest(http.MethodGet, "/api/formats", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		SupportedFormats    []string `json:"supported_formats"`
		ConversionAvailable bool     `json:"conversion_available"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{".docx"}, resp.SupportedFormats)
	assert.False(t, resp.ConversionAvailable)
}

func TestUploadInlineProcessing(t *testing.T) {
	env := newTestEnv(t, false)

	body, contentType := docxUpload(t, "sample.docx",
		"This is a simple test document with enough words to pass every check.")
	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var report models.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "sample.docx", report.Filename)
	assert.True(t, report.Analysis.Ready)
	assert.NotEmpty(t, report.ID)

	// The report is queryable afterwards
	stored, err := env.db.GetReport(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.ID, stored.ID)
}

func TestUploadQueuedProcessing(t *testing.T) {
	env := newTestEnv(t, true)

	body, contentType := docxUpload(t, "sample.docx", "Queued document body")
	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "queued", resp["status"])
	assert.NotEmpty(t, resp["job_id"])
	assert.Equal(t, []string{resp["job_id"]}, env.queue.enqueued)
}

func TestUploadUnsupportedFormat(t *testing.T) {
	env := newTestEnv(t, false)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("document", "picture.png")
	require.NoError(t, err)
	fw.Write([]byte{0x89, 0x50})
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestUploadMissingFile(t *testing.T) {
	env := newTestEnv(t, false)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("other", "value"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJobStatusPending(t *testing.T) {
	env := newTestEnv(t, true)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/unknown-id", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "pending", resp["status"])
}

func TestReportLifecycle(t *testing.T) {
	env := newTestEnv(t, false)

	// Create via inline upload
	body, contentType := docxUpload(t, "lifecycle.docx", "Lifecycle test content with several words")
	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// Job status shows completed
	req = httptest.NewRequest(http.MethodGet, "/api/jobs/"+created.ID, nil)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Get
	req = httptest.NewRequest(http.MethodGet, "/api/reports/"+created.ID, nil)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Condensed summary
	req = httptest.NewRequest(http.MethodGet, "/api/reports/"+created.ID+"/summary", nil)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	var summary models.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.NotEmpty(t, summary.ReadinessScore)

	// List
	req = httptest.NewRequest(http.MethodGet, "/api/reports?limit=10", nil)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	var list []*models.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	// Search by hinted language
	req = httptest.NewRequest(http.MethodGet, "/api/search?lang=en", nil)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	// Delete
	req = httptest.NewRequest(http.MethodDelete, "/api/reports/"+created.ID, nil)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Gone now
	req = httptest.NewRequest(http.MethodGet, "/api/reports/"+created.ID, nil)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProcessingSummaryEndpoint(t *testing.T) {
	env := newTestEnv(t, false)

	body, contentType := docxUpload(t, "audited.docx", "Audit trail document content")
	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/summary?hours=1", nil)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var summary models.ProcessingSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.TimeRangeHours)
	assert.Greater(t, summary.TotalOperations, 0)
	assert.Zero(t, summary.FailedOperations)
	assert.Equal(t, []string{"audited.docx"}, summary.FilesProcessed)
}

func TestSearchRequiresLang(t *testing.T) {
	env := newTestEnv(t, false)

	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzePathEndpoint(t *testing.T) {
	env := newTestEnv(t, false)

	// A file that does not exist fails cleanly
	payload := bytes.NewBufferString(`{"file_path": "/nonexistent/missing.docx"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", payload)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Missing field is a bad request
	req = httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewBufferString(`{}`))
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTPRequestMetricsRecorded(t *testing.T) {
	env := newTestEnv(t, false)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// IDs collapse to the route pattern in the path label
	req = httptest.NewRequest(http.MethodGet, "/api/reports/some-id", nil)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	scrape := rec.Body.String()
	assert.Contains(t, scrape,
		`docready_http_requests_total{method="GET",path="/health",status="200"} 1`)
	assert.Contains(t, scrape,
		`docready_http_requests_total{method="GET",path="/api/reports/{id}",status="404"} 1`)
	assert.NotContains(t, scrape, "some-id")
	assert.Contains(t, scrape, "docready_http_request_duration_seconds")
}

func TestErrorResponsesLogged(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	env := newTestEnv(t, false)

	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Contains(t, logs.String(), "http_error")
	assert.Contains(t, logs.String(), "Lang parameter is required")
	assert.Contains(t, logs.String(), `"status":400`)
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, false)

	req := httptest.NewRequest(http.MethodDelete, "/api/reports", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
