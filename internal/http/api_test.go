package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"disk-backup/internal/domain"
	"disk-backup/internal/service"
)

type fakeBackup struct {
	view      service.FileView
	status    int
	requests  []domain.UploadRequest
	records   []domain.UploadRecord
	historyOf string
	err       error
}

func (f *fakeBackup) ListFiles(context.Context) service.FileView {
	return f.view
}

func (f *fakeBackup) Upload(_ context.Context, req domain.UploadRequest) domain.UploadResult {
	f.requests = append(f.requests, req)
	return domain.UploadResult{RequestID: "req-1", Filename: req.Filename, StatusCode: f.status}
}

func (f *fakeBackup) History(_ context.Context, filename string, _ int) ([]domain.UploadRecord, error) {
	f.historyOf = filename
	return f.records, f.err
}

func newTestRouter(backup service.BackupService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(backup).RegisterRoutes(router)
	return router
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestIndexHighlightsUploadedFiles(t *testing.T) {
	backup := &fakeBackup{view: service.FileView{Files: []domain.FileEntry{
		{Name: "a.pdf", Uploaded: true},
		{Name: `<b>"x"</b>.pdf`},
	}}}
	router := newTestRouter(backup)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, body, `data-name="a.pdf"`)
	assert.Equal(t, 1, strings.Count(body, "rgba(0, 200, 0, 0.25)"))
	assert.NotContains(t, body, "<b>")
	assert.Contains(t, body, "&lt;b&gt;")
	assert.NotContains(t, body, "backup state is unknown")
}

func TestIndexShowsDegradedNotice(t *testing.T) {
	router := newTestRouter(&fakeBackup{view: service.FileView{Degraded: true, Files: []domain.FileEntry{{Name: "a.pdf"}}}})

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "backup state is unknown")
	assert.NotContains(t, rec.Body.String(), "rgba(0, 200, 0, 0.25)")
}

func TestListFilesJSON(t *testing.T) {
	router := newTestRouter(&fakeBackup{view: service.FileView{
		Backend:  "disk",
		Degraded: true,
		Reason:   "remote answered 503",
		Files:    []domain.FileEntry{{Name: "a.pdf", Uploaded: true}, {Name: "b.pdf"}},
	}})

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/api/files", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp FileListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, FileListResponse{
		Backend:  "disk",
		Degraded: true,
		Reason:   "remote answered 503",
		Files:    []FileResponse{{Name: "a.pdf", Uploaded: true}, {Name: "b.pdf"}},
	}, resp)
}

func TestUploadPropagatesStatusVerbatim(t *testing.T) {
	for _, code := range []int{http.StatusCreated, http.StatusForbidden, http.StatusNotFound, http.StatusBadGateway} {
		backup := &fakeBackup{status: code}
		router := newTestRouter(backup)

		rec := serve(router, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("a.pdf")))

		require.Equal(t, code, rec.Code)
		require.Empty(t, rec.Body.String())
		require.Equal(t, "req-1", rec.Header().Get("X-Request-Id"))
		require.Equal(t, []domain.UploadRequest{{Filename: "a.pdf"}}, backup.requests)
	}
}

func TestUploadBodyForms(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        string
	}{
		{name: "raw", contentType: "text/plain", body: "my file #1.pdf", want: "my file #1.pdf"},
		{name: "double quoted", body: `"a.pdf"`, want: "a.pdf"},
		{name: "single quoted with newline", body: "'a.pdf'\n", want: "a.pdf"},
		{name: "json", contentType: "application/json; charset=utf-8", body: `{"filename":"b.pdf"}`, want: "b.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backup := &fakeBackup{status: http.StatusCreated}
			router := newTestRouter(backup)
			req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			rec := serve(router, req)

			require.Equal(t, http.StatusCreated, rec.Code)
			require.Len(t, backup.requests, 1)
			require.Equal(t, tt.want, backup.requests[0].Filename)
		})
	}
}

func TestUploadRejectsEmptyRequests(t *testing.T) {
	for name, req := range map[string]*http.Request{
		"empty body":   httptest.NewRequest(http.MethodPost, "/upload", nil),
		"only quotes":  httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(`""`)),
		"json missing": jsonRequest(`{"name":"a.pdf"}`),
		"json invalid": jsonRequest(`{"filename":`),
		"oversized":    httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(strings.Repeat("a", maxUploadRequestBytes+1))),
	} {
		t.Run(name, func(t *testing.T) {
			backup := &fakeBackup{status: http.StatusCreated}

			rec := serve(newTestRouter(backup), req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Empty(t, backup.requests)
		})
	}
}

func jsonRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestListUploads(t *testing.T) {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	backup := &fakeBackup{records: []domain.UploadRecord{{
		ID: 7, RequestID: "r7", Filename: "a.pdf", StatusCode: 201, Phase: domain.UploadPhaseTransfer,
		StartedAt: started, FinishedAt: started.Add(time.Second),
	}}}
	router := newTestRouter(backup)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/api/uploads?filename=a.pdf&limit=5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "a.pdf", backup.historyOf)
	var resp []UploadRecordResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "transfer", resp[0].Phase)
	assert.Equal(t, "2026-03-01T10:00:00Z", resp[0].StartedAt)

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/api/uploads?limit=x", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	backup.err = errors.New("journal offline")
	rec = serve(router, httptest.NewRequest(http.MethodGet, "/api/uploads", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthMetricsAndPreflight(t *testing.T) {
	router := newTestRouter(&fakeBackup{})

	require.Equal(t, http.StatusOK, serve(router, httptest.NewRequest(http.MethodGet, "/api/health", nil)).Code)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "go_goroutines")

	rec = serve(router, httptest.NewRequest(http.MethodOptions, "/upload", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
