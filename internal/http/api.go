package http

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"disk-backup/internal/domain"
	"disk-backup/internal/metrics"
	"disk-backup/internal/service"
)

const maxUploadRequestBytes = 4 << 10

// Handler wires HTTP routes to the backup service.
type Handler struct {
	backup service.BackupService
}

func NewHandler(backup service.BackupService) *Handler {
	return &Handler{backup: backup}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	router.SetHTMLTemplate(indexTemplate)

	router.GET("/", h.index)
	router.POST("/upload", h.upload)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")
	{
		api.GET("/files", h.listFiles)
		api.POST("/upload", h.upload)
		api.GET("/uploads", h.listUploads)
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-Id")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (h *Handler) index(c *gin.Context) {
	view := h.backup.ListFiles(c.Request.Context())
	c.HTML(http.StatusOK, indexTemplateName, view)
}

func (h *Handler) listFiles(c *gin.Context) {
	view := h.backup.ListFiles(c.Request.Context())

	resp := FileListResponse{
		Backend:  view.Backend,
		Degraded: view.Degraded,
		Reason:   view.Reason,
		Files:    make([]FileResponse, len(view.Files)),
	}
	for i, f := range view.Files {
		resp.Files[i] = FileResponse{Name: f.Name, Uploaded: f.Uploaded}
	}
	c.JSON(http.StatusOK, resp)
}

type uploadRequest struct {
	Filename string `json:"filename" binding:"required"`
}

// upload answers with the status code of the upload attempt and an empty body.
func (h *Handler) upload(c *gin.Context) {
	name, err := readFilename(c)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	res := h.backup.Upload(c.Request.Context(), domain.UploadRequest{Filename: name})
	c.Header("X-Request-Id", res.RequestID)
	c.Status(res.StatusCode)
}

// readFilename accepts either a JSON {"filename": ...} document or the raw
// name as the body; quotes a browser fetch may add around a raw name are
// stripped.
func readFilename(c *gin.Context) (string, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadRequestBytes)

	mediaType, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))
	if mediaType == gin.MIMEJSON {
		var req uploadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return "", err
		}
		return nonEmpty(strings.TrimSpace(req.Filename))
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", err
	}
	name := strings.Trim(strings.TrimSpace(string(raw)), `"'`)
	return nonEmpty(name)
}

func nonEmpty(name string) (string, error) {
	if name == "" {
		return "", errors.New("file name is required")
	}
	return name, nil
}

func (h *Handler) listUploads(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	records, err := h.backup.History(c.Request.Context(), c.Query("filename"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]UploadRecordResponse, len(records))
	for i := range records {
		resp[i] = uploadRecordToResponse(records[i])
	}
	c.JSON(http.StatusOK, resp)
}

type FileResponse struct {
	Name     string `json:"name"`
	Uploaded bool   `json:"uploaded"`
}

type FileListResponse struct {
	Backend  string         `json:"backend"`
	Degraded bool           `json:"degraded"`
	Reason   string         `json:"reason,omitempty"`
	Files    []FileResponse `json:"files"`
}

type UploadRecordResponse struct {
	ID         int64  `json:"id"`
	RequestID  string `json:"request_id"`
	Filename   string `json:"filename"`
	StatusCode int    `json:"status_code"`
	Phase      string `json:"phase"`
	Error      string `json:"error,omitempty"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at"`
}

func uploadRecordToResponse(record domain.UploadRecord) UploadRecordResponse {
	return UploadRecordResponse{
		ID:         record.ID,
		RequestID:  record.RequestID,
		Filename:   record.Filename,
		StatusCode: record.StatusCode,
		Phase:      string(record.Phase),
		Error:      record.Error,
		StartedAt:  record.StartedAt.Format(time.RFC3339),
		FinishedAt: record.FinishedAt.Format(time.RFC3339),
	}
}
