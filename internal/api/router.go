package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/a3tai/mcp-audit-validator/internal/audit"
	"github.com/a3tai/mcp-audit-validator/internal/ingest"
	"github.com/a3tai/mcp-audit-validator/internal/service"
)

// uploadField is the multipart form field carrying the document
const uploadField = "file"

// ValidationResponse is the body of a successful validate-document call
type ValidationResponse struct {
	Success bool `json:"success"`
	*audit.Report
}

// ErrorResponse is the body of every failed call
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type handler struct {
	svc    *service.Service
	logger *slog.Logger
}

// NewRouter builds the HTTP surface over svc
func NewRouter(svc *service.Service, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	h := &handler{svc: svc, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger), allowCORS())
	// multipart bodies beyond this are spooled to disk by net/http
	r.MaxMultipartMemory = 8 << 20

	r.GET("/healthz", h.health)

	apiGroup := r.Group("/api")
	apiGroup.POST("/validate-document", h.validateDocument)
	apiGroup.GET("/rules", h.rules)

	return r
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) rules(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.RulesInfo())
}

func (h *handler) validateDocument(c *gin.Context) {
	if limit := h.svc.MaxFileSize(); limit > 0 {
		// leave room for the multipart envelope around the file
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+1<<20)
	}

	fileHeader, err := c.FormFile(uploadField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			fail(c, http.StatusRequestEntityTooLarge, ingest.ErrFileTooLarge)
			return
		}
		fail(c, http.StatusBadRequest, errors.New("multipart field \"file\" is required"))
		return
	}

	// reject by name before reading the body
	if err := ingest.CheckExtension(fileHeader.Filename); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	defer file.Close()

	report, err := h.svc.ValidateUpload(c.Request.Context(), fileHeader.Filename, file, fileHeader.Size)
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, ValidationResponse{Success: true, Report: report})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ingest.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case service.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, ErrorResponse{Success: false, Error: err.Error()})
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("api.request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// allowCORS lets a browser front end on another origin call the API
func allowCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
