package handler

import (
	"context"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"vpnvalidator/internal/domain"
	"vpnvalidator/internal/pipeline"
)

// ValidateHandler handles document validation endpoints.
type ValidateHandler struct {
	validator   *pipeline.Validator
	archiver    *pipeline.Archiver
	maxFileSize int64
}

// NewValidateHandler creates a ValidateHandler. archiver may be nil when
// result archival is disabled.
func NewValidateHandler(validator *pipeline.Validator, archiver *pipeline.Archiver, maxFileSizeMB int64) *ValidateHandler {
	return &ValidateHandler{
		validator:   validator,
		archiver:    archiver,
		maxFileSize: maxFileSizeMB * 1024 * 1024,
	}
}

// Validate handles POST /api/v1/validate. It accepts one multipart PDF
// under the "file" field and returns the full pipeline run.
func (h *ValidateHandler) Validate(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		HandleError(c, domain.ErrMissingFile)
		return
	}
	defer func() { _ = file.Close() }()

	data, err := h.readUpload(file, header)
	if err != nil {
		HandleError(c, err)
		return
	}

	run := h.validator.Validate(c.Request.Context(), header.Filename, data)
	h.archive(c.Request.Context(), run, data)

	RespondOK(c, run)
}

// ValidateBatch handles POST /api/v1/validate/batch. It accepts multiple
// PDFs under the "files" field. Upload checks run before any validation
// starts; a batch with an invalid upload is rejected whole.
func (h *ValidateHandler) ValidateBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FORM", "invalid multipart form")
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		HandleError(c, domain.ErrMissingFile)
		return
	}

	items := make([]pipeline.BatchItem, 0, len(headers))
	for _, header := range headers {
		data, err := h.openAndRead(header)
		if err != nil {
			HandleError(c, err)
			return
		}
		items = append(items, pipeline.BatchItem{Name: header.Filename, Data: data})
	}

	result := h.validator.ValidateBatch(c.Request.Context(), items)
	for i, run := range result.Runs {
		h.archive(c.Request.Context(), run, items[i].Data)
	}

	RespondOK(c, result)
}

func (h *ValidateHandler) openAndRead(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, domain.ErrMissingFile
	}
	defer func() { _ = file.Close() }()
	return h.readUpload(file, header)
}

// readUpload enforces the extension, content-type, and size limits
// before buffering the upload.
func (h *ValidateHandler) readUpload(file multipart.File, header *multipart.FileHeader) ([]byte, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
	if _, ok := domain.AllowedExtensions[ext]; !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	if ct := header.Header.Get("Content-Type"); ct != "" {
		mediaType := strings.TrimSpace(strings.Split(ct, ";")[0])
		if _, ok := domain.AllowedContentTypes[mediaType]; !ok && mediaType != "application/octet-stream" {
			return nil, domain.ErrUnsupportedFileType
		}
	}

	if header.Size > h.maxFileSize {
		return nil, domain.ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		return nil, domain.ErrMissingFile
	}
	if int64(len(data)) > h.maxFileSize {
		return nil, domain.ErrFileTooLarge
	}
	return data, nil
}

// archive persists the run when archival is configured. Failures are
// logged, never returned: archival must not change the verdict.
func (h *ValidateHandler) archive(ctx context.Context, run *domain.PipelineRun, data []byte) {
	if h.archiver == nil {
		return
	}
	if err := h.archiver.Archive(ctx, run, data); err != nil {
		log.Printf("handler.ValidateHandler: archive of run %s failed: %v", run.ID, err)
	}
}
