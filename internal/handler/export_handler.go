package handler

import (
	"context"
	"os"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-records/internal/dto"
	appErrors "github.com/noah-isme/academic-records/pkg/errors"
	"github.com/noah-isme/academic-records/pkg/response"
)

type exportService interface {
	Students(ctx context.Context, req dto.StudentExportRequest) (*dto.ExportResponse, error)
	Resolve(token string) (string, error)
	Open(relPath string) (*os.File, error)
}

// ExportHandler creates student exports and serves signed downloads.
type ExportHandler struct {
	exports exportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports exportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Students godoc
// @Summary Export the student list
// @Tags Exports
// @Accept json
// @Produce json
// @Param payload body dto.StudentExportRequest true "Export request"
// @Success 201 {object} response.Envelope
// @Router /exports/students [post]
func (h *ExportHandler) Students(c *gin.Context) {
	var req dto.StudentExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	result, err := h.exports.Students(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Download godoc
// @Summary Download an export through a signed token
// @Tags Exports
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} file
// @Router /exports/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	relPath, err := h.exports.Resolve(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.Open(relPath)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Internal(err, "failed to read export"))
		return
	}
	response.AttachmentFromReader(c, path.Base(relPath), info.Size(), file)
}
