package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-records/internal/models"
	appErrors "github.com/noah-isme/academic-records/pkg/errors"
	"github.com/noah-isme/academic-records/pkg/response"
)

type profileImageService interface {
	Upload(ctx context.Context, studentID string, r io.Reader) (*models.Student, error)
	Remove(ctx context.Context, studentID string) (*models.Student, error)
}

// ProfileImageHandler manages student profile pictures.
type ProfileImageHandler struct {
	images profileImageService
}

// NewProfileImageHandler constructs ProfileImageHandler.
func NewProfileImageHandler(images profileImageService) *ProfileImageHandler {
	return &ProfileImageHandler{images: images}
}

// Upload godoc
// @Summary Upload student profile image
// @Tags Students
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Student ID"
// @Param image formData file true "JPEG, PNG or WebP image up to 5MB"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/image [put]
func (h *ProfileImageHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		response.Error(c, appErrors.Invalid(err, "image file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Invalid(err, "failed to read image"))
		return
	}
	defer file.Close() //nolint:errcheck

	student, err := h.images.Upload(c.Request.Context(), c.Param("id"), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Remove godoc
// @Summary Remove student profile image
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/image [delete]
func (h *ProfileImageHandler) Remove(c *gin.Context) {
	student, err := h.images.Remove(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}
