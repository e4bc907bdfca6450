package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-records/internal/grading"
	"github.com/noah-isme/academic-records/internal/models"
	"github.com/noah-isme/academic-records/internal/service"
	"github.com/noah-isme/academic-records/pkg/response"
)

type enrollmentService interface {
	Enroll(ctx context.Context, studentID string, req service.EnrollRequest) (*models.Enrollment, error)
	SetGrade(ctx context.Context, studentID, enrollmentID string, req service.SetGradeRequest) (*models.Enrollment, error)
	Remove(ctx context.Context, studentID, enrollmentID string) error
	List(ctx context.Context, studentID string) ([]models.Enrollment, error)
	AvailableSubjects(ctx context.Context, studentID string) ([]models.Subject, error)
	SemesterOptions(ctx context.Context, studentID string) ([]string, error)
	Transcript(ctx context.Context, studentID string) (*models.Transcript, error)
}

type transcriptRenderer interface {
	TranscriptPDF(ctx context.Context, studentID string) ([]byte, string, error)
}

// EnrollmentHandler exposes the enrollments owned by a student.
type EnrollmentHandler struct {
	enrollments enrollmentService
	transcripts transcriptRenderer
}

// NewEnrollmentHandler constructs EnrollmentHandler. transcripts may be nil,
// in which case PDF transcripts are unavailable.
func NewEnrollmentHandler(enrollments enrollmentService, transcripts transcriptRenderer) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, transcripts: transcripts}
}

// List godoc
// @Summary List student enrollments
// @Tags Enrollments
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/subjects [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	enrollments, err := h.enrollments.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, nil)
}

// Enroll godoc
// @Summary Enroll student in a subject
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Router /students/{id}/subjects [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req service.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	enrollment, err := h.enrollments.Enroll(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// SetGrade godoc
// @Summary Update enrollment grade
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param enrollmentId path string true "Enrollment ID"
// @Param payload body service.SetGradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/subjects/{enrollmentId} [patch]
func (h *EnrollmentHandler) SetGrade(c *gin.Context) {
	var req service.SetGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	enrollment, err := h.enrollments.SetGrade(c.Request.Context(), c.Param("id"), c.Param("enrollmentId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Remove godoc
// @Summary Remove enrollment
// @Tags Enrollments
// @Param id path string true "Student ID"
// @Param enrollmentId path string true "Enrollment ID"
// @Success 204
// @Router /students/{id}/subjects/{enrollmentId} [delete]
func (h *EnrollmentHandler) Remove(c *gin.Context) {
	if err := h.enrollments.Remove(c.Request.Context(), c.Param("id"), c.Param("enrollmentId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AvailableSubjects godoc
// @Summary Subjects the student is not enrolled in
// @Tags Enrollments
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/available-subjects [get]
func (h *EnrollmentHandler) AvailableSubjects(c *gin.Context) {
	subjects, err := h.enrollments.AvailableSubjects(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// SemesterOptions godoc
// @Summary Semester labels offered when enrolling
// @Tags Enrollments
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/semester-options [get]
func (h *EnrollmentHandler) SemesterOptions(c *gin.Context) {
	options, err := h.enrollments.SemesterOptions(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, options, nil)
}

// Transcript godoc
// @Summary Student transcript
// @Tags Enrollments
// @Produce json
// @Produce application/pdf
// @Param id path string true "Student ID"
// @Param format query string false "json (default) or pdf"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/transcript [get]
func (h *EnrollmentHandler) Transcript(c *gin.Context) {
	if strings.EqualFold(c.Query("format"), "pdf") && h.transcripts != nil {
		payload, filename, err := h.transcripts.TranscriptPDF(c.Request.Context(), c.Param("id"))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Attachment(c, filename, payload)
		return
	}
	transcript, err := h.enrollments.Transcript(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, transcript, nil, map[string]interface{}{"cgpa": grading.Format(transcript.CGPA)})
}
