package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records/internal/models"
)

type subjectStore interface {
	ListSubjects(ctx context.Context) []models.Subject
	FindSubject(ctx context.Context, id string) (*models.Subject, error)
	CreateSubject(ctx context.Context, subject *models.Subject) error
	UpdateSubject(ctx context.Context, id string, patch models.SubjectPatch) (*models.Subject, error)
	DeleteSubject(ctx context.Context, id string) error
}

// CreateSubjectRequest captures fields for creating catalog subjects.
type CreateSubjectRequest struct {
	Name           string `json:"name" validate:"required,min=2,max=100"`
	Code           string `json:"code" validate:"required,min=3,max=10,subject_code"`
	CreditHours    int    `json:"creditHours" validate:"required,min=1,max=6"`
	InstructorName string `json:"instructorName" validate:"required,min=2,max=50,person_name"`
}

// UpdateSubjectRequest modifies subject fields; nil fields are kept.
type UpdateSubjectRequest struct {
	Name           *string `json:"name"`
	Code           *string `json:"code"`
	CreditHours    *int    `json:"creditHours"`
	InstructorName *string `json:"instructorName"`
}

// SubjectService manages the subject catalog.
type SubjectService struct {
	store     subjectStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService creates a new subject service.
func NewSubjectService(store subjectStore, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registerRecordValidations(validate)
	return &SubjectService{store: store, validator: validate, logger: logger}
}

// List returns the catalog in creation order.
func (s *SubjectService) List(ctx context.Context) []models.Subject {
	return s.store.ListSubjects(ctx)
}

// Get returns subject by identifier.
func (s *SubjectService) Get(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.store.FindSubject(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to load subject")
	}
	return subject, nil
}

// Create adds a subject. Codes are stored uppercased and must be unique.
func (s *SubjectService) Create(ctx context.Context, req CreateSubjectRequest) (*models.Subject, error) {
	req = normalizeSubjectRequest(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid subject payload")
	}
	subject := &models.Subject{
		Name:           req.Name,
		Code:           req.Code,
		CreditHours:    req.CreditHours,
		InstructorName: req.InstructorName,
	}
	if err := s.store.CreateSubject(ctx, subject); err != nil {
		return nil, storeError(err, "failed to create subject")
	}
	s.logger.Info("subject created", zap.String("subject_id", subject.ID), zap.String("code", subject.Code))
	return subject, nil
}

// Update edits a catalog entry. Existing enrollments keep the values captured
// when they were created.
func (s *SubjectService) Update(ctx context.Context, id string, req UpdateSubjectRequest) (*models.Subject, error) {
	current, err := s.store.FindSubject(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to load subject")
	}
	merged := CreateSubjectRequest{
		Name:           pick(req.Name, current.Name),
		Code:           pick(req.Code, current.Code),
		CreditHours:    current.CreditHours,
		InstructorName: pick(req.InstructorName, current.InstructorName),
	}
	if req.CreditHours != nil {
		merged.CreditHours = *req.CreditHours
	}
	merged = normalizeSubjectRequest(merged)
	if err := s.validator.Struct(merged); err != nil {
		return nil, validationError(err, "invalid subject payload")
	}

	patch := models.SubjectPatch{}
	if req.Name != nil {
		patch.Name = &merged.Name
	}
	if req.Code != nil {
		patch.Code = &merged.Code
	}
	if req.CreditHours != nil {
		patch.CreditHours = &merged.CreditHours
	}
	if req.InstructorName != nil {
		patch.InstructorName = &merged.InstructorName
	}
	updated, err := s.store.UpdateSubject(ctx, id, patch)
	if err != nil {
		return nil, storeError(err, "failed to update subject")
	}
	return updated, nil
}

// Delete removes a subject from the catalog. Enrollments referencing it stay
// on the student records.
func (s *SubjectService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteSubject(ctx, id); err != nil {
		return storeError(err, "failed to delete subject")
	}
	return nil
}

func normalizeSubjectRequest(req CreateSubjectRequest) CreateSubjectRequest {
	req.Name = strings.TrimSpace(req.Name)
	req.Code = NormalizeSubjectCode(req.Code)
	req.InstructorName = strings.TrimSpace(req.InstructorName)
	return req
}
