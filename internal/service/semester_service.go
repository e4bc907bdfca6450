package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records/internal/models"
)

type semesterStore interface {
	ListSemesters(ctx context.Context) []models.Semester
	FindSemester(ctx context.Context, id string) (*models.Semester, error)
	ActiveSemester(ctx context.Context) (*models.Semester, error)
	CreateSemester(ctx context.Context, semester *models.Semester) error
	UpdateSemester(ctx context.Context, id string, patch models.SemesterPatch) (*models.Semester, error)
	DeleteSemester(ctx context.Context, id string) error
}

// CreateSemesterRequest describes a semester such as {"name":"Fall","year":"2024"}.
type CreateSemesterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=30"`
	Year     string `json:"year" validate:"required,numeric,len=4"`
	IsActive bool   `json:"isActive"`
}

// UpdateSemesterRequest updates semester fields; nil fields are kept.
type UpdateSemesterRequest struct {
	Name     *string `json:"name"`
	Year     *string `json:"year"`
	IsActive *bool   `json:"isActive"`
}

// SemesterService manages configured semesters.
type SemesterService struct {
	store     semesterStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSemesterService creates a new semester service instance.
func NewSemesterService(store semesterStore, validate *validator.Validate, logger *zap.Logger) *SemesterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SemesterService{store: store, validator: validate, logger: logger}
}

// List returns all semesters.
func (s *SemesterService) List(ctx context.Context) []models.Semester {
	return s.store.ListSemesters(ctx)
}

// Get returns a semester by id.
func (s *SemesterService) Get(ctx context.Context, id string) (*models.Semester, error) {
	semester, err := s.store.FindSemester(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to load semester")
	}
	return semester, nil
}

// Active returns the first semester flagged active.
func (s *SemesterService) Active(ctx context.Context) (*models.Semester, error) {
	semester, err := s.store.ActiveSemester(ctx)
	if err != nil {
		return nil, storeError(err, "failed to load active semester")
	}
	return semester, nil
}

// Create adds a semester.
func (s *SemesterService) Create(ctx context.Context, req CreateSemesterRequest) (*models.Semester, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Year = strings.TrimSpace(req.Year)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid semester payload")
	}
	semester := &models.Semester{Name: req.Name, Year: req.Year, IsActive: req.IsActive}
	if err := s.store.CreateSemester(ctx, semester); err != nil {
		return nil, storeError(err, "failed to create semester")
	}
	return semester, nil
}

// Update edits a semester.
func (s *SemesterService) Update(ctx context.Context, id string, req UpdateSemesterRequest) (*models.Semester, error) {
	current, err := s.store.FindSemester(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to load semester")
	}
	merged := CreateSemesterRequest{
		Name: strings.TrimSpace(pick(req.Name, current.Name)),
		Year: strings.TrimSpace(pick(req.Year, current.Year)),
	}
	if err := s.validator.Struct(merged); err != nil {
		return nil, validationError(err, "invalid semester payload")
	}
	patch := models.SemesterPatch{IsActive: req.IsActive}
	if req.Name != nil {
		patch.Name = &merged.Name
	}
	if req.Year != nil {
		patch.Year = &merged.Year
	}
	updated, err := s.store.UpdateSemester(ctx, id, patch)
	if err != nil {
		return nil, storeError(err, "failed to update semester")
	}
	return updated, nil
}

// Delete removes a semester.
func (s *SemesterService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteSemester(ctx, id); err != nil {
		return storeError(err, "failed to delete semester")
	}
	return nil
}
