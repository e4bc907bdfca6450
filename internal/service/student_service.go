package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records/internal/models"
	"github.com/noah-isme/academic-records/internal/query"
	appErrors "github.com/noah-isme/academic-records/pkg/errors"
)

type studentStore interface {
	ListStudents(ctx context.Context) []models.Student
	FindStudent(ctx context.Context, id string) (*models.Student, error)
	CreateStudent(ctx context.Context, student *models.Student) error
	UpdateStudent(ctx context.Context, id string, patch models.StudentPatch) (*models.Student, error)
	DeleteStudent(ctx context.Context, id string) error
	ClearStudents(ctx context.Context) error
}

// CreateStudentRequest holds the registration payload.
type CreateStudentRequest struct {
	Name         string `json:"name" validate:"required,min=2,max=50,person_name"`
	RollNumber   string `json:"rollNumber" validate:"required,roll_number"`
	Department   string `json:"department" validate:"required,department"`
	Email        string `json:"email" validate:"required,record_email"`
	PhoneNumber  string `json:"phoneNumber" validate:"required,pk_phone"`
	AcademicYear string `json:"academicYear" validate:"required,academic_year"`
	ProfileImage string `json:"profileImage"`
}

// UpdateStudentRequest holds a partial student update; omitted fields keep
// their current value.
type UpdateStudentRequest struct {
	Name         *string `json:"name"`
	RollNumber   *string `json:"rollNumber"`
	Department   *string `json:"department"`
	Email        *string `json:"email"`
	PhoneNumber  *string `json:"phoneNumber"`
	AcademicYear *string `json:"academicYear"`
	ProfileImage *string `json:"profileImage"`
}

// StudentServiceConfig tunes list behaviour.
type StudentServiceConfig struct {
	PageSize int
}

// StudentService handles student registration and the list view.
type StudentService struct {
	store     studentStore
	validator *validator.Validate
	logger    *zap.Logger
	cfg       StudentServiceConfig
}

// NewStudentService constructs the student service.
func NewStudentService(store studentStore, validate *validator.Validate, cfg StudentServiceConfig, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = query.DefaultPageSize
	}
	registerRecordValidations(validate)
	return &StudentService{store: store, validator: validate, logger: logger, cfg: cfg}
}

// List runs the filter, sort and pagination pipeline over all students.
func (s *StudentService) List(ctx context.Context, view models.StudentView) ([]models.Student, *models.Pagination, error) {
	if err := validateView(view); err != nil {
		return nil, nil, err
	}
	if view.PageSize <= 0 {
		view.PageSize = s.cfg.PageSize
	}
	result := query.Run(s.store.ListStudents(ctx), view)
	return result.Students, &result.Pagination, nil
}

// Matching returns every student of the view in display order, without
// pagination. Exports use it.
func (s *StudentService) Matching(ctx context.Context, view models.StudentView) ([]models.Student, error) {
	if err := validateView(view); err != nil {
		return nil, err
	}
	key, order := view.SortBy, view.Order
	if key == "" {
		key, order = models.SortByCreatedAt, models.SortDesc
	}
	return query.Sort(query.Filter(s.store.ListStudents(ctx), view.Filter), key, order), nil
}

// All returns every student in insertion order.
func (s *StudentService) All(ctx context.Context) []models.Student {
	return s.store.ListStudents(ctx)
}

// Get returns a student with its enrollments.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.store.FindStudent(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to load student")
	}
	return student, nil
}

// Create registers a new student. The roll number is canonicalized and the
// phone number stored in its display layout.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	req = normalizeStudentRequest(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	student := &models.Student{
		Name:         req.Name,
		RollNumber:   req.RollNumber,
		Department:   models.Department(req.Department),
		Email:        req.Email,
		PhoneNumber:  FormatPhoneNumber(req.PhoneNumber),
		AcademicYear: models.AcademicYear(req.AcademicYear),
		ProfileImage: req.ProfileImage,
	}
	if err := s.store.CreateStudent(ctx, student); err != nil {
		return nil, storeError(err, "failed to create student")
	}
	s.logger.Info("student registered", zap.String("student_id", student.ID), zap.String("roll_number", student.RollNumber))
	return student, nil
}

// Update merges the provided fields into the student. The merged record must
// still pass registration validation.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	current, err := s.store.FindStudent(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to load student")
	}
	merged := normalizeStudentRequest(CreateStudentRequest{
		Name:         pick(req.Name, current.Name),
		RollNumber:   pick(req.RollNumber, current.RollNumber),
		Department:   pick(req.Department, string(current.Department)),
		Email:        pick(req.Email, current.Email),
		PhoneNumber:  pick(req.PhoneNumber, current.PhoneNumber),
		AcademicYear: pick(req.AcademicYear, string(current.AcademicYear)),
		ProfileImage: pick(req.ProfileImage, current.ProfileImage),
	})
	if err := s.validator.Struct(merged); err != nil {
		return nil, validationError(err, "invalid student payload")
	}

	patch := models.StudentPatch{}
	if req.Name != nil {
		patch.Name = &merged.Name
	}
	if req.RollNumber != nil {
		patch.RollNumber = &merged.RollNumber
	}
	if req.Department != nil {
		dept := models.Department(merged.Department)
		patch.Department = &dept
	}
	if req.Email != nil {
		patch.Email = &merged.Email
	}
	if req.PhoneNumber != nil {
		phone := FormatPhoneNumber(merged.PhoneNumber)
		patch.PhoneNumber = &phone
	}
	if req.AcademicYear != nil {
		year := models.AcademicYear(merged.AcademicYear)
		patch.AcademicYear = &year
	}
	if req.ProfileImage != nil {
		patch.ProfileImage = &merged.ProfileImage
	}

	updated, err := s.store.UpdateStudent(ctx, id, patch)
	if err != nil {
		return nil, storeError(err, "failed to update student")
	}
	return updated, nil
}

// Delete removes a student together with its enrollments.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteStudent(ctx, id); err != nil {
		return storeError(err, "failed to delete student")
	}
	s.logger.Info("student deleted", zap.String("student_id", id))
	return nil
}

// ClearAll removes every student. The subject catalog and semesters are kept.
func (s *StudentService) ClearAll(ctx context.Context) error {
	if err := s.store.ClearStudents(ctx); err != nil {
		return storeError(err, "failed to clear students")
	}
	s.logger.Warn("all students cleared")
	return nil
}

func normalizeStudentRequest(req CreateStudentRequest) CreateStudentRequest {
	req.Name = strings.TrimSpace(req.Name)
	req.RollNumber = FormatRollNumber(req.RollNumber)
	req.Email = strings.TrimSpace(req.Email)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	return req
}

func validateView(view models.StudentView) error {
	if view.SortBy != "" && !view.SortBy.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unsupported sort key")
	}
	if view.Order != "" && view.Order != models.SortAsc && view.Order != models.SortDesc {
		return appErrors.Clone(appErrors.ErrValidation, "sort order must be asc or desc")
	}
	if view.Filter.Department != "" && !view.Filter.Department.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown department")
	}
	if view.Filter.AcademicYear != "" && !view.Filter.AcademicYear.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown academic year")
	}
	return nil
}

func pick(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	return *value
}
