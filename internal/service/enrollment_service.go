package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records/internal/grading"
	"github.com/noah-isme/academic-records/internal/models"
	appErrors "github.com/noah-isme/academic-records/pkg/errors"
)

type enrollmentStore interface {
	FindStudent(ctx context.Context, id string) (*models.Student, error)
	FindSubject(ctx context.Context, id string) (*models.Subject, error)
	ListSubjects(ctx context.Context) []models.Subject
	ListSemesters(ctx context.Context) []models.Semester
	MutateStudent(ctx context.Context, id string, fn func(*models.Student) error) (*models.Student, error)
	NewID() string
	Now() time.Time
}

// EnrollRequest enrolls a student in a catalog subject for one semester.
type EnrollRequest struct {
	SubjectID string `json:"subjectId" validate:"required"`
	Semester  string `json:"semester" validate:"required,max=50"`
}

// SetGradeRequest replaces the grade of an enrollment.
type SetGradeRequest struct {
	Grade string `json:"grade" validate:"required,grade"`
}

// EnrollmentService manages the enrollments owned by each student.
type EnrollmentService struct {
	store     enrollmentStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(store enrollmentStore, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registerRecordValidations(validate)
	return &EnrollmentService{store: store, validator: validate, logger: logger}
}

// Enroll snapshots the subject onto a new enrollment with the lowest grade.
// Enrolling twice in the same subject for the same semester is rejected; a
// different semester counts as a retake.
func (s *EnrollmentService) Enroll(ctx context.Context, studentID string, req EnrollRequest) (*models.Enrollment, error) {
	req.Semester = strings.TrimSpace(req.Semester)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid enrollment payload")
	}
	subject, err := s.store.FindSubject(ctx, req.SubjectID)
	if err != nil {
		return nil, storeError(err, "failed to load subject")
	}

	var created models.Enrollment
	_, err = s.store.MutateStudent(ctx, studentID, func(st *models.Student) error {
		for _, e := range st.Enrollments {
			if e.SubjectID == subject.ID && e.Semester == req.Semester {
				return appErrors.Clone(appErrors.ErrDuplicateKey, "student already enrolled in subject for this semester")
			}
		}
		created = models.Enrollment{
			ID:              s.store.NewID(),
			SubjectID:       subject.ID,
			SubjectSnapshot: subject.Snapshot(),
			Grade:           models.GradeLowest,
			Semester:        req.Semester,
			EnrollmentDate:  s.store.Now(),
		}
		st.Enrollments = append(st.Enrollments, created)
		return nil
	})
	if err != nil {
		return nil, storeError(err, "failed to enroll student")
	}
	s.logger.Info("student enrolled",
		zap.String("student_id", studentID),
		zap.String("subject_code", subject.Code),
		zap.String("semester", req.Semester),
	)
	return &created, nil
}

// SetGrade replaces the grade of one enrollment.
func (s *EnrollmentService) SetGrade(ctx context.Context, studentID, enrollmentID string, req SetGradeRequest) (*models.Enrollment, error) {
	req.Grade = strings.ToUpper(strings.TrimSpace(req.Grade))
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid grade")
	}
	var updated models.Enrollment
	_, err := s.store.MutateStudent(ctx, studentID, func(st *models.Student) error {
		idx := enrollmentIndex(st.Enrollments, enrollmentID)
		if idx < 0 {
			return enrollmentNotFound()
		}
		st.Enrollments[idx].Grade = models.Grade(req.Grade)
		updated = st.Enrollments[idx]
		return nil
	})
	if err != nil {
		return nil, storeError(err, "failed to update grade")
	}
	return &updated, nil
}

var errEnrollmentAbsent = errors.New("enrollment absent")

// Remove drops one enrollment from the student. Removing an enrollment the
// student does not have is a no-op and persists nothing.
func (s *EnrollmentService) Remove(ctx context.Context, studentID, enrollmentID string) error {
	_, err := s.store.MutateStudent(ctx, studentID, func(st *models.Student) error {
		idx := enrollmentIndex(st.Enrollments, enrollmentID)
		if idx < 0 {
			return errEnrollmentAbsent
		}
		st.Enrollments = append(st.Enrollments[:idx], st.Enrollments[idx+1:]...)
		return nil
	})
	switch {
	case errors.Is(err, errEnrollmentAbsent):
		return nil
	case err != nil:
		return storeError(err, "failed to remove enrollment")
	}
	return nil
}

// List returns the student's enrollments in the order they were created. An
// unknown student has no enrollments.
func (s *EnrollmentService) List(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	student, err := s.store.FindStudent(ctx, studentID)
	if errors.Is(err, appErrors.ErrNotFound) {
		return []models.Enrollment{}, nil
	}
	if err != nil {
		return nil, storeError(err, "failed to load student")
	}
	return student.Enrollments, nil
}

// AvailableSubjects returns the catalog subjects the student is not enrolled
// in for any semester.
func (s *EnrollmentService) AvailableSubjects(ctx context.Context, studentID string) ([]models.Subject, error) {
	student, err := s.store.FindStudent(ctx, studentID)
	if err != nil {
		return nil, storeError(err, "failed to load student")
	}
	enrolled := make(map[string]struct{}, len(student.Enrollments))
	for _, e := range student.Enrollments {
		enrolled[e.SubjectID] = struct{}{}
	}
	catalog := s.store.ListSubjects(ctx)
	available := make([]models.Subject, 0, len(catalog))
	for _, subject := range catalog {
		if _, ok := enrolled[subject.ID]; !ok {
			available = append(available, subject)
		}
	}
	return available, nil
}

// SemesterOptions merges the configured semester labels with the labels
// already used by the student's enrollments, sorted and without duplicates.
func (s *EnrollmentService) SemesterOptions(ctx context.Context, studentID string) ([]string, error) {
	student, err := s.store.FindStudent(ctx, studentID)
	if err != nil {
		return nil, storeError(err, "failed to load student")
	}
	seen := map[string]struct{}{}
	options := []string{}
	add := func(label string) {
		if _, ok := seen[label]; ok {
			return
		}
		seen[label] = struct{}{}
		options = append(options, label)
	}
	for _, semester := range s.store.ListSemesters(ctx) {
		add(semester.Label())
	}
	for _, e := range student.Enrollments {
		add(e.Semester)
	}
	sort.Strings(options)
	return options, nil
}

// Transcript returns the per-semester record and CGPA of a student.
func (s *EnrollmentService) Transcript(ctx context.Context, studentID string) (*models.Transcript, error) {
	student, err := s.store.FindStudent(ctx, studentID)
	if err != nil {
		return nil, storeError(err, "failed to load student")
	}
	transcript := grading.Transcript(student.ID, student.Enrollments)
	return &transcript, nil
}

func enrollmentIndex(enrollments []models.Enrollment, id string) int {
	for i, e := range enrollments {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func enrollmentNotFound() error {
	return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
}
