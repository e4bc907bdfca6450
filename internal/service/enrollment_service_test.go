package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records/internal/grading"
	"github.com/noah-isme/academic-records/internal/models"
	appErrors "github.com/noah-isme/academic-records/pkg/errors"
)

type enrollmentFixture struct {
	h          *storeHarness
	students   *StudentService
	subjects   *SubjectService
	semesters  *SemesterService
	enrollment *EnrollmentService
	student    *models.Student
	math       *models.Subject
}

func newEnrollmentFixture(t *testing.T) *enrollmentFixture {
	t.Helper()
	h := newStoreHarness(t)
	validate := NewRecordValidator()
	f := &enrollmentFixture{
		h:          h,
		students:   NewStudentService(h.store, validate, StudentServiceConfig{}, zap.NewNop()),
		subjects:   NewSubjectService(h.store, validate, zap.NewNop()),
		semesters:  NewSemesterService(h.store, validate, zap.NewNop()),
		enrollment: NewEnrollmentService(h.store, validate, zap.NewNop()),
	}
	var err error
	f.student, err = f.students.Create(context.Background(), validStudentRequest("CS2021BT001"))
	require.NoError(t, err)
	f.math, err = f.subjects.Create(context.Background(), CreateSubjectRequest{
		Name: "Calculus I", Code: "math101", CreditHours: 3, InstructorName: "Dr Imran Ali",
	})
	require.NoError(t, err)
	return f
}

func TestEnrollmentGradeScenario(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()
	assert.Equal(t, "MATH101", f.math.Code)

	f.h.clock.Advance(time.Minute)
	enrollment, err := f.enrollment.Enroll(ctx, f.student.ID, EnrollRequest{SubjectID: f.math.ID, Semester: "Fall 2024"})
	require.NoError(t, err)
	assert.Equal(t, models.GradeF, enrollment.Grade)
	assert.Equal(t, "MATH101", enrollment.SubjectCode)
	assert.Equal(t, 3, enrollment.CreditHours)
	assert.Equal(t, f.h.clock.Now(), enrollment.EnrollmentDate)

	transcript, err := f.enrollment.Transcript(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, "0.00", grading.Format(transcript.CGPA))

	_, err = f.enrollment.SetGrade(ctx, f.student.ID, enrollment.ID, SetGradeRequest{Grade: "b+"})
	require.NoError(t, err)

	transcript, err = f.enrollment.Transcript(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, "3.30", grading.Format(transcript.CGPA))
	require.Len(t, transcript.Semesters, 1)
	assert.InDelta(t, 3.3, transcript.Semesters[0].GPA, 1e-9)

	student, err := f.students.Get(ctx, f.student.ID)
	require.NoError(t, err)
	assert.True(t, student.UpdatedAt.After(f.student.UpdatedAt))
}

func TestEnrollmentDuplicateAndRetake(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()

	_, err := f.enrollment.Enroll(ctx, f.student.ID, EnrollRequest{SubjectID: f.math.ID, Semester: "Fall 2024"})
	require.NoError(t, err)

	_, err = f.enrollment.Enroll(ctx, f.student.ID, EnrollRequest{SubjectID: f.math.ID, Semester: "Fall 2024"})
	assert.ErrorIs(t, err, appErrors.ErrDuplicateKey)

	_, err = f.enrollment.Enroll(ctx, f.student.ID, EnrollRequest{SubjectID: f.math.ID, Semester: "Spring 2025"})
	require.NoError(t, err)

	enrollments, err := f.enrollment.List(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Len(t, enrollments, 2)
}

func TestEnrollmentErrors(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()

	_, err := f.enrollment.Enroll(ctx, f.student.ID, EnrollRequest{SubjectID: "missing", Semester: "Fall 2024"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = f.enrollment.Enroll(ctx, "missing", EnrollRequest{SubjectID: f.math.ID, Semester: "Fall 2024"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = f.enrollment.Enroll(ctx, f.student.ID, EnrollRequest{SubjectID: f.math.ID, Semester: "  "})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = f.enrollment.SetGrade(ctx, f.student.ID, "missing", SetGradeRequest{Grade: "A"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	enrollment, err := f.enrollment.Enroll(ctx, f.student.ID, EnrollRequest{SubjectID: f.math.ID, Semester: "Fall 2024"})
	require.NoError(t, err)
	_, err = f.enrollment.SetGrade(ctx, f.student.ID, enrollment.ID, SetGradeRequest{Grade: "E"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	assert.ErrorIs(t, f.enrollment.Remove(ctx, "missing", enrollment.ID), appErrors.ErrNotFound)
}

func TestEnrollmentRemoveAbsentIsNoop(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()

	before, err := f.students.Get(ctx, f.student.ID)
	require.NoError(t, err)
	require.NoError(t, f.enrollment.Remove(ctx, f.student.ID, "missing"))

	after, err := f.students.Get(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
}

func TestEnrollmentRemove(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()

	enrollment, err := f.enrollment.Enroll(ctx, f.student.ID, EnrollRequest{SubjectID: f.math.ID, Semester: "Fall 2024"})
	require.NoError(t, err)
	require.NoError(t, f.enrollment.Remove(ctx, f.student.ID, enrollment.ID))

	enrollments, err := f.enrollment.List(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Empty(t, enrollments)
}

func TestEnrollmentSnapshotSurvivesCatalogChanges(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()

	_, err := f.enrollment.Enroll(ctx, f.student.ID, EnrollRequest{SubjectID: f.math.ID, Semester: "Fall 2024"})
	require.NoError(t, err)

	_, err = f.subjects.Update(ctx, f.math.ID, UpdateSubjectRequest{Name: strPtr("Calculus Advanced"), CreditHours: intPtr(4)})
	require.NoError(t, err)
	enrollments, err := f.enrollment.List(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, "Calculus I", enrollments[0].SubjectName)
	assert.Equal(t, 3, enrollments[0].CreditHours)

	require.NoError(t, f.subjects.Delete(ctx, f.math.ID))
	enrollments, err = f.enrollment.List(ctx, f.student.ID)
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	assert.Equal(t, "MATH101", enrollments[0].SubjectCode)
}

func TestEnrollmentAvailableSubjectsAndSemesters(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()

	physics, err := f.subjects.Create(ctx, CreateSubjectRequest{Name: "Physics", Code: "PHY101", CreditHours: 4, InstructorName: "Dr Sana"})
	require.NoError(t, err)
	_, err = f.semesters.Create(ctx, CreateSemesterRequest{Name: "Spring", Year: "2025", IsActive: true})
	require.NoError(t, err)
	_, err = f.semesters.Create(ctx, CreateSemesterRequest{Name: "Fall", Year: "2024"})
	require.NoError(t, err)

	_, err = f.enrollment.Enroll(ctx, f.student.ID, EnrollRequest{SubjectID: f.math.ID, Semester: "Summer 2024"})
	require.NoError(t, err)

	available, err := f.enrollment.AvailableSubjects(ctx, f.student.ID)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, physics.ID, available[0].ID)

	options, err := f.enrollment.SemesterOptions(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fall 2024", "Spring 2025", "Summer 2024"}, options)
}

func TestDeletingStudentDropsEnrollments(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()

	_, err := f.enrollment.Enroll(ctx, f.student.ID, EnrollRequest{SubjectID: f.math.ID, Semester: "Fall 2024"})
	require.NoError(t, err)
	require.NoError(t, f.students.Delete(ctx, f.student.ID))

	enrollments, err := f.enrollment.List(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Empty(t, enrollments)
	assert.Len(t, f.subjects.List(ctx), 1)
}
