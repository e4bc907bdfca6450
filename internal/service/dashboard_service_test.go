package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-records/internal/models"
)

func enrolled(grade models.Grade, credits int) models.Enrollment {
	return models.Enrollment{Grade: grade, SubjectSnapshot: models.SubjectSnapshot{CreditHours: credits}}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2024, 9, 10, 12, 0, 0, 0, time.UTC)
	students := []models.Student{
		{Department: models.DepartmentElectrical, AcademicYear: models.AcademicYearFirst, CreatedAt: now.Add(-time.Hour),
			Enrollments: []models.Enrollment{enrolled(models.GradeA, 3)}},
		{Department: models.DepartmentComputerScience, AcademicYear: models.AcademicYearFirst, CreatedAt: now.Add(-30 * 24 * time.Hour),
			Enrollments: []models.Enrollment{enrolled(models.GradeB, 3), enrolled(models.GradeCPlus, 3)}},
		{Department: models.DepartmentComputerScience, AcademicYear: models.AcademicYearThird, CreatedAt: now.Add(-8 * 24 * time.Hour)},
		{Department: models.DepartmentElectrical, AcademicYear: models.AcademicYearSecond, CreatedAt: now.Add(-6 * 24 * time.Hour)},
	}

	stats := Summarize(students, now, 7*24*time.Hour)
	assert.Equal(t, 4, stats.TotalStudents)
	assert.Equal(t, 2, stats.Departments)
	assert.Equal(t, string(models.DepartmentElectrical), stats.TopDepartment)
	assert.Equal(t, 2, stats.RecentRegistrations)
	assert.Equal(t, 3, stats.TotalEnrollments)
	assert.Equal(t, "1.66", stats.AverageCGPA)

	require.Len(t, stats.ByDepartment, len(models.Departments))
	assert.Equal(t, 2, stats.ByDepartment[0].Count)
	require.Len(t, stats.ByAcademicYear, 4)
	assert.Equal(t, 2, stats.ByAcademicYear[0].Count)
	assert.Equal(t, 0, stats.ByAcademicYear[3].Count)
}

func TestSummarizeEmpty(t *testing.T) {
	stats := Summarize(nil, time.Now(), 7*24*time.Hour)
	assert.Equal(t, 0, stats.TotalStudents)
	assert.Equal(t, "N/A", stats.TopDepartment)
	assert.Equal(t, "0.00", stats.AverageCGPA)
}

func TestDashboardServiceStats(t *testing.T) {
	svc, _ := newStudentServiceForTest(t)
	_, err := svc.Create(context.Background(), validStudentRequest("CS2021BT001"))
	require.NoError(t, err)

	dashboard := NewDashboardService(svc.store, DashboardServiceConfig{}, nil)
	stats := dashboard.Stats(context.Background())
	assert.Equal(t, 1, stats.TotalStudents)
	assert.Equal(t, string(models.DepartmentComputerScience), stats.TopDepartment)
}
