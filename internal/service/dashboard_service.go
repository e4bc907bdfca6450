package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academic-records/internal/dto"
	"github.com/noah-isme/academic-records/internal/grading"
	"github.com/noah-isme/academic-records/internal/models"
)

type studentLister interface {
	ListStudents(ctx context.Context) []models.Student
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	RecentWindow time.Duration
}

// DashboardService computes summary statistics over the student collection.
type DashboardService struct {
	students studentLister
	logger   *zap.Logger
	now      func() time.Time
	cfg      DashboardServiceConfig
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(students studentLister, cfg DashboardServiceConfig, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RecentWindow <= 0 {
		cfg.RecentWindow = 7 * 24 * time.Hour
	}
	return &DashboardService{students: students, logger: logger, now: time.Now, cfg: cfg}
}

// Stats summarises every registered student.
func (s *DashboardService) Stats(ctx context.Context) dto.DashboardStats {
	return Summarize(s.students.ListStudents(ctx), s.now(), s.cfg.RecentWindow)
}

// Summarize computes dashboard figures for students as of now. The top
// department is the one with most students; ties go to the department seen
// first. Students registered strictly after now-window count as recent.
func Summarize(students []models.Student, now time.Time, window time.Duration) dto.DashboardStats {
	deptCounts := map[models.Department]int{}
	yearCounts := map[models.AcademicYear]int{}
	var firstSeen []models.Department
	cutoff := now.Add(-window)
	recent, enrollments := 0, 0
	var cgpaSum float64

	for _, st := range students {
		if _, ok := deptCounts[st.Department]; !ok {
			firstSeen = append(firstSeen, st.Department)
		}
		deptCounts[st.Department]++
		yearCounts[st.AcademicYear]++
		if st.CreatedAt.After(cutoff) {
			recent++
		}
		enrollments += len(st.Enrollments)
		cgpaSum += grading.CGPA(st.Enrollments)
	}

	top, topCount := "N/A", 0
	for _, dept := range firstSeen {
		if deptCounts[dept] > topCount {
			top, topCount = string(dept), deptCounts[dept]
		}
	}

	byDept := make([]dto.LabelCount, 0, len(models.Departments))
	for _, dept := range models.Departments {
		byDept = append(byDept, dto.LabelCount{Label: string(dept), Count: deptCounts[dept]})
	}
	byYear := make([]dto.LabelCount, 0, len(models.AcademicYears))
	for _, year := range models.AcademicYears {
		byYear = append(byYear, dto.LabelCount{Label: string(year), Count: yearCounts[year]})
	}

	return dto.DashboardStats{
		TotalStudents:       len(students),
		Departments:         len(deptCounts),
		TopDepartment:       top,
		RecentRegistrations: recent,
		TotalEnrollments:    enrollments,
		AverageCGPA:         grading.Format(cgpaSum / float64(max(len(students), 1))),
		ByDepartment:        byDept,
		ByAcademicYear:      byYear,
		GeneratedAt:         now.UTC(),
	}
}
