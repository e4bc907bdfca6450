// Package grading holds the credit-weighted grade point arithmetic used for
// semester GPAs, cumulative CGPAs and transcripts.
package grading

import (
	"sort"
	"strconv"

	"github.com/noah-isme/academic-records/internal/models"
)

// Points returns the grade-point value of grade on the 4.0 scale.
func Points(grade models.Grade) float64 {
	return grade.Points()
}

// CGPA returns the credit-weighted average of the enrollments' grade points.
// It is zero for an empty slice or when no credit hours are attached.
func CGPA(enrollments []models.Enrollment) float64 {
	var weighted float64
	var credits int
	for _, e := range enrollments {
		weighted += Points(e.Grade) * float64(e.CreditHours)
		credits += e.CreditHours
	}
	if credits == 0 {
		return 0
	}
	return weighted / float64(credits)
}

// SemesterCGPA is CGPA restricted to enrollments whose semester label equals
// semester exactly.
func SemesterCGPA(enrollments []models.Enrollment, semester string) float64 {
	return CGPA(InSemester(enrollments, semester))
}

// InSemester returns the enrollments recorded under semester, in order.
func InSemester(enrollments []models.Enrollment, semester string) []models.Enrollment {
	out := make([]models.Enrollment, 0, len(enrollments))
	for _, e := range enrollments {
		if e.Semester == semester {
			out = append(out, e)
		}
	}
	return out
}

// Semesters returns the distinct semester labels in lexical order.
func Semesters(enrollments []models.Enrollment) []string {
	seen := make(map[string]struct{}, len(enrollments))
	labels := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		if _, ok := seen[e.Semester]; ok {
			continue
		}
		seen[e.Semester] = struct{}{}
		labels = append(labels, e.Semester)
	}
	sort.Strings(labels)
	return labels
}

// TotalCredits sums the credit hours of enrollments.
func TotalCredits(enrollments []models.Enrollment) int {
	total := 0
	for _, e := range enrollments {
		total += e.CreditHours
	}
	return total
}

// Format renders a grade point average with two decimals.
func Format(cgpa float64) string {
	return strconv.FormatFloat(cgpa, 'f', 2, 64)
}

// Transcript groups the enrollments by semester and computes per-semester and
// cumulative figures.
func Transcript(studentID string, enrollments []models.Enrollment) models.Transcript {
	labels := Semesters(enrollments)
	summaries := make([]models.SemesterSummary, 0, len(labels))
	for _, label := range labels {
		group := InSemester(enrollments, label)
		summaries = append(summaries, models.SemesterSummary{
			Semester:    label,
			Enrollments: group,
			CreditHours: TotalCredits(group),
			GPA:         CGPA(group),
		})
	}
	return models.Transcript{
		StudentID:   studentID,
		Semesters:   summaries,
		CreditHours: TotalCredits(enrollments),
		CGPA:        CGPA(enrollments),
	}
}
