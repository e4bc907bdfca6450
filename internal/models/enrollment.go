package models

import "time"

// SubjectSnapshot is a value copy of a subject taken when a student enrolls.
// It never follows later edits or deletion of the subject it was copied from.
type SubjectSnapshot struct {
	SubjectName    string `json:"subjectName"`
	SubjectCode    string `json:"subjectCode"`
	CreditHours    int    `json:"creditHours"`
	InstructorName string `json:"instructorName"`
}

// Enrollment links its owning student to a subject for one semester.
type Enrollment struct {
	ID        string `json:"id"`
	SubjectID string `json:"subjectId"`
	SubjectSnapshot
	Grade          Grade     `json:"grade"`
	Semester       string    `json:"semester"`
	EnrollmentDate time.Time `json:"enrollmentDate"`
}

// SemesterSummary groups a student's enrollments for one semester.
type SemesterSummary struct {
	Semester    string       `json:"semester"`
	Enrollments []Enrollment `json:"enrollments"`
	CreditHours int          `json:"creditHours"`
	GPA         float64      `json:"gpa"`
}

// Transcript is the per-semester academic record of a student.
type Transcript struct {
	StudentID   string            `json:"studentId"`
	Semesters   []SemesterSummary `json:"semesters"`
	CreditHours int               `json:"creditHours"`
	CGPA        float64           `json:"cgpa"`
}
