package dto

import "time"

// LabelCount pairs a category label with the number of students in it.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// DashboardStats is the summary shown above the student list.
type DashboardStats struct {
	TotalStudents       int          `json:"totalStudents"`
	Departments         int          `json:"departments"`
	TopDepartment       string       `json:"topDepartment"`
	RecentRegistrations int          `json:"recentRegistrations"`
	TotalEnrollments    int          `json:"totalEnrollments"`
	AverageCGPA         string       `json:"averageCgpa"`
	ByDepartment        []LabelCount `json:"byDepartment"`
	ByAcademicYear      []LabelCount `json:"byAcademicYear"`
	GeneratedAt         time.Time    `json:"generatedAt"`
}
