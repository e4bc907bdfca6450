package models

import "time"

// Subject represents a course catalog entry.
type Subject struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Code           string    `json:"code"`
	CreditHours    int       `json:"creditHours"`
	InstructorName string    `json:"instructorName"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Snapshot captures the attributes an enrollment freezes at creation time.
func (s Subject) Snapshot() SubjectSnapshot {
	return SubjectSnapshot{
		SubjectName:    s.Name,
		SubjectCode:    s.Code,
		CreditHours:    s.CreditHours,
		InstructorName: s.InstructorName,
	}
}

// SubjectPatch carries a partial subject update.
type SubjectPatch struct {
	Name           *string
	Code           *string
	CreditHours    *int
	InstructorName *string
}
