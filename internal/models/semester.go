package models

import "time"

// Semester is an academic term such as "Fall 2024".
type Semester struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Year      string    `json:"year"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Label is the free-form semester string stored on enrollments.
func (s Semester) Label() string {
	return s.Name + " " + s.Year
}

// SemesterPatch carries a partial semester update.
type SemesterPatch struct {
	Name     *string
	Year     *string
	IsActive *bool
}
