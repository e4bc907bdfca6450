package models

import "time"

// Department is the closed set of departments a student can belong to.
type Department string

const (
	DepartmentComputerScience       Department = "Computer Science"
	DepartmentInformationTechnology Department = "Information Technology"
	DepartmentElectronics           Department = "Electronics"
	DepartmentMechanical            Department = "Mechanical"
	DepartmentCivil                 Department = "Civil"
	DepartmentElectrical            Department = "Electrical"
	DepartmentChemical              Department = "Chemical"
	DepartmentBiotechnology         Department = "Biotechnology"
)

// Departments lists every department in display order.
var Departments = []Department{
	DepartmentComputerScience,
	DepartmentInformationTechnology,
	DepartmentElectronics,
	DepartmentMechanical,
	DepartmentCivil,
	DepartmentElectrical,
	DepartmentChemical,
	DepartmentBiotechnology,
}

// Valid reports whether d is one of the known departments.
func (d Department) Valid() bool {
	switch d {
	case DepartmentComputerScience, DepartmentInformationTechnology, DepartmentElectronics,
		DepartmentMechanical, DepartmentCivil, DepartmentElectrical, DepartmentChemical,
		DepartmentBiotechnology:
		return true
	}
	return false
}

// AcademicYear is the closed set of study years.
type AcademicYear string

const (
	AcademicYearFirst  AcademicYear = "First Year"
	AcademicYearSecond AcademicYear = "Second Year"
	AcademicYearThird  AcademicYear = "Third Year"
	AcademicYearFourth AcademicYear = "Fourth Year"
)

// AcademicYears lists every academic year in order.
var AcademicYears = []AcademicYear{AcademicYearFirst, AcademicYearSecond, AcademicYearThird, AcademicYearFourth}

// Valid reports whether y is one of the known academic years.
func (y AcademicYear) Valid() bool {
	switch y {
	case AcademicYearFirst, AcademicYearSecond, AcademicYearThird, AcademicYearFourth:
		return true
	}
	return false
}

// Student represents a registered learner together with the enrollments it owns.
type Student struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	RollNumber   string       `json:"rollNumber"`
	Department   Department   `json:"department"`
	Email        string       `json:"email"`
	PhoneNumber  string       `json:"phoneNumber"`
	AcademicYear AcademicYear `json:"academicYear"`
	ProfileImage string       `json:"profileImage,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	Enrollments  []Enrollment `json:"subjects"`
}

// Clone returns a deep copy so callers never share the enrollment backing array.
func (s Student) Clone() Student {
	out := s
	out.Enrollments = make([]Enrollment, len(s.Enrollments))
	copy(out.Enrollments, s.Enrollments)
	return out
}

// StudentPatch carries a partial update; nil fields are left untouched.
type StudentPatch struct {
	Name         *string
	RollNumber   *string
	Department   *Department
	Email        *string
	PhoneNumber  *string
	AcademicYear *AcademicYear
	ProfileImage *string
}

// StudentFilter encapsulates the search parameters of the student list view.
type StudentFilter struct {
	Query        string       `json:"query"`
	Department   Department   `json:"department"`
	AcademicYear AcademicYear `json:"academicYear"`
}

// StudentSortKey names a sortable student field.
type StudentSortKey string

const (
	SortByName       StudentSortKey = "name"
	SortByRollNumber StudentSortKey = "rollNumber"
	SortByDepartment StudentSortKey = "department"
	SortByCreatedAt  StudentSortKey = "createdAt"
)

// Valid reports whether k is a supported sort key.
func (k StudentSortKey) Valid() bool {
	switch k {
	case SortByName, SortByRollNumber, SortByDepartment, SortByCreatedAt:
		return true
	}
	return false
}

// SortOrder is either ascending or descending.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// StudentView describes a complete list view: filter, ordering and page.
type StudentView struct {
	Filter   StudentFilter
	SortBy   StudentSortKey
	Order    SortOrder
	Page     int
	PageSize int
}
