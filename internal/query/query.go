// Package query implements the student list view: filter, sort and paginate.
// Every function is pure and returns a new slice.
package query

import (
	"slices"
	"strings"

	"github.com/noah-isme/academic-records/internal/models"
)

// DefaultPageSize is used whenever a non-positive page size is requested.
const DefaultPageSize = 12

// Result is one page of a student view together with its totals.
type Result struct {
	Students   []models.Student
	Pagination models.Pagination
}

// Filter keeps the students matching every non-empty criterion. The text query
// matches name, roll number or email case-insensitively; department and
// academic year must match exactly.
func Filter(students []models.Student, filter models.StudentFilter) []models.Student {
	q := strings.ToLower(filter.Query)
	out := make([]models.Student, 0, len(students))
	for _, st := range students {
		if q != "" && !matchesQuery(st, q) {
			continue
		}
		if filter.Department != "" && st.Department != filter.Department {
			continue
		}
		if filter.AcademicYear != "" && st.AcademicYear != filter.AcademicYear {
			continue
		}
		out = append(out, st)
	}
	return out
}

func matchesQuery(st models.Student, q string) bool {
	return strings.Contains(strings.ToLower(st.Name), q) ||
		strings.Contains(strings.ToLower(st.RollNumber), q) ||
		strings.Contains(strings.ToLower(st.Email), q)
}

// Sort orders a copy of students by key. Equal keys keep their input order.
// Unknown keys fall back to createdAt.
func Sort(students []models.Student, key models.StudentSortKey, order models.SortOrder) []models.Student {
	out := slices.Clone(students)
	if out == nil {
		out = []models.Student{}
	}
	cmp := comparator(key)
	slices.SortStableFunc(out, func(a, b models.Student) int {
		if order == models.SortDesc {
			return cmp(b, a)
		}
		return cmp(a, b)
	})
	return out
}

func comparator(key models.StudentSortKey) func(a, b models.Student) int {
	switch key {
	case models.SortByName:
		return func(a, b models.Student) int { return strings.Compare(a.Name, b.Name) }
	case models.SortByRollNumber:
		return func(a, b models.Student) int { return strings.Compare(a.RollNumber, b.RollNumber) }
	case models.SortByDepartment:
		return func(a, b models.Student) int { return strings.Compare(string(a.Department), string(b.Department)) }
	default:
		return func(a, b models.Student) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
}

// Paginate returns the 1-based page of students. Out of range pages are empty.
func Paginate(students []models.Student, pageSize, page int) []models.Student {
	pageSize, page = normalize(pageSize, page)
	// Compare page indexes before multiplying so huge inputs cannot overflow.
	if len(students) == 0 || page-1 > (len(students)-1)/pageSize {
		return []models.Student{}
	}
	start := (page - 1) * pageSize
	end := start + min(pageSize, len(students)-start)
	return slices.Clone(students[start:end])
}

// TotalPages returns ceil(total/pageSize).
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if total <= 0 {
		return 0
	}
	return (total-1)/pageSize + 1
}

// Run applies filter, sort and pagination in that order. An empty sort key
// means newest registrations first.
func Run(students []models.Student, view models.StudentView) Result {
	key, order := view.SortBy, view.Order
	if key == "" {
		key, order = models.SortByCreatedAt, models.SortDesc
	}
	if order == "" {
		order = models.SortAsc
	}
	pageSize, page := normalize(view.PageSize, view.Page)

	matched := Sort(Filter(students, view.Filter), key, order)
	return Result{
		Students: Paginate(matched, pageSize, page),
		Pagination: models.Pagination{
			Page:       page,
			PageSize:   pageSize,
			TotalCount: len(matched),
			TotalPages: TotalPages(len(matched), pageSize),
		},
	}
}

func normalize(pageSize, page int) (int, int) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	return pageSize, page
}
