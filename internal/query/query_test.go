package query

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-records/internal/models"
)

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func fixture() []models.Student {
	return []models.Student{
		{ID: "1", Name: "Zara Ahmed", RollNumber: "CS2021BT003", Department: models.DepartmentComputerScience, Email: "zara@uni.edu", AcademicYear: models.AcademicYearFirst, CreatedAt: base},
		{ID: "2", Name: "Ali Raza", RollNumber: "EE2021BT001", Department: models.DepartmentElectrical, Email: "ali@uni.edu", AcademicYear: models.AcademicYearSecond, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "3", Name: "Bilal Khan", RollNumber: "CS2021BT002", Department: models.DepartmentComputerScience, Email: "bilal@mail.com", AcademicYear: models.AcademicYearSecond, CreatedAt: base.Add(time.Hour)},
		{ID: "4", Name: "Ali Raza", RollNumber: "ME2022BT004", Department: models.DepartmentMechanical, Email: "raza@uni.edu", AcademicYear: models.AcademicYearThird, CreatedAt: base.Add(3 * time.Hour)},
	}
}

func ids(students []models.Student) []string {
	out := make([]string, len(students))
	for i, st := range students {
		out[i] = st.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	students := fixture()

	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(Filter(students, models.StudentFilter{})))
	assert.Equal(t, []string{"2", "4"}, ids(Filter(students, models.StudentFilter{Query: "ALI"})))
	assert.Equal(t, []string{"1", "3"}, ids(Filter(students, models.StudentFilter{Query: "cs2021"})))
	assert.Equal(t, []string{"3"}, ids(Filter(students, models.StudentFilter{Query: "mail.com"})))
	assert.Equal(t, []string{"3"}, ids(Filter(students, models.StudentFilter{
		Department:   models.DepartmentComputerScience,
		AcademicYear: models.AcademicYearSecond,
	})))
	assert.Empty(t, Filter(students, models.StudentFilter{Query: "nobody"}))
}

func TestFilterIdempotent(t *testing.T) {
	filter := models.StudentFilter{Query: "uni.edu", AcademicYear: models.AcademicYearSecond}
	once := Filter(fixture(), filter)
	twice := Filter(once, filter)
	assert.Equal(t, once, twice)
}

func TestSortByName(t *testing.T) {
	students := fixture()
	asc := Sort(students, models.SortByName, models.SortAsc)
	assert.Equal(t, []string{"2", "4", "3", "1"}, ids(asc))

	desc := Sort(students, models.SortByName, models.SortDesc)
	assert.Equal(t, []string{"1", "3", "2", "4"}, ids(desc))

	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(students), "input must not be reordered")
}

func TestSortStableOnEqualKeys(t *testing.T) {
	students := fixture()
	byDept := Sort(students, models.SortByDepartment, models.SortAsc)
	assert.Equal(t, []string{"1", "3", "2", "4"}, ids(byDept))
}

func TestSortByCreatedAtAndRollNumber(t *testing.T) {
	students := fixture()
	assert.Equal(t, []string{"4", "2", "3", "1"}, ids(Sort(students, models.SortByCreatedAt, models.SortDesc)))
	assert.Equal(t, []string{"3", "1", "2", "4"}, ids(Sort(students, models.SortByRollNumber, models.SortAsc)))
}

func TestPaginate(t *testing.T) {
	students := make([]models.Student, 0, 30)
	for i := 0; i < 30; i++ {
		students = append(students, models.Student{ID: fmt.Sprintf("%02d", i)})
	}

	assert.Len(t, Paginate(students, 12, 1), 12)
	assert.Len(t, Paginate(students, 12, 3), 6)
	assert.Empty(t, Paginate(students, 12, 4))
	assert.Equal(t, Paginate(students, 12, 1), Paginate(students, 0, 0))
	assert.Equal(t, 3, TotalPages(30, 12))
	assert.Equal(t, 0, TotalPages(0, 12))
	assert.Equal(t, 1, TotalPages(12, 12))
	assert.Equal(t, 1, TotalPages(30, math.MaxInt))

	var collected []string
	for page := 1; page <= TotalPages(len(students), 7); page++ {
		collected = append(collected, ids(Paginate(students, 7, page))...)
	}
	assert.Equal(t, ids(students), collected)
}

func TestPaginateExtremeInputs(t *testing.T) {
	students := make([]models.Student, 0, 30)
	for i := 0; i < 30; i++ {
		students = append(students, models.Student{ID: fmt.Sprintf("%02d", i)})
	}

	cases := []struct {
		name     string
		pageSize int
		page     int
		want     int
	}{
		{"huge page", 12, math.MaxInt, 0},
		{"page wrapping to negative offset", 12, 1_000_000_000_000_000_000, 0},
		{"huge page size first page", math.MaxInt, 1, 30},
		{"huge page size later page", math.MaxInt, 3, 0},
		{"huge page and page size", math.MaxInt, math.MaxInt, 0},
		{"negative page size uses default", -5, 2, 12},
		{"negative page", 12, math.MinInt, 12},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var page []models.Student
			require.NotPanics(t, func() { page = Paginate(students, tc.pageSize, tc.page) })
			assert.Len(t, page, tc.want)
		})
	}

	assert.Empty(t, Paginate(nil, 1, 1))
	assert.Empty(t, Paginate(nil, 12, math.MaxInt))
}

func TestRunHugePageIsEmpty(t *testing.T) {
	result := Run(fixture(), models.StudentView{Page: math.MaxInt, PageSize: math.MaxInt})
	assert.Empty(t, result.Students)
	assert.Equal(t, 4, result.Pagination.TotalCount)
	assert.Equal(t, 1, result.Pagination.TotalPages)
}

func TestRunDefaults(t *testing.T) {
	result := Run(fixture(), models.StudentView{})
	assert.Equal(t, []string{"4", "2", "3", "1"}, ids(result.Students))
	assert.Equal(t, models.Pagination{Page: 1, PageSize: DefaultPageSize, TotalCount: 4, TotalPages: 1}, result.Pagination)
}

func TestRunComposesStages(t *testing.T) {
	result := Run(fixture(), models.StudentView{
		Filter:   models.StudentFilter{Query: "uni.edu"},
		SortBy:   models.SortByName,
		Order:    models.SortAsc,
		Page:     2,
		PageSize: 2,
	})
	require.Len(t, result.Students, 1)
	assert.Equal(t, "1", result.Students[0].ID)
	assert.Equal(t, 3, result.Pagination.TotalCount)
	assert.Equal(t, 2, result.Pagination.TotalPages)
}
