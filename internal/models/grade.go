package models

// Grade is a letter grade on the 4.0 scale.
type Grade string

const (
	GradeA      Grade = "A"
	GradeAMinus Grade = "A-"
	GradeBPlus  Grade = "B+"
	GradeB      Grade = "B"
	GradeBMinus Grade = "B-"
	GradeCPlus  Grade = "C+"
	GradeC      Grade = "C"
	GradeCMinus Grade = "C-"
	GradeDPlus  Grade = "D+"
	GradeD      Grade = "D"
	GradeF      Grade = "F"
)

// GradeLowest is assigned to every new enrollment.
const GradeLowest = GradeF

// Grades lists the scale from highest to lowest.
var Grades = []Grade{
	GradeA, GradeAMinus, GradeBPlus, GradeB, GradeBMinus,
	GradeCPlus, GradeC, GradeCMinus, GradeDPlus, GradeD, GradeF,
}

// Valid reports whether g belongs to the scale.
func (g Grade) Valid() bool {
	_, ok := g.points()
	return ok
}

// Points returns the grade-point value; unknown grades count as zero.
func (g Grade) Points() float64 {
	p, _ := g.points()
	return p
}

func (g Grade) points() (float64, bool) {
	switch g {
	case GradeA:
		return 4.0, true
	case GradeAMinus:
		return 3.7, true
	case GradeBPlus:
		return 3.3, true
	case GradeB:
		return 3.0, true
	case GradeBMinus:
		return 2.7, true
	case GradeCPlus:
		return 2.3, true
	case GradeC:
		return 2.0, true
	case GradeCMinus:
		return 1.7, true
	case GradeDPlus:
		return 1.3, true
	case GradeD:
		return 1.0, true
	case GradeF:
		return 0.0, true
	}
	return 0, false
}
