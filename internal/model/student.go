package model

// DateLayout is the calendar-date format used for enrollment dates.
const DateLayout = "2006-01-02"

// AllCourses is the CourseFilter sentinel that selects every student.
const AllCourses CourseFilter = "all"

// CourseFilter is either AllCourses or a specific course name.
type CourseFilter string

// Matches reports whether a student enrolled in course passes the filter.
func (f CourseFilter) Matches(course string) bool {
	return f == AllCourses || string(f) == course
}

// Student represents a roster entry. ID and EnrollmentDate are assigned by
// the data provider when the student is created and never change afterwards.
type Student struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Age            int    `json:"age"`
	Course         string `json:"course"`
	EnrollmentDate string `json:"enrollment_date"`
	Grade          string `json:"grade,omitempty"`
	ProfileImage   string `json:"profile_image,omitempty"`
}

// StudentDraft is the payload for adding a student to the roster.
// Validation happens in the roster coordinator, not at binding time.
type StudentDraft struct {
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email" validate:"required,looseemail"`
	Age    int    `json:"age" validate:"required,gte=16,lte=100"`
	Course string `json:"course" validate:"required"`
	Grade  string `json:"grade,omitempty" validate:"omitempty,grade"`
}

// Grades is the letter-grade vocabulary accepted for a student.
var Grades = []string{"A", "A-", "B+", "B", "B-", "C+", "C", "C-", "D+", "D", "F"}

// SetFilterRequest is the payload for changing the course filter.
type SetFilterRequest struct {
	Course string `json:"course" binding:"required"`
}
