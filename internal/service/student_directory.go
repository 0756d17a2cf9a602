package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/studentdash/roster-backend/internal/model"
)

// BuiltinCourses are the courses offered out of the box.
var BuiltinCourses = []string{
	"Computer Science",
	"Data Science",
	"Artificial Intelligence",
	"Cybersecurity",
	"Web Development",
	"Mobile Development",
	"Cloud Computing",
	"DevOps",
}

// StudentDirectory is the in-memory student data provider shared by all
// workspaces of the process. Nothing is persisted.
type StudentDirectory struct {
	latency time.Duration
	now     func() time.Time

	mu       sync.RWMutex
	students []model.Student
	custom   []string
}

// NewStudentDirectory creates a directory, optionally seeded with the sample
// roster. latency is the simulated round trip of every call.
func NewStudentDirectory(latency time.Duration, seed bool) *StudentDirectory {
	d := &StudentDirectory{
		latency: latency,
		now:     time.Now,
	}
	if seed {
		d.students = SampleStudents()
	}
	return d
}

// FetchAll returns the current roster snapshot.
func (d *StudentDirectory) FetchAll(ctx context.Context) ([]model.Student, error) {
	if err := wait(ctx, d.latency); err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]model.Student, len(d.students))
	copy(out, d.students)
	return out, nil
}

// ByCourse returns the students enrolled in course, or everyone for "all".
func (d *StudentDirectory) ByCourse(ctx context.Context, course string) ([]model.Student, error) {
	if err := wait(ctx, d.latency/2); err != nil {
		return nil, err
	}

	filter := model.CourseFilter(course)
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]model.Student, 0, len(d.students))
	for _, s := range d.students {
		if filter.Matches(s.Course) {
			out = append(out, s)
		}
	}
	return out, nil
}

// Create stores a new student, assigning its ID, enrollment date and a
// placeholder profile image. Unknown courses become custom courses.
func (d *StudentDirectory) Create(ctx context.Context, draft model.StudentDraft) (model.Student, error) {
	if err := wait(ctx, d.latency); err != nil {
		return model.Student{}, err
	}

	student := model.Student{
		ID:             uuid.New().String(),
		Name:           draft.Name,
		Email:          draft.Email,
		Age:            draft.Age,
		Course:         draft.Course,
		EnrollmentDate: d.now().Format(model.DateLayout),
		Grade:          draft.Grade,
		ProfileImage:   placeholderImage(),
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if !slices.Contains(BuiltinCourses, draft.Course) && !slices.Contains(d.custom, draft.Course) {
		d.custom = append(d.custom, draft.Course)
	}
	d.students = append(d.students, student)
	return student, nil
}

// Courses lists built-in courses followed by custom ones in creation order.
func (d *StudentDirectory) Courses() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(BuiltinCourses)+len(d.custom))
	out = append(out, BuiltinCourses...)
	return append(out, d.custom...)
}

func placeholderImage() string {
	return fmt.Sprintf("https://images.pexels.com/photos/%d/pexels-photo.jpeg?auto=compress&cs=tinysrgb&w=150", rand.IntN(1000000))
}

// wait sleeps for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SampleStudents returns the demo roster a fresh directory is seeded with.
func SampleStudents() []model.Student {
	img := func(photo int) string {
		return fmt.Sprintf("https://images.pexels.com/photos/%d/pexels-photo-%d.jpeg?auto=compress&cs=tinysrgb&w=150", photo, photo)
	}
	return []model.Student{
		{ID: "1", Name: "Alex Johnson", Email: "alex.johnson@example.com", Age: 22, Course: "Computer Science", EnrollmentDate: "2023-09-01", Grade: "A", ProfileImage: img(614810)},
		{ID: "2", Name: "Sophia Williams", Email: "sophia.williams@example.com", Age: 21, Course: "Data Science", EnrollmentDate: "2023-08-15", Grade: "B+", ProfileImage: img(415829)},
		{ID: "3", Name: "Ethan Brown", Email: "ethan.brown@example.com", Age: 23, Course: "Web Development", EnrollmentDate: "2023-09-05", Grade: "A-", ProfileImage: img(220453)},
		{ID: "4", Name: "Olivia Garcia", Email: "olivia.garcia@example.com", Age: 20, Course: "Artificial Intelligence", EnrollmentDate: "2023-08-20", Grade: "A-", ProfileImage: img(774909)},
		{ID: "5", Name: "Noah Martinez", Email: "noah.martinez@example.com", Age: 22, Course: "Cybersecurity", EnrollmentDate: "2023-09-10", Grade: "B", ProfileImage: img(91227)},
		{ID: "6", Name: "Emma Davis", Email: "emma.davis@example.com", Age: 21, Course: "Data Science", EnrollmentDate: "2023-08-25", Grade: "B-", ProfileImage: img(712513)},
		{ID: "7", Name: "James Wilson", Email: "james.wilson@example.com", Age: 24, Course: "Mobile Development", EnrollmentDate: "2023-09-15", Grade: "A", ProfileImage: img(1681010)},
		{ID: "8", Name: "Isabella Taylor", Email: "isabella.taylor@example.com", Age: 23, Course: "Cloud Computing", EnrollmentDate: "2023-09-20", Grade: "B+", ProfileImage: img(1239291)},
		{ID: "9", Name: "Lucas Anderson", Email: "lucas.anderson@example.com", Age: 25, Course: "DevOps", EnrollmentDate: "2023-09-25", Grade: "A-", ProfileImage: img(2379004)},
	}
}
