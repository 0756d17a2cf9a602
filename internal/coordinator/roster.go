// Package coordinator holds the state owners of a dashboard workspace: the
// Roster (students, course filter, load status) and the Session (the signed-in
// identity). Presentation code reads their snapshots and calls their
// operations; it never mutates their state directly.
package coordinator

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/studentdash/roster-backend/internal/model"
	"github.com/studentdash/roster-backend/internal/validator"
)

// Roster is the single source of truth for a workspace's student collection.
type Roster struct {
	provider DataProvider
	log      zerolog.Logger

	mu        sync.RWMutex
	students  []model.Student
	filter    model.CourseFilter
	status    model.LoadStatus
	lastError string

	watchers watchers
}

// NewRoster creates an empty, idle Roster backed by provider.
func NewRoster(provider DataProvider, log zerolog.Logger) *Roster {
	return &Roster{
		provider: provider,
		log:      log.With().Str("component", "roster").Logger(),
		students: []model.Student{},
		filter:   model.AllCourses,
		status:   model.StatusIdle,
	}
}

// Refresh replaces the roster with the provider's current snapshot.
//
// The status is Loading before the provider is called. Overlapping calls are
// not coalesced: each one writes its own outcome when it settles, so the call
// that settles last decides the final roster and status.
func (r *Roster) Refresh(ctx context.Context) error {
	r.mu.Lock()
	r.status = model.StatusLoading
	r.lastError = ""
	r.mu.Unlock()
	r.watchers.notify()

	students, err := r.provider.FetchAll(ctx)

	r.mu.Lock()
	if err != nil {
		r.status = model.StatusFailed
		r.lastError = MsgFetchFailed
	} else {
		r.students = cloneStudents(students)
		r.status = model.StatusReady
		r.lastError = ""
	}
	count := len(r.students)
	r.mu.Unlock()
	r.watchers.notify()

	if err != nil {
		r.log.Error().Err(err).Msg("Roster refresh failed")
		return fmt.Errorf("refresh roster: %w", err)
	}
	r.log.Debug().Int("students", count).Msg("Roster refreshed")
	return nil
}

// SetFilter selects the course shown by the filtered view. An empty value
// selects all courses.
func (r *Roster) SetFilter(value model.CourseFilter) {
	if strings.TrimSpace(string(value)) == "" {
		value = model.AllCourses
	}

	r.mu.Lock()
	r.filter = value
	r.mu.Unlock()
	r.watchers.notify()
}

// AddStudent validates draft and asks the provider to create the student.
//
// Invalid drafts yield a *ValidationError and never reach the provider.
// Provider failures yield an error wrapping ErrAddFailed. In both cases the
// roster is left exactly as it was.
func (r *Roster) AddStudent(ctx context.Context, draft model.StudentDraft) (model.Student, error) {
	draft = normalizeDraft(draft)
	if fields := validator.Draft(draft); fields != nil {
		return model.Student{}, &ValidationError{Fields: fields}
	}

	student, err := r.provider.Create(ctx, draft)
	if err != nil {
		r.log.Error().Err(err).Str("course", draft.Course).Msg("Provider rejected new student")
		return model.Student{}, fmt.Errorf("%w: %w", ErrAddFailed, err)
	}

	r.mu.Lock()
	for _, s := range r.students {
		if s.ID == student.ID {
			r.mu.Unlock()
			return model.Student{}, fmt.Errorf("%w: %w", ErrAddFailed, ErrDuplicateStudent)
		}
	}
	r.students = append(r.students, student)
	r.mu.Unlock()
	r.watchers.notify()

	r.log.Info().Str("student_id", student.ID).Str("course", student.Course).Msg("Student added")
	return student, nil
}

// Snapshot returns a copy of the roster read model.
func (r *Roster) Snapshot() model.RosterSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return model.RosterSnapshot{
		Roster:    cloneStudents(r.students),
		Filtered:  FilterView(r.students, r.filter),
		Filter:    r.filter,
		Status:    r.status,
		LastError: r.lastError,
	}
}

// Filtered returns the students matching the current filter, in roster order.
func (r *Roster) Filtered() []model.Student {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return FilterView(r.students, r.filter)
}

// Find looks a student up by ID.
func (r *Roster) Find(id string) (model.Student, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.students {
		if s.ID == id {
			return s, true
		}
	}
	return model.Student{}, false
}

// Watch registers fn to run after every state change.
func (r *Roster) Watch(fn func()) (stop func()) {
	return r.watchers.add(fn)
}

// Close drops all watchers.
func (r *Roster) Close() {
	r.watchers.clear()
}

// FilterView is the filtered projection of students: all of them for
// AllCourses, otherwise those whose course equals filter. Order is preserved.
func FilterView(students []model.Student, filter model.CourseFilter) []model.Student {
	out := make([]model.Student, 0, len(students))
	for _, s := range students {
		if filter.Matches(s.Course) {
			out = append(out, s)
		}
	}
	return out
}

func cloneStudents(in []model.Student) []model.Student {
	out := make([]model.Student, len(in))
	copy(out, in)
	return out
}

func normalizeDraft(d model.StudentDraft) model.StudentDraft {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.TrimSpace(d.Email)
	d.Course = strings.TrimSpace(d.Course)
	d.Grade = strings.TrimSpace(d.Grade)
	return d
}
