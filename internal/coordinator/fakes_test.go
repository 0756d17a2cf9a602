package coordinator

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/studentdash/roster-backend/internal/model"
)

var errProvider = errors.New("provider unavailable")

// fakeData is a DataProvider whose FetchAll calls can be held open and
// released one by one.
type fakeData struct {
	mu        sync.Mutex
	students  []model.Student
	fetchErr  error
	createErr error
	creates   int
	nextID    int
	gates     []chan fetchResult
	gated     bool
	started   chan struct{}
}

type fetchResult struct {
	students []model.Student
	err      error
}

func newFakeData(students ...model.Student) *fakeData {
	return &fakeData{students: students, started: make(chan struct{}, 16)}
}

func (f *fakeData) FetchAll(ctx context.Context) ([]model.Student, error) {
	f.mu.Lock()
	if f.gated {
		gate := make(chan fetchResult, 1)
		f.gates = append(f.gates, gate)
		f.mu.Unlock()
		f.started <- struct{}{}
		select {
		case res := <-gate:
			return res.students, res.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make([]model.Student, len(f.students))
	copy(out, f.students)
	return out, nil
}

// release settles the i-th gated FetchAll call.
func (f *fakeData) release(i int, res fetchResult) {
	f.mu.Lock()
	gate := f.gates[i]
	f.mu.Unlock()
	gate <- res
}

func (f *fakeData) Create(_ context.Context, d model.StudentDraft) (model.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return model.Student{}, f.createErr
	}
	f.nextID++
	s := model.Student{
		ID:             "new-" + strconv.Itoa(f.nextID),
		Name:           d.Name,
		Email:          d.Email,
		Age:            d.Age,
		Course:         d.Course,
		Grade:          d.Grade,
		EnrollmentDate: "2024-01-01",
	}
	f.students = append(f.students, s)
	return s, nil
}

func (f *fakeData) createCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates
}

// fakeIdentity is an IdentityProvider that notifies only when told to.
type fakeIdentity struct {
	mu          sync.Mutex
	subscribers []func(*model.Identity)
	subscribes  int
	unsubscribe int
	signInErr   error
	signUpErr   error
	signOutErr  error
	signIns     int
}

func (f *fakeIdentity) Subscribe(fn func(*model.Identity)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribes++
	f.subscribers = append(f.subscribers, fn)
	return func() {
		f.mu.Lock()
		f.unsubscribe++
		f.mu.Unlock()
	}
}

func (f *fakeIdentity) emit(id *model.Identity) {
	f.mu.Lock()
	subs := append([]func(*model.Identity){}, f.subscribers...)
	f.mu.Unlock()
	for _, fn := range subs {
		fn(id)
	}
}

func (f *fakeIdentity) SignIn(_ context.Context, email, _ string) (*model.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signIns++
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return &model.Identity{AccountID: 1, Email: email, TokenID: "t1"}, nil
}

func (f *fakeIdentity) SignUp(_ context.Context, email, _ string) (*model.Identity, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &model.Identity{AccountID: 2, Email: email, TokenID: "t2"}, nil
}

func (f *fakeIdentity) SignOut(context.Context) error {
	return f.signOutErr
}

func student(id, course string) model.Student {
	return model.Student{
		ID:             id,
		Name:           "Student " + id,
		Email:          id + "@example.com",
		Age:            20,
		Course:         course,
		EnrollmentDate: "2023-09-01",
	}
}

func validDraft() model.StudentDraft {
	return model.StudentDraft{
		Name:   "Jane Doe",
		Email:  "jane@example.com",
		Age:    20,
		Course: "Data Science",
	}
}
