package coordinator

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/studentdash/roster-backend/internal/model"
)

// Errors an IdentityProvider reports so callers can tell failures apart.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailAlreadyInUse  = errors.New("email already in use")
)

// Roster errors.
var (
	ErrAddFailed        = errors.New("failed to add student")
	ErrDuplicateStudent = errors.New("student id already present in roster")
)

// MsgFetchFailed is the LastError reported after a failed refresh.
const MsgFetchFailed = "Failed to fetch students"

// IdentityProvider is the external authentication service behind a Session.
//
// Subscribe must invoke fn once with the current identity (nil when
// anonymous) as soon as it is known, then again after every change. It
// returns a function that cancels the subscription.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*model.Identity, error)
	SignUp(ctx context.Context, email, password string) (*model.Identity, error)
	SignOut(ctx context.Context) error
	Subscribe(fn func(*model.Identity)) (unsubscribe func())
}

// DataProvider is the external student store behind a Roster.
// Create assigns the ID and enrollment date of the new student.
type DataProvider interface {
	FetchAll(ctx context.Context) ([]model.Student, error)
	Create(ctx context.Context, draft model.StudentDraft) (model.Student, error)
}

// ValidationError carries field-scoped messages for a rejected draft.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid student draft: " + strings.Join(names, ", ")
}
