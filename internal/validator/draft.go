package validator

import (
	"errors"
	"regexp"
	"slices"
	"strings"
	"sync"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/studentdash/roster-backend/internal/model"
)

// emailPattern accepts anything with a local part, an "@" and a dotted domain.
var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

var (
	draftOnce     sync.Once
	draftValidate *govalidator.Validate
)

func draftValidator() *govalidator.Validate {
	draftOnce.Do(func() {
		v := govalidator.New(govalidator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonTagName)
		_ = v.RegisterValidation("looseemail", func(fl govalidator.FieldLevel) bool {
			return emailPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("grade", func(fl govalidator.FieldLevel) bool {
			return slices.Contains(model.Grades, fl.Field().String())
		})
		draftValidate = v
	})
	return draftValidate
}

// Draft checks a student draft and returns one message per invalid field,
// keyed by JSON field name. It returns nil when the draft is valid.
func Draft(d model.StudentDraft) map[string]string {
	err := draftValidator().Struct(d)
	if err == nil {
		return nil
	}

	var ve govalidator.ValidationErrors
	if !errors.As(err, &ve) {
		return map[string]string{"detail": err.Error()}
	}

	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = draftMessage(fe)
	}
	return fields
}

func draftMessage(fe govalidator.FieldError) string {
	required := fe.Tag() == "required"
	switch fe.Field() {
	case "name":
		return "Name is required"
	case "email":
		if required {
			return "Email is required"
		}
		return "Email is invalid"
	case "age":
		if required {
			return "Age is required"
		}
		return "Age must be between 16 and 100"
	case "course":
		return "Course is required"
	case "grade":
		return "Grade must be one of " + strings.Join(model.Grades, ", ")
	default:
		return fe.Error()
	}
}
