package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError pinpoints the draft field that failed a step validation.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

var validate = validator.New()

// Wizard kinds. Each kind is a fixed sequence of steps; a step payload is
// validated in isolation before it is merged into the draft.
const (
	KindSignup       = "signup"
	KindAddUser      = "add-user"
	KindCreateCourse = "create-course"
)

type signupAccountStep struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email"`
}

type signupPasswordStep struct {
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type signupProfileStep struct {
	Avatar string `json:"avatar" validate:"omitempty,url"`
}

type addUserIdentityStep struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email"`
}

type addUserRoleStep struct {
	Role     string `json:"role" validate:"required,oneof=student teacher parent admin management"`
	Password string `json:"password" validate:"required,min=8"`
}

type courseBasicsStep struct {
	Title    string `json:"title" validate:"required,min=3,max=255"`
	Subtitle string `json:"subtitle" validate:"omitempty,max=255"`
	Category string `json:"category" validate:"required,max=100"`
}

type courseDetailsStep struct {
	Description string `json:"description" validate:"omitempty,max=5000"`
	Thumbnail   string `json:"thumbnail" validate:"omitempty,url"`
	Price       int    `json:"price" validate:"gte=0"`
}

// LectureDraft is one curriculum entry accumulated by the create-course wizard.
type LectureDraft struct {
	Title         string `json:"title" validate:"required,max=255"`
	VideoURL      string `json:"videoUrl" validate:"omitempty,url"`
	Duration      int    `json:"duration" validate:"gte=0"`
	IsPreviewFree bool   `json:"isPreviewFree"`
}

type courseLecturesStep struct {
	Lectures []LectureDraft `json:"lectures" validate:"omitempty,dive"`
}

var stepSchemas = map[string][]func() interface{}{
	KindSignup: {
		func() interface{} { return &signupAccountStep{} },
		func() interface{} { return &signupPasswordStep{} },
		func() interface{} { return &signupProfileStep{} },
	},
	KindAddUser: {
		func() interface{} { return &addUserIdentityStep{} },
		func() interface{} { return &addUserRoleStep{} },
	},
	KindCreateCourse: {
		func() interface{} { return &courseBasicsStep{} },
		func() interface{} { return &courseDetailsStep{} },
		func() interface{} { return &courseLecturesStep{} },
	},
}

func KnownKind(kind string) bool {
	_, ok := stepSchemas[kind]
	return ok
}

func StepCount(kind string) int {
	return len(stepSchemas[kind])
}

// ValidateStep is a pure function from a step payload to nil or a FieldError.
// step is 1-based.
func ValidateStep(kind string, step int, payload []byte) error {
	schemas, ok := stepSchemas[kind]
	if !ok {
		return fmt.Errorf("unknown wizard kind %q", kind)
	}
	if step < 1 || step > len(schemas) {
		return fmt.Errorf("wizard %q has no step %d", kind, step)
	}

	target := schemas[step-1]()
	if err := json.Unmarshal(payload, target); err != nil {
		return &FieldError{Field: "_payload", Reason: "malformed JSON"}
	}

	if err := validate.Struct(target); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return &FieldError{
				Field:  lowerFirst(first.Field()),
				Reason: first.Tag(),
			}
		}
		return err
	}
	return nil
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
