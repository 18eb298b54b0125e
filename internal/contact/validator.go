package contact

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^[\+]?[(]?[0-9]{1,4}[)]?[-\s\.]?[(]?[0-9]{1,4}[)]?[-\s\.]?[0-9]{1,9}$`)

const (
	fieldName    = "name"
	fieldEmail   = "email"
	fieldPhone   = "phone"
	fieldOrg     = "org"
	fieldMessage = "message"

	msgRequired       = "Required"
	msgExpectedString = "Expected string"
)

type rule struct {
	tag     string
	message string
}

type fieldSpec struct {
	field    string
	required bool
	rules    []rule
}

// Order matters: errors are reported in this order.
var fieldSpecs = []fieldSpec{
	{
		field:    fieldName,
		required: true,
		rules: []rule{
			{"min=2", "Name must be at least 2 characters"},
			{"max=100", "Name is too long"},
		},
	},
	{
		field:    fieldEmail,
		required: true,
		rules: []rule{
			{"email", "Invalid email address"},
			{"max=255", "Email is too long"},
		},
	},
	{
		field: fieldPhone,
		rules: []rule{
			{"phone", "Invalid phone number"},
		},
	},
	{
		field: fieldOrg,
		rules: []rule{
			{"max=200", "Organization name is too long"},
		},
	},
	{
		field:    fieldMessage,
		required: true,
		rules: []rule{
			{"min=5", "Message must be at least 5 characters"},
			{"max=2000", "Message is too long"},
		},
	},
}

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return &Validator{validate: v}
}

// Validate checks input and returns a Submission built from the trimmed
// values. A non-nil FieldErrors means the Submission is unusable. input is
// never modified.
func (v *Validator) Validate(input SubmissionInput) (Submission, FieldErrors) {
	var errs FieldErrors
	values := make(map[string]string, len(fieldSpecs))

	for _, spec := range fieldSpecs {
		raw, present := input[spec.field]
		if raw == nil {
			present = false
		}

		if !present {
			if spec.required {
				errs = append(errs, FieldError{Field: spec.field, Message: msgRequired})
			}
			continue
		}

		str, ok := raw.(string)
		if !ok {
			errs = append(errs, FieldError{Field: spec.field, Message: msgExpectedString})
			continue
		}

		value := strings.TrimSpace(str)
		values[spec.field] = value

		if !spec.required && value == "" {
			continue
		}

		for _, r := range spec.rules {
			if err := v.validate.Var(value, r.tag); err != nil {
				errs = append(errs, FieldError{Field: spec.field, Message: r.message})
			}
		}
	}

	if len(errs) > 0 {
		return Submission{}, errs
	}

	return Submission{
		name:         values[fieldName],
		email:        values[fieldEmail],
		phone:        values[fieldPhone],
		organization: values[fieldOrg],
		message:      values[fieldMessage],
	}, nil
}
