package serrors

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidationErrors maps struct field names to their error descriptions.
type ValidationErrors map[string]*BaseError

func (v ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(v))
}

// Messages flattens field errors into plain strings for API payloads.
func (v ValidationErrors) Messages() map[string]string {
	out := make(map[string]string, len(v))
	for field, err := range v {
		out[field] = err.Message
	}
	return out
}

// ProcessValidatorErrors converts go-playground validator errors into coded
// field errors. fieldLabel maps a struct field name to its display label;
// an empty label falls back to the field name itself.
func ProcessValidatorErrors(errs validator.ValidationErrors, fieldLabel func(field string) string) ValidationErrors {
	out := make(ValidationErrors, len(errs))
	for _, fe := range errs {
		label := ""
		if fieldLabel != nil {
			label = fieldLabel(fe.Field())
		}
		if label == "" {
			label = fe.Field()
		}
		out[fe.Field()] = &BaseError{
			Code:    "VALIDATION_" + fe.Tag(),
			Kind:    KindValidation,
			Message: validatorMessage(label, fe),
		}
	}
	return out
}

func validatorMessage(label string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", label)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, fe.Param())
	case "uuid":
		return fmt.Sprintf("%s must be a valid UUID", label)
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}
