package shared

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

// Validator returns the process-wide validator. Field names in errors come
// from the `form` tag so they line up with HTML inputs.
func Validator() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			switch name {
			case "-":
				return ""
			case "":
				return fld.Name
			}
			return name
		})
		validatorInst = v
	})
	return validatorInst
}

// ValidationError carries per-field messages for inline form errors.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewFieldError builds a ValidationError for a single field.
func NewFieldError(field, message string) error {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// ValidateStruct runs struct-tag validation and converts failures into a
// ValidationError.
func ValidateStruct(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		name, _, _ := strings.Cut(fe.Field(), "[")
		if _, seen := out.Fields[name]; seen {
			continue
		}
		out.Fields[name] = describe(fe)
	}
	return out
}

// FieldErrors extracts per-field messages, or a "general" entry for other errors.
func FieldErrors(err error) map[string]string {
	if err == nil {
		return map[string]string{}
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return map[string]string{"general": UserSafeMessage(err)}
}

func describe(fe validator.FieldError) string {
	field, _, _ := strings.Cut(fe.Field(), "[")
	field = strings.ReplaceAll(field, "_", " ")
	switch fe.Tag() {
	case "required", "required_if":
		return field + " is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("select at least %s %s", fe.Param(), field)
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "eqfield":
		return field + " does not match"
	case "email":
		return field + " must be a valid email address"
	case "http_url", "url":
		return field + " must be a valid http(s) URL"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gtefield":
		return fmt.Sprintf("%s must not be before %s", field, strings.ToLower(fe.Param()))
	default:
		return field + " is invalid"
	}
}
