package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Global validator instance, reporting fields by their yaml names
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError represents a field-level validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors holds multiple validation errors
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// Error implements the error interface for ValidationErrors
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(v.Errors))
	for i, e := range v.Errors {
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// validateStruct validates s and converts validator errors into ValidationErrors
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	validationErrs := &ValidationErrors{}
	for _, e := range fieldErrs {
		field := fieldPath(e.Namespace())
		validationErrs.Errors = append(validationErrs.Errors, ValidationError{
			Field:   field,
			Message: formatValidationMessage(field, e),
		})
	}
	return validationErrs
}

// fieldPath drops the root struct name from a validator namespace,
// "Config.oracle.main.connection.port" becomes "oracle.main.connection.port".
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

// formatValidationMessage creates human-readable error messages
func formatValidationMessage(field string, e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_unless":
		return fmt.Sprintf("%s is required unless %s", field, strings.Replace(e.Param(), " ", " is ", 1))
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "hostname_rfc1123|ip":
		return fmt.Sprintf("%s must be a valid hostname or IP address", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, e.Tag())
	}
}
