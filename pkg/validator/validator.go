// Package validator decodes JSON bodies into tagged structs and runs
// go-playground/validator over them.
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]

		// ignore unexported or explicitly ignored
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// Validate runs struct-level validation using go-playground/validator tags.
func Validate(s any) error {
	return validate.Struct(s)
}

func isValidationErrors(err error, target *validator.ValidationErrors) bool {
	return errors.As(err, target)
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return fmt.Sprintf("Minimum length is %s", e.Param())
	case "max":
		return fmt.Sprintf("Maximum length is %s", e.Param())
	default:
		return fmt.Sprintf("Validation failed on '%s'", e.Tag())
	}
}

// ErrInvalidJSON is returned by Decode when the body is not valid JSON for T.
var ErrInvalidJSON = errors.New("invalid JSON")

// Decode unmarshals body into T and validates it.
// Returns an error wrapping ErrInvalidJSON if decoding fails, or the
// validator.ValidationErrors from Validate if a tag rule fails.
func Decode[T any](body []byte) (*T, error) {
	var req T
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	if err := Validate(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// FirstFieldError returns the JSON name and message of the first failed field
// in err, in struct declaration order. ok is false if err is not a
// validator.ValidationErrors.
func FirstFieldError(err error) (field, message string, ok bool) {
	var ve validator.ValidationErrors
	if !isValidationErrors(err, &ve) || len(ve) == 0 {
		return "", "", false
	}
	return ve[0].Field(), formatFieldError(ve[0]), true
}
