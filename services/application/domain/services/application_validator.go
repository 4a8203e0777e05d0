// Package services contains stateless domain services for the application
// bounded context. They operate purely on domain types and raw payloads and
// have no infrastructure dependencies.
package services

import (
	"fmt"

	"github.com/tidwall/gjson"

	appdomain "github.com/ghuser/appdirectory/services/application/domain"
)

// Payload field names, in validation order.
const (
	FieldID      = "id"
	FieldName    = "name"
	FieldDomains = "domains"
)

// FieldError reports the first payload field that is missing or has the wrong type.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	if e.Field == FieldDomains {
		return "field 'domains' must be an array of strings"
	}
	return fmt.Sprintf("field '%s' is required and must be a string", e.Field)
}

// MissingOrInvalidField returns a validation error for field, wrapped in
// domain.ErrInvalidApplication.
func MissingOrInvalidField(field string) error {
	return fmt.Errorf("%w: %w", appdomain.ErrInvalidApplication, &FieldError{Field: field})
}

// ValidateCreatePayload checks the shape of a create payload before it is
// decoded. Checks run in order and the first failure is returned:
//   - id: present, a JSON string, not empty
//   - name: present, a JSON string, not empty
//   - domains: a JSON array whose elements are all strings (may be empty)
//
// Values are not trimmed or otherwise normalised. body must be valid JSON;
// callers reject malformed bodies before calling this.
func ValidateCreatePayload(body []byte) error {
	fields := gjson.GetManyBytes(body, FieldID, FieldName, FieldDomains)

	for i, name := range []string{FieldID, FieldName} {
		if f := fields[i]; f.Type != gjson.String || f.Str == "" {
			return MissingOrInvalidField(name)
		}
	}

	domains := fields[2]
	if !domains.IsArray() {
		return MissingOrInvalidField(FieldDomains)
	}
	for _, d := range domains.Array() {
		if d.Type != gjson.String {
			return MissingOrInvalidField(FieldDomains)
		}
	}
	return nil
}
