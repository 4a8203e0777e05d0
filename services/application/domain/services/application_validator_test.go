package services

import (
	"errors"
	"testing"

	appdomain "github.com/ghuser/appdirectory/services/application/domain"
)

func TestValidateCreatePayload(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string // empty means valid
	}{
		{"valid", `{"id":"a1","name":"Alpha","domains":["alpha.com"]}`, ""},
		{"valid empty domains", `{"id":"a1","name":"Alpha","domains":[]}`, ""},
		{"valid untrimmed values", `{"id":" a1 ","name":"  Alpha","domains":[""]}`, ""},
		{"extra fields ignored", `{"id":"a1","name":"Alpha","domains":[],"icon":"x"}`, ""},
		{"missing id", `{"name":"Alpha","domains":[]}`, FieldID},
		{"empty id", `{"id":"","name":"Alpha","domains":[]}`, FieldID},
		{"numeric id", `{"id":12,"name":"Alpha","domains":[]}`, FieldID},
		{"null id", `{"id":null,"name":"Alpha","domains":[]}`, FieldID},
		{"missing name", `{"id":"a1","domains":[]}`, FieldName},
		{"empty name", `{"id":"a1","name":"","domains":[]}`, FieldName},
		{"boolean name", `{"id":"a1","name":true,"domains":[]}`, FieldName},
		{"object name", `{"id":"a1","name":{"en":"Alpha"},"domains":[]}`, FieldName},
		{"missing domains", `{"id":"a1","name":"Alpha"}`, FieldDomains},
		{"null domains", `{"id":"a1","name":"Alpha","domains":null}`, FieldDomains},
		{"string domains", `{"id":"a1","name":"Alpha","domains":"alpha.com"}`, FieldDomains},
		{"numeric element", `{"id":"a1","name":"Alpha","domains":["alpha.com",3]}`, FieldDomains},
		{"null element", `{"id":"a1","name":"Alpha","domains":[null]}`, FieldDomains},
		{"id checked before name", `{"name":1}`, FieldID},
		{"name checked before domains", `{"id":"a1"}`, FieldName},
		{"top-level array", `[{"id":"a1"}]`, FieldID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCreatePayload([]byte(tt.body))
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, appdomain.ErrInvalidApplication) {
				t.Fatalf("expected ErrInvalidApplication, got %v", err)
			}
			var fe *FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *FieldError in chain, got %v", err)
			}
			if fe.Field != tt.wantField {
				t.Fatalf("expected field %q, got %q", tt.wantField, fe.Field)
			}
		})
	}
}

func TestFieldError_Messages(t *testing.T) {
	if got := (&FieldError{Field: FieldName}).Error(); got != "field 'name' is required and must be a string" {
		t.Errorf("unexpected name message: %q", got)
	}
	if got := (&FieldError{Field: FieldDomains}).Error(); got != "field 'domains' must be an array of strings" {
		t.Errorf("unexpected domains message: %q", got)
	}
}
