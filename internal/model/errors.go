package model

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for input encoding failures. Handlers map these to stable
// HTTP error codes with errors.Is.
var (
	ErrMissingField    = errors.New("missing required field")
	ErrUnknownCategory = errors.New("unknown category value")
	ErrInvalidValue    = errors.New("invalid field value")
)

// FieldError describes why a single input column failed to encode. It wraps
// one of the sentinel errors above and carries enough detail for an error
// response to enumerate the accepted labels.
type FieldError struct {
	Column  string
	Value   string
	Allowed []string

	kind error
}

func (e *FieldError) Error() string {
	switch {
	case errors.Is(e.kind, ErrMissingField):
		return fmt.Sprintf("column %q: %v", e.Column, e.kind)
	case errors.Is(e.kind, ErrUnknownCategory):
		return fmt.Sprintf("column %q: %v %q (accepted: %s)",
			e.Column, e.kind, e.Value, strings.Join(e.Allowed, ", "))
	default:
		return fmt.Sprintf("column %q: %v %q", e.Column, e.kind, e.Value)
	}
}

func (e *FieldError) Unwrap() error {
	return e.kind
}

func missingField(column string) *FieldError {
	return &FieldError{Column: column, kind: ErrMissingField}
}

func unknownCategory(column, value string, allowed []string) *FieldError {
	return &FieldError{Column: column, Value: value, Allowed: allowed, kind: ErrUnknownCategory}
}

func invalidValue(column, value string) *FieldError {
	return &FieldError{Column: column, Value: value, kind: ErrInvalidValue}
}
