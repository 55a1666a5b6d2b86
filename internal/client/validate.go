package client

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrValidation matches every *ValidationError
var ErrValidation = errors.New("validation failed")

// ValidationError lists the input fields that were rejected before any
// request was sent.
type ValidationError struct {
	Op     string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+e.Fields[name])
	}
	return fmt.Sprintf("%s: %s", e.Op, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

const (
	msgRequired    = "is required"
	msgBlank       = "must not be blank"
	msgBadStatus   = "is not a known status"
	msgBadEmail    = "is not an email address"
	msgNoChanges   = "has no fields to update"
	inputFieldName = "input"
)

type validator struct {
	op     string
	errors map[string]string
}

func newValidator(op MutationName) *validator {
	return &validator{op: string(op), errors: make(map[string]string)}
}

func (v *validator) fail(field, msg string) {
	if _, ok := v.errors[field]; !ok {
		v.errors[field] = msg
	}
}

// required trims value and records an error when nothing is left.
func (v *validator) required(field, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		v.fail(field, msgRequired)
	}
	return value
}

// notBlank trims an optional update field; supplying only whitespace is an
// error rather than a silent clear.
func (v *validator) notBlank(field string, value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		v.fail(field, msgBlank)
	}
	return &trimmed
}

func (v *validator) trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	t := strings.TrimSpace(*value)
	return &t
}

func (v *validator) email(field, value string) {
	if value != "" && !strings.Contains(value, "@") {
		v.fail(field, msgBadEmail)
	}
}

func (v *validator) err() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Op: v.op, Fields: v.errors}
}

func trim(s string) string {
	return strings.TrimSpace(s)
}
