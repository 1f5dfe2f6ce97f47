package formdef

import (
	"errors"
	"sort"
	"strings"
)

// ErrNotFound indicates the form id does not resolve to a stored definition.
var ErrNotFound = errors.New("form not found")

// ValidationError carries human-readable messages keyed by the offending
// attribute (title, method, action, fields, json_data, configuration).
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns an empty validation error ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

// Add appends a message for the given attribute.
func (e *ValidationError) Add(attr, msg string) {
	e.Fields[attr] = append(e.Fields[attr], msg)
}

// Empty reports whether no message was recorded.
func (e *ValidationError) Empty() bool { return len(e.Fields) == 0 }

func (e *ValidationError) Error() string {
	attrs := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		attrs = append(attrs, k)
	}
	sort.Strings(attrs)
	var b strings.Builder
	b.WriteString("validation failed: ")
	for i, a := range attrs {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(a)
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Fields[a], ", "))
	}
	return b.String()
}
