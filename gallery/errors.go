package gallery

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidPage       = errors.New("invalid page")
	ErrItemNotInSequence = errors.New("item is not part of the album sequence")
)

// ValidationError maps form field names to human readable messages
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+e.Fields[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Err returns nil when no field failed
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// CheckExtension adds an error for field when filename does not carry the
// expected extension. Empty file names are left to the required checks.
func (e *ValidationError) CheckExtension(field, filename, expected string) {
	if filename == "" {
		return
	}
	if ext := Extension(filename); ext != strings.ToLower(expected) {
		e.Add(field, fmt.Sprintf("The file you uploaded appears to be in %s format. It needs to be in %s format.", ext, expected))
	}
}

func (e *ValidationError) Required(field, value string) {
	if strings.TrimSpace(value) == "" {
		e.Add(field, "This field is required.")
	}
}
