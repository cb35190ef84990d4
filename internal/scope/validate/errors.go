// Package validate checks prompt quality and request payloads.
package validate

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Field length limits for API payloads
const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 500
	MaxCommentLen     = 200
	MaxNameLen        = 100
	MinPasswordLen    = 8
	MaxPasswordLen    = 100
)

// Errors collects validation messages per field. A non-empty Errors is an error.
type Errors map[string][]string

// Add records a message for field.
func (e Errors) Add(field, format string, args ...any) {
	e[field] = append(e[field], fmt.Sprintf(format, args...))
}

// Err returns e as an error, or nil when no message was recorded.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Error implements error
func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(e[f], "; "))
	}
	return "invalid input: " + strings.Join(parts, ", ")
}

// Required fails when value is blank.
func (e Errors) Required(field, value string) bool {
	if strings.TrimSpace(value) == "" {
		e.Add(field, "%s is required", field)
		return false
	}
	return true
}

// MaxLen fails when value is longer than limit runes.
func (e Errors) MaxLen(field, value string, limit int) bool {
	if utf8.RuneCountInString(value) > limit {
		e.Add(field, "%s cannot exceed %d characters", field, limit)
		return false
	}
	return true
}

// MinLen fails when value is shorter than limit runes.
func (e Errors) MinLen(field, value string, limit int) bool {
	if utf8.RuneCountInString(value) < limit {
		e.Add(field, "%s must be at least %d characters", field, limit)
		return false
	}
	return true
}

// Check records msg for field when ok is false.
func (e Errors) Check(ok bool, field, msg string) bool {
	if !ok {
		e.Add(field, "%s", msg)
	}
	return ok
}
