package leaderboard

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested team, score or progress entry does not exist.
var ErrNotFound = errors.New("resource not found")

// ValidationError carries per-field messages for invalid input.
type ValidationError struct {
	Fields map[string][]string
}

// Error implements error.
func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// Add appends a message for field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) empty() bool {
	return len(e.Fields) == 0
}

func fieldError(field, message string) *ValidationError {
	ve := &ValidationError{}
	ve.Add(field, message)
	return ve
}

func errTeamInvalid() *ValidationError {
	return fieldError("team_id", "The selected team id is invalid.")
}

func errCodeTaken() *ValidationError {
	return fieldError("code", "The code has already been taken.")
}

// notFound converts a record-not-found error from the store into ErrNotFound.
func notFound(resource string, id uint, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", resource, id, ErrNotFound)
	}
	return err
}
