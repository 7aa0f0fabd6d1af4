package bringup

import (
	"errors"
	"regexp"
	"strings"
)

// StepID uniquely identifies a step within a plan.
// Format: kind:target (e.g., "clock:main-pll", "reset:gpio1").
type StepID struct {
	value string
}

// Errors for StepID validation.
var (
	ErrEmptyStepID   = errors.New("step ID cannot be empty")
	ErrInvalidStepID = errors.New("step ID format invalid: must be alphanumeric segments separated by colons")
)

// stepIDPattern allows alphanumerics plus '_', '/', '.', '-' inside segments.
// Segments are separated by single colons and must not be empty.
var stepIDPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_/.-]*(?::[a-zA-Z0-9][a-zA-Z0-9_/.-]*)*$`)

// NewStepID creates a new StepID from a string.
func NewStepID(value string) (StepID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return StepID{}, ErrEmptyStepID
	}
	if !stepIDPattern.MatchString(trimmed) {
		return StepID{}, ErrInvalidStepID
	}
	return StepID{value: trimmed}, nil
}

// MustNewStepID creates a new StepID, panicking on error.
// Use this for literal IDs in board descriptions written in Go.
func MustNewStepID(value string) StepID {
	id, err := NewStepID(value)
	if err != nil {
		panic("invalid step ID: " + value + ": " + err.Error())
	}
	return id
}

// IDs converts a list of strings into StepIDs, failing on the first invalid one.
func IDs(values ...string) ([]StepID, error) {
	ids := make([]StepID, 0, len(values))
	for _, v := range values {
		id, err := NewStepID(v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// String returns the string representation.
func (id StepID) String() string {
	return id.value
}

// Kind returns the first segment of the ID.
func (id StepID) Kind() string {
	kind, _, _ := strings.Cut(id.value, ":")
	return kind
}

// IsZero returns true if this is a zero-value StepID.
func (id StepID) IsZero() bool {
	return id.value == ""
}
