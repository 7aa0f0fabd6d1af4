package board

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for board description problems.
const (
	ErrCodeParamMissing       = "PARAM_MISSING"
	ErrCodeParamInvalid       = "PARAM_INVALID"
	ErrCodeUnknownAction      = "UNKNOWN_ACTION"
	ErrCodeCategoryInvalid    = "CATEGORY_INVALID"
	ErrCodeStepInvalid        = "STEP_INVALID"
	ErrCodeSchemaUnsupported  = "SCHEMA_UNSUPPORTED"
	ErrCodeFileNotFound       = "FILE_NOT_FOUND"
	ErrCodeParse              = "PARSE_ERROR"
	ErrCodeFormatUnsupported  = "FORMAT_UNSUPPORTED"
	ErrCodeDescriptionInvalid = "DESCRIPTION_INVALID"
)

// UserError is a board error with a code and an actionable suggestion.
type UserError struct {
	Code       string
	Message    string
	Context    string // step ID or file path
	Suggestion string
	Underlying error
}

// Error implements the error interface.
func (e *UserError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Context != "" {
		fmt.Fprintf(&b, " (%s)", e.Context)
	}
	if e.Underlying != nil {
		fmt.Fprintf(&b, ": %v", e.Underlying)
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *UserError) Unwrap() error {
	return e.Underlying
}

// Is reports whether target is a UserError with the same code.
func (e *UserError) Is(target error) bool {
	var t *UserError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Format returns a multi-line rendering for terminal output.
func (e *UserError) Format() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Error [%s]: %s\n", e.Code, e.Message)
	if e.Context != "" {
		fmt.Fprintf(&b, "  Context: %s\n", e.Context)
	}
	if e.Underlying != nil {
		fmt.Fprintf(&b, "  Cause: %v\n", e.Underlying)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Suggestion: %s\n", e.Suggestion)
	}

	return b.String()
}

// NewUserError creates a new UserError with the given code and message.
func NewUserError(code, message string) *UserError {
	return &UserError{
		Code:    code,
		Message: message,
	}
}

// WithContext returns a copy with context set.
func (e *UserError) WithContext(ctx string) *UserError {
	c := *e
	c.Context = ctx
	return &c
}

// WithSuggestion returns a copy with suggestion set.
func (e *UserError) WithSuggestion(suggestion string) *UserError {
	c := *e
	c.Suggestion = suggestion
	return &c
}

// WithUnderlying returns a copy wrapping err.
func (e *UserError) WithUnderlying(err error) *UserError {
	c := *e
	c.Underlying = err
	return &c
}

func paramMissing(step, key string) *UserError {
	return NewUserError(ErrCodeParamMissing, fmt.Sprintf("required parameter %q is missing", key)).
		WithContext(step).
		WithSuggestion(fmt.Sprintf("Add `%s` to the step's params", key))
}

func paramInvalid(step, key, value string, err error) *UserError {
	return NewUserError(ErrCodeParamInvalid, fmt.Sprintf("parameter %q has invalid value %q", key, value)).
		WithContext(step).
		WithUnderlying(err)
}
