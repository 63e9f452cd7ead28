// Package errors provides consistent error types for Studylog.
// It defines the categories surfaced to the user: ValidationError (a draft
// failed the form rules), RepositoryError (the record store backend failed),
// UserError (bad command-line input) and SystemError (local system issues).
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for common conditions.
var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrDuplicateID      = errors.New("duplicate record id")
	ErrSubmitInFlight   = errors.New("a submit is already in progress")
	ErrFormClosed       = errors.New("no dialog is open")
	ErrInvalidMode      = errors.New("invalid dialog mode")
	ErrInvalidTime      = errors.New("invalid time value")
	ErrUnknownBackend   = errors.New("unknown storage backend")
	ErrBackendUnhealthy = errors.New("storage backend unavailable")
)

// UserError represents an error that the user can fix.
// Examples: invalid input, missing required arguments, incorrect format.
type UserError struct {
	Message    string // What happened
	Suggestion string // How to fix it
	Field      string // The field/input that caused the error (optional)
	Value      string // The invalid value (optional)
}

func (e *UserError) Error() string {
	msg := e.Message
	if e.Field != "" && e.Value != "" {
		msg = fmt.Sprintf("%s: '%s'", e.Message, e.Value)
	}
	return msg
}

// NewUserError creates a new UserError.
func NewUserError(message, suggestion string) *UserError {
	return &UserError{
		Message:    message,
		Suggestion: suggestion,
	}
}

// NewUserErrorWithField creates a new UserError with field context.
func NewUserErrorWithField(field, value, message, suggestion string) *UserError {
	return &UserError{
		Message:    message,
		Field:      field,
		Value:      value,
		Suggestion: suggestion,
	}
}

// SystemError represents a system-level error that the user cannot directly fix.
// Examples: unreadable config file, database directory not writable.
type SystemError struct {
	Message string // What happened
	Cause   error  // The underlying error
	Op      string // The operation that failed (optional)
}

func (e *SystemError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s during %s", e.Message, e.Op)
	}
	return e.Message
}

func (e *SystemError) Unwrap() error {
	return e.Cause
}

// NewSystemError creates a new SystemError.
func NewSystemError(message string, cause error) *SystemError {
	return &SystemError{
		Message: message,
		Cause:   cause,
	}
}

// NewSystemErrorWithOp creates a new SystemError with operation context.
func NewSystemErrorWithOp(op, message string, cause error) *SystemError {
	return &SystemError{
		Message: message,
		Cause:   cause,
		Op:      op,
	}
}

// Repository operation names.
const (
	OpList   = "list"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// RepositoryError is returned by every record repository when the backing
// store rejects or fails an operation. Message is meant for humans; whether
// the failure is transient is left to it.
type RepositoryError struct {
	Op      string // list, create, update or delete
	Message string // Human-readable description
	Cause   error  // The underlying error (optional)
}

func (e *RepositoryError) Error() string {
	if e.Op == "" {
		return e.Message
	}
	return fmt.Sprintf("%s records: %s", e.Op, e.Message)
}

func (e *RepositoryError) Unwrap() error {
	return e.Cause
}

// NewRepositoryError creates a RepositoryError whose message is taken from cause.
func NewRepositoryError(op string, cause error) *RepositoryError {
	msg := "unknown failure"
	if cause != nil {
		msg = cause.Error()
	}
	return &RepositoryError{Op: op, Message: msg, Cause: cause}
}

// AsRepositoryFailure wraps err in a RepositoryError for op unless it already
// is one. Nil stays nil.
func AsRepositoryFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsRepositoryError(err) {
		return err
	}
	return NewRepositoryError(op, err)
}

// Validation rule names.
const (
	RuleRequired = "required"
	RuleMin      = "min"
)

// Violation is a single failed validation rule.
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// ValidationError reports every rule a draft failed. It never leaves the
// process; nothing is sent to the repository when one is produced.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return "invalid record: " + strings.Join(parts, "; ")
}

// Has reports whether the given field failed the given rule.
func (e *ValidationError) Has(field, rule string) bool {
	for _, v := range e.Violations {
		if v.Field == field && v.Rule == rule {
			return true
		}
	}
	return false
}

// NewValidationError creates a ValidationError, or returns nil when there are
// no violations.
func NewValidationError(violations []Violation) *ValidationError {
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}

// IsUserError checks if an error is a UserError.
func IsUserError(err error) bool {
	var ue *UserError
	return errors.As(err, &ue)
}

// IsSystemError checks if an error is a SystemError.
func IsSystemError(err error) bool {
	var se *SystemError
	return errors.As(err, &se)
}

// IsRepositoryError checks if an error is a RepositoryError.
func IsRepositoryError(err error) bool {
	var re *RepositoryError
	return errors.As(err, &re)
}

// IsValidationError checks if an error is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AsUserError extracts a UserError from an error chain.
func AsUserError(err error) (*UserError, bool) {
	var ue *UserError
	ok := errors.As(err, &ue)
	return ue, ok
}

// AsSystemError extracts a SystemError from an error chain.
func AsSystemError(err error) (*SystemError, bool) {
	var se *SystemError
	ok := errors.As(err, &se)
	return se, ok
}

// AsRepositoryError extracts a RepositoryError from an error chain.
func AsRepositoryError(err error) (*RepositoryError, bool) {
	var re *RepositoryError
	ok := errors.As(err, &re)
	return re, ok
}

// AsValidationError extracts a ValidationError from an error chain.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

// Is is re-exported from the standard errors package for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted additional context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
