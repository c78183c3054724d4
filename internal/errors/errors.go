package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/thirty/internal/logger"
)

// Validation-level errors. All of them are recoverable and meant to be shown to the user.
var (
	ErrDuplicateEmail     = stderrors.New("email already exists")
	ErrInvalidCredentials = stderrors.New("invalid email or password")
	ErrInvalidEmailFormat = stderrors.New("please enter a valid email")
	ErrPasswordTooShort   = stderrors.New("password must be at least 6 characters")
	ErrPasswordTooLong    = stderrors.New("password must be less than 50 characters")
	ErrPasswordMismatch   = stderrors.New("passwords do not match")
	ErrNameRequired       = stderrors.New("name is required")
	ErrEmptyHabitSet      = stderrors.New("please add at least one habit")
	ErrMissingStartDate   = stderrors.New("please select a start date")
	ErrInvalidDate        = stderrors.New("invalid date (expected YYYY-MM-DD)")
	ErrStartDateInPast    = stderrors.New("start date cannot be in the past")
	ErrPlanExists         = stderrors.New("a plan already exists for this user")
	ErrPlanRequired       = stderrors.New("no plan yet, create one with 'thirty plan create'")
	ErrNotAuthenticated   = stderrors.New("not logged in, run 'thirty login' or 'thirty signup'")
)

// ValidationError ties a validation failure to the input field that caused it
type ValidationError struct {
	Err     error  // sentinel
	Field   string // Optional: field causing the error
	Message string // Optional: overrides Err's text
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Invalid wraps a sentinel with the field it applies to
func Invalid(field string, err error) *ValidationError {
	return &ValidationError{Err: err, Field: field}
}

// Invalidf wraps a sentinel with a custom message
func Invalidf(field string, err error, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Err: err, Field: field, Message: fmt.Sprintf(format, args...)}
}

// FieldOf returns the offending field of a validation error, or "" for other errors
func FieldOf(err error) string {
	var verr *ValidationError
	if stderrors.As(err, &verr) {
		return verr.Field
	}
	return ""
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
