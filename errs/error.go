package errs

import (
	"errors"
	"fmt"
)

// Application error codes. They map onto HTTP status codes in ReturnError,
// but are deliberately not HTTP statuses themselves so that the crud layer
// never imports net/http.
const (
	// EINVALID is returned for semantically invalid input: failed form
	// validations, self-follows, duplicate follows and the like.
	EINVALID = "invalid"
	// ENOTFOUND is returned when the target user or tweet does not exist.
	ENOTFOUND = "not_found"
	// EUNAUTHORIZED is returned when the caller is authenticated but not
	// allowed to perform the action, e.g. deleting someone else's tweet.
	EUNAUTHORIZED = "unauthorized"
	// EINTERNAL is any unexpected failure. Its message is never shown
	// to the client.
	EINTERNAL = "internal"
)

// Error is an application error with a machine-readable code and a
// human-readable message. Validation errors may additionally carry a Field
// (which validation rule tripped) or, once collected, a Fields map holding
// every violated rule at once.
type Error struct {
	Code    string
	Message string
	Field   string
	Fields  map[string][]string
}

// Error implements the error interface. Not used by the end user.
func (e *Error) Error() string {
	return fmt.Sprintf("twtr error: code=%s message=%s", e.Code, e.Message)
}

// Errorf constructs an Error with the given code and formatted message.
func Errorf(code string, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// FieldErrorf constructs a validation Error scoped to a single form field.
func FieldErrorf(field, format string, args ...interface{}) *Error {
	return &Error{
		Code:    EINVALID,
		Message: fmt.Sprintf(format, args...),
		Field:   field,
	}
}

// FieldErrors bundles the messages of several violated validation rules
// into one EINVALID error, keyed by field name.
func FieldErrors(fields map[string][]string) *Error {
	return &Error{
		Code:    EINVALID,
		Message: "The submitted data is invalid.",
		Fields:  fields,
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return a generic message.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "An internal error has occurred."
}

// ErrorFields unwraps an application error and returns its field messages,
// or nil if it carries none.
func ErrorFields(err error) map[string][]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}
