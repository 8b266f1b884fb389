package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrQuestionRequired  = errors.New("question is required")
	ErrSQLRequired       = errors.New("sql query is required")
	ErrOnlySelectAllowed = errors.New("only SELECT queries are allowed")
	ErrMultipleStatement = errors.New("multiple statements are not allowed")
)

// ConnectionError means the warehouse could not be reached or rejected the credential.
type ConnectionError struct {
	Account string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("warehouse connection to %s failed: %v", e.Account, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError is a statement the warehouse rejected. Code carries the warehouse
// error number when one was reported (0 otherwise).
type QueryError struct {
	Code     int
	SQLState string
	Message  string
	Err      error
}

func (e *QueryError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("query failed (%d): %s", e.Code, e.Message)
	}
	return "query failed: " + e.Message
}

func (e *QueryError) Unwrap() error { return e.Err }

// PolicyError is a statement refused before reaching the warehouse.
type PolicyError struct {
	Reason error
}

func (e *PolicyError) Error() string { return e.Reason.Error() }

func (e *PolicyError) Unwrap() error { return e.Reason }

// ValidationError is a malformed request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NewValidationError is a shorthand for &ValidationError{...}.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsClientError reports whether err should be answered with HTTP 400.
func IsClientError(err error) bool {
	var policyErr *PolicyError
	var validationErr *ValidationError
	return errors.As(err, &policyErr) || errors.As(err, &validationErr)
}
