package tools

import (
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ekaya-inc/fraudwatch/pkg/apperrors"
)

// ErrorResponse represents a structured error in tool results.
// Returned as a successful tool result so the calling model sees the details
// and can correct its input.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// NewErrorResult creates a tool result containing a structured error.
// Use this for actionable errors (refused statements, bad SQL, missing
// arguments). Connection failures and other system errors are returned as
// Go errors instead.
func NewErrorResult(code, message string) *mcp.CallToolResult {
	return NewErrorResultWithDetails(code, message, nil)
}

// NewErrorResultWithDetails creates an error result with additional context.
func NewErrorResultWithDetails(code, message string, details any) *mcp.CallToolResult {
	resp := ErrorResponse{
		Error:   true,
		Code:    code,
		Message: message,
		Details: details,
	}
	jsonBytes, _ := json.Marshal(resp)
	result := mcp.NewToolResultText(string(jsonBytes))
	result.IsError = true
	return result
}

// IsSQLUserError reports whether err is something the caller can fix by
// changing its input: a refused statement, a validation failure, or a
// statement the warehouse rejected as invalid.
//
// SQLSTATE classes treated as user errors:
//   - 22xxx: Data Exception (invalid input, division by zero)
//   - 42xxx: Syntax Error or Access Rule Violation
func IsSQLUserError(err error) bool {
	return SQLUserErrorCode(err) != ""
}

// SQLUserErrorCode returns the error code reported for a user error, or ""
// when err is a system failure.
func SQLUserErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var policyErr *apperrors.PolicyError
	if errors.As(err, &policyErr) {
		return "policy_violation"
	}
	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		return "invalid_request"
	}

	var queryErr *apperrors.QueryError
	if errors.As(err, &queryErr) && len(queryErr.SQLState) >= 2 {
		switch queryErr.SQLState[:2] {
		case "22":
			return "data_exception"
		case "42":
			return "sql_error"
		}
	}
	return ""
}

// userErrorMessage is the message shown for a user error. Warehouse
// rejections keep only the warehouse's message.
func userErrorMessage(err error) string {
	var queryErr *apperrors.QueryError
	if errors.As(err, &queryErr) && queryErr.Message != "" {
		return queryErr.Message
	}
	return err.Error()
}

// NewSQLErrorResult returns an error result for user errors and nil for
// system failures, which the caller returns as a Go error.
func NewSQLErrorResult(err error) *mcp.CallToolResult {
	code := SQLUserErrorCode(err)
	if code == "" {
		return nil
	}
	return NewErrorResult(code, userErrorMessage(err))
}
