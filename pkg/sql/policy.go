// Package sql holds the statement policy and parameter screening applied before
// anything reaches the warehouse.
package sql

import (
	"strings"

	"github.com/ekaya-inc/fraudwatch/pkg/apperrors"
)

// CheckSelectOnly is the gate in front of ad-hoc statements: after trimming
// whitespace the statement must begin with "select" (case-insensitive).
// It returns the statement ready to execute, or a *apperrors.PolicyError.
//
// The check is textual. Stacked statements are refused by the warehouse driver,
// which only runs multi-statement text when the session asks for it.
func CheckSelectOnly(statement string) (string, error) {
	trimmed := strings.TrimSpace(statement)
	if trimmed == "" {
		return "", &apperrors.PolicyError{Reason: apperrors.ErrSQLRequired}
	}
	if !strings.HasPrefix(strings.ToLower(trimmed), "select") {
		return "", &apperrors.PolicyError{Reason: apperrors.ErrOnlySelectAllowed}
	}
	return stripTrailingSemicolon(trimmed), nil
}

// stripTrailingSemicolon removes a trailing semicolon and any whitespace after it.
func stripTrailingSemicolon(sqlQuery string) string {
	sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")

	if strings.HasSuffix(sqlQuery, ";") {
		sqlQuery = strings.TrimSuffix(sqlQuery, ";")
		sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")
	}

	return sqlQuery
}

// EscapeStringLiteral doubles single quotes so text can be embedded in a
// single-quoted warehouse string literal.
func EscapeStringLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
