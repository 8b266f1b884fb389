package services

import (
	"strconv"
	"strings"

	"github.com/ekaya-inc/fraudwatch/pkg/adapters/warehouse"
)

// qualify expands {schema} in a statement template to the qualified
// DATABASE.SCHEMA name.
func qualify(qualifiedSchema, template string) string {
	return strings.ReplaceAll(template, "{schema}", qualifiedSchema)
}

// rowValue looks key up exactly, then case-insensitively.
func rowValue(row warehouse.Row, key string) (any, bool) {
	if v, ok := row[key]; ok {
		return v, true
	}
	for k, v := range row {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

// rowFloat reads a numeric column, treating null and unparseable values as 0.
func rowFloat(row warehouse.Row, key string) float64 {
	v, _ := rowValue(row, key)
	switch n := v.(type) {
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case float64:
		return n
	case bool:
		if n {
			return 1
		}
		return 0
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

func rowInt(row warehouse.Row, key string) int64 {
	v, _ := rowValue(row, key)
	if n, ok := v.(int64); ok {
		return n
	}
	return int64(rowFloat(row, key))
}

func rowString(row warehouse.Row, key string) string {
	v, ok := rowValue(row, key)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return formatScalar(v)
}

// rowsOrEmpty guarantees a non-nil slice so JSON encodes [] instead of null.
func rowsOrEmpty(result *warehouse.QueryResult) []warehouse.Row {
	if result == nil || result.Rows == nil {
		return []warehouse.Row{}
	}
	return result.Rows
}
