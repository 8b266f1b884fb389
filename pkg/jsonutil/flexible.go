package jsonutil

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexibleStringValue converts a json.RawMessage to a string, handling cases where
// LLMs return numbers or booleans instead of strings. Returns empty string for null/empty.
func FlexibleStringValue(raw json.RawMessage) string {
	if isAbsent(raw) {
		return ""
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		return strVal
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		if numVal == float64(int64(numVal)) {
			return fmt.Sprintf("%d", int64(numVal))
		}
		return fmt.Sprintf("%g", numVal)
	}

	var boolVal bool
	if err := json.Unmarshal(raw, &boolVal); err == nil {
		return fmt.Sprintf("%t", boolVal)
	}

	return string(raw)
}

// FlexibleFloat reads a number that form posts and dashboards may send as a
// JSON number, a numeric string, or a boolean (true=1, false=0).
// present is false for null, empty, or missing values.
func FlexibleFloat(raw json.RawMessage) (value float64, present bool, err error) {
	if isAbsent(raw) {
		return 0, false, nil
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		return numVal, true, nil
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		strVal = strings.TrimSpace(strVal)
		if strVal == "" {
			return 0, false, nil
		}
		f, err := strconv.ParseFloat(strVal, 64)
		if err != nil {
			return 0, false, fmt.Errorf("%q is not a number", strVal)
		}
		return f, true, nil
	}

	var boolVal bool
	if err := json.Unmarshal(raw, &boolVal); err == nil {
		if boolVal {
			return 1, true, nil
		}
		return 0, true, nil
	}

	return 0, false, fmt.Errorf("%s is not a number", string(raw))
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
