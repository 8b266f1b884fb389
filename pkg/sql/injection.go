package sql

import (
	"sort"

	libinjection "github.com/corazawaf/libinjection-go"

	"github.com/ekaya-inc/fraudwatch/pkg/apperrors"
)

// InjectionCheckResult contains the result of an injection check on a parameter value.
type InjectionCheckResult struct {
	IsSQLi      bool   // True if SQL injection pattern detected
	Fingerprint string // libinjection fingerprint of the detected pattern
	ParamName   string // Name of the parameter that failed the check
	ParamValue  string // The value that was checked
}

// CheckParameterForInjection uses libinjection to detect SQL injection patterns
// in a request parameter. Returns nil when the value is clean.
//
// Dashboard filters are always bound as statement arguments; this screen
// rejects hostile input early with a 400 instead of a confusing empty result.
func CheckParameterForInjection(paramName, value string) *InjectionCheckResult {
	if value == "" {
		return nil
	}

	isSQLi, fingerprint := libinjection.IsSQLi(value)
	if !isSQLi {
		return nil
	}

	return &InjectionCheckResult{
		IsSQLi:      true,
		Fingerprint: string(fingerprint),
		ParamName:   paramName,
		ParamValue:  value,
	}
}

// ScreenParameters checks every named value and, for the first (by name) that
// looks like an injection attempt, returns its check result together with a
// *apperrors.ValidationError.
func ScreenParameters(params map[string]string) (*InjectionCheckResult, error) {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if result := CheckParameterForInjection(name, params[name]); result != nil {
			return result, apperrors.NewValidationError(name, "contains a disallowed SQL pattern")
		}
	}
	return nil, nil
}
