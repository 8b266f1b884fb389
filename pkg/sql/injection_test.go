package sql

import (
	"errors"
	"testing"

	"github.com/ekaya-inc/fraudwatch/pkg/apperrors"
)

func TestCheckParameterForInjection(t *testing.T) {
	tests := []struct {
		name            string
		paramName       string
		value           string
		expectInjection bool
	}{
		{name: "customer id", paramName: "id", value: "12345"},
		{name: "email search", paramName: "search", value: "user@example.com"},
		{name: "multi-word search", paramName: "search", value: "laptop computers"},
		{name: "apostrophe in name", paramName: "search", value: "O'Brien"},
		{name: "date", paramName: "period1_start", value: "2025-01-01"},
		{name: "empty", paramName: "search", value: ""},
		{name: "natural language with keyword", paramName: "search", value: "SELECT the best option from the menu"},

		{name: "classic tautology", paramName: "search", value: "' OR '1'='1", expectInjection: true},
		{name: "stacked drop", paramName: "search", value: "'; DROP TABLE users--", expectInjection: true},
		{name: "union select", paramName: "id", value: "1 UNION SELECT * FROM passwords", expectInjection: true},
		{name: "comment truncation", paramName: "id", value: "admin'--", expectInjection: true},
		{name: "union nulls", paramName: "search", value: "' UNION SELECT NULL, NULL--", expectInjection: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CheckParameterForInjection(tt.paramName, tt.value)

			if !tt.expectInjection {
				if result != nil {
					t.Errorf("expected no injection detection, got %+v", result)
				}
				return
			}

			if result == nil {
				t.Fatalf("expected injection detection for %q, got nil", tt.value)
			}
			if !result.IsSQLi {
				t.Errorf("expected IsSQLi=true")
			}
			if result.ParamName != tt.paramName || result.ParamValue != tt.value {
				t.Errorf("unexpected result identity: %+v", result)
			}
			if result.Fingerprint == "" {
				t.Errorf("expected non-empty fingerprint")
			}
		})
	}
}

func TestScreenParameters(t *testing.T) {
	if hit, err := ScreenParameters(map[string]string{"search": "laptop computers", "id": ""}); err != nil || hit != nil {
		t.Fatalf("expected clean parameters to pass, got %v", err)
	}

	hit, err := ScreenParameters(map[string]string{
		"search": "' OR '1'='1",
		"id":     "admin'--",
	})
	var validationErr *apperrors.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validationErr.Field != "id" {
		t.Errorf("expected first failing field by name to be id, got %q", validationErr.Field)
	}
	if hit == nil || hit.ParamName != "id" || hit.Fingerprint == "" {
		t.Errorf("expected the flagged id result with a fingerprint, got %+v", hit)
	}

	if _, err := ScreenParameters(nil); err != nil {
		t.Errorf("expected nil map to pass, got %v", err)
	}
}
