package jsonutil

import (
	"encoding/json"
	"testing"
)

func TestFlexibleStringValue(t *testing.T) {
	tests := []struct {
		name  string
		input json.RawMessage
		want  string
	}{
		{
			name:  "string value",
			input: json.RawMessage(`"hello"`),
			want:  "hello",
		},
		{
			name:  "integer value",
			input: json.RawMessage(`42`),
			want:  "42",
		},
		{
			name:  "float value",
			input: json.RawMessage(`3.14`),
			want:  "3.14",
		},
		{
			name:  "boolean true",
			input: json.RawMessage(`true`),
			want:  "true",
		},
		{
			name:  "null value",
			input: json.RawMessage(`null`),
			want:  "",
		},
		{
			name:  "nil raw message",
			input: nil,
			want:  "",
		},
		{
			name:  "object falls back to raw text",
			input: json.RawMessage(`{"a":1}`),
			want:  `{"a":1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FlexibleStringValue(tt.input); got != tt.want {
				t.Errorf("FlexibleStringValue(%s) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFlexibleFloat(t *testing.T) {
	tests := []struct {
		name        string
		input       json.RawMessage
		want        float64
		wantPresent bool
		wantErr     bool
	}{
		{name: "number", input: json.RawMessage(`2500.5`), want: 2500.5, wantPresent: true},
		{name: "integer", input: json.RawMessage(`3`), want: 3, wantPresent: true},
		{name: "numeric string", input: json.RawMessage(`" 1500 "`), want: 1500, wantPresent: true},
		{name: "boolean true", input: json.RawMessage(`true`), want: 1, wantPresent: true},
		{name: "boolean false", input: json.RawMessage(`false`), want: 0, wantPresent: true},
		{name: "null", input: json.RawMessage(`null`)},
		{name: "missing", input: nil},
		{name: "empty string", input: json.RawMessage(`""`)},
		{name: "word", input: json.RawMessage(`"lots"`), wantErr: true},
		{name: "array", input: json.RawMessage(`[1]`), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, present, err := FlexibleFloat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FlexibleFloat(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want || present != tt.wantPresent {
				t.Errorf("FlexibleFloat(%s) = (%v, %v), want (%v, %v)", tt.input, got, present, tt.want, tt.wantPresent)
			}
		})
	}
}
