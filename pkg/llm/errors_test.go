package llm

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ekaya-inc/fraudwatch/pkg/retry"
)

func TestError_Error(t *testing.T) {
	err := &Error{
		Type:       ErrorTypeEndpoint,
		Message:    "server error",
		StatusCode: 503,
		Model:      "gpt-4o-mini",
		Endpoint:   "https://api.openai.com/v1",
		Cause:      errors.New("upstream"),
	}

	result := err.Error()
	for _, want := range []string{"endpoint", "HTTP 503", "model=gpt-4o-mini", "endpoint=api.openai.com", "server error", "upstream"} {
		if !strings.Contains(result, want) {
			t.Errorf("expected %q in %q", want, result)
		}
	}
	if strings.Contains(result, "/v1") {
		t.Errorf("endpoint should be redacted to host only, got %s", result)
	}
}

func TestError_RetryableInterface(t *testing.T) {
	var r retry.RetryableError = NewError(ErrorTypeUnknown, "rate limited", true, nil)
	assert.True(t, r.IsRetryable())
	assert.True(t, retry.IsRetryable(fmt.Errorf("wrapped: %w", r)))
	assert.False(t, retry.IsRetryable(NewError(ErrorTypeAuth, "authentication failed", false, errors.New("503"))),
		"explicit classification wins over message matching")
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantType  ErrorType
		retryable bool
		status    int
	}{
		{"auth", errors.New("error, status code: 401, message: Incorrect API key"), ErrorTypeAuth, false, 401},
		{"anthropic auth", errors.New("anthropic api error type: authentication_error"), ErrorTypeAuth, false, 0},
		{"model missing", errors.New("status code: 400, message: The model `gpt-9` does not exist"), ErrorTypeModel, false, 400},
		{"endpoint missing", errors.New("status code: 404"), ErrorTypeEndpoint, false, 404},
		{"refused", errors.New("dial tcp 127.0.0.1:11434: connect: connection refused"), ErrorTypeEndpoint, true, 0},
		{"timeout", errors.New("net/http: request timeout awaiting headers"), ErrorTypeEndpoint, true, 0},
		{"cancelled", errors.New("context canceled"), ErrorTypeEndpoint, false, 0},
		{"rate limit", errors.New("status code: 429, message: Rate limit reached"), ErrorTypeUnknown, true, 429},
		{"server error", errors.New("status code: 502, bad gateway"), ErrorTypeEndpoint, true, 502},
		{"overloaded", errors.New("anthropic api error type: overloaded_error"), ErrorTypeEndpoint, true, 0},
		{"unknown", errors.New("something odd"), ErrorTypeUnknown, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.retryable, got.Retryable)
			assert.Equal(t, tt.status, got.StatusCode)
			assert.ErrorIs(t, got, tt.err)
		})
	}

	assert.Nil(t, ClassifyError(nil))

	existing := NewError(ErrorTypeEmptyResponse, "empty", false, nil)
	assert.Same(t, existing, ClassifyError(fmt.Errorf("wrap: %w", existing)))
	assert.Equal(t, ErrorTypeEmptyResponse, GetErrorType(existing))
	assert.Equal(t, ErrorTypeUnknown, GetErrorType(errors.New("x")))
}
