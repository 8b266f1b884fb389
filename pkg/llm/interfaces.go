// Package llm turns prompts into completions, either inside the warehouse
// (Cortex) or through a hosted chat API.
package llm

import (
	"context"
)

// Completer produces the raw completion text for one prompt.
// An empty completion is reported as an *Error of type ErrorTypeEmptyResponse.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)

	// Model returns the configured model identifier.
	Model() string
}

func emptyResponse(model string) *Error {
	e := NewError(ErrorTypeEmptyResponse, "completion returned no text", false, nil)
	e.Model = model
	return e
}
