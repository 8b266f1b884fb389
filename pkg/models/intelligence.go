package models

import (
	"time"

	"github.com/google/uuid"
)

// Content block types of an assistant message.
const (
	ContentTypeText        = "text"
	ContentTypeSQL         = "sql"
	ContentTypeSuggestions = "suggestions"
)

// ContentBlock is one segment of an assistant reply.
type ContentBlock struct {
	Type        string   `json:"type"`
	Text        string   `json:"text,omitempty"`
	Statement   string   `json:"statement,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// TextBlock returns a text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: ContentTypeText, Text: text}
}

// SQLBlock returns a block carrying the statement that produced the answer.
func SQLBlock(statement string) ContentBlock {
	return ContentBlock{Type: ContentTypeSQL, Statement: statement}
}

// SuggestionsBlock returns a follow-up question block.
func SuggestionsBlock(suggestions []string) ContentBlock {
	return ContentBlock{Type: ContentTypeSuggestions, Suggestions: suggestions}
}

// AnalystMessage is the assistant's reply to one question.
type AnalystMessage struct {
	Content []ContentBlock `json:"content"`
}

// IntelligenceRequest is the body of POST /intelligence.
type IntelligenceRequest struct {
	Question string `json:"question"`
	Reset    bool   `json:"reset,omitempty"`
}

// IntelligenceResponse wraps the reply the way the dashboard expects it.
type IntelligenceResponse struct {
	Message AnalystMessage `json:"message"`
}

// CompletionPayload is the JSON object the model is instructed to return.
// SQL is nil when the model produced no statement.
type CompletionPayload struct {
	Thinking     string  `json:"thinking,omitempty"`
	SQL          *string `json:"sql"`
	ResponseText string  `json:"response_text,omitempty"`
}

// HasSQL reports whether the payload carries a statement to run.
func (p *CompletionPayload) HasSQL() bool {
	return p != nil && p.SQL != nil && *p.SQL != ""
}

// Turn outcomes.
const (
	TurnOutcomeAnswered  = "answered"   // statement ran and returned rows
	TurnOutcomeNoRows    = "no_rows"    // statement ran and returned nothing
	TurnOutcomeSQLFailed = "sql_failed" // statement was rejected by the warehouse
	TurnOutcomeNoSQL     = "no_sql"     // model answered without a statement
	TurnOutcomeUnparsed  = "unparsed"   // completion held no usable JSON
	TurnOutcomeFailed    = "failed"     // completion or turn failed
)

// IntelligenceTurn records how one question was answered. Turns are not
// persisted; the caller keeps any history.
type IntelligenceTurn struct {
	ID            uuid.UUID          `json:"id"`
	Question      string             `json:"question"`
	Model         string             `json:"model"`
	RawCompletion string             `json:"raw_completion,omitempty"`
	Parsed        *CompletionPayload `json:"parsed,omitempty"`
	RowCount      int                `json:"row_count"`
	Columns       []string           `json:"-"`
	Rows          []map[string]any   `json:"-"`
	Outcome       string             `json:"outcome"`
	Message       AnalystMessage     `json:"message"`
	DurationMs    int64              `json:"duration_ms"`
	CreatedAt     time.Time          `json:"created_at"`
}
