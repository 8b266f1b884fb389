package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/fraudwatch/pkg/adapters/warehouse"
	"github.com/ekaya-inc/fraudwatch/pkg/apperrors"
	"github.com/ekaya-inc/fraudwatch/pkg/audit"
	"github.com/ekaya-inc/fraudwatch/pkg/jsonutil"
	"github.com/ekaya-inc/fraudwatch/pkg/llm"
	"github.com/ekaya-inc/fraudwatch/pkg/logging"
	"github.com/ekaya-inc/fraudwatch/pkg/models"
	"github.com/ekaya-inc/fraudwatch/pkg/prompts"
	sqlpolicy "github.com/ekaya-inc/fraudwatch/pkg/sql"
)

// Fixed replies of the assistant.
const (
	MessageNoResults   = "No results were found for this query."
	MessageQueryFailed = "There was an error running the query."
	MessageNoQuery     = "I could not generate a query for this question."
	MessageApology     = "I could not process your question. Please try rephrasing it."
)

// IntelligenceService answers natural-language questions about the fraud data.
type IntelligenceService interface {
	// Ask runs one question through completion, extraction and execution.
	// The only error is a validation error for a blank question; every other
	// failure is folded into the returned turn as a fallback message.
	Ask(ctx context.Context, question string) (*models.IntelligenceTurn, error)
}

type intelligenceService struct {
	completer   llm.Completer
	querier     warehouse.Querier
	schemaBlock string
	suggestions []string
	auditor     *audit.SecurityAuditor
	logger      *zap.Logger
}

// NewIntelligenceService creates the assistant. The schema description is
// rendered once for qualifiedSchema (DATABASE.SCHEMA).
func NewIntelligenceService(
	completer llm.Completer,
	querier warehouse.Querier,
	schema *prompts.SchemaContext,
	qualifiedSchema string,
	auditor *audit.SecurityAuditor,
	logger *zap.Logger,
) IntelligenceService {
	return &intelligenceService{
		completer:   completer,
		querier:     querier,
		schemaBlock: schema.Render(qualifiedSchema),
		suggestions: schema.Suggestions,
		auditor:     auditor,
		logger:      logger.Named("intelligence"),
	}
}

var _ IntelligenceService = (*intelligenceService)(nil)

func (s *intelligenceService) Ask(ctx context.Context, question string) (turn *models.IntelligenceTurn, err error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, &apperrors.ValidationError{Message: apperrors.ErrQuestionRequired.Error()}
	}

	start := time.Now()
	turn = &models.IntelligenceTurn{
		ID:        uuid.New(),
		Question:  question,
		Model:     s.completer.Model(),
		CreatedAt: start.UTC(),
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Intelligence turn panicked",
				zap.String("turn_id", turn.ID.String()),
				zap.Any("panic", r))
			s.fail(turn)
		}
		turn.DurationMs = time.Since(start).Milliseconds()
		s.logger.Info("Intelligence turn finished",
			zap.String("turn_id", turn.ID.String()),
			zap.String("outcome", turn.Outcome),
			zap.Int("rows", turn.RowCount),
			zap.Int64("duration_ms", turn.DurationMs))
	}()

	s.answer(ctx, turn)
	return turn, nil
}

func (s *intelligenceService) answer(ctx context.Context, turn *models.IntelligenceTurn) {
	prompt := prompts.BuildQuestionPrompt(s.schemaBlock, turn.Question)

	raw, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		s.logger.Error("Completion failed",
			zap.String("turn_id", turn.ID.String()),
			zap.String("error_type", string(llm.GetErrorType(err))),
			zap.String("error", logging.SanitizeError(err)))
		s.fail(turn)
		return
	}
	turn.RawCompletion = raw

	payload, ok := ParseCompletion(raw)
	if !ok {
		s.logger.Warn("Completion held no JSON object",
			zap.String("turn_id", turn.ID.String()),
			zap.String("completion", logging.TruncateString(raw, logging.MaxQueryLogLength)))
		turn.Outcome = models.TurnOutcomeUnparsed
		turn.Message = models.AnalystMessage{Content: []models.ContentBlock{models.TextBlock(raw)}}
		return
	}
	turn.Parsed = payload

	content := s.answerBlocks(ctx, turn)
	content = append(content, models.SuggestionsBlock(s.suggestions))
	turn.Message = models.AnalystMessage{Content: content}
}

// answerBlocks runs the extracted statement, at most once, and builds the
// text and sql blocks of the reply.
func (s *intelligenceService) answerBlocks(ctx context.Context, turn *models.IntelligenceTurn) []models.ContentBlock {
	payload := turn.Parsed

	if !payload.HasSQL() {
		turn.Outcome = models.TurnOutcomeNoSQL
		return []models.ContentBlock{models.TextBlock(orDefault(payload.ResponseText, MessageNoQuery))}
	}

	statement := *payload.SQL
	result, err := s.execute(ctx, statement)
	if err != nil {
		s.logger.Error("Generated statement failed",
			zap.String("turn_id", turn.ID.String()),
			zap.String("sql", logging.SanitizeQuery(statement)),
			zap.String("error", logging.SanitizeError(err)))
		turn.Outcome = models.TurnOutcomeSQLFailed
		return []models.ContentBlock{models.TextBlock(orDefault(payload.ResponseText, MessageQueryFailed))}
	}

	turn.RowCount = result.Len()
	if turn.RowCount == 0 {
		turn.Outcome = models.TurnOutcomeNoRows
		return []models.ContentBlock{models.TextBlock(MessageNoResults)}
	}

	text := orDefault(payload.ResponseText, foundResults(turn.RowCount))
	if turn.RowCount == 1 {
		text = fmt.Sprintf("%s\n\n%s", text, renderRow(result.Columns, result.Rows[0]))
	}

	turn.Outcome = models.TurnOutcomeAnswered
	turn.Columns = result.Columns
	turn.Rows = result.Rows
	return []models.ContentBlock{
		models.TextBlock(text),
		models.SQLBlock(statement),
	}
}

// execute runs the model's statement as given. Statements the SELECT-only
// gate would refuse (CTEs, leading comments) still run but are audited.
func (s *intelligenceService) execute(ctx context.Context, statement string) (*warehouse.QueryResult, error) {
	if _, err := sqlpolicy.CheckSelectOnly(statement); err != nil {
		s.auditor.LogGeneratedNonSelect(ctx, statement, err.Error())
	}
	return s.querier.Query(ctx, statement)
}

func (s *intelligenceService) fail(turn *models.IntelligenceTurn) {
	turn.Outcome = models.TurnOutcomeFailed
	turn.RowCount = 0
	turn.Columns, turn.Rows = nil, nil
	turn.Message = models.AnalystMessage{Content: []models.ContentBlock{models.TextBlock(MessageApology)}}
}

// ParseCompletion extracts the response object from a model completion.
// sql counts as present only when it is a non-empty string.
func ParseCompletion(raw string) (*models.CompletionPayload, bool) {
	obj, ok := llm.ExtractJSONObject(raw)
	if !ok {
		return nil, false
	}

	payload := &models.CompletionPayload{
		Thinking:     jsonutil.FlexibleStringValue(obj["thinking"]),
		ResponseText: jsonutil.FlexibleStringValue(obj["response_text"]),
	}

	var statement string
	if err := json.Unmarshal(obj["sql"], &statement); err == nil && strings.TrimSpace(statement) != "" {
		payload.SQL = &statement
	}

	return payload, true
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
