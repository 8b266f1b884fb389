// Package audit provides security audit logging for SIEM consumption.
// It logs security-relevant events in structured JSON format for easy parsing
// and integration with security information and event management systems.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/fraudwatch/pkg/logging"
)

// SecurityEventType categorizes security-relevant events for filtering and alerting.
type SecurityEventType string

const (
	// EventSQLInjectionAttempt is logged when libinjection flags a dashboard filter.
	EventSQLInjectionAttempt SecurityEventType = "sql_injection_attempt"
	// EventStatementRefused is logged when an ad-hoc statement fails the SELECT-only gate.
	EventStatementRefused SecurityEventType = "statement_refused"
	// EventGeneratedNonSelect is logged when a model-generated statement would
	// fail the SELECT-only gate. The statement still runs.
	EventGeneratedNonSelect SecurityEventType = "generated_non_select_statement"
)

// Statement sources.
const (
	SourceAdHoc     = "execute_sql"
	SourceGenerated = "intelligence"
)

// SecurityEvent represents an auditable security event with all relevant context
// for SIEM ingestion and analysis.
type SecurityEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType SecurityEventType `json:"event_type"`
	RequestID string            `json:"request_id,omitempty"`
	ClientIP  string            `json:"client_ip,omitempty"`
	Details   any               `json:"details"`
	Severity  string            `json:"severity"` // info, warning, critical
}

// SQLInjectionDetails contains specifics of a detected SQL injection attempt.
type SQLInjectionDetails struct {
	ParamName   string `json:"param_name"`
	ParamValue  string `json:"param_value"`
	Fingerprint string `json:"fingerprint"` // libinjection fingerprint for pattern analysis
	Operation   string `json:"operation"`
}

// StatementDetails describes a statement flagged by the SELECT-only policy.
type StatementDetails struct {
	Source    string `json:"source"`
	Statement string `json:"statement"`
	Reason    string `json:"reason"`
}

// SecurityAuditor logs security events for SIEM consumption.
// A nil *SecurityAuditor discards every event.
type SecurityAuditor struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewSecurityAuditor creates a security auditor under the "security_audit"
// logger namespace.
func NewSecurityAuditor(logger *zap.Logger) *SecurityAuditor {
	return &SecurityAuditor{
		logger: logger.Named("security_audit"),
		now:    time.Now,
	}
}

// LogInjectionAttempt records a flagged dashboard filter. Logged at ERROR with
// "critical" severity.
func (a *SecurityAuditor) LogInjectionAttempt(ctx context.Context, details SQLInjectionDetails) {
	if a == nil {
		return
	}
	details.ParamValue = logging.TruncateString(details.ParamValue, logging.MaxQueryLogLength)

	event, client := a.event(ctx, EventSQLInjectionAttempt, details, "critical")
	a.logger.Error("SQL injection attempt detected",
		zap.String("event_json", event),
		zap.String("param_name", details.ParamName),
		zap.String("fingerprint", details.Fingerprint),
		zap.String("operation", details.Operation),
		zap.String("request_id", client.RequestID),
		zap.String("client_ip", client.ClientIP),
		zap.String("severity", "critical"),
	)
}

// LogStatementRefused records an ad-hoc statement refused by the SELECT-only
// gate. Logged at INFO; these are usually typos, not attacks.
func (a *SecurityAuditor) LogStatementRefused(ctx context.Context, source, statement, reason string) {
	if a == nil {
		return
	}
	fields := a.statementFields(ctx, EventStatementRefused, "info", source, statement, reason)
	a.logger.Info("Statement refused", fields...)
}

// LogGeneratedNonSelect records a model-generated statement that does not
// start with SELECT. It is logged at WARN and the statement is not blocked;
// the session role bounds what it can do.
func (a *SecurityAuditor) LogGeneratedNonSelect(ctx context.Context, statement, reason string) {
	if a == nil {
		return
	}
	fields := a.statementFields(ctx, EventGeneratedNonSelect, "warning", SourceGenerated, statement, reason)
	a.logger.Warn("Generated statement is not a plain SELECT", fields...)
}

func (a *SecurityAuditor) statementFields(ctx context.Context, eventType SecurityEventType, severity, source, statement, reason string) []zap.Field {
	details := StatementDetails{
		Source:    source,
		Statement: logging.SanitizeQuery(statement),
		Reason:    reason,
	}

	event, client := a.event(ctx, eventType, details, severity)
	return []zap.Field{
		zap.String("event_json", event),
		zap.String("source", source),
		zap.String("reason", reason),
		zap.String("request_id", client.RequestID),
		zap.String("client_ip", client.ClientIP),
		zap.String("severity", severity),
	}
}

func (a *SecurityAuditor) event(ctx context.Context, eventType SecurityEventType, details any, severity string) (string, ClientInfo) {
	client := ClientFromContext(ctx)
	event := SecurityEvent{
		Timestamp: a.now().UTC(),
		EventType: eventType,
		RequestID: client.RequestID,
		ClientIP:  client.ClientIP,
		Details:   details,
		Severity:  severity,
	}
	// Marshaling these known types cannot fail.
	eventJSON, _ := json.Marshal(event)
	return string(eventJSON), client
}
