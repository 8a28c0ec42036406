// Package audit provides security audit logging for SIEM consumption and
// the recorder for the durable write audit trail.
package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SecurityEventType categorizes security-relevant events for filtering and
// alerting.
type SecurityEventType string

const (
	// EventSQLInjectionAttempt is logged when libinjection flags a
	// parameter value. The query still runs: parameters always bind through
	// placeholders, so the finding is signal, not a block.
	EventSQLInjectionAttempt SecurityEventType = "sql_injection_attempt"
	// EventReadOnlyGuardReject is logged when the read-only guard rejects
	// query text.
	EventReadOnlyGuardReject SecurityEventType = "read_only_guard_reject"
)

// SecurityEvent is one auditable security event, serialized whole for SIEM
// ingestion.
type SecurityEvent struct {
	Timestamp    time.Time         `json:"timestamp"`
	EventType    SecurityEventType `json:"event_type"`
	SavedQueryID uuid.UUID         `json:"saved_query_id,omitempty"`
	ActorID      string            `json:"actor_id,omitempty"`
	Details      any               `json:"details"`
	Severity     string            `json:"severity"`
}

// SQLInjectionDetails records one flagged parameter value.
type SQLInjectionDetails struct {
	ParamName   string `json:"param_name"`
	ParamValue  string `json:"param_value"`
	Fingerprint string `json:"fingerprint"`
}

// SecurityAuditor logs security events under a dedicated logger namespace so
// SIEM systems can filter on it.
type SecurityAuditor struct {
	logger *zap.Logger
}

// NewSecurityAuditor creates a SecurityAuditor. A nil logger disables output.
func NewSecurityAuditor(logger *zap.Logger) *SecurityAuditor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SecurityAuditor{logger: logger.Named("security_audit")}
}

// LogInjectionAttempt records a flagged parameter value at ERROR level for
// immediate alerting.
func (a *SecurityAuditor) LogInjectionAttempt(savedQueryID uuid.UUID, actorID string, details SQLInjectionDetails) {
	event := SecurityEvent{
		Timestamp:    time.Now().UTC(),
		EventType:    EventSQLInjectionAttempt,
		SavedQueryID: savedQueryID,
		ActorID:      actorID,
		Details:      details,
		Severity:     "critical",
	}
	eventJSON, _ := json.Marshal(event)

	a.logger.Error("SQL injection pattern in query parameter",
		zap.String("event_json", string(eventJSON)),
		zap.String("saved_query_id", savedQueryID.String()),
		zap.String("param_name", details.ParamName),
		zap.String("fingerprint", details.Fingerprint),
		zap.String("actor_id", actorID),
	)
}

// LogGuardReject records a read-only guard rejection at WARN level.
func (a *SecurityAuditor) LogGuardReject(savedQueryID uuid.UUID, actorID, reason string) {
	event := SecurityEvent{
		Timestamp:    time.Now().UTC(),
		EventType:    EventReadOnlyGuardReject,
		SavedQueryID: savedQueryID,
		ActorID:      actorID,
		Details:      map[string]string{"reason": reason},
		Severity:     "warning",
	}
	eventJSON, _ := json.Marshal(event)

	a.logger.Warn("read-only guard rejected query text",
		zap.String("event_json", string(eventJSON)),
		zap.String("saved_query_id", savedQueryID.String()),
		zap.String("actor_id", actorID),
	)
}
