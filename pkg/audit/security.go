// Package audit provides security audit logging for SIEM consumption.
// It logs security-relevant events in structured JSON format for easy parsing
// and integration with security information and event management systems.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/manpower-engine/pkg/auth"
	"github.com/ekaya-inc/manpower-engine/pkg/logging"
	"github.com/ekaya-inc/manpower-engine/pkg/middleware"
)

// SecurityEventType categorizes security-relevant events for filtering and alerting.
type SecurityEventType string

const (
	// EventInjectionAttempt is logged when libinjection flags a free-text value.
	EventInjectionAttempt SecurityEventType = "sql_injection_attempt"
	// EventUploadRejected is logged when a spreadsheet fails structural checks.
	EventUploadRejected SecurityEventType = "upload_rejected"
)

// SecurityEvent represents an auditable security event with all relevant context
// for SIEM ingestion and analysis.
type SecurityEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType SecurityEventType `json:"event_type"`
	RequestID string            `json:"request_id,omitempty"`
	UserID    string            `json:"user_id,omitempty"`
	Details   any               `json:"details"`
	Severity  string            `json:"severity"` // info, warning, critical
}

// InjectionDetails describes a flagged value.
type InjectionDetails struct {
	Source      string `json:"source"` // e.g. "warehouse", "productivity_upload"
	Field       string `json:"field"`
	Value       string `json:"value"`
	Fingerprint string `json:"fingerprint"` // libinjection fingerprint for pattern analysis
}

// UploadRejectedDetails describes a spreadsheet rejected before any row was read.
type UploadRejectedDetails struct {
	Kind        string `json:"kind"` // productivity or demand
	WarehouseID int64  `json:"warehouse_id"`
	Filename    string `json:"filename"`
	Reason      string `json:"reason"`
}

// SecurityAuditor logs security events for SIEM consumption.
type SecurityAuditor struct {
	logger *zap.Logger
}

// NewSecurityAuditor creates a new security auditor with a dedicated logger
// namespace ("security_audit") for easy filtering in SIEM systems.
func NewSecurityAuditor(logger *zap.Logger) *SecurityAuditor {
	return &SecurityAuditor{logger: logger.Named("security_audit")}
}

// LogInjectionAttempt records a value flagged by the injection screen.
// This is logged at ERROR level with "critical" severity for immediate alerting.
func (a *SecurityAuditor) LogInjectionAttempt(ctx context.Context, details InjectionDetails) {
	details.Value = logging.TruncateValue(details.Value)
	event := a.newEvent(ctx, EventInjectionAttempt, "critical", details)

	a.logger.Error("SQL injection attempt detected",
		zap.String("event_json", marshalEvent(event)),
		zap.String("request_id", event.RequestID),
		zap.String("user_id", event.UserID),
		zap.String("source", details.Source),
		zap.String("field", details.Field),
		zap.String("fingerprint", details.Fingerprint),
		zap.String("severity", event.Severity),
	)
}

// LogUploadRejected records a spreadsheet rejected for structural reasons.
// These are usually user mistakes, so they are logged at WARN level.
func (a *SecurityAuditor) LogUploadRejected(ctx context.Context, details UploadRejectedDetails) {
	event := a.newEvent(ctx, EventUploadRejected, "warning", details)

	a.logger.Warn("Spreadsheet upload rejected",
		zap.String("event_json", marshalEvent(event)),
		zap.String("request_id", event.RequestID),
		zap.String("user_id", event.UserID),
		zap.String("kind", details.Kind),
		zap.Int64("warehouse_id", details.WarehouseID),
		zap.String("reason", details.Reason),
		zap.String("severity", event.Severity),
	)
}

func (a *SecurityAuditor) newEvent(ctx context.Context, eventType SecurityEventType, severity string, details any) SecurityEvent {
	return SecurityEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		RequestID: middleware.RequestIDFromContext(ctx),
		UserID:    auth.GetUserIDFromContext(ctx),
		Details:   details,
		Severity:  severity,
	}
}

// marshalEvent ignores the error as marshaling known types should never fail.
func marshalEvent(event SecurityEvent) string {
	data, _ := json.Marshal(event)
	return string(data)
}
