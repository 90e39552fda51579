package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditLevel classifies an audit event.
type AuditLevel string

const (
	AuditDebug    AuditLevel = "DEBUG"
	AuditInfo     AuditLevel = "INFO"
	AuditWarn     AuditLevel = "WARN"
	AuditError    AuditLevel = "ERROR"
	AuditCritical AuditLevel = "CRITICAL"
)

// Audit action codes.
const (
	ActionLoginSuccess  = "LOGIN_SUCCESS"
	ActionLoginFailure  = "LOGIN_FAILURE"
	ActionAccountLocked = "ACCOUNT_LOCKED"
	ActionAccessDenied  = "ACCESS_DENIED"
)

// AuditEvent is one row of the append-only business audit trail.
type AuditEvent struct {
	ID        uuid.UUID
	Actor     string
	Action    string
	Details   map[string]any
	IP        string
	UserAgent string
	Level     AuditLevel
	Origin    string
	Resource  string
	CreatedAt time.Time
}

// SecurityResult is the outcome recorded on a security event.
type SecurityResult string

const (
	ResultSuccess SecurityResult = "SUCCESS"
	ResultFailure SecurityResult = "FAILURE"
	ResultBlocked SecurityResult = "BLOCKED"
)

// Severity is the risk level of a security event.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Security event types.
const (
	EventLoginSuccess      = "LOGIN_SUCCESS"
	EventLoginFailed       = "LOGIN_FAILED"
	EventAccountLocked     = "ACCOUNT_LOCKED"
	EventPermissionDenied  = "PERMISSION_DENIED"
	EventCriticalOperation = "CRITICAL_OPERATION"
)

// SecurityEvent is one row of the security-risk trail. It is coarser than
// AuditEvent and feeds risk triage rather than forensics; both are written
// for the same logical occurrence.
type SecurityEvent struct {
	ID          int64
	EventType   string
	Actor       string
	IP          string
	UserAgent   string
	Result      SecurityResult
	Details     map[string]any
	Severity    Severity
	ActionTaken string
	OccurredAt  time.Time
}
