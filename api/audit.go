package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/voxboard/voxboard/auth"
)

// AuditEvent identifies the type of security-relevant action being logged.
type AuditEvent string

const (
	AuditCredentialDecode AuditEvent = "credential_decode_failure"
	AuditLoginFailure     AuditEvent = "login_failure"
	AuditInvalidAssertion AuditEvent = "invalid_assertion"
	AuditSessionExpired   AuditEvent = "session_expired"
	AuditSessionNotFound  AuditEvent = "session_not_found"
	AuditUnauthorized     AuditEvent = "unauthorized"
	AuditAssertionIssue   AuditEvent = "assertion_issue_failure"
	AuditLogout           AuditEvent = "logout"
	AuditUserCreated      AuditEvent = "user_created"
	AuditUserModified     AuditEvent = "user_modified"
	AuditConfigUpdated    AuditEvent = "config_updated"
)

// auditLogger wraps slog.Logger for structured security audit logging.
type auditLogger struct {
	logger *slog.Logger
}

func newAuditLogger(logger *slog.Logger) *auditLogger {
	return &auditLogger{
		logger: logger.With("component", "audit"),
	}
}

func (al *auditLogger) log(event AuditEvent, r *http.Request, attrs ...slog.Attr) {
	baseAttrs := []slog.Attr{
		slog.String("event", string(event)),
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}
	baseAttrs = append(baseAttrs, attrs...)
	al.logger.LogAttrs(r.Context(), slog.LevelInfo, "audit", baseAttrs...)
}

// logEvent is a convenience for events with a user ID.
func (al *auditLogger) logEvent(event AuditEvent, r *http.Request, userID string, extra ...slog.Attr) {
	attrs := []slog.Attr{
		slog.String("user_id", userID),
	}
	attrs = append(attrs, extra...)
	al.log(event, r, attrs...)
}

// logFailure logs a failed or rejected request.
func (al *auditLogger) logFailure(event AuditEvent, r *http.Request, reason string, extra ...slog.Attr) {
	attrs := []slog.Attr{
		slog.String("reason", reason),
	}
	attrs = append(attrs, extra...)
	al.log(event, r, attrs...)
}

// logDenial maps a typed authentication denial to its audit event. Every
// fallback-to-anonymous path surfaces here, so none of them vanish silently.
func (al *auditLogger) logDenial(r *http.Request, denial error) {
	var event AuditEvent
	switch {
	case errors.Is(denial, auth.ErrCredentialDecode):
		event = AuditCredentialDecode
	case errors.Is(denial, auth.ErrCredentialRejected):
		event = AuditLoginFailure
	case errors.Is(denial, auth.ErrSessionExpired):
		event = AuditSessionExpired
	case errors.Is(denial, auth.ErrSessionNotFound):
		event = AuditSessionNotFound
	default:
		event = AuditInvalidAssertion
	}
	al.logFailure(event, r, denial.Error())
}
