package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"biblio/backend/internal/audit"
)

// NewAuditEmitter returns an audit logger that mirrors audit events to the
// OTLP log pipeline via the given LoggerProvider. If provider is nil, returns
// a no-op logger. Combine it with the database-backed logger so audit rows and
// the observability stack see the same events.
func NewAuditEmitter(provider *sdklog.LoggerProvider) audit.AuditLogger {
	if provider == nil {
		return noopEmitter{}
	}
	return &auditEmitter{logger: provider.Logger("biblio.audit")}
}

type noopEmitter struct{}

func (noopEmitter) LogEvent(context.Context, string, string, string, string) {}

type auditEmitter struct {
	logger otellog.Logger
}

// LogEvent emits one audit event as an OTel log record. Best-effort.
func (e *auditEmitter) LogEvent(ctx context.Context, userID, action, resource, metadata string) {
	rec := otellog.Record{}
	rec.SetTimestamp(time.Now().UTC())
	rec.SetSeverity(otellog.SeverityInfo)
	rec.SetSeverityText("INFO")
	rec.SetBody(otellog.StringValue(action))
	rec.AddAttributes(
		otellog.String("user_id", userID),
		otellog.String("action", action),
		otellog.String("resource", resource),
	)
	if metadata != "" {
		rec.AddAttributes(otellog.String("metadata", metadata))
	}
	e.logger.Emit(ctx, rec)
}
