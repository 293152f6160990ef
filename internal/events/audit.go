package events

import (
	"log/slog"
)

// AuditLogger writes one structured line per lifecycle event
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a listener that logs to logger under the "audit" group
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{logger: logger.With("component", "audit")}
}

// SubscribeAll registers the logger for every lifecycle event
func (a *AuditLogger) SubscribeAll(bus *Bus) {
	bus.Subscribe(a,
		EventTypeSessionStarted,
		EventTypeShipClaimed,
		EventTypeResponseRecorded,
		EventTypeSessionCompleted,
		EventTypeSessionAbandoned)
}

func (a *AuditLogger) ID() string    { return "audit-logger" }
func (a *AuditLogger) Priority() int { return 1000 }

func (a *AuditLogger) HandleEvent(e *Event) error {
	attrs := []any{
		"event", e.Type,
		"session_id", e.SessionID,
		"player_id", e.PlayerID,
		"at", e.At,
	}
	if e.Sequence > 0 {
		attrs = append(attrs, "sequence", e.Sequence)
	}
	if e.Ship != "" {
		attrs = append(attrs, "ship", e.Ship)
	}
	if e.Outcome != nil {
		attrs = append(attrs, "outcome", e.Outcome.Kind, "credits", e.Outcome.Credits)
	}
	if e.Grant != nil {
		attrs = append(attrs, "granted_ship", e.Grant.Ship)
	}
	a.logger.Info("negotiation event", attrs...)
	return nil
}
