package auditlog

import (
	"context"
	"net/http"

	auditstore "github.com/dalemusser/eventhub/internal/app/store/audit"
	"github.com/dalemusser/eventhub/internal/app/system/auth"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"go.uber.org/zap"
)

// Logger records administrative actions to both MongoDB (via the audit
// store) and structured logs. A nil *Logger is a usable no-op so tests
// and tools can skip auditing entirely.
type Logger struct {
	store  *auditstore.Store
	zapLog *zap.Logger
}

func New(store *auditstore.Store, zapLog *zap.Logger) *Logger {
	return &Logger{store: store, zapLog: zapLog}
}

// Log writes the entry best effort. Audit failures are logged and
// swallowed; they never fail the action they describe.
func (l *Logger) Log(ctx context.Context, ev models.AuditEvent) {
	if l == nil {
		return
	}

	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("action", ev.Action),
	}
	if ev.ActorID != "" {
		fields = append(fields, zap.String("actor_id", ev.ActorID))
	}
	if ev.Actor != "" {
		fields = append(fields, zap.String("actor", ev.Actor))
	}
	if !ev.EventID.IsZero() {
		fields = append(fields, zap.String("event_id", ev.EventID.Hex()))
	}
	if ev.Detail != "" {
		fields = append(fields, zap.String("detail", ev.Detail))
	}
	l.zapLog.Info("audit event", fields...)

	if l.store != nil {
		if err := l.store.Log(ctx, ev); err != nil {
			l.zapLog.Warn("audit store write failed",
				zap.String("action", ev.Action), zap.Error(err))
		}
	}
}

// LogRequest fills the actor from the signed-in user on the request and
// records the entry.
func (l *Logger) LogRequest(r *http.Request, ev models.AuditEvent) {
	if l == nil {
		return
	}
	if u, ok := auth.CurrentUser(r); ok {
		ev.ActorID = u.ID
		ev.Actor = u.LoginID
	}
	l.Log(r.Context(), ev)
}
