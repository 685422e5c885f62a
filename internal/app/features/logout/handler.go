package logout

import (
	"net/http"

	"github.com/dalemusser/eventhub/internal/app/system/auditlog"
	"github.com/dalemusser/eventhub/internal/app/system/auth"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"go.uber.org/zap"
)

type Handler struct {
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{SessionMgr: sessionMgr, AuditLog: audit, Log: logger}
}

// Serve handles POST /logout (and GET, for plain links).
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		h.AuditLog.Log(r.Context(), models.AuditEvent{
			Action:  models.AuditSignOut,
			ActorID: u.ID,
			Actor:   u.LoginID,
		})
	}

	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Warn("failed to clear session on logout", zap.Error(err))
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
