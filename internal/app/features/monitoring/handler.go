package monitoring

import (
	"context"
	"encoding/json"
	"net/http"

	uierrors "github.com/dalemusser/eventhub/internal/app/features/errors"
	auditstore "github.com/dalemusser/eventhub/internal/app/store/audit"
	"github.com/dalemusser/eventhub/internal/app/system/perflog"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"github.com/dalemusser/eventhub/internal/app/system/viewdata"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the admin monitoring page: recent request timings from
// the in-memory ring buffer and the audit trail from MongoDB.
type Handler struct {
	DB     *mongo.Database
	Buffer *perflog.Buffer
	Audit  *auditstore.Store
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, buf *perflog.Buffer, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Buffer: buf,
		Audit:  auditstore.New(db),
		ErrLog: errLog,
		Log:    logger,
	}
}

type pageData struct {
	viewdata.BaseVM
	Requests []perflog.Entry
	Audit    []models.AuditEvent
}

// Serve handles GET /monitoring.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	audit, err := h.Audit.List(ctx, 100)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading audit trail", err, "A database error occurred.", "/dashboard")
		return
	}

	data := pageData{
		BaseVM:   viewdata.NewBaseVM(r, "Monitoring", "/dashboard"),
		Requests: h.Buffer.Snapshot(),
		Audit:    audit,
	}
	templates.Render(w, r, "monitoring", data)
}

// ServeRequestsJSON handles GET /monitoring/requests.json: the raw
// ring-buffer snapshot for scraping or ad-hoc inspection.
func (h *Handler) ServeRequestsJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"requests": h.Buffer.Snapshot(),
	}); err != nil {
		h.Log.Warn("json encode failed", zap.Error(err))
	}
}
