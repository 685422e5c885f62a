package dashboard

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/eventhub/internal/app/features/errors"
	eventstore "github.com/dalemusser/eventhub/internal/app/store/events"
	userstore "github.com/dalemusser/eventhub/internal/app/store/users"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"github.com/dalemusser/eventhub/internal/app/system/viewdata"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the admin dashboard.
type Handler struct {
	DB     *mongo.Database
	Events *eventstore.Store
	Users  *userstore.Store
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Events: eventstore.New(db),
		Users:  userstore.New(db),
		ErrLog: errLog,
		Log:    logger,
	}
}

type dashboardData struct {
	viewdata.BaseVM
	EventCount    int64
	HiddenCount   int64
	PendingCount  int64
	UserCount     int64
	PendingEvents []models.Event
}

// Serve handles GET /dashboard.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	data := dashboardData{
		BaseVM: viewdata.NewBaseVM(r, "Dashboard", "/"),
	}

	var err error
	if data.EventCount, err = h.Events.Count(ctx, bson.M{}); err != nil {
		h.ErrLog.LogServerError(w, r, "database error counting events", err, "A database error occurred.", "/")
		return
	}
	if data.HiddenCount, err = h.Events.Count(ctx, bson.M{"is_hidden": true}); err != nil {
		h.ErrLog.LogServerError(w, r, "database error counting hidden events", err, "A database error occurred.", "/")
		return
	}
	if data.PendingCount, err = h.Events.Count(ctx, bson.M{"review_request_status": models.ReviewPending}); err != nil {
		h.ErrLog.LogServerError(w, r, "database error counting pending reviews", err, "A database error occurred.", "/")
		return
	}
	if data.UserCount, err = h.Users.Count(ctx, bson.M{}); err != nil {
		h.ErrLog.LogServerError(w, r, "database error counting users", err, "A database error occurred.", "/")
		return
	}

	data.PendingEvents, err = h.Events.Find(ctx, bson.M{"review_request_status": models.ReviewPending})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading pending reviews", err, "A database error occurred.", "/")
		return
	}

	templates.Render(w, r, "dashboard", data)
}
