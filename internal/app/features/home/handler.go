package home

import (
	"context"
	"net/http"

	eventstore "github.com/dalemusser/eventhub/internal/app/store/events"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"github.com/dalemusser/eventhub/internal/app/system/viewdata"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the public landing page.
type Handler struct {
	DB     *mongo.Database
	Events *eventstore.Store
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Events: eventstore.New(db),
		Log:    logger,
	}
}

type homeData struct {
	viewdata.BaseVM
	Events []models.Event
}

// ServeRoot handles GET /: the landing page with the visible events.
func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	events, err := h.Events.ListVisible(ctx)
	if err != nil {
		h.Log.Error("failed to load events for landing page", zap.Error(err))
		events = nil
	}

	data := homeData{
		BaseVM: viewdata.NewBaseVM(r, "Welcome", "/"),
		Events: events,
	}

	templates.Render(w, r, "home", data)
}
