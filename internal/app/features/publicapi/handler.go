package publicapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	eventstore "github.com/dalemusser/eventhub/internal/app/store/events"
	schedulestore "github.com/dalemusser/eventhub/internal/app/store/schedules"
	"github.com/dalemusser/eventhub/internal/app/system/paging"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the public read-only JSON API. Only visible events and
// their published fields leave this package; staged details never do.
type Handler struct {
	DB        *mongo.Database
	Events    *eventstore.Store
	Schedules *schedulestore.Store
	Log       *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:        db,
		Events:    eventstore.New(db),
		Schedules: schedulestore.New(db),
		Log:       logger,
	}
}

// response shapes

type eventResponse struct {
	Slug                     string   `json:"slug"`
	Name                     string   `json:"name"`
	RegistrationStatus       string   `json:"registration_status"`
	Description              string   `json:"description,omitempty"`
	ImageURLs                []string `json:"image_urls,omitempty"`
	BrochureURL              string   `json:"brochure_url,omitempty"`
	WhatsAppURL              string   `json:"whatsapp_url,omitempty"`
	JudgingCriteria          string   `json:"judging_criteria,omitempty"`
	DisqualificationCriteria string   `json:"disqualification_criteria,omitempty"`
	MaterialsProvided        string   `json:"materials_provided,omitempty"`
}

type scheduleResponse struct {
	EventSlug string     `json:"event_slug"`
	Title     string     `json:"title"`
	Venue     string     `json:"venue,omitempty"`
	StartsAt  time.Time  `json:"starts_at"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
}

func toEventResponse(ev models.Event) eventResponse {
	return eventResponse{
		Slug:                     ev.Slug,
		Name:                     ev.Name,
		RegistrationStatus:       ev.RegistrationStatus,
		Description:              ev.Description,
		ImageURLs:                ev.ImageURLs,
		BrochureURL:              ev.BrochureURL,
		WhatsAppURL:              ev.WhatsAppURL,
		JudgingCriteria:          ev.JudgingCriteria,
		DisqualificationCriteria: ev.DisqualificationCriteria,
		MaterialsProvided:        ev.MaterialsProvided,
	}
}

func toScheduleResponse(e models.ScheduleEntry, slug string) scheduleResponse {
	resp := scheduleResponse{
		EventSlug: slug,
		Title:     e.Title,
		Venue:     e.Venue,
		StartsAt:  e.StartsAt,
	}
	if !e.EndsAt.IsZero() {
		ends := e.EndsAt
		resp.EndsAt = &ends
	}
	return resp
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Log.Warn("json encode failed", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

// handlers

// ServeEvents handles GET /api/events.
func (h *Handler) ServeEvents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	events, err := h.Events.ListVisible(ctx)
	if err != nil {
		h.Log.Error("api: listing visible events failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, toEventResponse(ev))
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"events": out})
}

// ServeEvent handles GET /api/events/{slug}. Hidden events are
// indistinguishable from missing ones.
func (h *Handler) ServeEvent(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ev, err := h.Events.GetBySlug(ctx, slug)
	if errors.Is(err, eventstore.ErrNotFound) || (err == nil && ev.IsHidden) {
		h.writeError(w, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		h.Log.Error("api: loading event failed", zap.String("slug", slug), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	entries, err := h.Schedules.ListByEvent(ctx, ev.ID)
	if err != nil {
		h.Log.Error("api: loading schedule failed", zap.String("slug", slug), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	schedule := make([]scheduleResponse, 0, len(entries))
	for _, e := range entries {
		schedule = append(schedule, toScheduleResponse(e, ev.Slug))
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"event":    toEventResponse(ev),
		"schedule": schedule,
	})
}

// ServeSchedules handles GET /api/schedules?page=N: a paged feed of
// schedule entries across all visible events, ordered by start time.
func (h *Handler) ServeSchedules(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	events, err := h.Events.ListVisible(ctx)
	if err != nil {
		h.Log.Error("api: listing visible events failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	slugByID := make(map[primitive.ObjectID]string, len(events))
	ids := make([]primitive.ObjectID, 0, len(events))
	for _, ev := range events {
		slugByID[ev.ID] = ev.Slug
		ids = append(ids, ev.ID)
	}

	page := paging.ParsePage(r)
	skip, limit := paging.SkipLimit(page)

	entries, err := h.Schedules.ListPage(ctx, ids, skip, limit)
	if err != nil {
		h.Log.Error("api: listing schedules failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	hasNext := false
	if len(entries) > paging.PageSize {
		entries = entries[:paging.PageSize]
		hasNext = true
	}

	out := make([]scheduleResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toScheduleResponse(e, slugByID[e.EventID]))
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"schedules": out,
		"page":      page,
		"has_next":  hasNext,
	})
}
