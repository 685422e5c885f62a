package schedules

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/eventhub/internal/app/features/errors"
	"github.com/dalemusser/eventhub/internal/app/policy/eventpolicy"
	"github.com/dalemusser/eventhub/internal/app/system/gates"
	eventstore "github.com/dalemusser/eventhub/internal/app/store/events"
	schedulestore "github.com/dalemusser/eventhub/internal/app/store/schedules"
	"github.com/dalemusser/eventhub/internal/app/system/auditlog"
	"github.com/dalemusser/eventhub/internal/app/system/formutil"
	"github.com/dalemusser/eventhub/internal/app/system/inputval"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"github.com/dalemusser/eventhub/internal/app/system/viewdata"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// datetime-local input format.
const timeLayout = "2006-01-02T15:04"

// Handler serves schedule management for one event, shared by admins
// and the event's own coordinator.
type Handler struct {
	DB       *mongo.Database
	Events   *eventstore.Store
	Entries  *schedulestore.Store
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Events:   eventstore.New(db),
		Entries:  schedulestore.New(db),
		ErrLog:   errLog,
		AuditLog: audit,
		Log:      logger,
	}
}

// eventForRequest loads the event from the path and checks that the
// current user may manage its schedule. Writes the error page itself
// when it returns ok=false.
func (h *Handler) eventForRequest(w http.ResponseWriter, r *http.Request) (models.Event, bool) {
	if res := gates.RequireCoordinator(w, r, "You do not have access to schedule management.", "/"); !res.OK {
		return models.Event{}, false
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "eventID"))
	if err != nil {
		uierrors.RenderBadRequest(w, r, "That event link is not valid.", "/")
		return models.Event{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ev, err := h.Events.GetByID(ctx, id)
	if errors.Is(err, eventstore.ErrNotFound) {
		uierrors.RenderNotFound(w, r, "That event no longer exists.", "/")
		return models.Event{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading event", err, "A database error occurred.", "/")
		return models.Event{}, false
	}

	allowed, err := eventpolicy.CanManageEvent(ctx, h.DB, r, ev.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "authorization lookup failed", err, "A database error occurred.", "/")
		return models.Event{}, false
	}
	if !allowed {
		uierrors.RenderForbidden(w, r, "You do not manage this event's schedule.", "/")
		return models.Event{}, false
	}
	return ev, true
}

func (h *Handler) entryFromPath(w http.ResponseWriter, r *http.Request, ev models.Event) (models.ScheduleEntry, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "entryID"))
	if err != nil {
		uierrors.RenderBadRequest(w, r, "That schedule link is not valid.", schedulePath(ev))
		return models.ScheduleEntry{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	entry, err := h.Entries.GetByID(ctx, id)
	if errors.Is(err, schedulestore.ErrNotFound) {
		uierrors.RenderNotFound(w, r, "That schedule entry no longer exists.", schedulePath(ev))
		return models.ScheduleEntry{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading schedule entry", err, "A database error occurred.", schedulePath(ev))
		return models.ScheduleEntry{}, false
	}

	// Entries are addressed under their event; a mismatched pair is a
	// broken or forged link, not a lookup miss.
	if entry.EventID != ev.ID {
		uierrors.RenderNotFound(w, r, "That schedule entry no longer exists.", schedulePath(ev))
		return models.ScheduleEntry{}, false
	}
	return entry, true
}

func schedulePath(ev models.Event) string {
	return "/events/" + ev.ID.Hex() + "/schedule"
}

// list

type listData struct {
	viewdata.BaseVM
	Event   models.Event
	Entries []models.ScheduleEntry
}

// ServeList handles GET /events/{eventID}/schedule.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.eventForRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	entries, err := h.Entries.ListByEvent(ctx, ev.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error listing schedule", err, "A database error occurred.", "/")
		return
	}

	data := listData{
		BaseVM:  viewdata.NewBaseVM(r, ev.Name+" Schedule", "/"),
		Event:   ev,
		Entries: entries,
	}
	templates.Render(w, r, "schedule_list", data)
}

// create / edit forms

type entryForm struct {
	Title    string `validate:"required,max=200" label:"Title"`
	Venue    string `validate:"omitempty,max=200" label:"Venue"`
	StartsAt string `validate:"required" label:"Start time"`
	EndsAt   string `validate:"omitempty" label:"End time"`
}

type entryFormData struct {
	formutil.Base
	Event models.Event
	Entry models.ScheduleEntry
	Form  entryForm
}

// parseTimes validates and parses the form's time fields. The message
// is user facing; empty means success.
func (f entryForm) parseTimes() (start, end time.Time, msg string) {
	start, err := time.Parse(timeLayout, f.StartsAt)
	if err != nil {
		return time.Time{}, time.Time{}, "Start time must be a valid date and time."
	}
	if f.EndsAt == "" {
		return start, time.Time{}, ""
	}
	end, err = time.Parse(timeLayout, f.EndsAt)
	if err != nil {
		return time.Time{}, time.Time{}, "End time must be a valid date and time."
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, "End time must be after the start time."
	}
	return start, end, ""
}

func entryFormFromRequest(r *http.Request) entryForm {
	return entryForm{
		Title:    strings.TrimSpace(r.FormValue("title")),
		Venue:    strings.TrimSpace(r.FormValue("venue")),
		StartsAt: strings.TrimSpace(r.FormValue("starts_at")),
		EndsAt:   strings.TrimSpace(r.FormValue("ends_at")),
	}
}

// ServeNewForm handles GET /events/{eventID}/schedule/new.
func (h *Handler) ServeNewForm(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.eventForRequest(w, r)
	if !ok {
		return
	}
	data := entryFormData{Event: ev}
	formutil.SetBase(&data.Base, r, "New Schedule Entry", schedulePath(ev))
	templates.Render(w, r, "schedule_new", data)
}

// ServeCreate handles POST /events/{eventID}/schedule.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.eventForRequest(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		uierrors.RenderBadRequest(w, r, "The form could not be read.", schedulePath(ev))
		return
	}
	form := entryFormFromRequest(r)

	rerender := func(msg string) {
		data := entryFormData{Event: ev, Form: form}
		formutil.SetBase(&data.Base, r, "New Schedule Entry", schedulePath(ev))
		data.SetError(msg)
		templates.Render(w, r, "schedule_new", data)
	}

	if res := inputval.Validate(form); res.HasErrors() {
		rerender(res.All())
		return
	}
	start, end, msg := form.parseTimes()
	if msg != "" {
		rerender(msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	_, err := h.Entries.Create(ctx, models.ScheduleEntry{
		EventID:  ev.ID,
		Title:    form.Title,
		Venue:    form.Venue,
		StartsAt: start,
		EndsAt:   end,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error creating schedule entry", err, "A database error occurred.", schedulePath(ev))
		return
	}

	h.AuditLog.LogRequest(r, models.AuditEvent{
		Action:  models.AuditScheduleChanged,
		EventID: ev.ID,
		Detail:  "added " + form.Title,
	})
	http.Redirect(w, r, schedulePath(ev), http.StatusSeeOther)
}

// ServeEditForm handles GET /events/{eventID}/schedule/{entryID}/edit.
func (h *Handler) ServeEditForm(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.eventForRequest(w, r)
	if !ok {
		return
	}
	entry, ok := h.entryFromPath(w, r, ev)
	if !ok {
		return
	}

	form := entryForm{
		Title:    entry.Title,
		Venue:    entry.Venue,
		StartsAt: entry.StartsAt.Format(timeLayout),
	}
	if !entry.EndsAt.IsZero() {
		form.EndsAt = entry.EndsAt.Format(timeLayout)
	}

	data := entryFormData{Event: ev, Entry: entry, Form: form}
	formutil.SetBase(&data.Base, r, "Edit Schedule Entry", schedulePath(ev))
	templates.Render(w, r, "schedule_edit", data)
}

// ServeUpdate handles POST /events/{eventID}/schedule/{entryID}.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.eventForRequest(w, r)
	if !ok {
		return
	}
	entry, ok := h.entryFromPath(w, r, ev)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		uierrors.RenderBadRequest(w, r, "The form could not be read.", schedulePath(ev))
		return
	}
	form := entryFormFromRequest(r)

	rerender := func(msg string) {
		data := entryFormData{Event: ev, Entry: entry, Form: form}
		formutil.SetBase(&data.Base, r, "Edit Schedule Entry", schedulePath(ev))
		data.SetError(msg)
		templates.Render(w, r, "schedule_edit", data)
	}

	if res := inputval.Validate(form); res.HasErrors() {
		rerender(res.All())
		return
	}
	start, end, msg := form.parseTimes()
	if msg != "" {
		rerender(msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Entries.Update(ctx, entry.ID, models.ScheduleEntry{
		Title:    form.Title,
		Venue:    form.Venue,
		StartsAt: start,
		EndsAt:   end,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error updating schedule entry", err, "A database error occurred.", schedulePath(ev))
		return
	}

	h.AuditLog.LogRequest(r, models.AuditEvent{
		Action:  models.AuditScheduleChanged,
		EventID: ev.ID,
		Detail:  "updated " + form.Title,
	})
	http.Redirect(w, r, schedulePath(ev), http.StatusSeeOther)
}

// ServeDelete handles POST /events/{eventID}/schedule/{entryID}/delete.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.eventForRequest(w, r)
	if !ok {
		return
	}
	entry, ok := h.entryFromPath(w, r, ev)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.Entries.Delete(ctx, entry.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "database error deleting schedule entry", err, "A database error occurred.", schedulePath(ev))
		return
	}

	h.AuditLog.LogRequest(r, models.AuditEvent{
		Action:  models.AuditScheduleChanged,
		EventID: ev.ID,
		Detail:  "removed " + entry.Title,
	})
	http.Redirect(w, r, schedulePath(ev), http.StatusSeeOther)
}
