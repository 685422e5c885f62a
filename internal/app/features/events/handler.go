package events

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/eventhub/internal/app/features/errors"
	detailsstore "github.com/dalemusser/eventhub/internal/app/store/eventdetails"
	eventstore "github.com/dalemusser/eventhub/internal/app/store/events"
	schedulestore "github.com/dalemusser/eventhub/internal/app/store/schedules"
	"github.com/dalemusser/eventhub/internal/app/system/auditlog"
	"github.com/dalemusser/eventhub/internal/app/system/formutil"
	"github.com/dalemusser/eventhub/internal/app/system/inputval"
	"github.com/dalemusser/eventhub/internal/app/system/paging"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"github.com/dalemusser/eventhub/internal/app/system/txn"
	"github.com/dalemusser/eventhub/internal/app/system/viewdata"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Handler serves the admin event management pages: list, create, edit,
// visibility and registration toggles, and delete with cascade.
type Handler struct {
	DB        *mongo.Database
	Events    *eventstore.Store
	Details   *detailsstore.Store
	Schedules *schedulestore.Store
	ErrLog    *uierrors.ErrorLogger
	AuditLog  *auditlog.Logger
	Log       *zap.Logger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:        db,
		Events:    eventstore.New(db),
		Details:   detailsstore.New(db),
		Schedules: schedulestore.New(db),
		ErrLog:    errLog,
		AuditLog:  audit,
		Log:       logger,
	}
}

func (h *Handler) eventFromPath(w http.ResponseWriter, r *http.Request) (models.Event, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "eventID"))
	if err != nil {
		uierrors.RenderBadRequest(w, r, "That event link is not valid.", "/events")
		return models.Event{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ev, err := h.Events.GetByID(ctx, id)
	if errors.Is(err, eventstore.ErrNotFound) {
		uierrors.RenderNotFound(w, r, "That event no longer exists.", "/events")
		return models.Event{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading event", err, "A database error occurred.", "/events")
		return models.Event{}, false
	}
	return ev, true
}

// list

type listData struct {
	viewdata.BaseVM
	Events         []models.Event
	ScheduleCounts map[string]int64
	Paging         paging.Result
	Range          paging.Range
}

// ServeList handles GET /events.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	start := paging.ParseStart(r)
	opts := options.Find().
		SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(start - 1)).
		SetLimit(paging.LimitPlusOne())

	rows, err := h.Events.Find(ctx, bson.M{}, opts)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error listing events", err, "A database error occurred.", "/dashboard")
		return
	}

	data := listData{
		BaseVM:         viewdata.NewBaseVM(r, "Events", "/dashboard"),
		ScheduleCounts: map[string]int64{},
	}
	data.Paging = paging.TrimPage(&rows, start)
	data.Range = paging.ComputeRange(start, len(rows))
	data.Events = rows

	for _, ev := range rows {
		n, err := h.Schedules.CountByEvent(ctx, ev.ID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "database error counting schedule entries", err, "A database error occurred.", "/dashboard")
			return
		}
		data.ScheduleCounts[ev.ID.Hex()] = n
	}

	templates.Render(w, r, "events_list", data)
}

// create

type eventForm struct {
	Name               string `validate:"required,max=200" label:"Event name"`
	Slug               string `validate:"required,max=80,slug" label:"Event slug"`
	CoordinatorEmail   string `validate:"required,email" label:"Coordinator email"`
	RegistrationStatus string `validate:"omitempty,regstatus" label:"Registration status"`
}

type newEventData struct {
	formutil.Base
	Form eventForm
}

// ServeNewForm handles GET /events/new.
func (h *Handler) ServeNewForm(w http.ResponseWriter, r *http.Request) {
	var data newEventData
	formutil.SetBase(&data.Base, r, "New Event", "/events")
	templates.Render(w, r, "event_new", data)
}

// ServeCreate handles POST /events. The event and its empty details
// record are created together; the details record must exist before the
// coordinator first opens their dashboard.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		uierrors.RenderBadRequest(w, r, "The form could not be read.", "/events")
		return
	}

	form := eventForm{
		Name:               strings.TrimSpace(r.FormValue("name")),
		Slug:               strings.TrimSpace(strings.ToLower(r.FormValue("slug"))),
		CoordinatorEmail:   strings.TrimSpace(r.FormValue("coordinator_email")),
		RegistrationStatus: strings.TrimSpace(r.FormValue("registration_status")),
	}

	rerender := func(msg string) {
		data := newEventData{Form: form}
		formutil.SetBase(&data.Base, r, "New Event", "/events")
		data.SetError(msg)
		templates.Render(w, r, "event_new", data)
	}

	if res := inputval.Validate(form); res.HasErrors() {
		rerender(res.All())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var created models.Event
	err := txn.WithTransaction(ctx, h.DB.Client(), func(ctx context.Context) error {
		ev, err := h.Events.Create(ctx, models.Event{
			Slug:               form.Slug,
			Name:               form.Name,
			CoordinatorEmail:   form.CoordinatorEmail,
			IsHidden:           true,
			RegistrationStatus: form.RegistrationStatus,
		})
		if err != nil {
			return err
		}
		created = ev
		_, err = h.Details.CreateEmpty(ctx, ev.ID)
		return err
	})
	if errors.Is(err, eventstore.ErrDuplicateSlug) {
		rerender("That slug is already in use by another event.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error creating event", err, "A database error occurred.", "/events")
		return
	}

	h.AuditLog.LogRequest(r, models.AuditEvent{
		Action:  models.AuditEventCreated,
		EventID: created.ID,
		Detail:  created.Slug,
	})
	http.Redirect(w, r, "/events", http.StatusSeeOther)
}

// edit

type editEventData struct {
	formutil.Base
	Event models.Event
	Form  eventForm
}

// ServeEditForm handles GET /events/{eventID}/edit.
func (h *Handler) ServeEditForm(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.eventFromPath(w, r)
	if !ok {
		return
	}

	data := editEventData{
		Event: ev,
		Form: eventForm{
			Name:               ev.Name,
			Slug:               ev.Slug,
			CoordinatorEmail:   ev.CoordinatorEmail,
			RegistrationStatus: ev.RegistrationStatus,
		},
	}
	formutil.SetBase(&data.Base, r, "Edit Event", "/events")
	templates.Render(w, r, "event_edit", data)
}

// ServeUpdate handles POST /events/{eventID}. The slug is immutable;
// the form echoes it back read-only and the store never writes it.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.eventFromPath(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		uierrors.RenderBadRequest(w, r, "The form could not be read.", "/events")
		return
	}

	form := eventForm{
		Name:               strings.TrimSpace(r.FormValue("name")),
		Slug:               ev.Slug,
		CoordinatorEmail:   strings.TrimSpace(r.FormValue("coordinator_email")),
		RegistrationStatus: strings.TrimSpace(r.FormValue("registration_status")),
	}

	if res := inputval.Validate(form); res.HasErrors() {
		data := editEventData{Event: ev, Form: form}
		formutil.SetBase(&data.Base, r, "Edit Event", "/events")
		data.SetError(res.All())
		templates.Render(w, r, "event_edit", data)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Events.Update(ctx, ev.ID, models.Event{
		Name:               form.Name,
		CoordinatorEmail:   form.CoordinatorEmail,
		RegistrationStatus: form.RegistrationStatus,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error updating event", err, "A database error occurred.", "/events")
		return
	}

	h.AuditLog.LogRequest(r, models.AuditEvent{
		Action:  models.AuditEventUpdated,
		EventID: ev.ID,
		Detail:  ev.Slug,
	})
	http.Redirect(w, r, "/events", http.StatusSeeOther)
}

// toggles

// ServeSetVisibility handles POST /events/{eventID}/visibility with a
// "hidden" form value of "true" or "false".
func (h *Handler) ServeSetVisibility(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.eventFromPath(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		uierrors.RenderBadRequest(w, r, "The form could not be read.", "/events")
		return
	}
	hidden := r.FormValue("hidden") == "true"

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Events.SetHidden(ctx, ev.ID, hidden); err != nil {
		h.ErrLog.LogServerError(w, r, "database error setting event visibility", err, "A database error occurred.", "/events")
		return
	}

	detail := "shown"
	if hidden {
		detail = "hidden"
	}
	h.AuditLog.LogRequest(r, models.AuditEvent{
		Action:  models.AuditEventUpdated,
		EventID: ev.ID,
		Detail:  detail,
	})
	http.Redirect(w, r, "/events", http.StatusSeeOther)
}

// ServeSetRegistration handles POST /events/{eventID}/registration.
func (h *Handler) ServeSetRegistration(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.eventFromPath(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		uierrors.RenderBadRequest(w, r, "The form could not be read.", "/events")
		return
	}

	status := strings.ToLower(strings.TrimSpace(r.FormValue("status")))
	if !inputval.IsValidRegistrationStatus(status) {
		uierrors.RenderBadRequest(w, r, "Registration status must be upcoming, open, or closed.", "/events")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Events.SetRegistrationStatus(ctx, ev.ID, status); err != nil {
		h.ErrLog.LogServerError(w, r, "database error setting registration status", err, "A database error occurred.", "/events")
		return
	}

	h.AuditLog.LogRequest(r, models.AuditEvent{
		Action:  models.AuditEventUpdated,
		EventID: ev.ID,
		Detail:  "registration " + status,
	})
	http.Redirect(w, r, "/events", http.StatusSeeOther)
}

// delete

// ServeDelete handles POST /events/{eventID}/delete. The event, its
// details record, and its schedule entries go together. Child records
// are removed first so the transactionless fallback never leaves
// orphans behind a still-listed event.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.eventFromPath(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err := txn.WithTransaction(ctx, h.DB.Client(), func(ctx context.Context) error {
		if _, err := h.Schedules.DeleteByEvent(ctx, ev.ID); err != nil {
			return err
		}
		if _, err := h.Details.DeleteByEventID(ctx, ev.ID); err != nil {
			return err
		}
		_, err := h.Events.Delete(ctx, ev.ID)
		return err
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error deleting event", err, "A database error occurred.", "/events")
		return
	}

	h.AuditLog.LogRequest(r, models.AuditEvent{
		Action:  models.AuditEventDeleted,
		EventID: ev.ID,
		Detail:  ev.Slug,
	})
	http.Redirect(w, r, "/events", http.StatusSeeOther)
}
