package coordinator

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/eventhub/internal/app/features/errors"
	detailsstore "github.com/dalemusser/eventhub/internal/app/store/eventdetails"
	eventstore "github.com/dalemusser/eventhub/internal/app/store/events"
	schedulestore "github.com/dalemusser/eventhub/internal/app/store/schedules"
	"github.com/dalemusser/eventhub/internal/app/system/authz"
	"github.com/dalemusser/eventhub/internal/app/system/formutil"
	"github.com/dalemusser/eventhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/eventhub/internal/app/system/inputval"
	"github.com/dalemusser/eventhub/internal/app/system/review"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"github.com/dalemusser/eventhub/internal/app/system/viewdata"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the coordinator dashboard: the event bound to the
// signed-in coordinator, its staged details, and the review submission
// flow. Everything here operates on that one event.
type Handler struct {
	DB        *mongo.Database
	Events    *eventstore.Store
	Details   *detailsstore.Store
	Schedules *schedulestore.Store
	Workflow  *review.Workflow
	ErrLog    *uierrors.ErrorLogger
	Log       *zap.Logger
}

func NewHandler(db *mongo.Database, wf *review.Workflow, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:        db,
		Events:    eventstore.New(db),
		Details:   detailsstore.New(db),
		Schedules: schedulestore.New(db),
		Workflow:  wf,
		ErrLog:    errLog,
		Log:       logger,
	}
}

// boundEvent resolves the signed-in coordinator's event. ok=false means
// the response has been written (unassigned page or error page).
func (h *Handler) boundEvent(w http.ResponseWriter, r *http.Request) (models.Event, bool) {
	email, ok := authz.UserEmail(r)
	if !ok || email == "" {
		uierrors.RenderForbidden(w, r, "Your account has no login email.", "/")
		return models.Event{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ev, err := h.Events.GetByCoordinatorEmail(ctx, email)
	if errors.Is(err, eventstore.ErrNotFound) {
		templates.Render(w, r, "coordinator_unassigned",
			struct{ viewdata.BaseVM }{viewdata.NewBaseVM(r, "My Event", "/")})
		return models.Event{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error resolving coordinator event", err, "A database error occurred.", "/")
		return models.Event{}, false
	}
	return ev, true
}

// home

type homeData struct {
	viewdata.BaseVM
	Event         models.Event
	Details       models.EventDetails
	ReviewStatus  string
	ScheduleCount int64
}

// ServeHome handles GET /coordinator.
func (h *Handler) ServeHome(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.boundEvent(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	details, err := h.Details.GetByEventID(ctx, ev.ID)
	if err != nil && !errors.Is(err, detailsstore.ErrNotFound) {
		h.ErrLog.LogServerError(w, r, "database error loading event details", err, "A database error occurred.", "/")
		return
	}

	count, err := h.Schedules.CountByEvent(ctx, ev.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error counting schedule entries", err, "A database error occurred.", "/")
		return
	}

	data := homeData{
		BaseVM:        viewdata.NewBaseVM(r, "My Event", "/"),
		Event:         ev,
		Details:       details,
		ReviewStatus:  string(review.ParseStatus(ev.ReviewRequestStatus)),
		ScheduleCount: count,
	}
	templates.Render(w, r, "coordinator_home", data)
}

// ServeScheduleRedirect handles GET /coordinator/schedule by sending
// the coordinator to the shared schedule manager for their event.
func (h *Handler) ServeScheduleRedirect(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.boundEvent(w, r)
	if !ok {
		return
	}
	http.Redirect(w, r, "/events/"+ev.ID.Hex()+"/schedule", http.StatusSeeOther)
}

// details form

type detailsForm struct {
	Description              string `validate:"max=20000" label:"Description"`
	ImageURLs                string `label:"Image URLs"`
	BrochureURL              string `validate:"omitempty,httpurl" label:"Brochure URL"`
	WhatsAppURL              string `validate:"omitempty,httpurl" label:"WhatsApp group URL"`
	JudgingCriteria          string `validate:"max=20000" label:"Judging criteria"`
	DisqualificationCriteria string `validate:"max=20000" label:"Disqualification criteria"`
	MaterialsProvided        string `validate:"max=20000" label:"Materials provided"`
}

type detailsFormData struct {
	formutil.Base
	Event models.Event
	Form  detailsForm
}

func formFromDetails(d models.EventDetails) detailsForm {
	return detailsForm{
		Description:              d.Description,
		ImageURLs:                strings.Join(d.ImageURLs, "\n"),
		BrochureURL:              d.BrochureURL,
		WhatsAppURL:              d.WhatsAppURL,
		JudgingCriteria:          d.JudgingCriteria,
		DisqualificationCriteria: d.DisqualificationCriteria,
		MaterialsProvided:        d.MaterialsProvided,
	}
}

// parseImageURLs splits the textarea into one URL per line and checks
// each. The message is user facing; empty means success.
func parseImageURLs(raw string) ([]string, string) {
	var urls []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !inputval.IsValidHTTPURL(line) {
			return nil, "Each image URL must be a valid http(s) URL: " + line
		}
		urls = append(urls, line)
	}
	return urls, ""
}

// ServeDetailsForm handles GET /coordinator/details.
func (h *Handler) ServeDetailsForm(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.boundEvent(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	details, err := h.Details.GetByEventID(ctx, ev.ID)
	if err != nil && !errors.Is(err, detailsstore.ErrNotFound) {
		h.ErrLog.LogServerError(w, r, "database error loading event details", err, "A database error occurred.", "/coordinator")
		return
	}

	data := detailsFormData{Event: ev, Form: formFromDetails(details)}
	formutil.SetBase(&data.Base, r, "Edit Event Details", "/coordinator")
	templates.Render(w, r, "details_edit", data)
}

// ServeDetailsSubmit handles POST /coordinator/details. The whole form
// is staged as a patch and the event goes to pending review; submitting
// again while pending just refreshes the staged copy.
func (h *Handler) ServeDetailsSubmit(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.boundEvent(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		uierrors.RenderBadRequest(w, r, "The form could not be read.", "/coordinator")
		return
	}

	form := detailsForm{
		Description:              strings.TrimSpace(r.FormValue("description")),
		ImageURLs:                r.FormValue("image_urls"),
		BrochureURL:              strings.TrimSpace(r.FormValue("brochure_url")),
		WhatsAppURL:              strings.TrimSpace(r.FormValue("whatsapp_url")),
		JudgingCriteria:          strings.TrimSpace(r.FormValue("judging_criteria")),
		DisqualificationCriteria: strings.TrimSpace(r.FormValue("disqualification_criteria")),
		MaterialsProvided:        strings.TrimSpace(r.FormValue("materials_provided")),
	}

	rerender := func(msg string) {
		data := detailsFormData{Event: ev, Form: form}
		formutil.SetBase(&data.Base, r, "Edit Event Details", "/coordinator")
		data.SetError(msg)
		templates.Render(w, r, "details_edit", data)
	}

	if res := inputval.Validate(form); res.HasErrors() {
		rerender(res.All())
		return
	}
	imageURLs, msg := parseImageURLs(form.ImageURLs)
	if msg != "" {
		rerender(msg)
		return
	}

	// Rich text fields pass through the UGC sanitizer before staging;
	// what an admin reviews is exactly what could get published.
	description := htmlsanitize.Sanitize(form.Description)
	judging := htmlsanitize.Sanitize(form.JudgingCriteria)
	disqualification := htmlsanitize.Sanitize(form.DisqualificationCriteria)
	materials := htmlsanitize.Sanitize(form.MaterialsProvided)

	patch := models.EventDetailsPatch{
		Description:              &description,
		ImageURLs:                &imageURLs,
		BrochureURL:              &form.BrochureURL,
		WhatsAppURL:              &form.WhatsAppURL,
		JudgingCriteria:          &judging,
		DisqualificationCriteria: &disqualification,
		MaterialsProvided:        &materials,
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ident := authz.IdentityFromRequest(ctx, h.DB, r)
	_, err := h.Workflow.SubmitUpdate(ctx, ident, ev.ID, patch)
	if errors.Is(err, review.ErrUnauthenticated) {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if errors.Is(err, review.ErrForbidden) {
		uierrors.RenderForbidden(w, r, "You do not manage this event.", "/coordinator")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error submitting event details", err, "A database error occurred.", "/coordinator")
		return
	}

	http.Redirect(w, r, "/coordinator", http.StatusSeeOther)
}
