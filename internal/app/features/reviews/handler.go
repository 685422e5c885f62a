package reviews

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/eventhub/internal/app/features/errors"
	detailsstore "github.com/dalemusser/eventhub/internal/app/store/eventdetails"
	eventstore "github.com/dalemusser/eventhub/internal/app/store/events"
	"github.com/dalemusser/eventhub/internal/app/system/authz"
	"github.com/dalemusser/eventhub/internal/app/system/review"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
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

// Handler serves the admin review queue: pending submissions, the
// staged-versus-published comparison, and the approve/reject actions.
type Handler struct {
	DB       *mongo.Database
	Events   *eventstore.Store
	Details  *detailsstore.Store
	Workflow *review.Workflow
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, wf *review.Workflow, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Events:   eventstore.New(db),
		Details:  detailsstore.New(db),
		Workflow: wf,
		ErrLog:   errLog,
		Log:      logger,
	}
}

func (h *Handler) eventFromPath(w http.ResponseWriter, r *http.Request) (models.Event, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "eventID"))
	if err != nil {
		uierrors.RenderBadRequest(w, r, "That review link is not valid.", "/reviews")
		return models.Event{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ev, err := h.Events.GetByID(ctx, id)
	if errors.Is(err, eventstore.ErrNotFound) {
		uierrors.RenderNotFound(w, r, "That event no longer exists.", "/reviews")
		return models.Event{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading event", err, "A database error occurred.", "/reviews")
		return models.Event{}, false
	}
	return ev, true
}

// list

type listData struct {
	viewdata.BaseVM
	Pending []models.Event
	Decided []models.Event
}

// ServeList handles GET /reviews.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sort := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})

	pending, err := h.Events.Find(ctx, bson.M{"review_request_status": models.ReviewPending}, sort)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error listing pending reviews", err, "A database error occurred.", "/dashboard")
		return
	}
	decided, err := h.Events.Find(ctx, bson.M{
		"review_request_status": bson.M{"$in": []string{models.ReviewApproved, models.ReviewRejected}},
	}, sort)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error listing decided reviews", err, "A database error occurred.", "/dashboard")
		return
	}

	data := listData{
		BaseVM:  viewdata.NewBaseVM(r, "Reviews", "/dashboard"),
		Pending: pending,
		Decided: decided,
	}
	templates.Render(w, r, "reviews_list", data)
}

// detail

// fieldDiff pairs the staged and published values of one detail field
// for side-by-side display.
type fieldDiff struct {
	Label     string
	Staged    string
	Published string
	Changed   bool
}

type detailData struct {
	viewdata.BaseVM
	Event   models.Event
	Details models.EventDetails
	Status  string
	Diffs   []fieldDiff
}

func diff(label, staged, published string) fieldDiff {
	return fieldDiff{Label: label, Staged: staged, Published: published, Changed: staged != published}
}

func buildDiffs(ev models.Event, d models.EventDetails) []fieldDiff {
	joined := func(urls []string) string {
		out := ""
		for i, u := range urls {
			if i > 0 {
				out += "\n"
			}
			out += u
		}
		return out
	}
	return []fieldDiff{
		diff("Description", d.Description, ev.Description),
		diff("Image URLs", joined(d.ImageURLs), joined(ev.ImageURLs)),
		diff("Brochure URL", d.BrochureURL, ev.BrochureURL),
		diff("WhatsApp URL", d.WhatsAppURL, ev.WhatsAppURL),
		diff("Judging criteria", d.JudgingCriteria, ev.JudgingCriteria),
		diff("Disqualification criteria", d.DisqualificationCriteria, ev.DisqualificationCriteria),
		diff("Materials provided", d.MaterialsProvided, ev.MaterialsProvided),
	}
}

// ServeDetail handles GET /reviews/{eventID}.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.eventFromPath(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	details, err := h.Details.GetByEventID(ctx, ev.ID)
	if err != nil && !errors.Is(err, detailsstore.ErrNotFound) {
		h.ErrLog.LogServerError(w, r, "database error loading event details", err, "A database error occurred.", "/reviews")
		return
	}

	data := detailData{
		BaseVM:  viewdata.NewBaseVM(r, "Review: "+ev.Name, "/reviews"),
		Event:   ev,
		Details: details,
		Status:  string(review.ParseStatus(ev.ReviewRequestStatus)),
		Diffs:   buildDiffs(ev, details),
	}
	templates.Render(w, r, "review_detail", data)
}

// decisions

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, decision review.Decision) {
	ev, ok := h.eventFromPath(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ident := authz.IdentityFromRequest(ctx, h.DB, r)
	applied, err := h.Workflow.Decide(ctx, ident, ev.ID, decision)
	if errors.Is(err, review.ErrUnauthenticated) {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if errors.Is(err, review.ErrForbidden) {
		uierrors.RenderForbidden(w, r, "Only administrators decide reviews.", "/reviews")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error deciding review", err, "A database error occurred.", "/reviews")
		return
	}

	if !applied {
		h.Log.Info("review decision was a no-op",
			zap.String("event_id", ev.ID.Hex()),
			zap.String("decision", string(decision)))
	}
	http.Redirect(w, r, "/reviews", http.StatusSeeOther)
}

// ServeApprove handles POST /reviews/{eventID}/approve.
func (h *Handler) ServeApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, review.Approve)
}

// ServeReject handles POST /reviews/{eventID}/reject.
func (h *Handler) ServeReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, review.Reject)
}
