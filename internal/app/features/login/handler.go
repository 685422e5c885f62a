package login

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - LoginID / loginID / login_id: The email address users type to log in

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/eventhub/internal/app/features/errors"
	userstore "github.com/dalemusser/eventhub/internal/app/store/users"
	"github.com/dalemusser/eventhub/internal/app/system/auditlog"
	"github.com/dalemusser/eventhub/internal/app/system/auth"
	"github.com/dalemusser/eventhub/internal/app/system/navigation"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"github.com/dalemusser/eventhub/internal/app/system/viewdata"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	DB            *mongo.Database
	Users         *userstore.Store
	Log           *zap.Logger
	SessionMgr    *auth.SessionManager
	ErrLog        *uierrors.ErrorLogger
	AuditLog      *auditlog.Logger
	GoogleEnabled bool
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, googleEnabled bool, logger *zap.Logger) *Handler {
	return &Handler{
		DB:            db,
		Users:         userstore.New(db),
		Log:           logger,
		SessionMgr:    sessionMgr,
		ErrLog:        errLog,
		AuditLog:      audit,
		GoogleEnabled: googleEnabled,
	}
}

type loginFormData struct {
	viewdata.BaseVM
	Error         string
	LoginID       string
	ReturnURL     string
	GoogleEnabled bool
}

// errorMessages maps ?error= codes set by the OAuth flow onto
// user-facing text.
var errorMessages = map[string]string{
	"no_account":       "No account exists for that Google address. Ask an administrator to add you.",
	"account_disabled": "Your account has been disabled.",
	"google_denied":    "Google sign-in was cancelled.",
	"invalid_state":    "Sign-in session expired. Please try again.",
	"internal":         "Sign-in failed. Please try again.",
}

// ServeForm handles GET /login.
func (h *Handler) ServeForm(w http.ResponseWriter, r *http.Request) {
	if _, signedIn := auth.CurrentUser(r); signedIn {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	data := loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Sign in", "/"),
		ReturnURL:     query.Get(r, "return"),
		GoogleEnabled: h.GoogleEnabled,
	}
	if code := query.Get(r, "error"); code != "" {
		if msg, ok := errorMessages[code]; ok {
			data.Error = msg
		} else {
			data.Error = "Sign-in failed. Please try again."
		}
	}

	templates.Render(w, r, "login", data)
}

// ServeSubmit handles POST /login.
func (h *Handler) ServeSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "malformed login form", err, "Invalid form submission.", "/login")
		return
	}

	loginID := strings.TrimSpace(r.FormValue("login_id"))
	password := r.FormValue("password")
	returnURL := r.FormValue("return")

	rerender := func(msg string) {
		data := loginFormData{
			BaseVM:        viewdata.NewBaseVM(r, "Sign in", "/"),
			Error:         msg,
			LoginID:       loginID,
			ReturnURL:     returnURL,
			GoogleEnabled: h.GoogleEnabled,
		}
		templates.Render(w, r, "login", data)
	}

	if loginID == "" || password == "" {
		rerender("Email and password are required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByLoginID(ctx, loginID)
	if err == userstore.ErrNotFound {
		rerender("Incorrect email or password.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading user for login", err, "Sign-in failed. Please try again.", "/login")
		return
	}
	if user.Status != "active" {
		rerender("Your account has been disabled.")
		return
	}
	if user.PasswordHash == "" {
		rerender("This account signs in with Google.")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		h.Log.Info("failed password sign-in", zap.String("login_id", user.LoginID))
		rerender("Incorrect email or password.")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, user.ID.Hex()); err != nil {
		h.ErrLog.LogServerError(w, r, "failed to create session", err, "Sign-in failed. Please try again.", "/login")
		return
	}

	h.AuditLog.Log(r.Context(), models.AuditEvent{
		Action:  models.AuditSignIn,
		ActorID: user.ID.Hex(),
		Actor:   user.LoginID,
	})

	http.Redirect(w, r, navigation.SafeBackURL(r, RoleHome(user.Role)), http.StatusSeeOther)
}

// RoleHome returns the landing page for a role after sign-in.
func RoleHome(role string) string {
	switch role {
	case "admin", "superadmin":
		return "/dashboard"
	case "coordinator":
		return navigation.CoordinatorBackURL
	default:
		return "/"
	}
}
