package systemusers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/eventhub/internal/app/features/errors"
	userstore "github.com/dalemusser/eventhub/internal/app/store/users"
	"github.com/dalemusser/eventhub/internal/app/system/auditlog"
	"github.com/dalemusser/eventhub/internal/app/system/auth"
	"github.com/dalemusser/eventhub/internal/app/system/formutil"
	"github.com/dalemusser/eventhub/internal/app/system/inputval"
	"github.com/dalemusser/eventhub/internal/app/system/normalize"
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
	"golang.org/x/crypto/bcrypt"
)

// Handler serves system user management: the staff accounts that sign
// in to the admin and coordinator dashboards.
type Handler struct {
	DB       *mongo.Database
	Users    *userstore.Store
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Users:    userstore.New(db),
		ErrLog:   errLog,
		AuditLog: audit,
		Log:      logger,
	}
}

func (h *Handler) userFromPath(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		uierrors.RenderBadRequest(w, r, "That user link is not valid.", "/system-users")
		return models.User{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if errors.Is(err, userstore.ErrNotFound) {
		uierrors.RenderNotFound(w, r, "That user no longer exists.", "/system-users")
		return models.User{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading user", err, "A database error occurred.", "/system-users")
		return models.User{}, false
	}
	return u, true
}

// lastAdmin reports whether u is the only remaining active admin-level
// account. Deleting or disabling it would lock everyone out.
func (h *Handler) lastAdmin(ctx context.Context, u models.User) (bool, error) {
	if u.Role != "admin" && u.Role != "superadmin" {
		return false, nil
	}
	n, err := h.Users.Count(ctx, bson.M{
		"role":   bson.M{"$in": []string{"admin", "superadmin"}},
		"status": "active",
		"_id":    bson.M{"$ne": u.ID},
	})
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// list

type listData struct {
	viewdata.BaseVM
	Users []models.User
}

// ServeList handles GET /system-users.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	users, err := h.Users.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "full_name_ci", Value: 1}}))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error listing users", err, "A database error occurred.", "/dashboard")
		return
	}

	data := listData{
		BaseVM: viewdata.NewBaseVM(r, "System Users", "/dashboard"),
		Users:  users,
	}
	templates.Render(w, r, "users_list", data)
}

// create

type userForm struct {
	FullName string `validate:"required,max=200" label:"Full name"`
	LoginID  string `validate:"required,email" label:"Login email"`
	Role     string `validate:"required" label:"Role"`
	Password string `validate:"omitempty,min=12,max=128" label:"Password"`
}

type newUserData struct {
	formutil.Base
	Form userForm
}

func validRole(role string) bool {
	switch role {
	case "superadmin", "admin", "coordinator":
		return true
	default:
		return false
	}
}

// ServeNewForm handles GET /system-users/new.
func (h *Handler) ServeNewForm(w http.ResponseWriter, r *http.Request) {
	var data newUserData
	formutil.SetBase(&data.Base, r, "New User", "/system-users")
	templates.Render(w, r, "user_new", data)
}

// ServeCreate handles POST /system-users. A password is optional:
// accounts without one can only sign in through Google.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		uierrors.RenderBadRequest(w, r, "The form could not be read.", "/system-users")
		return
	}

	form := userForm{
		FullName: strings.TrimSpace(r.FormValue("full_name")),
		LoginID:  strings.TrimSpace(r.FormValue("login_id")),
		Role:     normalize.Role(r.FormValue("role")),
		Password: r.FormValue("password"),
	}

	rerender := func(msg string) {
		data := newUserData{Form: form}
		data.Form.Password = ""
		formutil.SetBase(&data.Base, r, "New User", "/system-users")
		data.SetError(msg)
		templates.Render(w, r, "user_new", data)
	}

	if res := inputval.Validate(form); res.HasErrors() {
		rerender(res.All())
		return
	}
	if !validRole(form.Role) {
		rerender("Role must be superadmin, admin, or coordinator.")
		return
	}

	var hash string
	if form.Password != "" {
		b, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "password hashing failed", err, "The account could not be created.", "/system-users")
			return
		}
		hash = string(b)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Users.Create(ctx, models.User{
		FullName:     form.FullName,
		LoginID:      form.LoginID,
		PasswordHash: hash,
		Role:         form.Role,
	})
	if errors.Is(err, userstore.ErrDuplicateLoginID) {
		rerender("An account with that email already exists.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error creating user", err, "A database error occurred.", "/system-users")
		return
	}

	h.AuditLog.LogRequest(r, models.AuditEvent{
		Action: models.AuditUserCreated,
		Detail: created.LoginID,
	})
	http.Redirect(w, r, "/system-users", http.StatusSeeOther)
}

// edit

type editUserData struct {
	formutil.Base
	User models.User
	Form userForm
}

// ServeEditForm handles GET /system-users/{userID}/edit.
func (h *Handler) ServeEditForm(w http.ResponseWriter, r *http.Request) {
	u, ok := h.userFromPath(w, r)
	if !ok {
		return
	}

	data := editUserData{
		User: u,
		Form: userForm{FullName: u.FullName, LoginID: u.LoginID, Role: u.Role},
	}
	formutil.SetBase(&data.Base, r, "Edit User", "/system-users")
	templates.Render(w, r, "user_edit", data)
}

// ServeUpdate handles POST /system-users/{userID}. The login email is
// immutable; name, role, status, and password change here. Demoting or
// disabling the last active admin is refused.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	u, ok := h.userFromPath(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		uierrors.RenderBadRequest(w, r, "The form could not be read.", "/system-users")
		return
	}

	form := userForm{
		FullName: strings.TrimSpace(r.FormValue("full_name")),
		LoginID:  u.LoginID,
		Role:     normalize.Role(r.FormValue("role")),
		Password: r.FormValue("password"),
	}
	status := normalize.Status(r.FormValue("status"))

	rerender := func(msg string) {
		data := editUserData{User: u, Form: form}
		data.Form.Password = ""
		formutil.SetBase(&data.Base, r, "Edit User", "/system-users")
		data.SetError(msg)
		templates.Render(w, r, "user_edit", data)
	}

	if res := inputval.Validate(form); res.HasErrors() {
		rerender(res.All())
		return
	}
	if !validRole(form.Role) {
		rerender("Role must be superadmin, admin, or coordinator.")
		return
	}
	if status != "active" && status != "disabled" {
		rerender("Status must be active or disabled.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	demoted := form.Role != "admin" && form.Role != "superadmin"
	if demoted || status == "disabled" {
		last, err := h.lastAdmin(ctx, u)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "database error checking admin count", err, "A database error occurred.", "/system-users")
			return
		}
		if last {
			rerender("This is the last active admin account; it cannot be demoted or disabled.")
			return
		}
	}

	err := h.Users.Update(ctx, u.ID, models.User{
		FullName: form.FullName,
		Role:     form.Role,
		Status:   status,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error updating user", err, "A database error occurred.", "/system-users")
		return
	}

	if form.Password != "" {
		b, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "password hashing failed", err, "The password could not be changed.", "/system-users")
			return
		}
		if err := h.Users.SetPasswordHash(ctx, u.ID, string(b)); err != nil {
			h.ErrLog.LogServerError(w, r, "database error setting password", err, "A database error occurred.", "/system-users")
			return
		}
	}

	h.AuditLog.LogRequest(r, models.AuditEvent{
		Action: models.AuditUserUpdated,
		Detail: u.LoginID,
	})
	http.Redirect(w, r, "/system-users", http.StatusSeeOther)
}

// delete

// ServeDelete handles POST /system-users/{userID}/delete. The last
// active admin cannot be deleted, and neither can your own account.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	u, ok := h.userFromPath(w, r)
	if !ok {
		return
	}

	if cur, ok := auth.CurrentUser(r); ok && cur.ID == u.ID.Hex() {
		uierrors.RenderBadRequest(w, r, "You cannot delete your own account.", "/system-users")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	last, err := h.lastAdmin(ctx, u)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error checking admin count", err, "A database error occurred.", "/system-users")
		return
	}
	if last {
		uierrors.RenderBadRequest(w, r, "This is the last active admin account; it cannot be deleted.", "/system-users")
		return
	}

	if _, err := h.Users.Delete(ctx, u.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "database error deleting user", err, "A database error occurred.", "/system-users")
		return
	}

	h.AuditLog.LogRequest(r, models.AuditEvent{
		Action: models.AuditUserDeleted,
		Detail: u.LoginID,
	})
	http.Redirect(w, r, "/system-users", http.StatusSeeOther)
}
