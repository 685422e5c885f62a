package systemusers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	userstore "github.com/dalemusser/eventhub/internal/app/store/users"
	"github.com/dalemusser/eventhub/internal/app/system/inputval"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// BootstrapAPI creates the first admin account on a fresh deployment
// where nobody can sign in yet. It is guarded by a shared secret in the
// X-Admin-Secret header instead of a session; with no secret configured
// the endpoint is disabled.
type BootstrapAPI struct {
	Users  *userstore.Store
	Secret string
	Log    *zap.Logger
}

type bootstrapRequest struct {
	FullName string `json:"full_name"`
	LoginID  string `json:"login_id"`
	Password string `json:"password"`
}

func (b *BootstrapAPI) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		b.Log.Warn("json encode failed", zap.Error(err))
	}
}

func (b *BootstrapAPI) writeError(w http.ResponseWriter, status int, msg string) {
	b.writeJSON(w, status, map[string]string{"error": msg})
}

// ServeCreateAdmin handles POST /api/system/admins.
func (b *BootstrapAPI) ServeCreateAdmin(w http.ResponseWriter, r *http.Request) {
	if b.Secret == "" {
		b.writeError(w, http.StatusNotFound, "not found")
		return
	}
	got := r.Header.Get("X-Admin-Secret")
	if subtle.ConstantTimeCompare([]byte(got), []byte(b.Secret)) != 1 {
		b.Log.Warn("bootstrap admin request with bad secret",
			zap.String("remote", r.RemoteAddr))
		b.writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req bootstrapRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		b.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.LoginID = strings.TrimSpace(req.LoginID)

	if req.FullName == "" {
		b.writeError(w, http.StatusBadRequest, "full_name is required")
		return
	}
	if !inputval.IsValidEmail(req.LoginID) {
		b.writeError(w, http.StatusBadRequest, "login_id must be a valid email address")
		return
	}
	if len(req.Password) < 12 {
		b.writeError(w, http.StatusBadRequest, "password must be at least 12 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		b.Log.Error("bootstrap admin password hashing failed", zap.Error(err))
		b.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := b.Users.Create(ctx, models.User{
		FullName:     req.FullName,
		LoginID:      req.LoginID,
		PasswordHash: string(hash),
		Role:         "admin",
	})
	if errors.Is(err, userstore.ErrDuplicateLoginID) {
		b.writeError(w, http.StatusConflict, "an account with that email already exists")
		return
	}
	if err != nil {
		b.Log.Error("bootstrap admin creation failed", zap.Error(err))
		b.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	b.Log.Info("bootstrap admin created",
		zap.String("login_id", created.LoginID))
	b.writeJSON(w, http.StatusCreated, map[string]string{
		"id":       created.ID.Hex(),
		"login_id": created.LoginID,
		"role":     created.Role,
	})
}
