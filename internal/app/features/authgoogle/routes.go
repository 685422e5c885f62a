package authgoogle

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for the Google OAuth flow, mounted at
// /auth/google.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeLogin)
	r.Get("/callback", h.ServeCallback)
	return r
}
