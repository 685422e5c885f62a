package logout

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for sign-out, mounted at /logout.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Serve)
	r.Get("/", h.Serve)
	return r
}
