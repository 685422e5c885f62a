package login

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter serving the login form, mounted at /login.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeForm)
	r.Post("/", h.ServeSubmit)
	return r
}
