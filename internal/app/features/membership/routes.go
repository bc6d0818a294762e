// internal/app/features/membership/routes.go
package membership

import "github.com/go-chi/chi/v5"

// Routes is mounted at /api/membership.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}
