// internal/app/features/content/routes.go
package content

import "github.com/go-chi/chi/v5"

// Routes is mounted at /api/content.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/user/{uqid}/{role}", h.ListByOwner)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Delete)
	return r
}
