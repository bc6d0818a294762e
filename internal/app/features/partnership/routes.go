// internal/app/features/partnership/routes.go
package partnership

import "github.com/go-chi/chi/v5"

// Routes is mounted at /api/partnership.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Get("/{id}/offer", h.Offer)
	return r
}
