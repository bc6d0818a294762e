// internal/app/features/notification/routes.go
package notification

import "github.com/go-chi/chi/v5"

// Routes is mounted at /api/notification.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.MarkRead)
	r.Delete("/{id}", h.Delete)
	return r
}
