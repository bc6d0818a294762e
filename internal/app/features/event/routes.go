// internal/app/features/event/routes.go
package event

import "github.com/go-chi/chi/v5"

// Routes is mounted at /api/event.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/user/{uqid}/{role}", h.ListByOwner)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/contents", h.AddContent)
	r.Delete("/{id}/contents", h.RemoveContent)
	return r
}
