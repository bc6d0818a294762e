// internal/app/features/message/routes.go
package message

import "github.com/go-chi/chi/v5"

// Routes is mounted at /api/message.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Send)
	r.Get("/conversation", h.Conversation)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Delete)
	return r
}
