// internal/app/features/accounts/routes.go
package accounts

import "github.com/go-chi/chi/v5"

// Routes returns the subrouter for one partition, mounted at
// /api/users, /api/sportsman, /api/entertainer or /api/businessowners.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Register)
	r.Get("/by-username/{username}", h.GetByUsername)
	r.Get("/by-email/{email}", h.GetByEmail)
	r.Get("/{uqid}", h.Get)
	r.Put("/{uqid}", h.Update)
	r.Delete("/{uqid}", h.Delete)
	r.Post("/{uqid}/upload-profile-picture", h.UploadPicture)
	r.Get("/{uqid}/profile-picture", h.Picture)
	r.Delete("/{uqid}/profile-picture", h.DeletePicture)
	return r
}
