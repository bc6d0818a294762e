// internal/app/features/function/routes.go
package function

import "github.com/go-chi/chi/v5"

// Routes is mounted at /api/function.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/search-usernames", h.SearchUsernames)
	r.Get("/user-profile/{username}", h.UserProfile)
	return r
}
