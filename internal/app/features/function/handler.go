// internal/app/features/function/handler.go
package function

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/osprey/internal/app/identity"
	"github.com/dalemusser/osprey/internal/app/system/apierr"
	"github.com/dalemusser/osprey/internal/app/system/normalize"
	"github.com/dalemusser/osprey/internal/app/system/respond"
	"github.com/dalemusser/osprey/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the cross-partition lookups.
type Handler struct {
	Resolver *identity.Resolver
	Log      *zap.Logger
}

func NewHandler(resolver *identity.Resolver, logger *zap.Logger) *Handler {
	return &Handler{Resolver: resolver, Log: logger}
}

// SearchUsernames handles GET /search-usernames?query=..&exactMatch=..
// An empty result is reported as 404.
func (h *Handler) SearchUsernames(w http.ResponseWriter, r *http.Request) {
	q := normalize.QueryParam(r.URL.Query().Get("query"))
	exact, _ := strconv.ParseBool(r.URL.Query().Get("exactMatch"))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "search usernames")
	defer cancel()

	hits, err := h.Resolver.SearchUsernames(ctx, q, exact)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	if len(hits) == 0 {
		apierr.Write(w, apierr.Newf(apierr.NotFound, "no results found for %q", q), h.Log)
		return
	}
	respond.OK(w, hits)
}

// UserProfile handles GET /user-profile/{username}.
func (h *Handler) UserProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "resolve profile")
	defer cancel()

	view, err := h.Resolver.ResolveProfile(ctx, chi.URLParam(r, "username"))
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	respond.OK(w, view)
}
