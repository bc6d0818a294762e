// internal/app/features/auditlog/handler.go
package auditlog

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/osprey/internal/app/store/audit"
	"github.com/dalemusser/osprey/internal/app/system/apierr"
	"github.com/dalemusser/osprey/internal/app/system/respond"
	"github.com/dalemusser/osprey/internal/app/system/timeouts"
	"github.com/dalemusser/osprey/internal/app/system/tokens"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

type Handler struct {
	Store *audit.Store
	Log   *zap.Logger
}

// NewHandler constructs an audit trail handler bound to the given Mongo
// database and logger.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Store: audit.New(db),
		Log:   logger,
	}
}

// ServeMine handles GET /me: the signed-in account's own audit trail,
// newest first. Optional filters: category, event_type, since
// (YYYY-MM-DD) and limit.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	c, ok := tokens.CurrentClaims(r)
	if !ok {
		apierr.Write(w, apierr.New(apierr.Unauthorized, "authentication required"), h.Log)
		return
	}

	q := r.URL.Query()
	filter := audit.QueryFilter{
		UqID:      c.UqID,
		Category:  strings.TrimSpace(q.Get("category")),
		EventType: strings.TrimSpace(q.Get("event_type")),
		Limit:     defaultLimit,
	}
	if s := strings.TrimSpace(q.Get("since")); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			apierr.Write(w, apierr.New(apierr.BadInput, "since must be YYYY-MM-DD"), h.Log)
			return
		}
		filter.Since = &t
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 1 {
			apierr.Write(w, apierr.New(apierr.BadInput, "limit must be a positive integer"), h.Log)
			return
		}
		filter.Limit = min(n, maxLimit)
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "audit trail")
	defer cancel()

	events, err := h.Store.Query(ctx, filter)
	if err != nil {
		apierr.Write(w, apierr.Storage(err), h.Log)
		return
	}
	respond.OK(w, events)
}
