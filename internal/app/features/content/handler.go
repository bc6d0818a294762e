// internal/app/features/content/handler.go
package content

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	contentstore "github.com/dalemusser/osprey/internal/app/store/contents"
	counterstore "github.com/dalemusser/osprey/internal/app/store/counters"
	"github.com/dalemusser/osprey/internal/app/system/apierr"
	"github.com/dalemusser/osprey/internal/app/system/limits"
	"github.com/dalemusser/osprey/internal/app/system/respond"
	"github.com/dalemusser/osprey/internal/app/system/timeouts"
	"github.com/dalemusser/osprey/internal/app/system/tokens"
	"github.com/dalemusser/osprey/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Store    *contentstore.Store
	Counters counterstore.Sequencer
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, counters counterstore.Sequencer, logger *zap.Logger) *Handler {
	return &Handler{
		Store:    contentstore.New(db),
		Counters: counters,
		Log:      logger,
	}
}

// List handles GET /.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list content")
	defer cancel()

	out, err := h.Store.List(ctx)
	if err != nil {
		apierr.Write(w, apierr.Storage(err), h.Log)
		return
	}
	respond.OK(w, out)
}

// Get handles GET /{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get content")
	defer cancel()

	c, err := h.Store.Get(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, mongo.ErrNoDocuments) {
		apierr.Write(w, apierr.New(apierr.NotFound, "content not found"), h.Log)
		return
	}
	if err != nil {
		apierr.Write(w, apierr.Storage(err), h.Log)
		return
	}
	respond.OK(w, c)
}

// ListByOwner handles GET /user/{uqid}/{role}.
func (h *Handler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	uqid := strings.TrimSpace(chi.URLParam(r, "uqid"))
	role := strings.TrimSpace(chi.URLParam(r, "role"))
	if uqid == "" || role == "" {
		apierr.Write(w, apierr.New(apierr.BadInput, "user id and role are required"), h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list content by owner")
	defer cancel()

	out, err := h.Store.ListByOwner(ctx, uqid, role)
	if err != nil {
		apierr.Write(w, apierr.Storage(err), h.Log)
		return
	}
	respond.OK(w, out)
}

// Create handles POST /?uqid=..&role=.. . Without query parameters the
// owner is taken from the bearer token.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var c models.Content
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, limits.MaxDocumentBody)).Decode(&c); err != nil {
		apierr.Write(w, apierr.New(apierr.BadInput, "invalid content data"), h.Log)
		return
	}

	uqid, role := ownerOf(r, "uqid", "role")
	if uqid == "" || role == "" {
		apierr.Write(w, apierr.New(apierr.BadInput, "user id and role are required"), h.Log)
		return
	}
	c.OwnerUqID, c.OwnerRole = uqid, role

	if err := validate(&c); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create content")
	defer cancel()

	n, err := h.Counters.NextValue(ctx, counterstore.ContentID)
	if err != nil {
		apierr.Write(w, apierr.Storage(err), h.Log)
		return
	}
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.UniqueID = uuid.NewString()
	c.ContentID = n
	c.CreatedAt = now
	for i := range c.Items {
		c.Items[i].CreatedAt = now
	}

	if err := h.Store.Insert(ctx, &c); err != nil {
		apierr.Write(w, apierr.Storage(err), h.Log)
		return
	}
	h.Log.Info("content created", zap.String("unique_id", c.UniqueID), zap.Int64("content_id", c.ContentID))
	respond.Created(w, c)
}

// Delete handles DELETE /{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete content")
	defer cancel()

	ok, err := h.Store.Delete(ctx, chi.URLParam(r, "id"))
	if err != nil {
		apierr.Write(w, apierr.Storage(err), h.Log)
		return
	}
	if !ok {
		apierr.Write(w, apierr.New(apierr.NotFound, "content not found"), h.Log)
		return
	}
	respond.NoContent(w)
}

// ownerOf reads the owner from the named query parameters, falling back to
// the bearer token's identity.
func ownerOf(r *http.Request, uqidKey, roleKey string) (string, string) {
	q := r.URL.Query()
	uqid, role := strings.TrimSpace(q.Get(uqidKey)), strings.TrimSpace(q.Get(roleKey))
	if uqid == "" && role == "" {
		if c, ok := tokens.CurrentClaims(r); ok {
			return c.UqID, c.Role
		}
	}
	return uqid, role
}
