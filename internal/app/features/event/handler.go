// internal/app/features/event/handler.go
package event

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	counterstore "github.com/dalemusser/osprey/internal/app/store/counters"
	eventstore "github.com/dalemusser/osprey/internal/app/store/events"
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
	Store    *eventstore.Store
	Counters counterstore.Sequencer
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, counters counterstore.Sequencer, logger *zap.Logger) *Handler {
	return &Handler{
		Store:    eventstore.New(db),
		Counters: counters,
		Log:      logger,
	}
}

var errNotFound = apierr.New(apierr.NotFound, "event not found")

// List handles GET /.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list events")
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
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get event")
	defer cancel()

	e, err := h.Store.Get(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, mongo.ErrNoDocuments) {
		apierr.Write(w, errNotFound, h.Log)
		return
	}
	if err != nil {
		apierr.Write(w, apierr.Storage(err), h.Log)
		return
	}
	respond.OK(w, e)
}

// ListByOwner handles GET /user/{uqid}/{role}.
func (h *Handler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	uqid := strings.TrimSpace(chi.URLParam(r, "uqid"))
	role := strings.TrimSpace(chi.URLParam(r, "role"))
	if uqid == "" || role == "" {
		apierr.Write(w, apierr.New(apierr.BadInput, "user id and role are required"), h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list events by owner")
	defer cancel()

	out, err := h.Store.ListByOwner(ctx, uqid, role)
	if err != nil {
		apierr.Write(w, apierr.Storage(err), h.Log)
		return
	}
	respond.OK(w, out)
}

// Create handles POST /. The owner comes from the "uid" and "role" headers,
// or from the bearer token when both are absent.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var e models.Event
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, limits.MaxDocumentBody)).Decode(&e); err != nil {
		apierr.Write(w, apierr.New(apierr.BadInput, "event data is required"), h.Log)
		return
	}

	uqid, role := strings.TrimSpace(r.Header.Get("uid")), strings.TrimSpace(r.Header.Get("role"))
	if uqid == "" && role == "" {
		if c, ok := tokens.CurrentClaims(r); ok {
			uqid, role = c.UqID, c.Role
		}
	}
	if uqid == "" || role == "" {
		apierr.Write(w, apierr.New(apierr.BadInput, "user id (uid) and role are required in the request headers"), h.Log)
		return
	}
	e.OwnerUqID, e.OwnerRole = uqid, role

	if err := prepare(&e); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create event")
	defer cancel()

	n, err := h.Counters.NextValue(ctx, counterstore.EventID)
	if err != nil {
		apierr.Write(w, apierr.Storage(err), h.Log)
		return
	}
	now := time.Now().UTC()
	e.ID = primitive.NewObjectID()
	e.UniqueID = uuid.NewString()
	e.EventID = n
	if e.Date.IsZero() {
		e.Date = now
	}
	for i := range e.Contents {
		e.Contents[i].CreatedAt = now
	}

	if err := h.Store.Insert(ctx, &e); err != nil {
		apierr.Write(w, apierr.Storage(err), h.Log)
		return
	}
	h.Log.Info("event created", zap.String("unique_id", e.UniqueID), zap.Int64("event_id", e.EventID))
	respond.Created(w, e)
}

// Update handles PUT /{id}. The body's unique_id must equal the path id.
// Owner and numeric id are kept from the stored event.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var e models.Event
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, limits.MaxDocumentBody)).Decode(&e); err != nil {
		apierr.Write(w, apierr.New(apierr.BadInput, "event data is required"), h.Log)
		return
	}
	if e.UniqueID != id {
		apierr.Write(w, apierr.New(apierr.BadInput, "id in the URL does not match the id in the event object"), h.Log)
		return
	}
	if err := prepare(&e); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update event")
	defer cancel()

	cur, err := h.Store.Get(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		apierr.Write(w, errNotFound, h.Log)
		return
	}
	if err != nil {
		apierr.Write(w, apierr.Storage(err), h.Log)
		return
	}
	e.EventID = cur.EventID
	e.OwnerUqID, e.OwnerRole = cur.OwnerUqID, cur.OwnerRole

	ok, err := h.Store.Replace(ctx, id, &e)
	if err != nil {
		apierr.Write(w, apierr.Storage(err), h.Log)
		return
	}
	if !ok {
		apierr.Write(w, errNotFound, h.Log)
		return
	}
	respond.NoContent(w)
}

// Delete handles DELETE /{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete event")
	defer cancel()

	ok, err := h.Store.Delete(ctx, chi.URLParam(r, "id"))
	if err != nil {
		apierr.Write(w, apierr.Storage(err), h.Log)
		return
	}
	if !ok {
		apierr.Write(w, errNotFound, h.Log)
		return
	}
	respond.NoContent(w)
}

// AddContent handles POST /{id}/contents.
func (h *Handler) AddContent(w http.ResponseWriter, r *http.Request) {
	var it models.EventContentItem
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, limits.MaxDocumentBody)).Decode(&it); err != nil {
		apierr.Write(w, apierr.New(apierr.BadInput, "content item is required"), h.Log)
		return
	}
	if err := prepareItem(&it); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	it.CreatedAt = time.Now().UTC()

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "add event content")
	defer cancel()

	ok, err := h.Store.PushContent(ctx, chi.URLParam(r, "id"), it)
	if err != nil {
		apierr.Write(w, apierr.Storage(err), h.Log)
		return
	}
	if !ok {
		apierr.Write(w, errNotFound, h.Log)
		return
	}
	respond.Created(w, it)
}

// RemoveContent handles DELETE /{id}/contents?url=.. and removes every item
// with that URL.
func (h *Handler) RemoveContent(w http.ResponseWriter, r *http.Request) {
	u := strings.TrimSpace(r.URL.Query().Get("url"))
	if u == "" {
		apierr.Write(w, apierr.New(apierr.BadInput, "url is required"), h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "remove event content")
	defer cancel()

	ok, err := h.Store.PullContentByURL(ctx, chi.URLParam(r, "id"), u)
	if err != nil {
		apierr.Write(w, apierr.Storage(err), h.Log)
		return
	}
	if !ok {
		apierr.Write(w, errNotFound, h.Log)
		return
	}
	respond.NoContent(w)
}
