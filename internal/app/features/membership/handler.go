// internal/app/features/membership/handler.go
package membership

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	counterstore "github.com/dalemusser/osprey/internal/app/store/counters"
	membershipstore "github.com/dalemusser/osprey/internal/app/store/memberships"
	"github.com/dalemusser/osprey/internal/app/system/apierr"
	"github.com/dalemusser/osprey/internal/app/system/limits"
	"github.com/dalemusser/osprey/internal/app/system/respond"
	"github.com/dalemusser/osprey/internal/app/system/timeouts"
	"github.com/dalemusser/osprey/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Store    *membershipstore.Store
	Counters counterstore.Sequencer
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, counters counterstore.Sequencer, logger *zap.Logger) *Handler {
	return &Handler{
		Store:    membershipstore.New(db),
		Counters: counters,
		Log:      logger,
	}
}

var errNotFound = apierr.New(apierr.NotFound, "membership not found")

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, apierr.New(apierr.BadInput, "membership id must be a positive number")
	}
	return id, nil
}

func decode(w http.ResponseWriter, r *http.Request) (models.Membership, error) {
	var m models.Membership
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, limits.MaxSmallBody)).Decode(&m); err != nil {
		return m, apierr.New(apierr.BadInput, "membership data is required")
	}
	m.UserID = strings.TrimSpace(m.UserID)
	m.MembershipType = strings.TrimSpace(m.MembershipType)
	m.Status = strings.ToLower(strings.TrimSpace(m.Status))
	if m.UserID == "" || m.MembershipType == "" {
		return m, apierr.New(apierr.BadInput, "userId and membershipType are required")
	}
	if m.Status == "" {
		m.Status = models.MembershipActive
	}
	if !m.StartDate.IsZero() && !m.EndDate.IsZero() && m.EndDate.Before(m.StartDate) {
		return m, apierr.New(apierr.BadInput, "end date is before start date")
	}
	return m, nil
}

// List handles GET /.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list memberships")
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
	id, err := pathID(r)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get membership")
	defer cancel()

	m, err := h.Store.Get(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		apierr.Write(w, errNotFound, h.Log)
		return
	}
	if err != nil {
		apierr.Write(w, apierr.Storage(err), h.Log)
		return
	}
	respond.OK(w, m)
}

// Create handles POST /.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	m, err := decode(w, r)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create membership")
	defer cancel()

	n, err := h.Counters.NextValue(ctx, counterstore.MembershipID)
	if err != nil {
		apierr.Write(w, apierr.Storage(err), h.Log)
		return
	}
	now := time.Now().UTC()
	m.ID = primitive.NewObjectID()
	m.MembershipID = n
	m.CreatedAt, m.UpdatedAt = now, now

	if err := h.Store.Insert(ctx, &m); err != nil {
		if errors.Is(err, membershipstore.ErrDuplicateMembershipID) {
			apierr.Write(w, apierr.New(apierr.Conflict, err.Error()), h.Log)
			return
		}
		apierr.Write(w, apierr.Storage(err), h.Log)
		return
	}
	respond.Created(w, m)
}

// Update handles PUT /{id}. The stored document is replaced; its id and
// creation time are kept and updatedAt is bumped.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	m, err := decode(w, r)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update membership")
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
	m.CreatedAt = cur.CreatedAt
	m.UpdatedAt = time.Now().UTC()

	ok, err := h.Store.Replace(ctx, id, &m)
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
	id, err := pathID(r)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete membership")
	defer cancel()

	ok, err := h.Store.Delete(ctx, id)
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
