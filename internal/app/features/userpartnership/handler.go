// internal/app/features/userpartnership/handler.go
package userpartnership

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	counterstore "github.com/dalemusser/osprey/internal/app/store/counters"
	userpartnershipstore "github.com/dalemusser/osprey/internal/app/store/userpartnerships"
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
	Store    *userpartnershipstore.Store
	Counters counterstore.Sequencer
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, counters counterstore.Sequencer, logger *zap.Logger) *Handler {
	return &Handler{
		Store:    userpartnershipstore.New(db),
		Counters: counters,
		Log:      logger,
	}
}

var errNotFound = apierr.New(apierr.NotFound, "user partnership not found")

func pathID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return id, apierr.New(apierr.BadInput, "invalid user partnership id")
	}
	return id, nil
}

func decode(w http.ResponseWriter, r *http.Request) (models.UserPartnership, error) {
	var up models.UserPartnership
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, limits.MaxSmallBody)).Decode(&up); err != nil {
		return up, apierr.New(apierr.BadInput, "invalid user-partnership data")
	}
	up.UserID = strings.TrimSpace(up.UserID)
	up.PartnershipID = strings.TrimSpace(up.PartnershipID)
	if up.UserID == "" || up.PartnershipID == "" {
		return up, apierr.New(apierr.BadInput, "user_id and partnership_id are required")
	}
	return up, nil
}

// List handles GET /.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list user partnerships")
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

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get user partnership")
	defer cancel()

	up, err := h.Store.Get(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		apierr.Write(w, errNotFound, h.Log)
		return
	}
	if err != nil {
		apierr.Write(w, apierr.Storage(err), h.Log)
		return
	}
	respond.OK(w, up)
}

// Create handles POST /.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	up, err := decode(w, r)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create user partnership")
	defer cancel()

	seq, err := h.Counters.NextValue(ctx, counterstore.UserPartnershipID)
	if err != nil {
		apierr.Write(w, apierr.Storage(err), h.Log)
		return
	}
	up.ID = primitive.NewObjectID()
	up.UserPartnershipID = seq
	up.CreatedAt = time.Now().UTC()

	if err := h.Store.Insert(ctx, &up); err != nil {
		apierr.Write(w, apierr.Storage(err), h.Log)
		return
	}
	respond.Created(w, up)
}

// Update handles PUT /{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	up, err := decode(w, r)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update user partnership")
	defer cancel()

	ok, err := h.Store.Update(ctx, id, up.UserID, up.PartnershipID)
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

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete user partnership")
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
