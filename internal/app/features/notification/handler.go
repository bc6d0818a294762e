// internal/app/features/notification/handler.go
package notification

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	notificationstore "github.com/dalemusser/osprey/internal/app/store/notifications"
	"github.com/dalemusser/osprey/internal/app/system/apierr"
	"github.com/dalemusser/osprey/internal/app/system/htmlsanitize"
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
	Store *notificationstore.Store
	Log   *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{Store: notificationstore.New(db), Log: logger}
}

var errNotFound = apierr.New(apierr.NotFound, "notification not found")

func pathID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return id, apierr.New(apierr.BadInput, "invalid notification id")
	}
	return id, nil
}

// List handles GET /?userId=.. ; without userId every notification is
// returned.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list notifications")
	defer cancel()

	out, err := h.Store.List(ctx, strings.TrimSpace(r.URL.Query().Get("userId")))
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

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get notification")
	defer cancel()

	n, err := h.Store.Get(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		apierr.Write(w, errNotFound, h.Log)
		return
	}
	if err != nil {
		apierr.Write(w, apierr.Storage(err), h.Log)
		return
	}
	respond.OK(w, n)
}

// Create handles POST /.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var n models.Notification
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, limits.MaxSmallBody)).Decode(&n); err != nil {
		apierr.Write(w, apierr.New(apierr.BadInput, "invalid notification data"), h.Log)
		return
	}
	n.UserID = strings.TrimSpace(n.UserID)
	n.Message = strings.TrimSpace(htmlsanitize.PlainText(n.Message))
	if n.UserID == "" || n.Message == "" {
		apierr.Write(w, apierr.New(apierr.BadInput, "userId and message are required"), h.Log)
		return
	}
	n.ID = primitive.NewObjectID()
	n.IsRead = false
	n.CreatedAt = time.Now().UTC()

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create notification")
	defer cancel()

	if err := h.Store.Insert(ctx, &n); err != nil {
		apierr.Write(w, apierr.Storage(err), h.Log)
		return
	}
	respond.Created(w, n)
}

// MarkRead handles PUT /{id}.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "mark notification read")
	defer cancel()

	ok, err := h.Store.MarkRead(ctx, id)
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

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete notification")
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
