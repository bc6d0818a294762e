// internal/app/features/message/handler.go
package message

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	messagestore "github.com/dalemusser/osprey/internal/app/store/messages"
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
	Store *messagestore.Store
	Log   *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{Store: messagestore.New(db), Log: logger}
}

var errNotFound = apierr.New(apierr.NotFound, "message not found")

func pathID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return id, apierr.New(apierr.BadInput, "invalid message id")
	}
	return id, nil
}

// List handles GET /.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list messages")
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

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get message")
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

// Conversation handles GET /conversation?senderId=..&receiverId=.. and
// returns both directions, oldest first.
func (h *Handler) Conversation(w http.ResponseWriter, r *http.Request) {
	a := strings.TrimSpace(r.URL.Query().Get("senderId"))
	b := strings.TrimSpace(r.URL.Query().Get("receiverId"))
	if a == "" || b == "" {
		apierr.Write(w, apierr.New(apierr.BadInput, "senderId and receiverId are required"), h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "load conversation")
	defer cancel()

	out, err := h.Store.Conversation(ctx, a, b)
	if err != nil {
		apierr.Write(w, apierr.Storage(err), h.Log)
		return
	}
	respond.OK(w, out)
}

// Send handles POST /.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var m models.Message
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, limits.MaxSmallBody)).Decode(&m); err != nil {
		apierr.Write(w, apierr.New(apierr.BadInput, "invalid message data"), h.Log)
		return
	}
	m.SenderID = strings.TrimSpace(m.SenderID)
	m.ReceiverID = strings.TrimSpace(m.ReceiverID)
	m.Content = strings.TrimSpace(htmlsanitize.PlainText(m.Content))
	switch {
	case m.SenderID == "" || m.ReceiverID == "":
		apierr.Write(w, apierr.New(apierr.BadInput, "senderId and receiverId are required"), h.Log)
		return
	case m.Content == "":
		apierr.Write(w, apierr.New(apierr.BadInput, "message content is required"), h.Log)
		return
	case len(m.Content) > limits.MaxMessageLength:
		apierr.Write(w, apierr.Newf(apierr.BadInput, "message content must be at most %d characters", limits.MaxMessageLength), h.Log)
		return
	}
	m.ID = primitive.NewObjectID()
	m.Timestamp = time.Now().UTC()

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "send message")
	defer cancel()

	if err := h.Store.Insert(ctx, &m); err != nil {
		apierr.Write(w, apierr.Storage(err), h.Log)
		return
	}
	respond.Created(w, m)
}

// Delete handles DELETE /{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete message")
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
