// internal/app/features/partnership/handler.go
package partnership

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	counterstore "github.com/dalemusser/osprey/internal/app/store/counters"
	partnershipstore "github.com/dalemusser/osprey/internal/app/store/partnerships"
	"github.com/dalemusser/osprey/internal/app/system/apierr"
	"github.com/dalemusser/osprey/internal/app/system/blobstore"
	"github.com/dalemusser/osprey/internal/app/system/htmlsanitize"
	"github.com/dalemusser/osprey/internal/app/system/limits"
	"github.com/dalemusser/osprey/internal/app/system/respond"
	"github.com/dalemusser/osprey/internal/app/system/timeouts"
	"github.com/dalemusser/osprey/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Store    *partnershipstore.Store
	Counters counterstore.Sequencer
	Blobs    blobstore.Store
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, counters counterstore.Sequencer, blobs blobstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Store:    partnershipstore.New(db),
		Counters: counters,
		Blobs:    blobs,
		Log:      logger,
	}
}

var errNotFound = apierr.New(apierr.NotFound, "partnership not found")

func pathID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return id, apierr.New(apierr.BadInput, "invalid partnership id")
	}
	return id, nil
}

// offerKey names the blob for an uploaded offer file. Only a short
// alphanumeric extension survives from the client's filename.
func offerKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 8 || strings.ContainsFunc(strings.TrimPrefix(ext, "."), notAlnum) {
		ext = ""
	}
	return "offer-" + uuid.NewString() + ext
}

func notAlnum(r rune) bool {
	return (r < 'a' || r > 'z') && (r < '0' || r > '9')
}

type form struct {
	brand       string
	description string
	file        multipart.File
	filename    string
}

func (f *form) Close() {
	if f.file != nil {
		_ = f.file.Close()
	}
}

func readForm(w http.ResponseWriter, r *http.Request) (*form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxOfferSize+limits.MultipartOverhead)
	if err := r.ParseMultipartForm(limits.MaxOfferSize); err != nil {
		return nil, apierr.New(apierr.BadInput, "expected a multipart form under 10MB")
	}
	f := &form{
		brand:       strings.TrimSpace(htmlsanitize.PlainText(r.FormValue("brandName"))),
		description: strings.TrimSpace(htmlsanitize.PlainText(r.FormValue("description"))),
	}
	if f.brand == "" {
		return nil, apierr.New(apierr.BadInput, "brandName is required")
	}
	file, header, err := r.FormFile("offerFile")
	switch {
	case err == nil:
		f.file = file
		f.filename = header.Filename
	case !errors.Is(err, http.ErrMissingFile):
		return nil, apierr.New(apierr.BadInput, "unreadable offer file")
	}
	return f, nil
}

func (h *Handler) putOffer(ctx context.Context, f *form) (string, error) {
	key := offerKey(f.filename)
	if err := h.Blobs.Put(ctx, key, f.file); err != nil {
		return "", apierr.Storage(err)
	}
	return key, nil
}

func (h *Handler) dropOffer(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if _, err := h.Blobs.Delete(ctx, key); err != nil {
		h.Log.Warn("delete offer file failed", zap.String("key", key), zap.Error(err))
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Reads                                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// List handles GET /.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list partnerships")
	defer cancel()

	out, err := h.Store.List(ctx)
	if err != nil {
		apierr.Write(w, apierr.Storage(err), h.Log)
		return
	}
	respond.OK(w, out)
}

func (h *Handler) load(ctx context.Context, r *http.Request) (*models.Partnership, error) {
	id, err := pathID(r)
	if err != nil {
		return nil, err
	}
	p, err := h.Store.Get(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errNotFound
	}
	if err != nil {
		return nil, apierr.Storage(err)
	}
	return p, nil
}

// Get handles GET /{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get partnership")
	defer cancel()

	p, err := h.load(ctx, r)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	respond.OK(w, p)
}

// Offer handles GET /{id}/offer and streams the stored offer file.
func (h *Handler) Offer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "get partnership offer")
	defer cancel()

	p, err := h.load(ctx, r)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	if p.OfferDetails == "" {
		apierr.Write(w, apierr.New(apierr.NotFound, "partnership has no offer file"), h.Log)
		return
	}
	rc, err := h.Blobs.Get(ctx, p.OfferDetails)
	if errors.Is(err, blobstore.ErrNotFound) {
		apierr.Write(w, apierr.New(apierr.NotFound, "offer file not found"), h.Log)
		return
	}
	if err != nil {
		apierr.Write(w, apierr.Storage(err), h.Log)
		return
	}
	defer rc.Close()

	ctype := mime.TypeByExtension(filepath.Ext(p.OfferDetails))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ctype)
	if _, err := io.Copy(w, rc); err != nil {
		h.Log.Warn("write offer file failed", zap.String("key", p.OfferDetails), zap.Error(err))
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Writes                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// Create handles POST / with a multipart form: brandName, description and
// the required offerFile.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	f, err := readForm(w, r)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	defer f.Close()
	if f.file == nil {
		apierr.Write(w, apierr.New(apierr.BadInput, "offer file is required"), h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "create partnership")
	defer cancel()

	seq, err := h.Counters.NextValue(ctx, counterstore.PartnershipID)
	if err != nil {
		apierr.Write(w, apierr.Storage(err), h.Log)
		return
	}
	key, err := h.putOffer(ctx, f)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	now := time.Now().UTC()
	p := models.Partnership{
		PartnershipID: seq,
		BrandName:     f.brand,
		Description:   f.description,
		OfferDetails:  key,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := h.Store.Insert(ctx, &p); err != nil {
		h.dropOffer(ctx, key)
		apierr.Write(w, apierr.Storage(err), h.Log)
		return
	}
	respond.Created(w, p)
}

// Update handles PUT /{id}. A new offerFile replaces the stored one;
// without it the existing offer is kept.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	f, err := readForm(w, r)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	defer f.Close()

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "update partnership")
	defer cancel()

	existing, err := h.load(ctx, r)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	upd := partnershipstore.Update{BrandName: f.brand, Description: f.description}
	if f.file != nil {
		if upd.OfferDetails, err = h.putOffer(ctx, f); err != nil {
			apierr.Write(w, err, h.Log)
			return
		}
	}

	ok, err := h.Store.Update(ctx, existing.ID, upd)
	if err != nil {
		h.dropOffer(ctx, upd.OfferDetails)
		apierr.Write(w, apierr.Storage(err), h.Log)
		return
	}
	if !ok {
		h.dropOffer(ctx, upd.OfferDetails)
		apierr.Write(w, errNotFound, h.Log)
		return
	}
	if upd.OfferDetails != "" {
		h.dropOffer(ctx, existing.OfferDetails)
	}
	respond.NoContent(w)
}

// Delete handles DELETE /{id} and removes the offer file with the record.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete partnership")
	defer cancel()

	p, err := h.load(ctx, r)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	ok, err := h.Store.Delete(ctx, p.ID)
	if err != nil {
		apierr.Write(w, apierr.Storage(err), h.Log)
		return
	}
	if !ok {
		apierr.Write(w, errNotFound, h.Log)
		return
	}
	h.dropOffer(ctx, p.OfferDetails)
	respond.NoContent(w)
}
