// internal/app/features/health/handler.go
package health

import (
	"context"
	"net/http"
	"os"

	"github.com/dalemusser/osprey/internal/app/system/respond"
	"github.com/dalemusser/osprey/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client     *mongo.Client
	PictureDir string
	Log        *zap.Logger
}

// NewHandler constructs a health Handler. pictureDir may be empty when no
// local blob directory is in use.
func NewHandler(client *mongo.Client, pictureDir string, logger *zap.Logger) *Handler {
	return &Handler{
		Client:     client,
		PictureDir: pictureDir,
		Log:        logger,
	}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Storage  string `json:"storage,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "storage":"ok" }
//
// On DB or storage failure: 503 with status "error".
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
	}

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		respond.JSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	if h.PictureDir != "" {
		resp.Storage = "ok"
		if fi, err := os.Stat(h.PictureDir); err != nil || !fi.IsDir() {
			h.Log.Error("health-check: picture directory unavailable", zap.String("dir", h.PictureDir), zap.Error(err))
			resp.Status = "error"
			resp.Storage = "unavailable"
			resp.Message = "Picture storage unavailable"
			respond.JSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}

	respond.OK(w, resp)
}
