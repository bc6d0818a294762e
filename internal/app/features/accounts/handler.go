// internal/app/features/accounts/handler.go
package accounts

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dalemusser/osprey/internal/app/identity"
	"github.com/dalemusser/osprey/internal/app/system/apierr"
	"github.com/dalemusser/osprey/internal/app/system/auditlog"
	"github.com/dalemusser/osprey/internal/app/system/limits"
	"github.com/dalemusser/osprey/internal/app/system/respond"
	"github.com/dalemusser/osprey/internal/app/system/timeouts"
	"github.com/dalemusser/osprey/internal/app/system/tokens"
	"github.com/dalemusser/osprey/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves one identity partition. The same handler type is mounted
// once per role.
type Handler struct {
	Role      models.Role
	Registrar *identity.Registrar
	Accounts  *identity.Accounts
	AuditLog  *auditlog.Logger
	Log       *zap.Logger

	// RequireSelf limits updates, deletes and picture changes to the
	// identity named by the bearer token.
	RequireSelf bool
}

func NewHandler(role models.Role, reg *identity.Registrar, accts *identity.Accounts, audit *auditlog.Logger, requireSelf bool, logger *zap.Logger) *Handler {
	return &Handler{
		Role:        role,
		Registrar:   reg,
		Accounts:    accts,
		AuditLog:    audit,
		Log:         logger.With(zap.String("role", role.String())),
		RequireSelf: requireSelf,
	}
}

type accountResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Account models.Account `json:"account,omitempty"`
}

type passwordField struct {
	Password string `json:"password"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| Reads                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// List handles GET /.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list accounts")
	defer cancel()

	out, err := h.Accounts.List(ctx, h.Role)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	respond.OK(w, out)
}

// Get handles GET /{uqid}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get account")
	defer cancel()

	acct, err := h.Accounts.Get(ctx, h.Role, chi.URLParam(r, "uqid"))
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	respond.OK(w, acct)
}

// GetByUsername handles GET /by-username/{username}.
func (h *Handler) GetByUsername(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get account by username")
	defer cancel()

	acct, err := h.Accounts.GetByUsername(ctx, h.Role, chi.URLParam(r, "username"))
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	respond.OK(w, acct)
}

// GetByEmail handles GET /by-email/{email}.
func (h *Handler) GetByEmail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get account by email")
	defer cancel()

	acct, err := h.Accounts.GetByEmail(ctx, h.Role, chi.URLParam(r, "email"))
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	respond.OK(w, acct)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Register / update / delete                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// Register handles POST /. The body is the role's record plus "password".
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	acct, password, err := h.decodeAccount(w, r)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "register account")
	defer cancel()

	created, err := h.Registrar.Register(ctx, acct, password)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	b := created.Base()
	h.AuditLog.AccountRegistered(ctx, r, b.UqID, h.Role.String(), b.Username)

	respond.OK(w, accountResponse{
		Success: true,
		Message: h.Role.String() + " created successfully.",
		Account: created,
	})
}

// Update handles PUT /{uqid}. A non-empty "password" replaces the current
// one.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	uqid := chi.URLParam(r, "uqid")
	if !h.allowed(w, r, uqid) {
		return
	}
	acct, password, err := h.decodeAccount(w, r)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "update account")
	defer cancel()

	updated, err := h.Accounts.Update(ctx, h.Role, uqid, acct, password)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	h.AuditLog.AccountUpdated(ctx, r, updated.Base().UqID, h.Role.String())
	if password != "" {
		h.AuditLog.PasswordChanged(ctx, r, updated.Base().UqID, h.Role.String())
	}

	respond.OK(w, accountResponse{
		Success: true,
		Message: h.Role.String() + " updated successfully.",
		Account: updated,
	})
}

// Delete handles DELETE /{uqid}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	uqid := chi.URLParam(r, "uqid")
	if !h.allowed(w, r, uqid) {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete account")
	defer cancel()

	if err := h.Accounts.Delete(ctx, h.Role, uqid); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	h.AuditLog.AccountDeleted(ctx, r, uqid, h.Role.String())
	respond.NoContent(w)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Profile pictures                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

// UploadPicture handles POST /{uqid}/upload-profile-picture with a
// multipart "file" field.
func (h *Handler) UploadPicture(w http.ResponseWriter, r *http.Request) {
	uqid := chi.URLParam(r, "uqid")
	if !h.allowed(w, r, uqid) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxPictureSize+limits.MultipartOverhead)
	if err := r.ParseMultipartForm(limits.MaxPictureSize); err != nil {
		apierr.Write(w, apierr.New(apierr.BadInput, "file size must be less than 5MB"), h.Log)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		apierr.Write(w, apierr.New(apierr.BadInput, "a picture file is required"), h.Log)
		return
	}
	defer file.Close()

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "upload profile picture")
	defer cancel()

	key, err := h.Accounts.UploadPicture(ctx, h.Role, uqid, header.Filename, file)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	h.AuditLog.PictureUpdated(ctx, r, uqid, h.Role.String(), key)

	respond.OK(w, map[string]any{
		"success": true,
		"message": "Profile picture uploaded successfully.",
		"path":    key,
	})
}

// Picture handles GET /{uqid}/profile-picture.
func (h *Handler) Picture(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "get profile picture")
	defer cancel()

	rc, key, err := h.Accounts.Picture(ctx, h.Role, chi.URLParam(r, "uqid"))
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	defer rc.Close()

	ctype := mime.TypeByExtension(strings.ToLower(filepath.Ext(key)))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ctype)
	if _, err := io.Copy(w, rc); err != nil {
		h.Log.Warn("write profile picture failed", zap.String("key", key), zap.Error(err))
	}
}

// DeletePicture handles DELETE /{uqid}/profile-picture.
func (h *Handler) DeletePicture(w http.ResponseWriter, r *http.Request) {
	uqid := chi.URLParam(r, "uqid")
	if !h.allowed(w, r, uqid) {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete profile picture")
	defer cancel()

	if err := h.Accounts.DeletePicture(ctx, h.Role, uqid); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	h.AuditLog.PictureDeleted(ctx, r, uqid, h.Role.String())

	respond.OK(w, map[string]any{
		"success":   true,
		"message":   "Profile picture deleted successfully.",
		"isDeleted": true,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// decodeAccount reads the role's record and the plaintext password from one
// JSON body.
func (h *Handler) decodeAccount(w http.ResponseWriter, r *http.Request) (models.Account, string, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limits.MaxDocumentBody))
	if err != nil {
		return nil, "", apierr.New(apierr.BadInput, "request body too large")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, "", apierr.Newf(apierr.BadInput, "%s data is required", h.Role)
	}

	acct := models.NewAccount(h.Role)
	if err := json.Unmarshal(body, acct); err != nil {
		return nil, "", apierr.Wrap(apierr.BadInput, "malformed JSON body", err)
	}
	var pw passwordField
	if err := json.Unmarshal(body, &pw); err != nil {
		return nil, "", apierr.Wrap(apierr.BadInput, "malformed JSON body", err)
	}
	return acct, pw.Password, nil
}

// allowed enforces RequireSelf. It writes the failure itself.
func (h *Handler) allowed(w http.ResponseWriter, r *http.Request, uqid string) bool {
	if !h.RequireSelf {
		return true
	}
	c, ok := tokens.CurrentClaims(r)
	switch {
	case !ok:
		apierr.Write(w, apierr.New(apierr.Unauthorized, "authentication required"), h.Log)
		return false
	case c.UqID != uqid || !models.SameRole(c.Role, h.Role.String()):
		apierr.Write(w, apierr.New(apierr.Unauthorized, "not permitted to change this account"), h.Log)
		return false
	}
	return true
}
