// internal/app/features/login/handler.go
package login

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/osprey/internal/app/identity"
	"github.com/dalemusser/osprey/internal/app/system/apierr"
	"github.com/dalemusser/osprey/internal/app/system/auditlog"
	"github.com/dalemusser/osprey/internal/app/system/limits"
	"github.com/dalemusser/osprey/internal/app/system/normalize"
	"github.com/dalemusser/osprey/internal/app/system/ratelimit"
	"github.com/dalemusser/osprey/internal/app/system/respond"
	"github.com/dalemusser/osprey/internal/app/system/timeouts"
	"github.com/dalemusser/osprey/internal/app/system/tokens"
	"go.uber.org/zap"
)

type Handler struct {
	Authenticator *identity.Authenticator
	Tokens        *tokens.Issuer
	Limiter       *ratelimit.LoginLimiter
	AuditLog      *auditlog.Logger
	Log           *zap.Logger
}

func NewHandler(authn *identity.Authenticator, issuer *tokens.Issuer, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Authenticator: authn,
		Tokens:        issuer,
		Limiter:       limiter,
		AuditLog:      audit,
		Log:           logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginUser struct {
	ID    string `json:"id"`
	UqID  string `json:"uqid"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type loginResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	ExpiresAt string    `json:"expiresAt"`
	User      loginUser `json:"user"`
}

// HandleLogin handles POST /api/login/login.
//
// On success: 200 and
//
//	{ "success":true, "message":"Login successful.", "token":"…", "user":{"id","uqid","email","role"} }
//
// Bad credentials answer 401 without saying which part was wrong.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, limits.MaxSmallBody)).Decode(&req); err != nil {
		apierr.Write(w, apierr.New(apierr.BadInput, "email and password are required"), h.Log)
		return
	}
	email := normalize.Email(req.Email)
	if email == "" || strings.TrimSpace(req.Password) == "" {
		apierr.Write(w, apierr.New(apierr.BadInput, "email and password are required"), h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "login")
	defer cancel()

	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(r, email); !ok {
			h.AuditLog.LoginRateLimited(ctx, r, email)
			apierr.Write(w, apierr.New(apierr.RateLimited, reason), h.Log)
			return
		}
	}

	p, err := h.Authenticator.Authenticate(ctx, email, req.Password)
	if err != nil {
		reason := "invalid credentials"
		if apierr.KindOf(err) == apierr.StorageFailure {
			reason = "lookup failed"
		}
		h.AuditLog.LoginFailed(ctx, r, email, reason)
		apierr.Write(w, err, h.Log)
		return
	}

	token, exp, err := h.Tokens.Issue(tokens.Subject{
		ID:    p.ID,
		UqID:  p.UqID,
		Email: p.Email,
		Role:  p.Role.String(),
	})
	if err != nil {
		apierr.Write(w, apierr.Wrap(apierr.StorageFailure, "could not issue token", err), h.Log)
		return
	}

	if h.Limiter != nil {
		h.Limiter.ResetEmail(email)
	}
	h.AuditLog.LoginSuccess(ctx, r, p.UqID, p.Role.String(), p.Email)

	respond.OK(w, loginResponse{
		Success:   true,
		Message:   "Login successful.",
		Token:     token,
		ExpiresAt: exp.UTC().Format(time.RFC3339),
		User: loginUser{
			ID:    p.ID,
			UqID:  p.UqID,
			Email: p.Email,
			Role:  p.Role.String(),
		},
	})
}
