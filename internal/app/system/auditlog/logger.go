// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/osprey/internal/app/store/audit"
	"github.com/dalemusser/osprey/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Destinations accepted by Config fields.
const (
	All = "all" // MongoDB and zap
	DB  = "db"  // MongoDB only
	Log = "log" // zap only
	Off = "off"
)

// Config selects where each category of audit event goes.
type Config struct {
	Auth  string
	Admin string
}

// Recorder persists audit events. *audit.Store implements it.
type Recorder interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger writes audit events to the configured destinations.
type Logger struct {
	store  Recorder
	zapLog *zap.Logger
	config Config
}

func New(store Recorder, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UqID != "" {
		fields = append(fields, zap.String("uqid", event.UqID))
	}
	if event.Role != "" {
		fields = append(fields, zap.String("role", event.Role))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records event according to its category's setting. A nil Logger is a
// no-op so handlers can run without auditing in tests.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := All
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	}
	if setting == Off {
		return
	}

	if setting == All || setting == Log {
		l.logToZap(event)
	}
	if (setting == All || setting == DB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func requestEvent(r *http.Request, category, eventType string, success bool) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   success,
	}
}

// --- Authentication events ---

func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, uqid, role, email string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginSuccess, true)
	e.UqID, e.Role = uqid, role
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// LoginFailed records a rejected sign-in. The attempted email is kept; the
// reason is never shown to the client.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, email, reason string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailed, false)
	e.FailureReason = reason
	e.Details = map[string]string{"attempted_email": email}
	l.Log(ctx, e)
}

func (l *Logger) LoginRateLimited(ctx context.Context, r *http.Request, email string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedRateLimit, false)
	e.FailureReason = "rate limited"
	e.Details = map[string]string{"attempted_email": email}
	l.Log(ctx, e)
}

func (l *Logger) PasswordChanged(ctx context.Context, r *http.Request, uqid, role string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventPasswordChanged, true)
	e.UqID, e.Role = uqid, role
	l.Log(ctx, e)
}

// --- Account events ---

func (l *Logger) AccountRegistered(ctx context.Context, r *http.Request, uqid, role, username string) {
	e := requestEvent(r, audit.CategoryAdmin, audit.EventAccountRegistered, true)
	e.UqID, e.Role = uqid, role
	e.Details = map[string]string{"username": username}
	l.Log(ctx, e)
}

func (l *Logger) AccountUpdated(ctx context.Context, r *http.Request, uqid, role string) {
	e := requestEvent(r, audit.CategoryAdmin, audit.EventAccountUpdated, true)
	e.UqID, e.Role = uqid, role
	l.Log(ctx, e)
}

func (l *Logger) AccountDeleted(ctx context.Context, r *http.Request, uqid, role string) {
	e := requestEvent(r, audit.CategoryAdmin, audit.EventAccountDeleted, true)
	e.UqID, e.Role = uqid, role
	l.Log(ctx, e)
}

func (l *Logger) PictureUpdated(ctx context.Context, r *http.Request, uqid, role, key string) {
	e := requestEvent(r, audit.CategoryAdmin, audit.EventPictureUpdated, true)
	e.UqID, e.Role = uqid, role
	e.Details = map[string]string{"key": key}
	l.Log(ctx, e)
}

func (l *Logger) PictureDeleted(ctx context.Context, r *http.Request, uqid, role string) {
	e := requestEvent(r, audit.CategoryAdmin, audit.EventPictureDeleted, true)
	e.UqID, e.Role = uqid, role
	l.Log(ctx, e)
}
