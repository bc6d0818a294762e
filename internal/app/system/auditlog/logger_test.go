package auditlog_test

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dalemusser/osprey/internal/app/store/audit"
	"github.com/dalemusser/osprey/internal/app/system/auditlog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type memRecorder struct {
	mu     sync.Mutex
	events []audit.Event
}

func (m *memRecorder) Log(_ context.Context, e audit.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *memRecorder) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	req := httptest.NewRequest("POST", "/", nil)

	logger.Log(context.Background(), audit.Event{EventType: "test"})
	logger.LoginSuccess(context.Background(), req, "uq", "User", "a@b.co")
	logger.AccountDeleted(context.Background(), req, "uq", "User")
}

func TestLogger_Destinations(t *testing.T) {
	tests := []struct {
		setting string
		wantDB  int
		wantLog int
	}{
		{auditlog.All, 1, 1},
		{auditlog.DB, 1, 0},
		{auditlog.Log, 0, 1},
		{auditlog.Off, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.setting, func(t *testing.T) {
			core, logs := observer.New(zapcore.InfoLevel)
			rec := &memRecorder{}
			logger := auditlog.New(rec, zap.New(core), auditlog.Config{Auth: tt.setting, Admin: auditlog.Off})

			req := httptest.NewRequest("POST", "/api/login/login", nil)
			logger.LoginSuccess(context.Background(), req, "uq-1", "Sportsman", "a@b.co")

			if rec.len() != tt.wantDB {
				t.Errorf("db events = %d, want %d", rec.len(), tt.wantDB)
			}
			if logs.Len() != tt.wantLog {
				t.Errorf("log entries = %d, want %d", logs.Len(), tt.wantLog)
			}
		})
	}
}

func TestLogger_CategoryRouting(t *testing.T) {
	rec := &memRecorder{}
	logger := auditlog.New(rec, zap.NewNop(), auditlog.Config{Auth: auditlog.Off, Admin: auditlog.DB})
	req := httptest.NewRequest("POST", "/", nil)

	logger.LoginFailed(context.Background(), req, "x@y.z", "no match")
	logger.AccountRegistered(context.Background(), req, "uq-2", "User", "bob")

	if rec.len() != 1 {
		t.Fatalf("expected only the admin event stored, got %d", rec.len())
	}
	if rec.events[0].EventType != audit.EventAccountRegistered {
		t.Errorf("stored %q, want %q", rec.events[0].EventType, audit.EventAccountRegistered)
	}
}

func TestLogger_FailureLoggedAtWarn(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Auth: auditlog.Log})

	logger.LoginFailed(context.Background(), httptest.NewRequest("POST", "/", nil), "x@y.z", "no match")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Errorf("level = %v, want warn", entries[0].Level)
	}
}
