package auditlog_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/osprey/internal/app/features/auditlog"
	"github.com/dalemusser/osprey/internal/app/store/audit"
	"github.com/dalemusser/osprey/internal/domain/models"
	"github.com/dalemusser/osprey/internal/testutil"
	"go.uber.org/zap"
)

func TestServeMine(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := testutil.PrincipalFor(models.RoleSportsman, "runner@example.com")
	store := audit.New(db)
	_ = store.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, UqID: p.UqID, Success: true})
	_ = store.Log(ctx, audit.Event{Category: audit.CategoryAdmin, EventType: audit.EventAccountUpdated, UqID: p.UqID, Success: true})
	_ = store.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, UqID: "someone-else", Success: true})

	router := auditlog.Routes(auditlog.NewHandler(db, zap.NewNop()))

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithPrincipal(testutil.NewRequest("GET", "/me"), p))
	rec.AssertStatus(t, http.StatusOK)
	var mine []audit.Event
	rec.DecodeJSON(t, &mine)
	if len(mine) != 2 {
		t.Fatalf("got %d events, want 2", len(mine))
	}
	for _, e := range mine {
		if e.UqID != p.UqID {
			t.Errorf("event for %q leaked into trail", e.UqID)
		}
	}

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithPrincipal(testutil.NewRequest("GET", "/me?category=auth"), p))
	var auth []audit.Event
	rec.DecodeJSON(t, &auth)
	if len(auth) != 1 || auth[0].EventType != audit.EventLoginSuccess {
		t.Errorf("category filter = %+v", auth)
	}
}

func TestServeMine_Errors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := auditlog.Routes(auditlog.NewHandler(db, zap.NewNop()))
	p := testutil.PrincipalFor(models.RoleUser, "u@example.com")

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/me"))
	rec.AssertStatus(t, http.StatusUnauthorized)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithPrincipal(testutil.NewRequest("GET", "/me?since=yesterday"), p))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithPrincipal(testutil.NewRequest("GET", "/me?limit=0"), p))
	rec.AssertStatus(t, http.StatusBadRequest)
}
