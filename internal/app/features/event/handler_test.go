package event_test

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/dalemusser/osprey/internal/app/features/event"
	counterstore "github.com/dalemusser/osprey/internal/app/store/counters"
	"github.com/dalemusser/osprey/internal/domain/models"
	"github.com/dalemusser/osprey/internal/testutil"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (http.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	h := event.NewHandler(db, counterstore.New(db), zap.NewNop())
	return event.Routes(h), testutil.NewFixtures(t, db)
}

func createEvent(t *testing.T, router http.Handler, body map[string]any) models.Event {
	t.Helper()
	req := testutil.NewJSONRequest(t, "POST", "/", body)
	req.Header.Set("uid", "uq-1")
	req.Header.Set("role", "Entertainer")
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusCreated)
	var e models.Event
	rec.DecodeJSON(t, &e)
	return e
}

func TestCreate(t *testing.T) {
	router, _ := newTestRouter(t)

	e := createEvent(t, router, map[string]any{
		"title":      "Gig",
		"start_date": "2026-06-01T20:00:00Z",
		"end_date":   "2026-06-01T23:00:00Z",
		"contents": []map[string]any{
			{"url": "https://cdn.example.com/teaser.mp4"},
			{"text": "Doors at 7"},
		},
	})
	if e.UniqueID == "" || e.EventID < 1 || e.OwnerUqID != "uq-1" || e.OwnerRole != "Entertainer" {
		t.Errorf("event = %+v", e)
	}
	if len(e.Contents) != 2 || e.Contents[0].Type != "video" || e.Contents[1].Type != "text" {
		t.Errorf("contents = %+v", e.Contents)
	}

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewJSONRequest(t, "POST", "/", map[string]any{"title": "No owner"}))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestUpdate(t *testing.T) {
	router, _ := newTestRouter(t)
	e := createEvent(t, router, map[string]any{"title": "Gig"})

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewJSONRequest(t, "PUT", "/"+e.UniqueID, map[string]any{
		"unique_id": "something-else",
		"title":     "Gig",
	}))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewJSONRequest(t, "PUT", "/"+e.UniqueID, map[string]any{
		"unique_id":  e.UniqueID,
		"title":      "Gig (moved)",
		"location":   "Hall B",
		"owner_uqid": "hijack",
	}))
	rec.AssertStatus(t, http.StatusNoContent)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/"+e.UniqueID))
	rec.AssertStatus(t, http.StatusOK)
	var got models.Event
	rec.DecodeJSON(t, &got)
	if got.Title != "Gig (moved)" || got.Location != "Hall B" || got.OwnerUqID != "uq-1" || got.EventID != e.EventID {
		t.Errorf("after update = %+v", got)
	}

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewJSONRequest(t, "PUT", "/missing", map[string]any{"unique_id": "missing", "title": "x"}))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestContentItems(t *testing.T) {
	router, fx := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e := fx.CreateEvent(ctx, "uq-2", "Sportsman", "Match", time.Now())

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewJSONRequest(t, "POST", "/"+e.UniqueID+"/contents", map[string]any{
		"url": "https://cdn.example.com/lineup.png",
	}))
	rec.AssertStatus(t, http.StatusCreated)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewJSONRequest(t, "POST", "/missing/contents", map[string]any{"text": "hi"}))
	rec.AssertStatus(t, http.StatusNotFound)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/"+e.UniqueID))
	var got models.Event
	rec.DecodeJSON(t, &got)
	if len(got.Contents) != 1 || got.Contents[0].Type != "image" {
		t.Fatalf("contents = %+v", got.Contents)
	}

	target := "/" + e.UniqueID + "/contents?url=" + url.QueryEscape("https://cdn.example.com/lineup.png")
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("DELETE", target))
	rec.AssertStatus(t, http.StatusNoContent)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/"+e.UniqueID))
	rec.DecodeJSON(t, &got)
	if len(got.Contents) != 0 {
		t.Errorf("contents after remove = %+v", got.Contents)
	}
}

func TestDeleteAndOwnerList(t *testing.T) {
	router, fx := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e := fx.CreateEvent(ctx, "uq-3", "businessowners", "Expo", time.Now())

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/user/uq-3/BusinessOwner"))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, e.UniqueID)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("DELETE", "/"+e.UniqueID))
	rec.AssertStatus(t, http.StatusNoContent)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("DELETE", "/"+e.UniqueID))
	rec.AssertStatus(t, http.StatusNotFound)
}
