package membership_test

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/dalemusser/osprey/internal/app/features/membership"
	"github.com/dalemusser/osprey/internal/domain/models"
	"github.com/dalemusser/osprey/internal/testutil"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return membership.Routes(membership.NewHandler(db, testutil.NewMemCounters(), zap.NewNop()))
}

func TestMembershipLifecycle(t *testing.T) {
	router := newTestRouter(t)

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewJSONRequest(t, "POST", "/", map[string]any{
		"user_id":         "uq-1",
		"membership_type": "gold",
	}))
	rec.AssertStatus(t, http.StatusCreated)
	var m models.Membership
	rec.DecodeJSON(t, &m)
	if m.MembershipID != 1 || m.Status != models.MembershipActive {
		t.Fatalf("created = %+v", m)
	}
	path := "/" + strconv.FormatInt(m.MembershipID, 10)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewJSONRequest(t, "PUT", path, map[string]any{
		"user_id":         "uq-1",
		"membership_type": "platinum",
		"status":          "Expired",
	}))
	rec.AssertStatus(t, http.StatusNoContent)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", path))
	rec.AssertStatus(t, http.StatusOK)
	var got models.Membership
	rec.DecodeJSON(t, &got)
	if got.MembershipType != "platinum" || got.Status != models.MembershipExpired {
		t.Errorf("after update = %+v", got)
	}
	if got.UpdatedAt.Before(got.CreatedAt) {
		t.Errorf("updatedAt %v before createdAt %v", got.UpdatedAt, got.CreatedAt)
	}

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("DELETE", path))
	rec.AssertStatus(t, http.StatusNoContent)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", path))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestMembershipRejects(t *testing.T) {
	router := newTestRouter(t)

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewJSONRequest(t, "POST", "/", map[string]any{"user_id": "uq-1"}))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/abc"))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewJSONRequest(t, "PUT", "/42", map[string]any{
		"user_id": "uq-1", "membership_type": "gold",
	}))
	rec.AssertStatus(t, http.StatusNotFound)
}
