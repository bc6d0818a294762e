package partnership_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/osprey/internal/app/features/partnership"
	"github.com/dalemusser/osprey/internal/domain/models"
	"github.com/dalemusser/osprey/internal/testutil"
	"go.uber.org/zap"
)

func setup(t *testing.T) (http.Handler, *testutil.MemBlobs) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	blobs := testutil.NewMemBlobs()
	h := partnership.NewHandler(db, testutil.NewMemCounters(), blobs, zap.NewNop())
	return partnership.Routes(h), blobs
}

func formRequest(t *testing.T, method, target string, fields map[string]string, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("offerFile", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func create(t *testing.T, router http.Handler, brand string) models.Partnership {
	t.Helper()
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, formRequest(t, "POST", "/", map[string]string{
		"brandName":   brand,
		"description": "<b>20%</b> off",
	}, "offer.pdf", "offer v1"))
	rec.AssertStatus(t, http.StatusCreated)
	var p models.Partnership
	rec.DecodeJSON(t, &p)
	return p
}

func TestCreateAssignsSequenceAndStoresOffer(t *testing.T) {
	router, blobs := setup(t)

	first := create(t, router, "Acme")
	second := create(t, router, "Globex")

	if first.PartnershipID != 1 || second.PartnershipID != 2 {
		t.Errorf("partnership ids = %d, %d; want 1, 2", first.PartnershipID, second.PartnershipID)
	}
	if first.Description != "20% off" {
		t.Errorf("description = %q, want sanitized text", first.Description)
	}
	if !strings.HasSuffix(first.OfferDetails, ".pdf") || !blobs.Has(first.OfferDetails) {
		t.Errorf("offer %q not stored", first.OfferDetails)
	}

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/"+first.ID.Hex()+"/offer"))
	rec.AssertStatus(t, http.StatusOK)
	if rec.Body.String() != "offer v1" {
		t.Errorf("offer body = %q", rec.Body.String())
	}
}

func TestCreateRequiresOfferFile(t *testing.T) {
	router, _ := setup(t)

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, formRequest(t, "POST", "/", map[string]string{"brandName": "Acme"}, "", ""))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertErrorKind(t, "BadInput")
}

func TestUpdateReplacesOffer(t *testing.T) {
	router, blobs := setup(t)
	p := create(t, router, "Acme")
	path := "/" + p.ID.Hex()

	// Without a file the stored offer is kept.
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, formRequest(t, "PUT", path, map[string]string{
		"brandName":   "Acme Corp",
		"description": "30% off",
	}, "", ""))
	rec.AssertStatus(t, http.StatusNoContent)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", path))
	var got models.Partnership
	rec.DecodeJSON(t, &got)
	if got.BrandName != "Acme Corp" || got.OfferDetails != p.OfferDetails {
		t.Errorf("after update without file: %+v", got)
	}

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, formRequest(t, "PUT", path, map[string]string{"brandName": "Acme Corp"}, "offer.png", "v2"))
	rec.AssertStatus(t, http.StatusNoContent)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", path))
	got = models.Partnership{}
	rec.DecodeJSON(t, &got)
	if got.OfferDetails == p.OfferDetails || !blobs.Has(got.OfferDetails) {
		t.Errorf("offer not replaced: %q", got.OfferDetails)
	}
	if blobs.Has(p.OfferDetails) {
		t.Error("old offer file should be deleted")
	}
}

func TestMissingPartnership(t *testing.T) {
	router, _ := setup(t)
	path := "/5f1d7f3e9d3b2a0012345678"

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", path))
	rec.AssertStatus(t, http.StatusNotFound)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, formRequest(t, "PUT", path, map[string]string{"brandName": "X"}, "", ""))
	rec.AssertStatus(t, http.StatusNotFound)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/not-an-id"))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestDeleteRemovesOffer(t *testing.T) {
	router, blobs := setup(t)
	p := create(t, router, "Acme")

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("DELETE", "/"+p.ID.Hex()))
	rec.AssertStatus(t, http.StatusNoContent)
	if blobs.Has(p.OfferDetails) {
		t.Error("offer file should be deleted with the partnership")
	}

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("DELETE", "/"+p.ID.Hex()))
	rec.AssertStatus(t, http.StatusNotFound)
}
