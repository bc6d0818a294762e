package accounts_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/osprey/internal/app/features/accounts"
	"github.com/dalemusser/osprey/internal/domain/models"
	"github.com/dalemusser/osprey/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const strongPass = "Str0ng!Pass"

func newTestRouter(t *testing.T, role models.Role, requireSelf bool) (chi.Router, *testutil.Engine) {
	t.Helper()
	e := testutil.NewEngine(t, testutil.EngineOptions{Reserve: true})
	h := accounts.NewHandler(role, e.Registrar, e.Accounts, nil, requireSelf, zap.NewNop())
	return accounts.Routes(h), e
}

func serve(router http.Handler, req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

type registerResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Account struct {
		UqID        string `json:"uqid"`
		Username    string `json:"username"`
		Role        string `json:"role"`
		SportsmanID int64  `json:"sportsman_id"`
		Password    string `json:"password"`
	} `json:"account"`
}

func registerSportsman(t *testing.T, router http.Handler, username, email string) registerResponse {
	t.Helper()
	req := testutil.NewJSONRequest(t, "POST", "/", map[string]any{
		"username": username,
		"email":    email,
		"password": strongPass,
		"sport":    "Football",
		"team":     "Reds",
	})
	rec := serve(router, req)
	rec.AssertStatus(t, http.StatusOK)
	var out registerResponse
	rec.DecodeJSON(t, &out)
	return out
}

func TestRegister_Success(t *testing.T) {
	router, _ := newTestRouter(t, models.RoleSportsman, false)

	out := registerSportsman(t, router, "striker", "striker@example.com")
	if !out.Success || out.Account.Username != "striker" || out.Account.Role != "Sportsman" {
		t.Errorf("unexpected response %+v", out)
	}
	if out.Account.UqID == "" || out.Account.SportsmanID != 1 {
		t.Errorf("identifiers not assigned: %+v", out.Account)
	}
	if out.Account.Password != "" {
		t.Error("password hash must not be serialised")
	}
}

func TestRegister_Failures(t *testing.T) {
	router, _ := newTestRouter(t, models.RoleSportsman, false)
	registerSportsman(t, router, "striker", "striker@example.com")

	tests := []struct {
		name   string
		body   any
		status int
		kind   string
	}{
		{"empty body", "", http.StatusBadRequest, "BadInput"},
		{"malformed", "{", http.StatusBadRequest, "BadInput"},
		{"missing sport", map[string]any{"username": "a", "email": "a@example.com", "password": strongPass}, http.StatusBadRequest, "BadInput"},
		{"weak password", map[string]any{"username": "a", "email": "a@example.com", "password": "weak", "sport": "Golf"}, http.StatusBadRequest, "WeakPassword"},
		{"bad email", map[string]any{"username": "a", "email": "nope", "password": strongPass, "sport": "Golf"}, http.StatusBadRequest, "BadEmail"},
		{"taken username", map[string]any{"username": "striker", "email": "b@example.com", "password": strongPass, "sport": "Golf"}, http.StatusConflict, "Conflict"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(router, testutil.NewJSONRequest(t, "POST", "/", tc.body))
			rec.AssertStatus(t, tc.status)
			rec.AssertErrorKind(t, tc.kind)
		})
	}
}

func TestReads(t *testing.T) {
	router, _ := newTestRouter(t, models.RoleSportsman, false)
	out := registerSportsman(t, router, "striker", "striker@example.com")
	uqid := out.Account.UqID

	for _, path := range []string{"/" + uqid, "/by-username/striker", "/by-email/striker@example.com"} {
		rec := serve(router, testutil.NewRequest("GET", path))
		rec.AssertStatus(t, http.StatusOK)
		rec.AssertContains(t, uqid)
	}

	rec := serve(router, testutil.NewRequest("GET", "/by-username/nobody"))
	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertErrorKind(t, "NotFound")

	rec = serve(router, testutil.NewRequest("GET", "/"))
	rec.AssertStatus(t, http.StatusOK)
	var list []map[string]any
	rec.DecodeJSON(t, &list)
	if len(list) != 1 {
		t.Errorf("list length = %d, want 1", len(list))
	}
}

func TestUpdateAndDelete(t *testing.T) {
	router, e := newTestRouter(t, models.RoleSportsman, false)
	out := registerSportsman(t, router, "striker", "striker@example.com")
	uqid := out.Account.UqID

	req := testutil.NewJSONRequest(t, "PUT", "/"+uqid, map[string]any{
		"username": "keeper",
		"email":    "striker@example.com",
		"sport":    "Football",
	})
	rec := serve(router, req)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"username":"keeper"`)

	if e.Reservations.Owner("username", "keeper") != uqid {
		t.Error("expected new username reserved")
	}

	rec = serve(router, testutil.NewRequest("DELETE", "/"+uqid))
	rec.AssertStatus(t, http.StatusNoContent)

	rec = serve(router, testutil.NewRequest("DELETE", "/"+uqid))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestRequireSelf(t *testing.T) {
	router, _ := newTestRouter(t, models.RoleSportsman, true)
	out := registerSportsman(t, router, "striker", "striker@example.com")
	uqid := out.Account.UqID

	rec := serve(router, testutil.NewRequest("DELETE", "/"+uqid))
	rec.AssertStatus(t, http.StatusUnauthorized)

	other := testutil.PrincipalFor(models.RoleSportsman, "other@example.com")
	rec = serve(router, testutil.WithPrincipal(testutil.NewRequest("DELETE", "/"+uqid), other))
	rec.AssertStatus(t, http.StatusUnauthorized)

	self := testutil.PrincipalFor(models.RoleSportsman, "striker@example.com")
	self.UqID = uqid
	rec = serve(router, testutil.WithPrincipal(testutil.NewRequest("DELETE", "/"+uqid), self))
	rec.AssertStatus(t, http.StatusNoContent)
}

func pictureRequest(t *testing.T, uqid, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	_, _ = fw.Write(data)
	_ = mw.Close()

	req := httptest.NewRequest("POST", "/"+uqid+"/upload-profile-picture", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestPictures(t *testing.T) {
	router, e := newTestRouter(t, models.RoleSportsman, false)
	out := registerSportsman(t, router, "striker", "striker@example.com")
	uqid := out.Account.UqID

	rec := serve(router, pictureRequest(t, uqid, "anim.gif", []byte("GIF89a")))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = serve(router, pictureRequest(t, uqid, "me.png", []byte("\x89PNG")))
	rec.AssertStatus(t, http.StatusOK)
	if !e.Blobs.Has(uqid + ".png") {
		t.Fatal("expected picture stored")
	}

	rec = serve(router, testutil.NewRequest("GET", "/"+uqid+"/profile-picture"))
	rec.AssertStatus(t, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	if rec.Body.String() != "\x89PNG" {
		t.Errorf("body = %q", rec.Body.String())
	}

	rec = serve(router, testutil.NewRequest("DELETE", "/"+uqid+"/profile-picture"))
	rec.AssertStatus(t, http.StatusOK)

	rec = serve(router, testutil.NewRequest("GET", "/"+uqid+"/profile-picture"))
	rec.AssertStatus(t, http.StatusNotFound)
}
