// internal/testutil/http.go
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/osprey/internal/app/system/tokens"
	"github.com/dalemusser/osprey/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestPrincipal is the identity a handler test signs in as.
type TestPrincipal struct {
	ID    string
	UqID  string
	Email string
	Role  models.Role
}

// PrincipalFor returns a TestPrincipal with fresh identifiers.
func PrincipalFor(role models.Role, email string) TestPrincipal {
	return TestPrincipal{
		ID:    primitive.NewObjectID().Hex(),
		UqID:  uuid.NewString(),
		Email: email,
		Role:  role,
	}
}

// WithPrincipal places verified claims for p on the request, the way
// tokens.LoadClaims does for a valid bearer token.
func WithPrincipal(r *http.Request, p TestPrincipal) *http.Request {
	return tokens.WithClaims(r, &tokens.Claims{Subject: tokens.Subject{
		ID:    p.ID,
		UqID:  p.UqID,
		Email: p.Email,
		Role:  string(p.Role),
	}})
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest creates a request whose body is v encoded as JSON.
func NewJSONRequest(t *testing.T, method, target string, v any) *http.Request {
	t.Helper()
	var body io.Reader
	switch b := v.(type) {
	case nil:
	case string:
		body = strings.NewReader(b)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body %s)", r.Code, expected, r.Body.String())
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}

// DecodeJSON unmarshals the response body into v.
func (r *ResponseRecorder) DecodeJSON(t *testing.T, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", r.Body.String(), err)
	}
}

// ErrorBody is the failure envelope written by apierr.Write.
type ErrorBody struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ErrorKind string `json:"errorKind"`
}

// AssertErrorKind checks that the response is a failure envelope of kind.
func (r *ResponseRecorder) AssertErrorKind(t *testing.T, kind string) {
	t.Helper()
	var body ErrorBody
	r.DecodeJSON(t, &body)
	if body.Success || body.ErrorKind != kind {
		t.Errorf("error body = %+v, want errorKind %s", body, kind)
	}
}
