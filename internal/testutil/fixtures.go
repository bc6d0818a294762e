// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/osprey/internal/app/identity"
	"github.com/dalemusser/osprey/internal/app/system/passwords"
	"github.com/dalemusser/osprey/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db  *mongo.Database
	dir *identity.Directory
	t   *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	dir, err := identity.OpenDirectory(db)
	if err != nil {
		t.Fatalf("OpenDirectory: %v", err)
	}
	return &Fixtures{db: db, dir: dir, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// Directory returns the partitions CreateAccount writes to.
func (f *Fixtures) Directory() *identity.Directory {
	return f.dir
}

// CreateAccount inserts acct into its partition with password as its
// SHA-256 hash. Identifiers are stamped when acct has none.
func (f *Fixtures) CreateAccount(ctx context.Context, acct models.Account, password string) models.Account {
	f.t.Helper()

	b := acct.Base()
	if b.UqID == "" {
		b.Stamp(acct.AccountRole(), time.Now())
	}
	hash, _ := passwords.SHA256Hasher{}.Hash(password)
	b.PasswordHash = hash

	p, err := f.dir.Partition(acct.AccountRole())
	if err != nil {
		f.t.Fatalf("partition: %v", err)
	}
	if err := p.Insert(ctx, acct); err != nil {
		f.t.Fatalf("CreateAccount(%s %q): %v", acct.AccountRole(), b.Username, err)
	}
	return acct
}

// CreateContent inserts a single-link post owned by (uqid, role).
func (f *Fixtures) CreateContent(ctx context.Context, uqid, role, title string) models.Content {
	f.t.Helper()

	c := models.Content{
		ID:            primitive.NewObjectID(),
		UniqueID:      uuid.NewString(),
		Title:         title,
		TypeOfContent: "image",
		URL:           "https://cdn.example.com/" + title + ".png",
		OwnerUqID:     uqid,
		OwnerRole:     role,
		CreatedAt:     time.Now().UTC(),
	}
	if _, err := f.db.Collection("Content").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("CreateContent: %v", err)
	}
	return c
}

// CreateEvent inserts an event owned by (uqid, role) starting at start.
func (f *Fixtures) CreateEvent(ctx context.Context, uqid, role, title string, start time.Time) models.Event {
	f.t.Helper()

	e := models.Event{
		ID:        primitive.NewObjectID(),
		UniqueID:  uuid.NewString(),
		OwnerUqID: uqid,
		OwnerRole: role,
		Title:     title,
		StartDate: start.UTC(),
		EndDate:   start.Add(2 * time.Hour).UTC(),
		Date:      start.UTC(),
		Contents:  []models.EventContentItem{},
	}
	if _, err := f.db.Collection("Events").InsertOne(ctx, e); err != nil {
		f.t.Fatalf("CreateEvent: %v", err)
	}
	return e
}
