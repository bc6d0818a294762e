package partitionstore_test

import (
	"errors"
	"testing"
	"time"

	partitionstore "github.com/dalemusser/osprey/internal/app/store/partitions"
	"github.com/dalemusser/osprey/internal/app/system/indexes"
	"github.com/dalemusser/osprey/internal/domain/models"
	"github.com/dalemusser/osprey/internal/testutil"
)

func newSportsman(username, email string) *models.Sportsman {
	s := &models.Sportsman{Sport: "Football", Team: "Reds"}
	s.Stamp(models.RoleSportsman, time.Now())
	s.Username = username
	s.Email = email
	s.PasswordHash = "x"
	return s
}

func TestStore_InsertAndFind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := partitionstore.New[models.Sportsman](db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if store.Role() != models.RoleSportsman {
		t.Fatalf("Role = %q", store.Role())
	}

	rec := newSportsman("striker", "striker@example.com")
	rec.SportsmanID = 7
	if err := store.Insert(ctx, rec); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := store.FindByUsername(ctx, "striker")
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if got == nil || got.UqID != rec.UqID || got.SportsmanID != 7 || got.Sport != "Football" {
		t.Fatalf("unexpected record: %+v", got)
	}

	got, err = store.FindByEmail(ctx, "striker@example.com")
	if err != nil || got == nil {
		t.Fatalf("FindByEmail = (%v, %v)", got, err)
	}
	got, err = store.FindByUniqueID(ctx, rec.UqID)
	if err != nil || got == nil {
		t.Fatalf("FindByUniqueID = (%v, %v)", got, err)
	}

	got, err = store.FindByUsername(ctx, "nobody")
	if err != nil || got != nil {
		t.Fatalf("missing username: expected (nil, nil), got (%v, %v)", got, err)
	}
}

func TestStore_Search(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := partitionstore.New[models.Sportsman](db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, name := range []string{"alex", "alexa", "bob", "a.x"} {
		if err := store.Insert(ctx, newSportsman(name, name+"@example.com")); err != nil {
			t.Fatalf("Insert %s: %v", name, err)
		}
	}

	hits, err := store.Search(ctx, "ale", false)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("prefix search: expected 2 hits, got %d", len(hits))
	}

	hits, _ = store.Search(ctx, "alex", true)
	if len(hits) != 1 || hits[0].Username != "alex" {
		t.Errorf("exact search: unexpected hits %+v", hits)
	}

	// "." is quoted, so it only matches a literal dot.
	hits, _ = store.Search(ctx, "a.", false)
	if len(hits) != 1 || hits[0].Username != "a.x" {
		t.Errorf("quoted search: unexpected hits %+v", hits)
	}

	hits, _ = store.Search(ctx, "ALEX", false)
	if len(hits) != 0 {
		t.Errorf("search should be case-sensitive, got %d hits", len(hits))
	}
}

func TestStore_DuplicateUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	store := partitionstore.New[models.Sportsman](db)

	if err := store.Insert(ctx, newSportsman("dup", "one@example.com")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	err := store.Insert(ctx, newSportsman("dup", "two@example.com"))
	if !errors.Is(err, partitionstore.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestStore_UpdateFieldsAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := partitionstore.New[models.Sportsman](db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rec := newSportsman("keeper", "keeper@example.com")
	if err := store.Insert(ctx, rec); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	matched, err := store.UpdateFields(ctx, rec.UqID, models.FieldSet{
		"Team":          "Blues",
		models.FieldUqID: "should-be-ignored",
	})
	if err != nil || !matched {
		t.Fatalf("UpdateFields = (%v, %v)", matched, err)
	}
	got, _ := store.FindByUniqueID(ctx, rec.UqID)
	if got == nil || got.Team != "Blues" {
		t.Fatalf("update not applied: %+v", got)
	}

	matched, err = store.UpdateFields(ctx, "missing", models.FieldSet{"Team": "x"})
	if err != nil || matched {
		t.Fatalf("UpdateFields missing = (%v, %v), want (false, nil)", matched, err)
	}

	deleted, err := store.Delete(ctx, rec.UqID)
	if err != nil || !deleted {
		t.Fatalf("Delete = (%v, %v)", deleted, err)
	}
	deleted, _ = store.Delete(ctx, rec.UqID)
	if deleted {
		t.Fatal("second Delete reported a deletion")
	}
}

func TestStore_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := partitionstore.New[models.User](db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i, name := range []string{"first", "second"} {
		u := &models.User{Country: "KE"}
		u.Stamp(models.RoleUser, time.Now().Add(time.Duration(i)*time.Second))
		u.Username, u.Email = name, name+"@example.com"
		if err := store.Insert(ctx, u); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 || all[0].Username != "first" {
		t.Fatalf("unexpected list: %+v", all)
	}
}

func TestStore_NormalizeEmails(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	store := partitionstore.New[models.Sportsman](db)

	legacy := newSportsman("legacy", "  Legacy@Example.COM")
	taken := newSportsman("taken", "taken@example.com")
	clash := newSportsman("clash", "Taken@Example.com")
	clean := newSportsman("clean", "clean@example.com")
	for _, rec := range []*models.Sportsman{legacy, taken, clash, clean} {
		if err := store.Insert(ctx, rec); err != nil {
			t.Fatalf("Insert %s: %v", rec.Username, err)
		}
	}

	fixed, conflicts, err := store.NormalizeEmails(ctx)
	if err != nil {
		t.Fatalf("NormalizeEmails: %v", err)
	}
	if fixed != 1 {
		t.Errorf("fixed = %d, want 1", fixed)
	}
	if len(conflicts) != 1 || conflicts[0] != clash.UqID {
		t.Errorf("conflicts = %v, want [%s]", conflicts, clash.UqID)
	}

	got, err := store.FindByEmail(ctx, "legacy@example.com")
	if err != nil || got == nil || got.UqID != legacy.UqID {
		t.Fatalf("FindByEmail after normalize = (%v, %v)", got, err)
	}
	got, _ = store.FindByUniqueID(ctx, clash.UqID)
	if got == nil || got.Email != "Taken@Example.com" {
		t.Errorf("clashing record changed: %+v", got)
	}

	// A second run only reports the record it still cannot move.
	fixed, conflicts, err = store.NormalizeEmails(ctx)
	if err != nil || fixed != 0 || len(conflicts) != 1 {
		t.Errorf("second run = (%d, %v, %v)", fixed, conflicts, err)
	}
}
