package identity_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/dalemusser/osprey/internal/app/system/apierr"
	"github.com/dalemusser/osprey/internal/domain/models"
	"github.com/dalemusser/osprey/internal/testutil"
)

func TestAccounts_Lookups(t *testing.T) {
	e := testutil.NewEngine(t, testutil.EngineOptions{})
	acct := register(t, e, newBusinessOwner("acme", "team@acme.com"))
	uqid := acct.Base().UqID

	ctx, cancel := testutil.TestContext()
	defer cancel()

	if got, err := e.Accounts.Get(ctx, models.RoleBusinessOwner, uqid); err != nil || got.Base().Username != "acme" {
		t.Fatalf("Get = (%v, %v)", got, err)
	}
	if got, err := e.Accounts.GetByUsername(ctx, models.RoleBusinessOwner, "acme"); err != nil || got.Base().UqID != uqid {
		t.Fatalf("GetByUsername = (%v, %v)", got, err)
	}
	if got, err := e.Accounts.GetByEmail(ctx, models.RoleBusinessOwner, "TEAM@acme.com"); err != nil || got.Base().UqID != uqid {
		t.Fatalf("GetByEmail = (%v, %v)", got, err)
	}

	_, err := e.Accounts.Get(ctx, models.RoleUser, uqid)
	wantKind(t, err, apierr.NotFound)

	list, err := e.Accounts.List(ctx, models.RoleBusinessOwner)
	if err != nil || len(list) != 1 {
		t.Fatalf("List = (%v, %v)", list, err)
	}
	empty, err := e.Accounts.List(ctx, models.RoleSportsman)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("empty List = (%v, %v), want empty slice", empty, err)
	}
}

func TestAccounts_UpdateFields(t *testing.T) {
	e := testutil.NewEngine(t, testutil.EngineOptions{Reserve: true})
	acct := register(t, e, newSportsman("striker", "striker@example.com"))
	uqid := acct.Base().UqID

	ctx, cancel := testutil.TestContext()
	defer cancel()

	upd := newSportsman("striker", "striker@example.com")
	upd.Sport = "Rugby"
	upd.Team = ""
	got, err := e.Accounts.Update(ctx, models.RoleSportsman, uqid, upd, "")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	s := got.(*models.Sportsman)
	if s.Sport != "Rugby" || s.Team != "" {
		t.Errorf("unexpected record %+v", s)
	}
	if s.SportsmanID != acct.Sequence() || s.UqID != uqid || s.PasswordHash != acct.Base().PasswordHash {
		t.Error("update must not touch identifiers or password")
	}
}

func TestAccounts_UpdateRename(t *testing.T) {
	e := testutil.NewEngine(t, testutil.EngineOptions{Reserve: true})
	acct := register(t, e, newUser("old", "old@example.com"))
	register(t, e, newSportsman("taken", "taken@example.com"))
	uqid := acct.Base().UqID

	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := e.Accounts.Update(ctx, models.RoleUser, uqid, newUser("taken", "old@example.com"), "")
	wantKind(t, err, apierr.Conflict)
	_, err = e.Accounts.Update(ctx, models.RoleUser, uqid, newUser("old", "taken@example.com"), "")
	wantKind(t, err, apierr.Conflict)

	if _, err := e.Accounts.Update(ctx, models.RoleUser, uqid, newUser("new", "new@example.com"), ""); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if e.Reservations.Owner("username", "new") != uqid || e.Reservations.Owner("email", "new@example.com") != uqid {
		t.Error("expected new values reserved")
	}
	if e.Reservations.Owner("username", "old") != "" || e.Reservations.Owner("email", "old@example.com") != "" {
		t.Error("expected old values released")
	}

	// The old username is free again in any partition.
	register(t, e, newEntertainer("old", "ent@example.com"))
}

func TestAccounts_UpdatePassword(t *testing.T) {
	e := testutil.NewEngine(t, testutil.EngineOptions{})
	acct := register(t, e, newUser("pat", "pat@example.com"))
	uqid := acct.Base().UqID

	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := e.Accounts.Update(ctx, models.RoleUser, uqid, newUser("pat", "pat@example.com"), "weak")
	wantKind(t, err, apierr.WeakPassword)

	if _, err := e.Accounts.Update(ctx, models.RoleUser, uqid, newUser("pat", "pat@example.com"), "N3w!Passw"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := e.Authenticator.Authenticate(ctx, "pat@example.com", strongPass); apierr.KindOf(err) != apierr.Unauthorized {
		t.Errorf("old password should no longer work, got %v", err)
	}
	if _, err := e.Authenticator.Authenticate(ctx, "pat@example.com", "N3w!Passw"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
}

func TestAccounts_UpdateValidation(t *testing.T) {
	e := testutil.NewEngine(t, testutil.EngineOptions{})
	acct := register(t, e, newEntertainer("blue", "blue@example.com"))
	uqid := acct.Base().UqID

	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := e.Accounts.Update(ctx, models.RoleEntertainer, "missing", newEntertainer("x", "x@example.com"), "")
	wantKind(t, err, apierr.NotFound)

	bad := newEntertainer("blue", "blue@example.com")
	bad.Talent = ""
	_, err = e.Accounts.Update(ctx, models.RoleEntertainer, uqid, bad, "")
	wantKind(t, err, apierr.BadInput)

	_, err = e.Accounts.Update(ctx, models.RoleEntertainer, uqid, newEntertainer("blue", "nope"), "")
	wantKind(t, err, apierr.BadEmail)

	_, err = e.Accounts.Update(ctx, models.RoleEntertainer, uqid, newUser("blue", "blue@example.com"), "")
	wantKind(t, err, apierr.BadInput)
}

func TestAccounts_Delete(t *testing.T) {
	e := testutil.NewEngine(t, testutil.EngineOptions{Reserve: true})
	acct := register(t, e, newUser("gone", "gone@example.com"))
	uqid := acct.Base().UqID

	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := e.Accounts.UploadPicture(ctx, models.RoleUser, uqid, "me.png", strings.NewReader("png")); err != nil {
		t.Fatalf("UploadPicture: %v", err)
	}
	if err := e.Accounts.Delete(ctx, models.RoleUser, uqid); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	wantKind(t, e.Accounts.Delete(ctx, models.RoleUser, uqid), apierr.NotFound)

	if e.Blobs.Has(uqid + ".png") {
		t.Error("expected picture removed with the account")
	}
	if e.Reservations.Owner("username", "gone") != "" {
		t.Error("expected reservations released")
	}
	register(t, e, newSportsman("gone", "gone@example.com"))
}

func TestAccounts_Pictures(t *testing.T) {
	e := testutil.NewEngine(t, testutil.EngineOptions{})
	acct := register(t, e, newSportsman("pic", "pic@example.com"))
	uqid := acct.Base().UqID

	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, _, err := e.Accounts.Picture(ctx, models.RoleSportsman, uqid)
	wantKind(t, err, apierr.NotFound)

	_, err = e.Accounts.UploadPicture(ctx, models.RoleSportsman, uqid, "anim.gif", strings.NewReader("gif"))
	wantKind(t, err, apierr.BadInput)

	_, err = e.Accounts.UploadPicture(ctx, models.RoleSportsman, "missing", "me.png", strings.NewReader("png"))
	wantKind(t, err, apierr.NotFound)

	key, err := e.Accounts.UploadPicture(ctx, models.RoleSportsman, uqid, "Me.JPG", strings.NewReader("first"))
	if err != nil {
		t.Fatalf("UploadPicture: %v", err)
	}
	if key != uqid+".jpg" {
		t.Errorf("key = %q, want %q", key, uqid+".jpg")
	}

	// A second upload with another type replaces the first.
	key, err = e.Accounts.UploadPicture(ctx, models.RoleSportsman, uqid, "me.png", strings.NewReader("second"))
	if err != nil {
		t.Fatalf("UploadPicture: %v", err)
	}
	if e.Blobs.Has(uqid + ".jpg") {
		t.Error("expected replaced picture removed")
	}

	rc, gotKey, err := e.Accounts.Picture(ctx, models.RoleSportsman, uqid)
	if err != nil {
		t.Fatalf("Picture: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if gotKey != key || string(data) != "second" {
		t.Errorf("Picture = (%q, %q)", gotKey, data)
	}

	if err := e.Accounts.DeletePicture(ctx, models.RoleSportsman, uqid); err != nil {
		t.Fatalf("DeletePicture: %v", err)
	}
	wantKind(t, e.Accounts.DeletePicture(ctx, models.RoleSportsman, uqid), apierr.NotFound)

	got, _ := e.Accounts.Get(ctx, models.RoleSportsman, uqid)
	if got.Base().ProfilePicture != "" {
		t.Errorf("ProfilePicture = %q, want cleared", got.Base().ProfilePicture)
	}
}

func TestAccounts_UploadPictureKeepsOldBlobWhenUpdateFails(t *testing.T) {
	e := testutil.NewEngine(t, testutil.EngineOptions{})
	acct := register(t, e, newSportsman("keep", "keep@example.com"))
	uqid := acct.Base().UqID

	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := e.Accounts.UploadPicture(ctx, models.RoleSportsman, uqid, "me.jpg", strings.NewReader("first")); err != nil {
		t.Fatalf("UploadPicture: %v", err)
	}

	e.Parts[models.RoleSportsman].UpdateErr = errors.New("write failed")
	_, err := e.Accounts.UploadPicture(ctx, models.RoleSportsman, uqid, "me.png", strings.NewReader("second"))
	wantKind(t, err, apierr.StorageFailure)
	e.Parts[models.RoleSportsman].UpdateErr = nil

	if !e.Blobs.Has(uqid + ".jpg") {
		t.Fatal("picture the account still points at was deleted")
	}
	rc, gotKey, err := e.Accounts.Picture(ctx, models.RoleSportsman, uqid)
	if err != nil {
		t.Fatalf("Picture: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if gotKey != uqid+".jpg" || string(data) != "first" {
		t.Errorf("Picture = (%q, %q), want the first upload", gotKey, data)
	}
}
