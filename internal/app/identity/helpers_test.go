package identity_test

import (
	"context"
	"testing"

	"github.com/dalemusser/osprey/internal/app/system/apierr"
	"github.com/dalemusser/osprey/internal/domain/models"
	"github.com/dalemusser/osprey/internal/testutil"
)

const strongPass = "Str0ng!Pass"

func newUser(username, email string) *models.User {
	u := &models.User{Country: "KE"}
	u.Username = username
	u.Email = email
	return u
}

func newSportsman(username, email string) *models.Sportsman {
	s := &models.Sportsman{Sport: "Football", Team: "Reds"}
	s.Username = username
	s.Email = email
	return s
}

func newEntertainer(username, email string) *models.Entertainer {
	e := &models.Entertainer{StageName: "Blue", Talent: "Jazz"}
	e.Username = username
	e.Email = email
	return e
}

func newBusinessOwner(username, email string) *models.BusinessOwner {
	b := &models.BusinessOwner{CompanyName: "Acme", SponsorshipInterest: "Football"}
	b.Username = username
	b.Email = email
	return b
}

func register(t *testing.T, e *testutil.Engine, acct models.Account) models.Account {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	got, err := e.Registrar.Register(ctx, acct, strongPass)
	if err != nil {
		t.Fatalf("Register(%s %q): %v", acct.AccountRole(), acct.Base().Username, err)
	}
	return got
}

func wantKind(t *testing.T, err error, kind apierr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := apierr.KindOf(err); got != kind {
		t.Fatalf("error kind = %s, want %s (%v)", got, kind, err)
	}
}

// seed writes acct straight into its partition, bypassing every check.
func seed(t *testing.T, e *testutil.Engine, acct models.Account, hash string) {
	t.Helper()
	acct.Base().Stamp(acct.AccountRole(), acct.Base().CreatedAt)
	acct.Base().PasswordHash = hash
	if err := e.Parts[acct.AccountRole()].Insert(context.Background(), acct); err != nil {
		t.Fatalf("seed: %v", err)
	}
}
