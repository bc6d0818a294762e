package identity_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/dalemusser/osprey/internal/app/system/apierr"
	"github.com/dalemusser/osprey/internal/app/system/passwords"
	"github.com/dalemusser/osprey/internal/domain/models"
	"github.com/dalemusser/osprey/internal/testutil"
)

func TestRegister_Success(t *testing.T) {
	e := testutil.NewEngine(t, testutil.EngineOptions{})

	got := register(t, e, newSportsman("  striker ", "Striker@Example.com"))
	s := got.(*models.Sportsman)

	if s.Username != "striker" || s.Email != "striker@example.com" {
		t.Errorf("expected normalized identity, got %q / %q", s.Username, s.Email)
	}
	if s.UqID == "" || s.ID.IsZero() {
		t.Error("expected identifiers assigned")
	}
	if s.Role != models.RoleSportsman {
		t.Errorf("Role = %s", s.Role)
	}
	if s.SportsmanID != 1 {
		t.Errorf("SportsmanID = %d, want 1", s.SportsmanID)
	}
	if s.PasswordHash == "" || s.PasswordHash == strongPass {
		t.Error("expected the stored password to be hashed")
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	stored, err := e.Parts[models.RoleSportsman].FindByUsername(ctx, "striker")
	if err != nil || stored == nil {
		t.Fatalf("FindByUsername = (%v, %v)", stored, err)
	}
	if stored.Base().UqID != s.UqID {
		t.Error("stored record differs from returned record")
	}
}

func TestRegister_ReplacesClientIdentifiers(t *testing.T) {
	e := testutil.NewEngine(t, testutil.EngineOptions{})
	u := newUser("amani", "amani@example.com")
	u.UqID = "client-chosen"
	u.UserID = 99

	got := register(t, e, u).(*models.User)
	if got.UqID == "client-chosen" {
		t.Error("client-supplied UqID should be replaced")
	}
	if got.UserID != 1 {
		t.Errorf("UserID = %d, want 1", got.UserID)
	}
}

func TestRegister_SequencePerPartition(t *testing.T) {
	e := testutil.NewEngine(t, testutil.EngineOptions{})

	a := register(t, e, newUser("u1", "u1@example.com"))
	b := register(t, e, newUser("u2", "u2@example.com"))
	c := register(t, e, newEntertainer("e1", "e1@example.com"))

	if a.Sequence() != 1 || b.Sequence() != 2 {
		t.Errorf("User sequence = %d, %d; want 1, 2", a.Sequence(), b.Sequence())
	}
	if c.Sequence() != 1 {
		t.Errorf("Entertainer sequence = %d, want 1", c.Sequence())
	}
}

// Username registered in User is rejected in Sportsman.
func TestRegister_CrossPartitionUsernameConflict(t *testing.T) {
	e := testutil.NewEngine(t, testutil.EngineOptions{})
	register(t, e, newUser("alice", "alice@example.com"))

	ctx, cancel := testutil.TestContext()
	defer cancel()
	_, err := e.Registrar.Register(ctx, newSportsman("alice", "other@example.com"), strongPass)
	wantKind(t, err, apierr.Conflict)

	if e.Parts[models.RoleSportsman].Len() != 0 {
		t.Error("rejected registration must not insert")
	}
	if e.Counters.Current(models.RoleSportsman.CounterName()) != 0 {
		t.Error("rejected registration must not consume a sequence number")
	}
}

func TestRegister_CrossPartitionEmailConflict(t *testing.T) {
	e := testutil.NewEngine(t, testutil.EngineOptions{})
	register(t, e, newBusinessOwner("acme", "team@acme.com"))

	ctx, cancel := testutil.TestContext()
	defer cancel()
	_, err := e.Registrar.Register(ctx, newEntertainer("blue", "TEAM@acme.com"), strongPass)
	wantKind(t, err, apierr.Conflict)
}

func TestRegister_SamePartitionConflict(t *testing.T) {
	e := testutil.NewEngine(t, testutil.EngineOptions{})
	register(t, e, newUser("alice", "alice@example.com"))

	ctx, cancel := testutil.TestContext()
	defer cancel()
	_, err := e.Registrar.Register(ctx, newUser("alice", "new@example.com"), strongPass)
	wantKind(t, err, apierr.Conflict)
	_, err = e.Registrar.Register(ctx, newUser("alicia", "alice@example.com"), strongPass)
	wantKind(t, err, apierr.Conflict)
}

func TestRegister_PasswordPolicy(t *testing.T) {
	e := testutil.NewEngine(t, testutil.EngineOptions{})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := e.Registrar.Register(ctx, newUser("bob", "bob@example.com"), "short1")
	wantKind(t, err, apierr.WeakPassword)

	if _, err := e.Registrar.Register(ctx, newUser("bob", "bob@example.com"), "Str0ng!Pass"); err != nil {
		t.Fatalf("strong password rejected: %v", err)
	}
}

func TestRegister_ValidationOrder(t *testing.T) {
	e := testutil.NewEngine(t, testutil.EngineOptions{})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Missing sport beats a weak password.
	s := newSportsman("runner", "runner@example.com")
	s.Sport = ""
	_, err := e.Registrar.Register(ctx, s, "weak")
	wantKind(t, err, apierr.BadInput)

	// A weak password beats a bad email.
	_, err = e.Registrar.Register(ctx, newUser("carol", "not-an-email"), "weak")
	wantKind(t, err, apierr.WeakPassword)

	_, err = e.Registrar.Register(ctx, newUser("carol", "not-an-email"), strongPass)
	wantKind(t, err, apierr.BadEmail)

	_, err = e.Registrar.Register(ctx, newUser("", "carol@example.com"), strongPass)
	wantKind(t, err, apierr.BadInput)

	_, err = e.Registrar.Register(ctx, newUser("carol", "carol@example.com"), "")
	wantKind(t, err, apierr.BadInput)

	for role, p := range e.Parts {
		if p.Len() != 0 {
			t.Errorf("%s partition has %d records after rejected registrations", role, p.Len())
		}
	}
}

func TestRegister_StoreFailureAbortsWithoutInsert(t *testing.T) {
	e := testutil.NewEngine(t, testutil.EngineOptions{Reserve: true})
	e.Counters.Err = errors.New("counter unavailable")

	ctx, cancel := testutil.TestContext()
	defer cancel()
	_, err := e.Registrar.Register(ctx, newUser("dana", "dana@example.com"), strongPass)
	wantKind(t, err, apierr.StorageFailure)

	if e.Parts[models.RoleUser].Len() != 0 {
		t.Error("failed registration must not insert")
	}
	if e.Reservations.Owner("username", "dana") != "" || e.Reservations.Owner("email", "dana@example.com") != "" {
		t.Error("failed registration must release its reservations")
	}
}

func TestRegister_PartitionLookupFailure(t *testing.T) {
	e := testutil.NewEngine(t, testutil.EngineOptions{})
	e.Parts[models.RoleBusinessOwner].Err = errors.New("connection reset")

	ctx, cancel := testutil.TestContext()
	defer cancel()
	_, err := e.Registrar.Register(ctx, newUser("erin", "erin@example.com"), strongPass)
	wantKind(t, err, apierr.StorageFailure)
	if e.Parts[models.RoleUser].Len() != 0 {
		t.Error("a missed partition must not clear the uniqueness check")
	}
}

func TestRegister_ReservationsHoldValues(t *testing.T) {
	e := testutil.NewEngine(t, testutil.EngineOptions{Reserve: true})
	u := register(t, e, newUser("frank", "frank@example.com"))

	if got := e.Reservations.Owner("username", "frank"); got != u.Base().UqID {
		t.Errorf("username reservation owner = %q, want %q", got, u.Base().UqID)
	}
	if got := e.Reservations.Owner("email", "frank@example.com"); got != u.Base().UqID {
		t.Errorf("email reservation owner = %q, want %q", got, u.Base().UqID)
	}
}

// With reservations on, concurrent registrations of one username across
// partitions admit exactly one winner.
func TestRegister_ConcurrentSameUsername(t *testing.T) {
	e := testutil.NewEngine(t, testutil.EngineOptions{Reserve: true})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	const n = 40
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		others    []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var acct models.Account
			email := fmt.Sprintf("racer%d@example.com", i)
			switch i % 4 {
			case 0:
				acct = newUser("racer", email)
			case 1:
				acct = newSportsman("racer", email)
			case 2:
				acct = newEntertainer("racer", email)
			default:
				acct = newBusinessOwner("racer", email)
			}
			_, err := e.Registrar.Register(ctx, acct, strongPass)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if apierr.KindOf(err) != apierr.Conflict {
				others = append(others, err)
			}
		}(i)
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("successes = %d, want 1", successes)
	}
	if len(others) > 0 {
		t.Fatalf("unexpected non-conflict errors: %v", others)
	}

	total := 0
	for _, p := range e.Parts {
		total += p.Len()
	}
	if total != 1 {
		t.Fatalf("stored identities = %d, want 1", total)
	}
}

func TestRegister_ConcurrentDistinctSequences(t *testing.T) {
	e := testutil.NewEngine(t, testutil.EngineOptions{})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	const n = 50
	seqs := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			acct, err := e.Registrar.Register(ctx, newUser(fmt.Sprintf("u%02d", i), fmt.Sprintf("u%02d@example.com", i)), strongPass)
			if err != nil {
				t.Errorf("Register: %v", err)
				return
			}
			seqs <- acct.Sequence()
		}(i)
	}
	wg.Wait()
	close(seqs)

	seen := map[int64]bool{}
	for s := range seqs {
		if seen[s] {
			t.Fatalf("sequence %d issued twice", s)
		}
		seen[s] = true
	}
	for i := int64(1); i <= n; i++ {
		if !seen[i] {
			t.Fatalf("sequence %d missing; want contiguous 1..%d", i, n)
		}
	}
}

func TestRegister_BcryptHasher(t *testing.T) {
	e := testutil.NewEngine(t, testutil.EngineOptions{Hasher: passwords.BcryptHasher{Cost: 4}})
	register(t, e, newUser("gina", "gina@example.com"))

	ctx, cancel := testutil.TestContext()
	defer cancel()
	p, err := e.Authenticator.Authenticate(ctx, "gina@example.com", strongPass)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if p.Role != models.RoleUser {
		t.Errorf("Role = %s", p.Role)
	}
}
