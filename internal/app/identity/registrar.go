// internal/app/identity/registrar.go
package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	counterstore "github.com/dalemusser/osprey/internal/app/store/counters"
	partitionstore "github.com/dalemusser/osprey/internal/app/store/partitions"
	reservationstore "github.com/dalemusser/osprey/internal/app/store/reservations"
	"github.com/dalemusser/osprey/internal/app/system/apierr"
	"github.com/dalemusser/osprey/internal/app/system/inputval"
	"github.com/dalemusser/osprey/internal/app/system/normalize"
	"github.com/dalemusser/osprey/internal/app/system/passwords"
	"github.com/dalemusser/osprey/internal/domain/models"
	"go.uber.org/zap"
)

// Reserver claims usernames and emails across all partitions. Reserve
// returns reservationstore.ErrTaken when another owner holds the value.
type Reserver interface {
	Reserve(ctx context.Context, kind, value, owner, role string) error
	Release(ctx context.Context, kind, value, owner string) error
	ReleaseOwner(ctx context.Context, owner string) error
}

// Registrar creates identities.
type Registrar struct {
	Dir      *Directory
	Checker  *Checker
	Counters counterstore.Sequencer
	Hasher   passwords.Hasher
	// Reservations is nil when identity reservations are disabled.
	Reservations Reserver
	Log          *zap.Logger
	Now          func() time.Time
}

func NewRegistrar(dir *Directory, checker *Checker, counters counterstore.Sequencer, hasher passwords.Hasher, reservations Reserver, logger *zap.Logger) *Registrar {
	return &Registrar{
		Dir:          dir,
		Checker:      checker,
		Counters:     counters,
		Hasher:       hasher,
		Reservations: reservations,
		Log:          logger,
		Now:          time.Now,
	}
}

// Register validates acct and password, checks uniqueness in acct's own
// partition and then in the others, assigns the partition sequence number,
// hashes the password and inserts. Nothing is written to the partition
// before the insert. Any identifiers the caller set on acct are replaced.
func (r *Registrar) Register(ctx context.Context, acct models.Account, password string) (models.Account, error) {
	if acct == nil {
		return nil, apierr.New(apierr.BadInput, "account is required")
	}
	role := acct.AccountRole()
	part, err := r.Dir.Partition(role)
	if err != nil {
		return nil, apierr.Wrap(apierr.BadInput, "unknown role", err)
	}

	b := acct.Base()
	b.Username = normalize.Username(b.Username)
	b.Email = normalize.Email(b.Email)

	if err := checkShape(acct, password, true); err != nil {
		return nil, err
	}
	if err := passwords.CheckPolicy(password); err != nil {
		return nil, apierr.Wrap(apierr.WeakPassword, passwords.ErrWeak.Error(), err)
	}
	if !inputval.IsValidEmail(b.Email) {
		return nil, apierr.New(apierr.BadEmail, "invalid email address")
	}

	if err := checkOwn(ctx, part, b.Username, b.Email, ""); err != nil {
		return nil, err
	}
	if err := checkOthers(ctx, r.Checker, role, b.Username, b.Email); err != nil {
		return nil, err
	}

	b.Stamp(role, r.now())

	release, err := reserveIdentity(ctx, r.Reservations, b, role, "", "")
	if err != nil {
		return nil, err
	}
	ok := false
	defer func() {
		if !ok {
			release(context.WithoutCancel(ctx))
		}
	}()

	seq, err := r.Counters.NextValue(ctx, role.CounterName())
	if err != nil {
		return nil, apierr.Storage(err)
	}
	acct.SetSequence(seq)

	hash, err := r.Hasher.Hash(password)
	if err != nil {
		return nil, apierr.Storage(err)
	}
	b.PasswordHash = hash

	if err := part.Insert(ctx, acct); err != nil {
		if errors.Is(err, partitionstore.ErrDuplicate) {
			return nil, apierr.New(apierr.Conflict, "username or email already taken")
		}
		return nil, apierr.Storage(err)
	}
	ok = true

	if r.Log != nil {
		r.Log.Info("identity registered",
			zap.String("role", role.String()),
			zap.String("uqid", b.UqID),
			zap.Int64("seq", seq))
	}
	return acct, nil
}

func (r *Registrar) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// checkShape reports missing required fields as BadInput.
func checkShape(acct models.Account, password string, needPassword bool) error {
	b := acct.Base()
	var missing []string
	if b.Username == "" {
		missing = append(missing, "username")
	}
	if b.Email == "" {
		missing = append(missing, "email")
	}
	if needPassword && password == "" {
		missing = append(missing, "password")
	}
	missing = append(missing, acct.MissingFields()...)
	if len(missing) > 0 {
		return apierr.New(apierr.BadInput, "missing required fields: "+strings.Join(missing, ", "))
	}
	return nil
}

// checkOwn looks username and email up in part. self, when set, is the UqID
// of the record being updated, which may keep its own values. An empty
// username or email is skipped.
func checkOwn(ctx context.Context, part Partition, username, email, self string) error {
	if username != "" {
		acct, err := part.FindByUsername(ctx, username)
		if err != nil {
			return apierr.Storage(err)
		}
		if acct != nil && acct.Base().UqID != self {
			return apierr.New(apierr.Conflict, "username already taken")
		}
	}
	if email != "" {
		acct, err := part.FindByEmail(ctx, email)
		if err != nil {
			return apierr.Storage(err)
		}
		if acct != nil && acct.Base().UqID != self {
			return apierr.New(apierr.Conflict, "email already registered")
		}
	}
	return nil
}

func checkOthers(ctx context.Context, c *Checker, role models.Role, username, email string) error {
	if username != "" {
		taken, err := c.UsernameTakenElsewhere(ctx, username, role)
		if err != nil {
			return apierr.Storage(err)
		}
		if taken {
			return apierr.New(apierr.Conflict, "username already taken")
		}
	}
	if email != "" {
		taken, err := c.EmailTakenElsewhere(ctx, email, role)
		if err != nil {
			return apierr.Storage(err)
		}
		if taken {
			return apierr.New(apierr.Conflict, "email already registered")
		}
	}
	return nil
}

// reserveIdentity claims b's username and email for b.UqID, skipping values
// equal to keepUsername/keepEmail (already held). The returned func releases
// whatever this call claimed. With a nil Reserver it does nothing.
func reserveIdentity(ctx context.Context, res Reserver, b *models.Identity, role models.Role, keepUsername, keepEmail string) (func(context.Context), error) {
	noop := func(context.Context) {}
	if res == nil {
		return noop, nil
	}

	type claim struct{ kind, value string }
	var held []claim
	release := func(ctx context.Context) {
		for _, c := range held {
			_ = res.Release(ctx, c.kind, c.value, b.UqID)
		}
	}

	for _, c := range []claim{
		{reservationstore.KindUsername, b.Username},
		{reservationstore.KindEmail, b.Email},
	} {
		if c.value == "" || (c.kind == reservationstore.KindUsername && c.value == keepUsername) ||
			(c.kind == reservationstore.KindEmail && c.value == keepEmail) {
			continue
		}
		if err := res.Reserve(ctx, c.kind, c.value, b.UqID, role.String()); err != nil {
			release(context.WithoutCancel(ctx))
			if errors.Is(err, reservationstore.ErrTaken) {
				if c.kind == reservationstore.KindUsername {
					return noop, apierr.New(apierr.Conflict, "username already taken")
				}
				return noop, apierr.New(apierr.Conflict, "email already registered")
			}
			return noop, apierr.Storage(err)
		}
		held = append(held, c)
	}
	return release, nil
}
