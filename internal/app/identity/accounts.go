// internal/app/identity/accounts.go
package identity

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"slices"
	"strings"

	partitionstore "github.com/dalemusser/osprey/internal/app/store/partitions"
	reservationstore "github.com/dalemusser/osprey/internal/app/store/reservations"
	"github.com/dalemusser/osprey/internal/app/system/apierr"
	"github.com/dalemusser/osprey/internal/app/system/blobstore"
	"github.com/dalemusser/osprey/internal/app/system/inputval"
	"github.com/dalemusser/osprey/internal/app/system/normalize"
	"github.com/dalemusser/osprey/internal/app/system/passwords"
	"github.com/dalemusser/osprey/internal/domain/models"
	"go.uber.org/zap"
)

// PictureExtensions are the accepted profile picture file types.
var PictureExtensions = []string{".jpg", ".jpeg", ".png"}

// Accounts reads and maintains existing identities within one partition at a
// time, keeping usernames and emails unique across all of them.
type Accounts struct {
	Dir          *Directory
	Checker      *Checker
	Hasher       passwords.Hasher
	Reservations Reserver
	Blobs        blobstore.Store
	Log          *zap.Logger
}

func NewAccounts(dir *Directory, checker *Checker, hasher passwords.Hasher, reservations Reserver, blobs blobstore.Store, logger *zap.Logger) *Accounts {
	return &Accounts{
		Dir:          dir,
		Checker:      checker,
		Hasher:       hasher,
		Reservations: reservations,
		Blobs:        blobs,
		Log:          logger,
	}
}

func (a *Accounts) partition(role models.Role) (Partition, error) {
	p, err := a.Dir.Partition(role)
	if err != nil {
		return nil, apierr.Wrap(apierr.BadInput, "unknown role", err)
	}
	return p, nil
}

func (a *Accounts) lookup(role models.Role, what string, find func(Partition) (models.Account, error)) (models.Account, error) {
	p, err := a.partition(role)
	if err != nil {
		return nil, err
	}
	acct, err := find(p)
	if err != nil {
		return nil, apierr.Storage(err)
	}
	if acct == nil {
		return nil, apierr.Newf(apierr.NotFound, "%s not found", what)
	}
	return acct, nil
}

// Get returns the account with uqid in role's partition.
func (a *Accounts) Get(ctx context.Context, role models.Role, uqid string) (models.Account, error) {
	return a.lookup(role, role.String(), func(p Partition) (models.Account, error) {
		return p.FindByUniqueID(ctx, strings.TrimSpace(uqid))
	})
}

func (a *Accounts) GetByUsername(ctx context.Context, role models.Role, username string) (models.Account, error) {
	return a.lookup(role, role.String(), func(p Partition) (models.Account, error) {
		return p.FindByUsername(ctx, normalize.Username(username))
	})
}

func (a *Accounts) GetByEmail(ctx context.Context, role models.Role, email string) (models.Account, error) {
	return a.lookup(role, role.String(), func(p Partition) (models.Account, error) {
		return p.FindByEmail(ctx, normalize.Email(email))
	})
}

// List returns every account in role's partition, oldest first.
func (a *Accounts) List(ctx context.Context, role models.Role) ([]models.Account, error) {
	p, err := a.partition(role)
	if err != nil {
		return nil, err
	}
	out, err := p.List(ctx)
	if err != nil {
		return nil, apierr.Storage(err)
	}
	if out == nil {
		out = []models.Account{}
	}
	return out, nil
}

// Update overwrites the editable fields of the account with uqid from acct.
// A non-empty newPassword must meet the password policy and replaces the
// stored hash. Username and email stay unique across all partitions.
func (a *Accounts) Update(ctx context.Context, role models.Role, uqid string, acct models.Account, newPassword string) (models.Account, error) {
	if acct == nil || acct.AccountRole() != role {
		return nil, apierr.New(apierr.BadInput, "account does not match role")
	}
	p, err := a.partition(role)
	if err != nil {
		return nil, err
	}
	current, err := a.Get(ctx, role, uqid)
	if err != nil {
		return nil, err
	}
	cur := current.Base()

	b := acct.Base()
	b.UqID = cur.UqID
	b.Username = normalize.Username(b.Username)
	b.Email = normalize.Email(b.Email)
	if err := checkShape(acct, "", false); err != nil {
		return nil, err
	}
	if !inputval.IsValidEmail(b.Email) {
		return nil, apierr.New(apierr.BadEmail, "invalid email address")
	}

	fields := acct.EditableFields()
	if newPassword != "" {
		if err := passwords.CheckPolicy(newPassword); err != nil {
			return nil, apierr.Wrap(apierr.WeakPassword, passwords.ErrWeak.Error(), err)
		}
		hash, err := a.Hasher.Hash(newPassword)
		if err != nil {
			return nil, apierr.Storage(err)
		}
		fields[models.FieldPassword] = hash
	}

	// Only values that change need checking; an identity keeps its own.
	newUsername, newEmail := "", ""
	if b.Username != cur.Username {
		newUsername = b.Username
	}
	if b.Email != cur.Email {
		newEmail = b.Email
	}
	if err := checkOwn(ctx, p, newUsername, newEmail, cur.UqID); err != nil {
		return nil, err
	}
	if err := checkOthers(ctx, a.Checker, role, newUsername, newEmail); err != nil {
		return nil, err
	}

	release, err := reserveIdentity(ctx, a.Reservations, b, role, cur.Username, cur.Email)
	if err != nil {
		return nil, err
	}

	matched, err := p.UpdateFields(ctx, cur.UqID, fields)
	if err != nil || !matched {
		release(context.WithoutCancel(ctx))
		switch {
		case errors.Is(err, partitionstore.ErrDuplicate):
			return nil, apierr.New(apierr.Conflict, "username or email already taken")
		case err != nil:
			return nil, apierr.Storage(err)
		}
		return nil, apierr.Newf(apierr.NotFound, "%s not found", role)
	}

	if a.Reservations != nil {
		if newUsername != "" {
			a.releaseQuietly(ctx, reservationstore.KindUsername, cur.Username, cur.UqID)
		}
		if newEmail != "" {
			a.releaseQuietly(ctx, reservationstore.KindEmail, cur.Email, cur.UqID)
		}
	}
	return a.Get(ctx, role, cur.UqID)
}

func (a *Accounts) releaseQuietly(ctx context.Context, kind, value, owner string) {
	if err := a.Reservations.Release(context.WithoutCancel(ctx), kind, value, owner); err != nil && a.Log != nil {
		a.Log.Warn("release reservation failed",
			zap.String("kind", kind),
			zap.String("owner", owner),
			zap.Error(err))
	}
}

// Delete removes the account with uqid. Content and events tagged with it are
// left in place. The profile picture is removed on a best-effort basis.
func (a *Accounts) Delete(ctx context.Context, role models.Role, uqid string) error {
	current, err := a.Get(ctx, role, uqid)
	if err != nil {
		return err
	}
	p, _ := a.partition(role)
	deleted, err := p.Delete(ctx, current.Base().UqID)
	if err != nil {
		return apierr.Storage(err)
	}
	if !deleted {
		return apierr.Newf(apierr.NotFound, "%s not found", role)
	}

	bg := context.WithoutCancel(ctx)
	if a.Reservations != nil {
		if err := a.Reservations.ReleaseOwner(bg, current.Base().UqID); err != nil && a.Log != nil {
			a.Log.Warn("release reservations failed", zap.String("uqid", current.Base().UqID), zap.Error(err))
		}
	}
	if key := current.Base().ProfilePicture; key != "" && a.Blobs != nil {
		if _, err := a.Blobs.Delete(bg, key); err != nil && a.Log != nil {
			a.Log.Warn("delete profile picture failed", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}

// UploadPicture stores body as the profile picture of the account with uqid
// under the key "<uqid><ext>" and records the key on the account. Only
// .jpg, .jpeg and .png files are accepted.
func (a *Accounts) UploadPicture(ctx context.Context, role models.Role, uqid, filename string, body io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !slices.Contains(PictureExtensions, ext) {
		return "", apierr.New(apierr.BadInput, "picture must be a .jpg, .jpeg or .png file")
	}
	if a.Blobs == nil {
		return "", apierr.Storage(errors.New("no blob store configured"))
	}
	current, err := a.Get(ctx, role, uqid)
	if err != nil {
		return "", err
	}
	b := current.Base()
	key := b.UqID + ext

	if err := a.Blobs.Put(ctx, key, body); err != nil {
		return "", apierr.Storage(err)
	}

	// The old blob goes only once the account points at the new key.
	p, _ := a.partition(role)
	matched, err := p.UpdateFields(ctx, b.UqID, models.FieldSet{models.FieldProfilePicture: key})
	if err != nil {
		return "", apierr.Storage(err)
	}
	if !matched {
		return "", apierr.Newf(apierr.NotFound, "%s not found", role)
	}
	if old := b.ProfilePicture; old != "" && old != key {
		if _, err := a.Blobs.Delete(context.WithoutCancel(ctx), old); err != nil && a.Log != nil {
			a.Log.Warn("delete replaced picture failed", zap.String("key", old), zap.Error(err))
		}
	}
	return key, nil
}

// Picture opens the profile picture of the account with uqid. The caller
// closes the reader. The returned key carries the file extension.
func (a *Accounts) Picture(ctx context.Context, role models.Role, uqid string) (io.ReadCloser, string, error) {
	current, err := a.Get(ctx, role, uqid)
	if err != nil {
		return nil, "", err
	}
	key := current.Base().ProfilePicture
	if key == "" || a.Blobs == nil {
		return nil, "", apierr.New(apierr.NotFound, "no profile picture")
	}
	rc, err := a.Blobs.Get(ctx, key)
	if errors.Is(err, blobstore.ErrNotFound) {
		return nil, "", apierr.New(apierr.NotFound, "no profile picture")
	}
	if err != nil {
		return nil, "", apierr.Storage(err)
	}
	return rc, key, nil
}

// DeletePicture removes the profile picture and clears it on the account.
func (a *Accounts) DeletePicture(ctx context.Context, role models.Role, uqid string) error {
	current, err := a.Get(ctx, role, uqid)
	if err != nil {
		return err
	}
	b := current.Base()
	if b.ProfilePicture == "" || a.Blobs == nil {
		return apierr.New(apierr.NotFound, "no profile picture")
	}
	if _, err := a.Blobs.Delete(ctx, b.ProfilePicture); err != nil {
		return apierr.Storage(err)
	}
	p, _ := a.partition(role)
	if _, err := p.UpdateFields(ctx, b.UqID, models.FieldSet{models.FieldProfilePicture: ""}); err != nil {
		return apierr.Storage(err)
	}
	return nil
}
