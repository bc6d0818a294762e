// internal/app/identity/partition.go
//
// Package identity enforces username and email uniqueness across the four
// identity partitions, authenticates against them, resolves usernames to
// profile views and runs registration and account maintenance.
package identity

import (
	"context"
	"errors"
	"fmt"

	partitionstore "github.com/dalemusser/osprey/internal/app/store/partitions"
	"github.com/dalemusser/osprey/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// Partition is a role-erased view of one partition store. Lookups return a
// nil Account and nil error when nothing matches. Insert and UpdateFields
// return partitionstore.ErrDuplicate on a unique-index collision.
type Partition interface {
	Role() models.Role
	FindByUniqueID(ctx context.Context, uqid string) (models.Account, error)
	FindByUsername(ctx context.Context, username string) (models.Account, error)
	FindByEmail(ctx context.Context, email string) (models.Account, error)
	Search(ctx context.Context, query string, exact bool) ([]models.Account, error)
	List(ctx context.Context) ([]models.Account, error)
	Insert(ctx context.Context, acct models.Account) error
	UpdateFields(ctx context.Context, uqid string, fields models.FieldSet) (bool, error)
	Delete(ctx context.Context, uqid string) (bool, error)
}

type storePartition[T any, P partitionstore.Record[T]] struct {
	s *partitionstore.Store[T, P]
}

// Adapt wraps a typed partition store as a Partition.
func Adapt[T any, P partitionstore.Record[T]](s *partitionstore.Store[T, P]) Partition {
	return storePartition[T, P]{s: s}
}

func one[T any, P partitionstore.Record[T]](p P, err error) (models.Account, error) {
	if err != nil || (*T)(p) == nil {
		return nil, err
	}
	return p, nil
}

func many[T any, P partitionstore.Record[T]](ps []P, err error) ([]models.Account, error) {
	if err != nil {
		return nil, err
	}
	out := make([]models.Account, len(ps))
	for i, p := range ps {
		out[i] = p
	}
	return out, nil
}

func (a storePartition[T, P]) Role() models.Role { return a.s.Role() }

func (a storePartition[T, P]) FindByUniqueID(ctx context.Context, uqid string) (models.Account, error) {
	p, err := a.s.FindByUniqueID(ctx, uqid)
	return one[T, P](p, err)
}

func (a storePartition[T, P]) FindByUsername(ctx context.Context, username string) (models.Account, error) {
	p, err := a.s.FindByUsername(ctx, username)
	return one[T, P](p, err)
}

func (a storePartition[T, P]) FindByEmail(ctx context.Context, email string) (models.Account, error) {
	p, err := a.s.FindByEmail(ctx, email)
	return one[T, P](p, err)
}

func (a storePartition[T, P]) Search(ctx context.Context, query string, exact bool) ([]models.Account, error) {
	ps, err := a.s.Search(ctx, query, exact)
	return many[T, P](ps, err)
}

func (a storePartition[T, P]) List(ctx context.Context) ([]models.Account, error) {
	ps, err := a.s.List(ctx)
	return many[T, P](ps, err)
}

func (a storePartition[T, P]) Insert(ctx context.Context, acct models.Account) error {
	rec, ok := acct.(P)
	if !ok {
		return fmt.Errorf("%T cannot be stored in the %s partition", acct, a.s.Role())
	}
	return a.s.Insert(ctx, rec)
}

func (a storePartition[T, P]) UpdateFields(ctx context.Context, uqid string, fields models.FieldSet) (bool, error) {
	return a.s.UpdateFields(ctx, uqid, fields)
}

func (a storePartition[T, P]) Delete(ctx context.Context, uqid string) (bool, error) {
	return a.s.Delete(ctx, uqid)
}

// ErrUnknownRole is returned by Directory.Partition for a role with no partition.
var ErrUnknownRole = errors.New("unknown role")

// Directory holds exactly one Partition per role.
type Directory struct {
	byRole map[models.Role]Partition
}

// NewDirectory builds a Directory. Every role in models.Roles must be
// supplied exactly once.
func NewDirectory(parts ...Partition) (*Directory, error) {
	d := &Directory{byRole: make(map[models.Role]Partition, len(models.Roles))}
	for _, p := range parts {
		role := p.Role()
		if !role.Valid() {
			return nil, fmt.Errorf("partition for unknown role %q", role)
		}
		if _, dup := d.byRole[role]; dup {
			return nil, fmt.Errorf("duplicate partition for role %s", role)
		}
		d.byRole[role] = p
	}
	for _, role := range models.Roles {
		if _, ok := d.byRole[role]; !ok {
			return nil, fmt.Errorf("missing partition for role %s", role)
		}
	}
	return d, nil
}

// OpenDirectory builds the Directory over the MongoDB partition collections.
func OpenDirectory(db *mongo.Database) (*Directory, error) {
	return NewDirectory(
		Adapt(partitionstore.New[models.User](db)),
		Adapt(partitionstore.New[models.Sportsman](db)),
		Adapt(partitionstore.New[models.Entertainer](db)),
		Adapt(partitionstore.New[models.BusinessOwner](db)),
	)
}

// Partition returns the partition for role.
func (d *Directory) Partition(role models.Role) (Partition, error) {
	p, ok := d.byRole[role]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	return p, nil
}

// InOrder returns the partitions for the given roles, in that order.
func (d *Directory) InOrder(order []models.Role) []Partition {
	out := make([]Partition, 0, len(order))
	for _, role := range order {
		if p, ok := d.byRole[role]; ok {
			out = append(out, p)
		}
	}
	return out
}

// All returns every partition in declared order.
func (d *Directory) All() []Partition { return d.InOrder(models.Roles) }

// Except returns every partition other than role's, in declared order.
func (d *Directory) Except(role models.Role) []Partition {
	out := make([]Partition, 0, len(models.Roles)-1)
	for _, r := range models.Roles {
		if r != role {
			out = append(out, d.byRole[r])
		}
	}
	return out
}
