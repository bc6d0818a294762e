// internal/app/identity/checker.go
package identity

import (
	"context"
	"time"

	"github.com/dalemusser/osprey/internal/app/system/fanout"
	"github.com/dalemusser/osprey/internal/app/system/timeouts"
	"github.com/dalemusser/osprey/internal/domain/models"
)

// Checker reports whether a username or email is held in any partition other
// than the one being written to. The caller checks its own partition first.
//
// Two registrations racing in different partitions can both pass; the
// reservation store closes that gap when enabled.
type Checker struct {
	Dir *Directory
	// Timeout bounds each fan-out. Zero uses timeouts.Fanout().
	Timeout time.Duration
}

func NewChecker(dir *Directory, timeout time.Duration) *Checker {
	return &Checker{Dir: dir, Timeout: timeout}
}

func (c *Checker) UsernameTakenElsewhere(ctx context.Context, username string, excluding models.Role) (bool, error) {
	return c.takenElsewhere(ctx, excluding, func(ctx context.Context, p Partition) (models.Account, error) {
		return p.FindByUsername(ctx, username)
	})
}

func (c *Checker) EmailTakenElsewhere(ctx context.Context, email string, excluding models.Role) (bool, error) {
	return c.takenElsewhere(ctx, excluding, func(ctx context.Context, p Partition) (models.Account, error) {
		return p.FindByEmail(ctx, email)
	})
}

func (c *Checker) takenElsewhere(ctx context.Context, excluding models.Role, find func(context.Context, Partition) (models.Account, error)) (bool, error) {
	return fanout.Any(ctx, fanoutTimeout(c.Timeout), c.Dir.Except(excluding), func(ctx context.Context, p Partition) (bool, error) {
		acct, err := find(ctx, p)
		return acct != nil, err
	})
}

func fanoutTimeout(d time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return timeouts.Fanout()
}
