// internal/testutil/engine.go
package testutil

import (
	"testing"
	"time"

	"github.com/dalemusser/osprey/internal/app/identity"
	"github.com/dalemusser/osprey/internal/app/system/passwords"
	"github.com/dalemusser/osprey/internal/domain/models"
	"go.uber.org/zap"
)

// Engine is the identity engine wired over in-memory stores.
type Engine struct {
	Parts        map[models.Role]*MemPartition
	Counters     *MemCounters
	Reservations *MemReservations
	Contents     *MemContent
	Events       *MemEvents
	Blobs        *MemBlobs

	Dir           *identity.Directory
	Checker       *identity.Checker
	Authenticator *identity.Authenticator
	Resolver      *identity.Resolver
	Registrar     *identity.Registrar
	Accounts      *identity.Accounts
}

// EngineOptions adjusts NewEngine.
type EngineOptions struct {
	// Reserve enables identity reservations.
	Reserve bool
	// Hasher defaults to SHA256Hasher.
	Hasher passwords.Hasher
	// Timeout bounds each fan-out; defaults to two seconds.
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewEngine builds an Engine with empty stores.
func NewEngine(t *testing.T, opts EngineOptions) *Engine {
	t.Helper()
	if opts.Hasher == nil {
		opts.Hasher = passwords.SHA256Hasher{}
	}
	if opts.Timeout == 0 {
		opts.Timeout = 2 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	e := &Engine{
		Parts:    map[models.Role]*MemPartition{},
		Counters: NewMemCounters(),
		Contents: &MemContent{},
		Events:   &MemEvents{},
		Blobs:    NewMemBlobs(),
	}
	var parts []identity.Partition
	for _, role := range models.Roles {
		p := NewMemPartition(role)
		e.Parts[role] = p
		parts = append(parts, p)
	}
	dir, err := identity.NewDirectory(parts...)
	if err != nil {
		t.Fatalf("NewDirectory: %v", err)
	}
	e.Dir = dir

	var res identity.Reserver
	if opts.Reserve {
		e.Reservations = NewMemReservations()
		res = e.Reservations
	}

	e.Checker = identity.NewChecker(dir, opts.Timeout)
	e.Authenticator = identity.NewAuthenticator(dir, opts.Hasher, opts.Timeout, opts.Logger)
	e.Resolver = identity.NewResolver(dir, e.Contents, e.Events, opts.Timeout, opts.Logger)
	e.Registrar = identity.NewRegistrar(dir, e.Checker, e.Counters, opts.Hasher, res, opts.Logger)
	e.Accounts = identity.NewAccounts(dir, e.Checker, opts.Hasher, res, e.Blobs, opts.Logger)
	return e
}
