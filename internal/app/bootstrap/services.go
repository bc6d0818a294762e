// internal/app/bootstrap/services.go
package bootstrap

import (
	"errors"
	"fmt"

	"github.com/dalemusser/osprey/internal/app/identity"
	"github.com/dalemusser/osprey/internal/app/store/audit"
	contentstore "github.com/dalemusser/osprey/internal/app/store/contents"
	counterstore "github.com/dalemusser/osprey/internal/app/store/counters"
	eventstore "github.com/dalemusser/osprey/internal/app/store/events"
	reservationstore "github.com/dalemusser/osprey/internal/app/store/reservations"
	"github.com/dalemusser/osprey/internal/app/system/auditlog"
	"github.com/dalemusser/osprey/internal/app/system/passwords"
	"github.com/dalemusser/osprey/internal/app/system/tokens"
	"go.uber.org/zap"
)

// Services is the composition root: one instance of each store and engine
// component, shared by every handler.
type Services struct {
	Directory *identity.Directory
	Counters  *counterstore.Store
	Hasher    passwords.Hasher
	Tokens    *tokens.Issuer
	AuditLog  *auditlog.Logger

	Checker       *identity.Checker
	Authenticator *identity.Authenticator
	Resolver      *identity.Resolver
	Registrar     *identity.Registrar
	Accounts      *identity.Accounts
}

// BuildServices wires the identity engine over the MongoDB stores in deps.
func BuildServices(appCfg AppConfig, deps DBDeps, logger *zap.Logger) (*Services, error) {
	db := deps.MongoDatabase
	if deps.Files == nil {
		return nil, errors.New("file store not opened")
	}

	dir, err := identity.OpenDirectory(db)
	if err != nil {
		return nil, fmt.Errorf("open partitions: %w", err)
	}
	hasher, err := passwords.NewHasher(appCfg.PasswordHasher, appCfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	issuer, err := tokens.NewIssuer(appCfg.JWTSecret, appCfg.JWTIssuer, appCfg.JWTTTL)
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}

	// A nil *reservationstore.Store must not reach the interface.
	var reserver identity.Reserver
	if appCfg.ReserveIdentities {
		reserver = reservationstore.New(db)
	}

	counters := counterstore.New(db)
	checker := identity.NewChecker(dir, appCfg.FanoutTimeout)

	return &Services{
		Directory: dir,
		Counters:  counters,
		Hasher:    hasher,
		Tokens:    issuer,
		AuditLog: auditlog.New(audit.New(db), logger, auditlog.Config{
			Auth:  appCfg.AuditLogAuth,
			Admin: appCfg.AuditLogAdmin,
		}),

		Checker:       checker,
		Authenticator: identity.NewAuthenticator(dir, hasher, appCfg.FanoutTimeout, logger),
		Resolver:      identity.NewResolver(dir, contentstore.New(db), eventstore.New(db), appCfg.FanoutTimeout, logger),
		Registrar:     identity.NewRegistrar(dir, checker, counters, hasher, reserver, logger),
		Accounts:      identity.NewAccounts(dir, checker, hasher, reserver, deps.Files, logger),
	}, nil
}
