// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/osprey/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time initialization after the database and schema are
// ready and before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{Fanout: appCfg.FanoutTimeout})

	if deps.Sweeper != nil {
		deps.Sweeper.Start()
	}

	cur := timeouts.Current()
	logger.Info("osprey startup",
		zap.Duration("timeout_short", cur.Short),
		zap.Duration("timeout_medium", cur.Medium),
		zap.Duration("timeout_long", cur.Long),
		zap.Duration("timeout_fanout", cur.Fanout),
		zap.String("password_hasher", appCfg.PasswordHasher),
		zap.Bool("reserve_identities", appCfg.ReserveIdentities),
		zap.Bool("require_auth", appCfg.RequireAuth))
	return nil
}
