// internal/app/bootstrap/connect.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/osprey/internal/app/identity"
	reservationstore "github.com/dalemusser/osprey/internal/app/store/reservations"
	"github.com/dalemusser/osprey/internal/app/system/blobstore"
	"github.com/dalemusser/osprey/internal/app/system/ratelimit"
	"github.com/dalemusser/osprey/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB connects to MongoDB, opens the local file store, starts the
// login limiter and prepares the reservation sweep.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		logger.Error("mongo connect failed", zap.Error(err))
		return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		logger.Error("mongo ping failed", zap.Error(err))
		return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
	}
	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool", appCfg.MongoMaxPoolSize),
		zap.Uint64("min_pool", appCfg.MongoMinPoolSize))

	files, err := blobstore.NewLocal(appCfg.PicturePath, appCfg.PictureURLPrefix)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, err
	}

	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
		Files:         files,
		LoginLimiter:  ratelimit.NewLoginLimiter(appCfg.LoginRateIP, appCfg.LoginRateEmail),
	}

	if appCfg.ReserveIdentities {
		dir, err := identity.OpenDirectory(deps.MongoDatabase)
		if err != nil {
			deps.LoginLimiter.Close()
			_ = client.Disconnect(context.Background())
			return DBDeps{}, err
		}
		deps.Sweeper = workers.NewReservationSweep(reservationstore.New(deps.MongoDatabase), dir, logger,
			appCfg.SweepInterval, appCfg.SweepGrace)
	}
	return deps, nil
}
