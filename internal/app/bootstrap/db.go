// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	partitionstore "github.com/dalemusser/osprey/internal/app/store/partitions"
	"github.com/dalemusser/osprey/internal/app/system/indexes"
	"github.com/dalemusser/osprey/internal/app/system/validators"
	"github.com/dalemusser/osprey/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureSchema creates collections with their validators, reconciles
// indexes and normalizes stored emails. Every step is idempotent.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := validators.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("ensure validators failed", zap.Error(err))
		return fmt.Errorf("ensure validators: %w", err)
	}
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("ensure indexes failed", zap.Error(err))
		return fmt.Errorf("ensure indexes: %w", err)
	}
	if err := normalizeEmails(ctx, deps.MongoDatabase, logger); err != nil {
		logger.Error("normalize emails failed", zap.Error(err))
		return fmt.Errorf("normalize emails: %w", err)
	}
	logger.Info("schema ready", zap.String("database", deps.MongoDatabase.Name()))
	return nil
}

type emailNormalizer interface {
	Role() models.Role
	NormalizeEmails(ctx context.Context) (int, []string, error)
}

// normalizeEmails lowercases emails written before lookups were normalized.
// Records that would collide with an existing email are logged and kept.
func normalizeEmails(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	for _, s := range []emailNormalizer{
		partitionstore.New[models.User](db),
		partitionstore.New[models.Sportsman](db),
		partitionstore.New[models.Entertainer](db),
		partitionstore.New[models.BusinessOwner](db),
	} {
		fixed, conflicts, err := s.NormalizeEmails(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", s.Role(), err)
		}
		if fixed > 0 {
			logger.Info("normalized stored emails", zap.String("role", string(s.Role())), zap.Int("count", fixed))
		}
		if len(conflicts) > 0 {
			logger.Warn("emails left unnormalized, normalized form already taken",
				zap.String("role", string(s.Role())), zap.Strings("uqids", conflicts))
		}
	}
	return nil
}
