// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"

	intereststore "github.com/bemyforce/bemyforce/internal/app/store/interests"
	"github.com/bemyforce/bemyforce/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs after the schema is in place and before the handler is
// built: timeout overrides, reference data, then background jobs.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts overridden from environment", zap.Int("count", n))
	}

	if err := ensureInterests(ctx, deps, appCfg.SeedInterests, logger); err != nil {
		return err
	}

	if deps.Jobs != nil {
		deps.Jobs.Start()
	}
	return nil
}

// ensureInterests creates each named interest that does not exist yet.
// Names are matched case-insensitively by the unique index.
func ensureInterests(ctx context.Context, deps DBDeps, names []string, logger *zap.Logger) error {
	if len(names) == 0 {
		return nil
	}
	store := intereststore.New(deps.MongoDatabase)
	created := 0
	for _, name := range names {
		_, err := store.Create(ctx, name)
		switch {
		case errors.Is(err, intereststore.ErrDuplicateName):
			continue
		case err != nil:
			logger.Error("seeding interest failed", zap.String("name", name), zap.Error(err))
			return err
		}
		created++
	}
	if created > 0 {
		logger.Info("seeded interests", zap.Int("created", created))
	}
	return nil
}
