package migrate

import (
	"context"
	"fmt"

	"github.com/smartwear/pos-backend/pkg/config"
	"github.com/smartwear/pos-backend/pkg/db"
	"github.com/smartwear/pos-backend/pkg/db/models"
	"github.com/smartwear/pos-backend/pkg/logger"
)

// MaybeRun applies the schema at boot when the auto-migrate flag is set.
// SQLite databases are migrated from the gorm models; Postgres runs the goose
// SQL files and is only auto-migrated in dev.
func MaybeRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	if client.Driver() == db.DriverSQLite {
		logg.Info(logg.WithField(ctx, "driver", db.DriverSQLite), "running gorm auto-migrate")
		return AutoMigrate(ctx, client)
	}

	if !cfg.App.IsDev() {
		return nil
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dir": DefaultDir})
	logg.Info(ctx, "running goose migrations (dev auto-run)")

	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}

// AutoMigrate creates or updates every table from the gorm models.
func AutoMigrate(ctx context.Context, client *db.Client) error {
	if err := client.DB().WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
