package migration

import (
	"github.com/mercatohq/mercato/internal/config"
	"github.com/mercatohq/mercato/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// Migrations are written for postgres; other dialects are expected to
		// manage schema out of band.
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		}

		if cfg.SeedSampleData {
			return seed.EnsureSampleCatalog(conn)
		}
		return nil
	}),
)
