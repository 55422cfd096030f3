package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB) error {
		// Embedded migrations target PostgreSQL. Other dialects (local SQLite
		// development) fall back to the ORM's schema sync.
		if conn.Dialector.Name() != "postgres" {
			return conn.AutoMigrate(tables()...)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
