package migration

import (
	authdomain "github.com/shopkpi/shopkpi/internal/auth/domain"
	"github.com/shopkpi/shopkpi/internal/config"
	reportdomain "github.com/shopkpi/shopkpi/internal/report/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// sqlite and mysql development databases use the model
			// definitions directly.
			return conn.AutoMigrate(
				&authdomain.User{},
				&authdomain.Session{},
				&reportdomain.Report{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
