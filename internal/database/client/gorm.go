package client

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/GoArmGo/gcapi/internal/config"
	"github.com/GoArmGo/gcapi/internal/domain"
)

// Models перечисляет сущности, которыми управляет GORM.
var Models = []any{&domain.User{}, &domain.GC{}, &domain.Product{}}

func dialector(cfg *config.Config) gorm.Dialector {
	switch cfg.DBDriver {
	case config.DriverMySQL:
		return mysql.Open(cfg.DatabaseURL)
	case config.DriverSQLite:
		return sqlite.Open(cfg.DatabaseURL)
	default:
		return postgres.Open(cfg.DatabaseURL)
	}
}

// NewGorm открывает GORM поверх выбранного драйвера.
// Для MySQL и SQLite здесь же создается схема (AutoMigrate),
// Postgres мигрируется через ApplyMigrations.
func NewGorm(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	start := time.Now()

	db, err := gorm.Open(dialector(cfg), &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.NewSlogLogger(logger, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		logger.Error("failed to open gorm connection", "driver", cfg.DBDriver, "error", err)
		return nil, fmt.Errorf("ошибка открытия GORM соединения: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("ошибка получения sql.DB из GORM: %w", err)
	}
	configurePool(sqlDB, cfg.DBDriver)

	if cfg.DBDriver != config.DriverPostgres {
		if err := db.AutoMigrate(Models...); err != nil {
			return nil, fmt.Errorf("ошибка AutoMigrate: %w", err)
		}
		logger.Info("schema auto-migrated", "driver", cfg.DBDriver)
	}

	logger.Info("gorm connection established successfully",
		"driver", cfg.DBDriver,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return db, nil
}
