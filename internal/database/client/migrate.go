package client

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ApplyMigrations применяет все доступные миграции к Postgres.
// Мигратор работает через отдельное короткоживущее соединение lib/pq,
// которое закрывается по окончании.
// Для MySQL и SQLite схема создается через GORM AutoMigrate в NewGorm.
func ApplyMigrations(databaseURL string, logger *slog.Logger) error {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("ошибка открытия соединения для миграций: %w", err)
	}

	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("не удалось создать драйвер миграций: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		_ = driver.Close()
		return fmt.Errorf("не удалось открыть встроенные миграции: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		_ = driver.Close()
		return fmt.Errorf("не удалось создать экземпляр мигратора: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn("failed to close migrator", "source_error", srcErr, "db_error", dbErr)
		}
	}()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("migrations are up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("ошибка выполнения миграций: %w", err)
	}

	version, _, _ := m.Version()
	logger.Info("migrations applied successfully", "version", version)
	return nil
}
