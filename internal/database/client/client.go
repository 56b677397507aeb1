package client

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GoArmGo/gcapi/internal/config"
)

// Client дает sqlx-доступ к тому же пулу соединений, что использует GORM.
// Через него /healthz проверяет именно рабочую базу.
type Client struct {
	DB     *sqlx.DB
	driver string
	logger *slog.Logger
}

// sqlDriverName возвращает имя database/sql драйвера для DB_DRIVER.
func sqlDriverName(driver string) string {
	switch driver {
	case config.DriverMySQL:
		return "mysql"
	case config.DriverSQLite:
		return "sqlite"
	default:
		return "postgres"
	}
}

// NewClient оборачивает пул db (обычно gorm.DB.DB()) в sqlx.
// Закрытие клиента закрывает и пул.
func NewClient(db *sql.DB, driver string, logger *slog.Logger) *Client {
	return &Client{
		DB:     sqlx.NewDb(db, sqlDriverName(driver)),
		driver: driver,
		logger: logger,
	}
}

// Ping проверяет доступность БД, используется в /healthz.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("БД недоступна: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	start := time.Now()
	err := c.DB.Close()
	if err != nil {
		c.logger.Error("failed to close database connection", "error", err)
		return err
	}
	c.logger.Info("database connection closed", "driver", c.driver, "duration_ms", time.Since(start).Milliseconds())
	return nil
}
