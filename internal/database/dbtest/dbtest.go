// Package dbtest поднимает изолированную in-memory SQLite базу для тестов.
package dbtest

import (
	"testing"

	"gorm.io/gorm"

	"github.com/GoArmGo/gcapi/internal/config"
	"github.com/GoArmGo/gcapi/internal/database/client"
	"github.com/GoArmGo/gcapi/internal/logger"
)

// DSN каждой базы отдельный, т.к. без cache=shared соединение видит только свою память.
const memoryDSN = "file::memory:?_pragma=foreign_keys(1)"

// Config возвращает конфигурацию, пригодную для тестов.
func Config() *config.Config {
	return &config.Config{
		DatabaseURL: memoryDSN,
		DBDriver:    config.DriverSQLite,
	}
}

// NewDB открывает новую схему через тот же путь, что и в продакшене.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := client.NewGorm(Config(), logger.Discard())
	if err != nil {
		t.Fatalf("dbtest: open sqlite: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
