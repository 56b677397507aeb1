package client

import (
	"database/sql"
	"time"

	"github.com/GoArmGo/gcapi/internal/config"
)

// configurePool задает параметры пула соединений.
// SQLite не допускает параллельной записи, поэтому для него одно соединение.
func configurePool(db *sql.DB, driver string) {
	if driver == config.DriverSQLite {
		db.SetMaxOpenConns(1)
		return
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
}
