package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/politrack/politrack-api/pkg/config"
)

// NewSQLite opens (or creates) the embedded SQLite database at the configured
// path. Foreign key enforcement is off by default in SQLite and the pragma is
// per-connection, so it goes in the DSN; every connection the pool opens then
// has it on, and cascade deletes on evaluaciones stay intact at any pool size.
func NewSQLite(cfg config.StorageConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on", cfg.SQLitePath, cfg.BusyTimeout.Milliseconds())

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	maxConns := cfg.MaxOpenConns
	if maxConns <= 0 {
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
