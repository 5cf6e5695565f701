package persistence

import (
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bartab/backend/internal/infrastructure/config"
)

// Database wraps the shared GORM connection handed to every repository
type Database struct {
	DB *gorm.DB
}

// NewDatabaseWithLogger opens the postgres connection, applies the pool
// limits from config and verifies reachability with a ping. Default
// per-statement transactions are skipped; all multi-write operations run
// through explicit transaction scopes instead.
func NewDatabaseWithLogger(cfg *config.DatabaseConfig, gormLogger logger.Interface) (*Database, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pool, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("accessing connection pool: %w", err)
	}
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	pool.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := pool.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Database{DB: db}, nil
}

// EnableTracing installs the OpenTelemetry GORM plugin so every query
// shows up as a span under the calling request
func (d *Database) EnableTracing(dbName string) error {
	return d.DB.Use(otelgorm.NewPlugin(otelgorm.WithDBName(dbName)))
}

// Ping reports whether the connection is still alive
func (d *Database) Ping() error {
	pool, err := d.DB.DB()
	if err != nil {
		return err
	}
	return pool.Ping()
}

// Close releases the connection pool
func (d *Database) Close() error {
	pool, err := d.DB.DB()
	if err != nil {
		return err
	}
	return pool.Close()
}
