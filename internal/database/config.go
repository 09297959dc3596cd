package database

import (
	"pharmaledger/internal/config"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds database connection settings
type Config struct {
	Driver string

	// DSN is the GORM connection string: key/value for postgres, a file path
	// (or "file::memory:") for sqlite.
	DSN string

	// MigrateURL is the golang-migrate database URL. Only used for postgres.
	MigrateURL string

	// MigrationsSource is the golang-migrate source URL.
	MigrationsSource string
}

// NewConfig derives the database configuration from the application config.
func NewConfig(cfg *config.Config) *Config {
	c := &Config{
		Driver:           cfg.DBDriver,
		MigrationsSource: "file://migrations",
	}
	switch cfg.DBDriver {
	case DriverSQLite:
		c.DSN = cfg.SQLitePath
	default:
		c.Driver = DriverPostgres
		c.DSN = cfg.PostgresDSN()
		c.MigrateURL = cfg.PostgresURL()
	}
	return c
}
