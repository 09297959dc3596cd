package config

import (
	"fmt"
	"log"
	"reflect"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds application configuration
type Config struct {
	// Server
	Env             string        `env:"ENV" envDefault:"development"`
	Port            string        `env:"PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Database
	DBDriver   string `env:"DB_DRIVER" envDefault:"postgres"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"pharmaledger"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"pharmaledger"`
	DBName     string `env:"DB_NAME" envDefault:"pharmaledger"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"pharmaledger.db"`

	// JWT
	JWTSecret        string        `env:"JWT_SECRET" envDefault:"fallback-secret-key-for-dev-only"`
	JWTExpirationDur time.Duration `env:"JWT_EXPIRES_IN" envDefault:"12h"`

	// Ledger
	OpeningCash decimal.Decimal `env:"OPENING_CASH" envDefault:"10000.00"`
	Currency    string          `env:"CURRENCY" envDefault:"PKR"`

	// Operations
	MetricsAPIKey string `env:"METRICS_API_KEY"`

	// Browser origins allowed to call the API. Empty means same-origin only.
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// First-run account, created only when no users exist.
	BootstrapAdminUsername string `env:"BOOTSTRAP_ADMIN_USERNAME" envDefault:"admin"`
	BootstrapAdminPassword string `env:"BOOTSTRAP_ADMIN_PASSWORD"`
}

var appConfig *Config

// Load loads configuration from the environment, reading .env first if present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	return Parse()
}

// Parse reads configuration from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{
		FuncMap: map[reflect.Type]env.ParserFunc{
			reflect.TypeOf(decimal.Decimal{}): parseDecimal,
		},
	}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.OpeningCash.IsNegative() {
		return nil, fmt.Errorf("OPENING_CASH must not be negative, got %s", cfg.OpeningCash)
	}
	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", cfg.DBDriver)
	}

	appConfig = cfg
	return cfg, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// PostgresDSN returns the key/value connection string used by GORM.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// PostgresURL returns the URL form used by golang-migrate.
func (c *Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

func parseDecimal(v string) (any, error) {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, fmt.Errorf("invalid decimal %q: %w", v, err)
	}
	return d, nil
}
