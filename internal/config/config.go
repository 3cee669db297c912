// Package config loads the API server configuration from the environment.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/evcraddock/portfolio/internal/db"
)

// Keys double as environment variable names (upper-cased by viper).
const (
	KeyPort       = "port"
	KeyDevMode    = "dev_mode"
	KeyDBDriver   = "db_driver"
	KeyDBPath     = "db_path"
	KeyDBHost     = "db_host"
	KeyDBPort     = "db_port"
	KeyDBUser     = "db_user"
	KeyDBPassword = "db_password"
	KeyDBName     = "db_name"
	KeyDBPoolSize = "db_pool_size"
)

// Config holds API server configuration.
type Config struct {
	Port    int
	DevMode bool
	DB      db.Options
}

// New returns a viper instance with defaults registered and environment
// lookup enabled. Callers may bind command-line flags onto it.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyPort, 3000)
	v.SetDefault(KeyDevMode, false)
	v.SetDefault(KeyDBDriver, string(db.MySQL))
	v.SetDefault(KeyDBPath, "")
	v.SetDefault(KeyDBHost, "database")
	v.SetDefault(KeyDBPort, "3306")
	v.SetDefault(KeyDBUser, "portfolio_user")
	v.SetDefault(KeyDBPassword, "portfolio_password")
	v.SetDefault(KeyDBName, "portfolio_db")
	v.SetDefault(KeyDBPoolSize, db.DefaultPoolSize)
	v.AutomaticEnv()
	return v
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	return FromViper(New())
}

// FromViper builds and validates a Config from v.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port:    v.GetInt(KeyPort),
		DevMode: v.GetBool(KeyDevMode),
		DB: db.Options{
			Dialect:  db.Dialect(v.GetString(KeyDBDriver)),
			Path:     v.GetString(KeyDBPath),
			Host:     v.GetString(KeyDBHost),
			Port:     v.GetString(KeyDBPort),
			User:     v.GetString(KeyDBUser),
			Password: v.GetString(KeyDBPassword),
			Name:     v.GetString(KeyDBName),
			PoolSize: v.GetInt(KeyDBPoolSize),
		},
	}

	if cfg.DB.Dialect == db.SQLite && cfg.DB.Path == "" {
		path, err := db.DefaultPath()
		if err != nil {
			return Config{}, err
		}
		cfg.DB.Path = path
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", c.Port)
	}
	if c.DB.PoolSize < 1 {
		return fmt.Errorf("db pool size must be at least 1, got %d", c.DB.PoolSize)
	}

	switch c.DB.Dialect {
	case db.MySQL:
		if c.DB.Host == "" || c.DB.Name == "" {
			return fmt.Errorf("mysql requires db host and db name")
		}
	case db.SQLite:
	default:
		return fmt.Errorf("db driver must be %q or %q, got %q", db.MySQL, db.SQLite, c.DB.Dialect)
	}

	return nil
}

// Addr returns the listen address for the configured port on all interfaces.
func (c Config) Addr() string {
	return fmt.Sprintf("0.0.0.0:%d", c.Port)
}
