// Package db provides the pooled relational storage behind the guestbook.
// MySQL is used in production; SQLite serves local development and tests.
package db

import (
	"database/sql"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect identifies the SQL flavour of a database.
type Dialect string

const (
	// MySQL is the production dialect.
	MySQL Dialect = "mysql"
	// SQLite is the embedded dialect.
	SQLite Dialect = "sqlite3"
)

// DefaultPoolSize caps concurrent connections when no size is configured.
const DefaultPoolSize = 10

// Options describes how to reach the database.
type Options struct {
	Dialect  Dialect
	Path     string // SQLite only
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	PoolSize int
}

// DefaultPath returns the default SQLite path: ~/.portfolio/comments.db
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".portfolio", "comments.db"), nil
}

// Open opens (or creates) a SQLite database at the given path,
// enables WAL mode, and runs migrations.
func Open(path string) (*sql.DB, error) {
	db, err := openSQLite(path)
	if err != nil {
		return nil, err
	}

	if err := configure(db, SQLite); err != nil {
		return nil, closeOnError(db, err)
	}

	if err := migrate(db, SQLite); err != nil {
		return nil, closeOnError(db, fmt.Errorf("running migrations: %w", err))
	}

	return db, nil
}

// MySQLConfig builds the driver configuration: utf8mb4 collation,
// parsed timestamps and a UTC session time zone.
func MySQLConfig(opts Options) *mysql.Config {
	cfg := mysql.NewConfig()
	cfg.User = opts.User
	cfg.Passwd = opts.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(opts.Host, opts.Port)
	cfg.DBName = opts.Name
	cfg.Collation = "utf8mb4_unicode_ci"
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{"time_zone": "'+00:00'"}
	return cfg
}

// openHandle returns a lazily connecting handle for the given options.
// No connection is made until first use.
func openHandle(opts Options) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)

	switch opts.Dialect {
	case MySQL:
		connector, cerr := mysql.NewConnector(MySQLConfig(opts))
		if cerr != nil {
			return nil, fmt.Errorf("creating mysql connector: %w", cerr)
		}
		db = sql.OpenDB(connector)
	case SQLite, "":
		db, err = openSQLite(opts.Path)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported database dialect %q", opts.Dialect)
	}

	size := opts.PoolSize
	if size <= 0 {
		size = DefaultPoolSize
	}
	db.SetMaxOpenConns(size)
	db.SetMaxIdleConns(size)
	db.SetConnMaxLifetime(time.Hour)

	return db, nil
}

func openSQLite(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// configure applies dialect-specific session settings.
func configure(db *sql.DB, dialect Dialect) error {
	if dialect != SQLite {
		return nil
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("executing PRAGMA journal_mode=WAL: %w", err)
	}
	return nil
}

func closeOnError(db *sql.DB, err error) error {
	if closeErr := db.Close(); closeErr != nil {
		return fmt.Errorf("%w (also failed to close: %v)", err, closeErr)
	}
	return err
}
