package db

import (
	"database/sql"
	"fmt"
)

// migrations is an ordered list of idempotent statements per dialect.
// created_at carries millisecond precision in both.
var migrations = map[Dialect][]string{
	SQLite: {
		`CREATE TABLE IF NOT EXISTS comments (
			id         INTEGER  PRIMARY KEY AUTOINCREMENT,
			name       TEXT     NOT NULL,
			email      TEXT     NOT NULL,
			comment    TEXT     NOT NULL,
			created_at DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_created_at ON comments (created_at)`,
	},
	MySQL: {
		`CREATE TABLE IF NOT EXISTS comments (
			id         BIGINT       NOT NULL AUTO_INCREMENT PRIMARY KEY,
			name       VARCHAR(255) NOT NULL,
			email      VARCHAR(255) NOT NULL,
			comment    TEXT         NOT NULL,
			created_at TIMESTAMP(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
			INDEX idx_comments_created_at (created_at)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	},
}

// migrate runs all migrations for the dialect in order.
func migrate(db *sql.DB, dialect Dialect) error {
	stmts, ok := migrations[dialect]
	if !ok {
		return fmt.Errorf("no migrations for dialect %q", dialect)
	}

	for i, m := range stmts {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}

	return nil
}
