package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// DefaultRetryDelay is the fixed wait between connection attempts.
const DefaultRetryDelay = 5 * time.Second

// Pool owns the shared connection pool. It is created once at startup and
// handed to the request-handling layer; Connect brings it up in the background.
type Pool struct {
	db         *sql.DB
	dialect    Dialect
	retryDelay time.Duration
	ready      atomic.Bool
}

// NewPool creates a pool for the given options without connecting.
func NewPool(opts Options) (*Pool, error) {
	db, err := openHandle(opts)
	if err != nil {
		return nil, err
	}

	dialect := opts.Dialect
	if dialect == "" {
		dialect = SQLite
	}
	return newPool(db, dialect, DefaultRetryDelay), nil
}

func newPool(db *sql.DB, dialect Dialect, retryDelay time.Duration) *Pool {
	return &Pool{db: db, dialect: dialect, retryDelay: retryDelay}
}

// DB returns the underlying handle. Queries issued before the pool is ready
// fail with the driver's connection error.
func (p *Pool) DB() *sql.DB {
	return p.db
}

// Ready reports whether the database has been reached and provisioned.
func (p *Pool) Ready() bool {
	return p.ready.Load()
}

// Connect pings and provisions the database, retrying after a fixed delay
// until it succeeds or ctx is cancelled. It returns nil once ready.
func (p *Pool) Connect(ctx context.Context) error {
	for attempt := 1; ; attempt++ {
		err := p.setup(ctx)
		if err == nil {
			p.ready.Store(true)
			slog.Info("database connected", "dialect", string(p.dialect), "attempt", attempt)
			return nil
		}

		slog.Error("database connection failed",
			"dialect", string(p.dialect),
			"attempt", attempt,
			"retry_in", p.retryDelay.String(),
			"error", err,
		)

		timer := time.NewTimer(p.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (p *Pool) setup(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}
	if err := configure(p.db, p.dialect); err != nil {
		return err
	}
	if err := migrate(p.db, p.dialect); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Close releases every connection in the pool.
func (p *Pool) Close() error {
	p.ready.Store(false)
	if err := p.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}
