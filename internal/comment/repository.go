package comment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

const selectColumns = "SELECT id, name, email, comment, created_at FROM comments"

// Repository provides create, read, delete and count operations for comments.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a comment repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanComment(s rowScanner) (*Comment, error) {
	var c Comment
	if err := s.Scan(&c.ID, &c.Name, &c.Email, &c.Comment, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Add validates and inserts a comment, then reads it back by its generated ID.
// Both statements run on the same connection.
func (r *Repository) Add(ctx context.Context, in Input) (*Comment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	conn, err := r.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring connection: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			slog.Warn("releasing connection", "error", cerr)
		}
	}()

	result, err := conn.ExecContext(ctx,
		"INSERT INTO comments (name, email, comment) VALUES (?, ?, ?)",
		in.Name, in.Email, in.Comment,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert id: %w", err)
	}

	c, err := scanComment(conn.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("reading back comment %d: %w", id, err)
	}

	return c, nil
}

// Get returns a single comment by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*Comment, error) {
	c, err := scanComment(r.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting comment %d: %w", id, err)
	}
	return c, nil
}

// List returns every comment, newest first. The result is never nil.
func (r *Repository) List(ctx context.Context) (comments []*Comment, err error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+" ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	comments = make([]*Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating comments: %w", err)
	}

	return comments, nil
}

// Delete removes a comment by ID. It returns ErrNotFound if nothing was deleted.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM comments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// Count returns the total number of comments.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM comments").Scan(&total); err != nil {
		return 0, fmt.Errorf("counting comments: %w", err)
	}
	return total, nil
}
