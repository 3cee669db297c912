// Package comment provides the guestbook comment model, validation and data access.
package comment

import (
	"errors"
	"regexp"
	"time"
)

// Comment is a single guestbook entry. Comments are immutable once stored.
type Comment struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// EmailPattern is the basic local@domain.tld shape accepted for emails.
var EmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	// ErrFieldsRequired is returned when name, email or comment is empty.
	ErrFieldsRequired = errors.New("all fields are required")
	// ErrInvalidEmail is returned when the email does not look like local@domain.tld.
	ErrInvalidEmail = errors.New("invalid email format")
	// ErrNotFound is returned when no comment has the requested ID.
	ErrNotFound = errors.New("comment not found")
)

// Input is a new comment as submitted by a caller.
type Input struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Comment string `json:"comment"`
}

// Validate checks the write-time rules: every field present, then email shape.
// Values are not trimmed and no length minimums apply here.
func (in Input) Validate() error {
	if in.Name == "" || in.Email == "" || in.Comment == "" {
		return ErrFieldsRequired
	}
	if !EmailPattern.MatchString(in.Email) {
		return ErrInvalidEmail
	}
	return nil
}

// IsValidationError reports whether err came from Input.Validate.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrFieldsRequired) || errors.Is(err, ErrInvalidEmail)
}
