package guestbook

import (
	"strings"
	"unicode/utf8"

	"github.com/evcraddock/portfolio/internal/comment"
)

// Field names a form input.
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldComment Field = "comment"
)

// Fields lists the form inputs in display order.
var Fields = []Field{FieldName, FieldEmail, FieldComment}

const (
	minNameLen    = 2
	minCommentLen = 10
)

// Form holds the raw values of the comment form.
type Form struct {
	Name    string
	Email   string
	Comment string
}

// Trimmed returns the form with surrounding whitespace removed from every value.
func (f Form) Trimmed() Form {
	return Form{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Comment: strings.TrimSpace(f.Comment),
	}
}

// Input converts the form into an API create request.
func (f Form) Input() comment.Input {
	return comment.Input{Name: f.Name, Email: f.Email, Comment: f.Comment}
}

// Value returns the value of one field.
func (f Form) Value(field Field) string {
	switch field {
	case FieldName:
		return f.Name
	case FieldEmail:
		return f.Email
	case FieldComment:
		return f.Comment
	}
	return ""
}

// FieldErrors maps each invalid field to its message.
type FieldErrors map[Field]string

// ValidationError is returned by Submit when the form fails local validation.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range Fields {
		if msg, ok := e.Fields[f]; ok {
			parts = append(parts, string(f)+": "+msg)
		}
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// ValidateForm applies the submit-time rules to an already trimmed form:
// name of at least 2 characters, a local@domain.tld email, and a comment of
// at least 10 characters. It returns nil when the form is valid.
func ValidateForm(f Form) FieldErrors {
	errs := FieldErrors{}
	if utf8.RuneCountInString(f.Name) < minNameLen {
		errs[FieldName] = "Name must be at least 2 characters"
	}
	if !comment.EmailPattern.MatchString(f.Email) {
		errs[FieldEmail] = "Please enter a valid email address"
	}
	if utf8.RuneCountInString(f.Comment) < minCommentLen {
		errs[FieldComment] = "Comment must be at least 10 characters"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateField checks a single value on blur and returns a short message,
// or "" if it is valid. The value is trimmed first.
func ValidateField(field Field, value string) string {
	value = strings.TrimSpace(value)
	switch field {
	case FieldName:
		if utf8.RuneCountInString(value) < minNameLen {
			return "At least 2 characters"
		}
	case FieldEmail:
		if !comment.EmailPattern.MatchString(value) {
			return "Invalid email"
		}
	case FieldComment:
		if utf8.RuneCountInString(value) < minCommentLen {
			return "At least 10 characters"
		}
	}
	return ""
}
