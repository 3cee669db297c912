package comment

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestEmailPattern(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"a@b.co", true},
		{"first.last@sub.example.org", true},
		{"user+tag@example.io", true},
		{"", false},
		{"plain", false},
		{"@b.co", false},
		{"a@.co", false},
		{"a@b.c.d", true},
		{"a@b.", false},
		{"a@b", false},
		{"a b@c.de", false},
		{"a@b c.de", false},
		{"a@b@c.de", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := EmailPattern.MatchString(tt.email); got != tt.want {
				t.Errorf("match(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestValidateDoesNotTrim(t *testing.T) {
	in := Input{Name: "  ", Email: "a@b.co", Comment: " "}
	if err := in.Validate(); err != nil {
		t.Errorf("whitespace-only values are present: %v", err)
	}
}

func TestCommentJSON(t *testing.T) {
	c := Comment{
		ID:        7,
		Name:      "Al",
		Email:     "a@b.co",
		Comment:   "Hello there friend",
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	for _, key := range []string{`"id":7`, `"name":"Al"`, `"email":"a@b.co"`, `"comment":"Hello there friend"`, `"created_at":"2026-01-02T03:04:05Z"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("json %s missing %s", data, key)
		}
	}
}
