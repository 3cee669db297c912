package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/evcraddock/portfolio/internal/comment"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world!", 8, "hello..."},
		{"runes", "привет мир", 7, "прив..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := truncate(tt.input, tt.max)
			if result != tt.expected {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.max, result, tt.expected)
			}
		})
	}
}

func TestSingleLine(t *testing.T) {
	if got := singleLine("one\ntwo\t three "); got != "one two three" {
		t.Errorf("singleLine = %q", got)
	}
}

func TestPrintCommentTable(t *testing.T) {
	var buf bytes.Buffer
	comments := []*comment.Comment{
		{ID: 2, Name: "Bo", Email: "b@b.co", Comment: "Second\ncomment", CreatedAt: time.Now()},
		{ID: 1, Name: "Al", Email: "a@b.co", Comment: "First comment", CreatedAt: time.Now()},
	}
	if err := printCommentTable(&buf, comments); err != nil {
		t.Fatalf("print: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "ID") {
		t.Errorf("missing header: %q", out)
	}
	if !strings.Contains(out, "Second comment") {
		t.Error("multi-line comment should be flattened")
	}
	if !strings.Contains(out, "Total: 2 comments") {
		t.Errorf("missing total: %q", out)
	}
}

func TestPrintCommentTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := printCommentTable(&buf, nil); err != nil {
		t.Fatalf("print: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No comments yet." {
		t.Errorf("output = %q", buf.String())
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := printJSON(&buf, map[string]int64{"total": 3}); err != nil {
		t.Fatalf("print: %v", err)
	}
	var got map[string]int64
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["total"] != 3 {
		t.Errorf("total = %d", got["total"])
	}
}
