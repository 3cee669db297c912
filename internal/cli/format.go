package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/evcraddock/portfolio/internal/client"
	"github.com/evcraddock/portfolio/internal/comment"
)

// printJSON marshals v as indented JSON and writes it to w.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printCommentTable prints comments as a formatted table.
func printCommentTable(out io.Writer, comments []*comment.Comment) error {
	if len(comments) == 0 {
		fmt.Fprintln(out, "No comments yet.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tDATE\tNAME\tEMAIL\tCOMMENT"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "--\t----\t----\t-----\t-------"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, c := range comments {
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			c.ID,
			c.CreatedAt.Local().Format("2006-01-02 15:04"),
			truncate(c.Name, 20),
			truncate(c.Email, 30),
			truncate(singleLine(c.Comment), 50),
		); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Fprintf(out, "\nTotal: %d comments\n", len(comments))
	return nil
}

// printCommentSingle prints a single comment in text format.
func printCommentSingle(w io.Writer, c *comment.Comment) {
	fmt.Fprintf(w, "Comment #%d added.\n", c.ID)
	fmt.Fprintf(w, "  From:    %s <%s>\n", c.Name, c.Email)
	fmt.Fprintf(w, "  Date:    %s\n", c.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "  Comment: %s\n", c.Comment)
}

// printHealth prints a health response in text format.
func printHealth(w io.Writer, h *client.Health) {
	fmt.Fprintf(w, "Status:    %s\n", h.Status)
	fmt.Fprintf(w, "Message:   %s\n", h.Message)
	if h.Database != "" {
		fmt.Fprintf(w, "Database:  %s\n", h.Database)
	}
	fmt.Fprintf(w, "Timestamp: %s\n", h.Timestamp)
}

// singleLine collapses runs of whitespace, including newlines, to one space.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-3]) + "..."
}
