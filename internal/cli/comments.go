package cli

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/spf13/cobra"

	"github.com/evcraddock/portfolio/internal/guestbook"
)

func newCommentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments",
		Short: "List, add, delete and count guestbook comments",
	}

	cmd.AddCommand(
		newCommentsListCmd(),
		newCommentsAddCmd(),
		newCommentsDeleteCmd(),
		newCommentsCountCmd(),
	)

	return cmd
}

func newCommentsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List comments, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			comments, err := newAPIClient().ListComments(cmd.Context())
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), comments)
			}
			return printCommentTable(cmd.OutOrStdout(), comments)
		},
	}
}

func newCommentsAddCmd() *cobra.Command {
	var form guestbook.Form

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a comment",
		Long:  "Add a comment. Values are trimmed and checked the same way the guestbook form checks them: name of at least 2 characters, a valid email, and a comment of at least 10 characters.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := guestbook.NewRenderer()
			if err != nil {
				return err
			}

			surface := newConsoleSurface(cmd.OutOrStdout(), cmd.ErrOrStderr(), isJSON())
			m := guestbook.NewManager(newAPIClient(), surface, renderer, guestbook.Options{})

			created, err := m.Submit(cmd.Context(), form)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), created)
			}
			printCommentSingle(cmd.OutOrStdout(), created)
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Name, "name", "", "your name")
	cmd.Flags().StringVar(&form.Email, "email", "", "your email address")
	cmd.Flags().StringVar(&form.Comment, "comment", "", "comment text")

	return cmd
}

func newCommentsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid comment ID: %s", args[0])
			}
			if err := newAPIClient().DeleteComment(cmd.Context(), id); err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{"deleted": id})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Comment #%d deleted.\n", id)
			return nil
		},
	}
}

func newCommentsCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the total number of comments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			total, err := newAPIClient().CountComments(cmd.Context())
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), map[string]int64{"total": total})
			}
			fmt.Fprintln(cmd.OutOrStdout(), total)
			return nil
		},
	}
}

// consoleSurface shows guestbook feedback on a terminal. Field errors and
// error toasts go to stderr; the rest goes to stdout unless quiet.
type consoleSurface struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
}

func newConsoleSurface(out, errOut io.Writer, quiet bool) *consoleSurface {
	if quiet {
		out = io.Discard
	}
	return &consoleSurface{out: out, errOut: errOut}
}

func (s *consoleSurface) ShowLoading() {}

func (s *consoleSurface) HideLoading() {}

func (s *consoleSurface) ReplaceList(string) {}

func (s *consoleSurface) HideError() {}

func (s *consoleSurface) SetSubmitEnabled(bool) {}

func (s *consoleSurface) ResetForm() {}

func (s *consoleSurface) ClearFieldError(guestbook.Field) {}

func (s *consoleSurface) ShowError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.errOut, "error: %s\n", msg)
}

func (s *consoleSurface) SetCount(total int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "Total comments: %d\n", total)
}

func (s *consoleSurface) ShowFieldError(field guestbook.Field, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.errOut, "  %s: %s\n", field, msg)
}

func (s *consoleSurface) Toast(kind guestbook.ToastKind, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if kind == guestbook.ToastError {
		fmt.Fprintf(s.errOut, "error: %s\n", msg)
		return
	}
	fmt.Fprintln(s.out, msg)
}

// Confirm declines: the console has no interactive prompt.
func (s *consoleSurface) Confirm(string) bool { return false }
