package cli

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/portfolio/internal/guestbook"
)

func newWatchCmd() *cobra.Command {
	var (
		out      string
		interval time.Duration
		locale   string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep a rendered guestbook snapshot up to date",
		Long:  "Renders the comment list to an HTML fragment and rewrites it on every refresh until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return errors.New("--out is required")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if locale == "" {
				locale = cfg.Locale
			}
			loc, err := viewerLocation(cfg.Timezone)
			if err != nil {
				return err
			}

			renderer, err := guestbook.NewRenderer()
			if err != nil {
				return err
			}

			surface := newFileSurface(out)
			m := guestbook.NewManager(newAPIClient(), surface, renderer, guestbook.Options{
				Locale:          locale,
				Location:        loc,
				RefreshInterval: interval,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.ErrOrStderr(), "Writing guestbook snapshot to %s every %s (Ctrl-C to stop)\n", out, interval)
			if err := m.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "file to write the rendered list to")
	cmd.Flags().DurationVar(&interval, "interval", guestbook.DefaultRefreshInterval, "refresh interval")
	cmd.Flags().StringVar(&locale, "locale", "", "date locale, e.g. en-GB (default: config or en-US)")

	return cmd
}

// fileSurface writes the rendered list to a file. Feedback other than the
// list and count goes to the log.
type fileSurface struct {
	mu     sync.Mutex
	path   string
	list   string
	count  int64
	failed string
}

func newFileSurface(path string) *fileSurface {
	return &fileSurface{path: path, count: -1}
}

func (s *fileSurface) ShowLoading() {}

func (s *fileSurface) HideLoading() {}

func (s *fileSurface) SetSubmitEnabled(bool) {}

func (s *fileSurface) ResetForm() {}

func (s *fileSurface) ShowFieldError(field guestbook.Field, msg string) {
	slog.Warn("field error", "field", string(field), "message", msg)
}

func (s *fileSurface) ClearFieldError(guestbook.Field) {}

func (s *fileSurface) Toast(kind guestbook.ToastKind, msg string) {
	slog.Info("toast", "kind", string(kind), "message", msg)
}

func (s *fileSurface) Confirm(string) bool { return false }

func (s *fileSurface) ReplaceList(markup string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = markup
	s.flush()
}

func (s *fileSurface) SetCount(total int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count = total
	s.flush()
}

func (s *fileSurface) ShowError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed = msg
	s.flush()
}

func (s *fileSurface) HideError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed == "" {
		return
	}
	s.failed = ""
	s.flush()
}

// flush rewrites the snapshot file. Callers hold s.mu.
func (s *fileSurface) flush() {
	if err := writeFileAtomic(s.path, []byte(s.snapshot())); err != nil {
		slog.Error("writing snapshot", "path", s.path, "error", err)
	}
}

func (s *fileSurface) snapshot() string {
	var b strings.Builder
	if s.failed != "" {
		fmt.Fprintf(&b, "<div class=\"comments-error\">%s</div>\n", html.EscapeString(s.failed))
	}
	if s.count >= 0 {
		fmt.Fprintf(&b, "<div class=\"comments-count\">%d</div>\n", s.count)
	}
	b.WriteString(s.list)
	return b.String()
}

// writeFileAtomic writes data to a temp file next to path and renames it
// into place so readers never see a partial snapshot.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err := os.Remove(tmp.Name()); err != nil && !os.IsNotExist(err) {
			slog.Warn("removing temp file", "path", tmp.Name(), "error", err)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming snapshot: %w", err)
	}
	return nil
}
