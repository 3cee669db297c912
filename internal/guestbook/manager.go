// Package guestbook drives a comment display: it validates the comment form,
// renders the list, and keeps it fresh against the comment API.
package guestbook

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/evcraddock/portfolio/internal/client"
	"github.com/evcraddock/portfolio/internal/comment"
)

// DefaultRefreshInterval is the period of the silent background reload.
const DefaultRefreshInterval = 30 * time.Second

const (
	msgLoadFailed    = "Failed to load comments"
	msgUnreachable   = "Could not connect to the server"
	msgAddFailed     = "Failed to add comment"
	msgAdded         = "Comment added successfully!"
	msgLikesSoon     = "Likes are coming in a future version!"
	msgReportConfirm = "Report this comment as inappropriate?"
	msgReported      = "Report sent. Thank you!"
)

// ErrSubmitInProgress is returned by Submit while an earlier submit is still
// waiting on the server.
var ErrSubmitInProgress = errors.New("submit already in progress")

// API is the subset of the comment API the manager needs.
type API interface {
	ListComments(ctx context.Context) ([]*comment.Comment, error)
	AddComment(ctx context.Context, in comment.Input) (*comment.Comment, error)
	CountComments(ctx context.Context) (int64, error)
}

// Options tunes a Manager.
type Options struct {
	// Locale is the viewer's language preference in Accept-Language form.
	Locale string
	// Location is the viewer's time zone. Nil means UTC.
	Location *time.Location
	// RefreshInterval defaults to DefaultRefreshInterval.
	RefreshInterval time.Duration
}

// Manager connects a Surface to the comment API.
type Manager struct {
	api        API
	surface    Surface
	renderer   *Renderer
	opts       Options
	submitting atomic.Bool
}

// NewManager creates a manager.
func NewManager(api API, surface Surface, renderer *Renderer, opts Options) *Manager {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	return &Manager{api: api, surface: surface, renderer: renderer, opts: opts}
}

// Run loads the list and count, then reloads the list silently every refresh
// interval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) error {
	if err := m.Load(ctx, false); err != nil {
		slog.Warn("initial comment load failed", "error", err)
	}
	m.UpdateCount(ctx)

	ticker := time.NewTicker(m.opts.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := m.Load(ctx, true); err != nil {
				slog.Debug("background refresh failed", "error", err)
			}
		}
	}
}

// Load fetches the list and re-renders it. A silent load shows no loading
// indicator and no error banner.
func (m *Manager) Load(ctx context.Context, silent bool) error {
	if !silent {
		m.surface.ShowLoading()
	}
	defer m.surface.HideLoading()

	comments, err := m.api.ListComments(ctx)
	if err != nil {
		slog.Error("loading comments", "error", err)
		if !silent {
			m.surface.ShowError(loadErrorMessage(err))
		}
		return err
	}

	var buf bytes.Buffer
	err = m.renderer.Render(&buf, Snapshot{
		Comments: comments,
		Locale:   m.opts.Locale,
		Location: m.opts.Location,
	})
	if err != nil {
		slog.Error("rendering comments", "error", err)
		if !silent {
			m.surface.ShowError(msgLoadFailed)
		}
		return err
	}

	m.surface.ReplaceList(buf.String())
	m.surface.HideError()
	return nil
}

// UpdateCount refreshes the total display. Failures are only logged.
func (m *Manager) UpdateCount(ctx context.Context) {
	total, err := m.api.CountComments(ctx)
	if err != nil {
		slog.Error("counting comments", "error", err)
		return
	}
	m.surface.SetCount(total)
}

// Submit validates the form and creates a comment. Values are trimmed
// before validation and before sending. On success the form is reset and
// the list and count are reloaded.
func (m *Manager) Submit(ctx context.Context, form Form) (*comment.Comment, error) {
	form = form.Trimmed()

	errs := ValidateForm(form)
	for _, field := range Fields {
		if msg, ok := errs[field]; ok {
			m.surface.ShowFieldError(field, msg)
		} else {
			m.surface.ClearFieldError(field)
		}
	}
	if errs != nil {
		return nil, &ValidationError{Fields: errs}
	}

	if !m.submitting.CompareAndSwap(false, true) {
		return nil, ErrSubmitInProgress
	}
	m.surface.SetSubmitEnabled(false)
	defer func() {
		m.surface.SetSubmitEnabled(true)
		m.submitting.Store(false)
	}()

	created, err := m.api.AddComment(ctx, form.Input())
	if err != nil {
		slog.Error("adding comment", "error", err)
		m.surface.Toast(ToastError, submitErrorMessage(err))
		return nil, err
	}

	m.surface.ResetForm()
	if err := m.Load(ctx, false); err != nil {
		slog.Warn("reloading after submit", "error", err)
	}
	m.UpdateCount(ctx)
	m.surface.Toast(ToastSuccess, msgAdded)

	return created, nil
}

// Blur validates one field after the viewer leaves it.
func (m *Manager) Blur(field Field, value string) {
	if msg := ValidateField(field, value); msg != "" {
		m.surface.ShowFieldError(field, msg)
		return
	}
	m.surface.ClearFieldError(field)
}

// Input clears a field's error while the viewer types.
func (m *Manager) Input(field Field) {
	m.surface.ClearFieldError(field)
}

// Like acknowledges a like. Likes are not stored.
func (m *Manager) Like(id int64) {
	slog.Debug("like", "comment_id", id)
	m.surface.Toast(ToastInfo, msgLikesSoon)
}

// Report asks for confirmation and acknowledges the report. Reports are not
// stored.
func (m *Manager) Report(id int64) bool {
	if !m.surface.Confirm(msgReportConfirm) {
		return false
	}
	slog.Info("comment reported", "comment_id", id)
	m.surface.Toast(ToastSuccess, msgReported)
	return true
}

func loadErrorMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return msgLoadFailed
	}
	return msgUnreachable
}

func submitErrorMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return msgAddFailed
}
