package guestbook

import "time"

// ToastKind classifies a transient notification.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastInfo    ToastKind = "info"
)

// ToastDuration is how long a toast stays visible.
const ToastDuration = 5 * time.Second

// Surface is the display the guestbook manager drives. Implementations must
// be safe for concurrent use: the periodic refresh and a submit can touch the
// surface at the same time.
type Surface interface {
	ShowLoading()
	HideLoading()
	// ReplaceList swaps the rendered comment list for markup.
	ReplaceList(markup string)
	ShowError(msg string)
	HideError()
	SetCount(total int64)
	ShowFieldError(field Field, msg string)
	ClearFieldError(field Field)
	Toast(kind ToastKind, msg string)
	SetSubmitEnabled(enabled bool)
	ResetForm()
	// Confirm asks the viewer a yes/no question.
	Confirm(question string) bool
}
