package shell

import (
	"time"

	"github.com/google/uuid"
)

type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastInfo    ToastKind = "info"
)

// ToastTTL is how long a toast stays visible after it was created.
const ToastTTL = 3 * time.Second

// Toast is a one-shot notification. Its lifetime is fixed at creation.
type Toast struct {
	ID        string        `json:"id" msgpack:"id"`
	Message   string        `json:"message" msgpack:"message"`
	Kind      ToastKind     `json:"kind" msgpack:"kind"`
	CreatedAt time.Time     `json:"created_at" msgpack:"created_at"`
	TTL       time.Duration `json:"ttl" msgpack:"ttl"`
}

// ExpiresAt is the instant the toast disappears.
func (t *Toast) ExpiresAt() time.Time {
	return t.CreatedAt.Add(t.TTL)
}

// Remaining is the visible time left at now, never negative.
func (t *Toast) Remaining(now time.Time) time.Duration {
	if d := t.ExpiresAt().Sub(now); d > 0 {
		return d
	}
	return 0
}

// ShowToast replaces any current toast.
func (s *ViewState) ShowToast(message string, kind ToastKind, now time.Time) *Toast {
	s.Toast = &Toast{
		ID:        uuid.NewString(),
		Message:   message,
		Kind:      kind,
		CreatedAt: now,
		TTL:       ToastTTL,
	}
	return s.Toast
}

// ActiveToast returns the current toast if it is still alive at now.
func (s *ViewState) ActiveToast(now time.Time) *Toast {
	if s.Toast == nil || s.Toast.Remaining(now) == 0 {
		return nil
	}
	return s.Toast
}

// DismissToast clears the toast with the given id. A stale id is ignored so
// an old timer cannot dismiss a newer toast.
func (s *ViewState) DismissToast(id string) bool {
	if s.Toast == nil || s.Toast.ID != id {
		return false
	}
	s.Toast = nil
	return true
}

// PruneToast drops an expired toast.
func (s *ViewState) PruneToast(now time.Time) {
	if s.Toast != nil && s.ActiveToast(now) == nil {
		s.Toast = nil
	}
}
