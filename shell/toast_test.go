package shell

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToastLifetime(t *testing.T) {
	s := New()
	toast := s.ShowToast("hello", ToastInfo, t0)

	assert.Same(t, toast, s.ActiveToast(t0))
	assert.Equal(t, 3*time.Second, toast.Remaining(t0))
	assert.NotNil(t, s.ActiveToast(t0.Add(2999*time.Millisecond)))
	assert.Nil(t, s.ActiveToast(t0.Add(ToastTTL)))
	assert.Equal(t, time.Duration(0), toast.Remaining(t0.Add(time.Hour)))
}

func TestToastReplacedNotExtended(t *testing.T) {
	s := New()
	first := s.ShowToast("first", ToastInfo, t0)
	second := s.ShowToast("second", ToastError, t0.Add(2*time.Second))

	assert.NotEqual(t, first.ID, second.ID)
	assert.Same(t, second, s.ActiveToast(t0.Add(4*time.Second)))
	assert.Nil(t, s.ActiveToast(t0.Add(5*time.Second)))

	// an old dismissal timer must not clear the newer toast
	assert.False(t, s.DismissToast(first.ID))
	require.NotNil(t, s.Toast)
	assert.True(t, s.DismissToast(second.ID))
	assert.Nil(t, s.Toast)
}

func TestPruneToast(t *testing.T) {
	s := New()
	s.ShowToast("x", ToastSuccess, t0)

	s.PruneToast(t0.Add(time.Second))
	assert.NotNil(t, s.Toast)

	s.PruneToast(t0.Add(3 * time.Second))
	assert.Nil(t, s.Toast)
}
