package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"pending", "confirmed", "in_delivery", "delivered", "canceled", "returned"} {
		st, err := ParseStatus(raw)
		require.NoError(t, err)
		assert.Equal(t, Status(raw), st)
	}

	for _, raw := range []string{"", "shipped", "PENDING", "cancelled"} {
		_, err := ParseStatus(raw)
		require.ErrorIs(t, err, ErrInvalidStatus, "raw %q", raw)
	}
}

func TestStatusIsActive(t *testing.T) {
	assert.True(t, StatusPending.IsActive())
	assert.True(t, StatusConfirmed.IsActive())
	assert.True(t, StatusInDelivery.IsActive())
	assert.True(t, StatusDelivered.IsActive())
	assert.False(t, StatusCanceled.IsActive())
	assert.False(t, StatusReturned.IsActive())
}

func TestTransitionEffect(t *testing.T) {
	cases := []struct {
		name     string
		reserved bool
		to       Status
		want     Effect
	}{
		{"active to active keeps reservation", true, StatusConfirmed, EffectNone},
		{"active to delivered keeps reservation", true, StatusDelivered, EffectNone},
		{"cancel releases", true, StatusCanceled, EffectRelease},
		{"return releases", true, StatusReturned, EffectRelease},
		{"reconfirm after cancel re-reserves", false, StatusConfirmed, EffectReserve},
		{"back to pending re-reserves", false, StatusPending, EffectReserve},
		{"canceled to returned is a plain write", false, StatusReturned, EffectNone},
		{"release is idempotent on flag", false, StatusCanceled, EffectNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TransitionEffect(tc.reserved, tc.to))
		})
	}
}
