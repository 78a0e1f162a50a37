package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flyva/travel-backend/internal/models"
)

func TestLoginAttemptThrottle(t *testing.T) {
	s := NewLoginAttemptService(newTestDB(t))
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	s.now = fixedClock(now)

	for i := 0; i < MaxFailedLogins-1; i++ {
		require.NoError(t, s.Record(ctx, "admin@admin.com", "10.0.0.1", false))
	}
	require.NoError(t, s.Record(ctx, "admin@admin.com", "10.0.0.1", true))
	blocked, err := s.Blocked(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, blocked)

	require.NoError(t, s.Record(ctx, "someone@else.com", "10.0.0.1", false))
	blocked, err = s.Blocked(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, blocked)

	blocked, err = s.Blocked(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.False(t, blocked)

	// the window slides past the failures
	s.now = fixedClock(now.Add(LoginWindow + time.Minute))
	blocked, err = s.Blocked(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, blocked)

	s.now = fixedClock(now.Add(25 * time.Hour))
	removed, err := s.Cleanup(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, MaxFailedLogins+1, removed)
}

func TestMaintenanceRunOnce(t *testing.T) {
	gdb := newTestDB(t)
	fx := seedFixture(t, gdb)
	f := fx.route(t, gdb, 100)
	bookings := NewBookingService(gdb, NewFlightService(gdb))
	bookings.now = fixedClock(time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()
	_, err := bookings.Create(ctx, bookingInput(f.ID, models.NewDate(2025, 6, 1), models.NewDate(2025, 6, 5)))
	require.NoError(t, err)

	r := NewMaintenanceRunner(bookings, NewLoginAttemptService(gdb), 0)
	assert.Equal(t, time.Hour, r.interval)
	require.NoError(t, r.RunOnce(ctx))

	n, err := bookings.CancelPastPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "already cancelled by the runner")
}
