package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/estatery/service-rental/internal/domain/booking"
)

func TestRunDailyTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.listProperty(t)

	short := env.book(t, p.ID, "2026-02-01", "2026-05-01")
	_, err := env.bookings.ConfirmBooking(ctx, short.ID, env.ownerID)
	require.NoError(t, err)
	later := env.book(t, p.ID, "2026-05-01", "2026-08-01")
	_, err = env.bookings.ConfirmBooking(ctx, later.ID, env.ownerID)
	require.NoError(t, err)

	env.clock.Set(time.Date(2026, 2, 1, 0, 5, 0, 0, time.UTC))
	res, err := env.sweeper.RunDailyTransitions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Activated)
	assert.Zero(t, res.Completed)
	assert.Zero(t, res.Failed)

	res, err = env.sweeper.RunDailyTransitions(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Activated, "second run changes nothing")

	env.clock.Set(time.Date(2026, 5, 1, 0, 5, 0, 0, time.UTC))
	res, err = env.sweeper.RunDailyTransitions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Activated)
	assert.Equal(t, 1, res.Completed)

	first, err := env.bookings.GetBooking(ctx, short.ID, env.renterID)
	require.NoError(t, err)
	assert.Equal(t, "completed", first.Status)
	second, err := env.bookings.GetBooking(ctx, later.ID, env.renterID)
	require.NoError(t, err)
	assert.Equal(t, "active", second.Status)
	assert.Equal(t, 3, second.MonthsRemaining)
}

func TestRunDailyTransitions_WithoutNotifier(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.listProperty(t)
	b := env.book(t, p.ID, "2026-02-01", "2026-05-01")
	_, err := env.bookings.ConfirmBooking(ctx, b.ID, env.ownerID)
	require.NoError(t, err)
	sent := len(env.notifier.events())

	bookings := NewBookingService(env.store, booking.NewMonthlyPricingStrategy(), nil, env.clock, zap.NewNop())
	payments := NewPaymentService(env.store, env.clock, zap.NewNop())
	sweeper := NewLifecycleSweeper(bookings, payments, env.clock, zap.NewNop())

	env.clock.Set(time.Date(2026, 2, 1, 0, 5, 0, 0, time.UTC))
	res, err := sweeper.RunDailyTransitions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Activated)
	assert.Equal(t, 1, res.Overdue, "deposit due Jan 13 is late")

	env.clock.Set(time.Date(2026, 5, 1, 0, 5, 0, 0, time.UTC))
	res, err = env.sweeper.RunDailyTransitions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Completed)
	assert.Len(t, env.notifier.events(), sent, "date-triggered transitions send no notices")
}

func TestDashboards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.listProperty(t)
	b := env.book(t, p.ID, "2026-02-01", "2026-05-01")
	env.book(t, p.ID, "2026-06-01", "2026-09-01")
	_, err := env.bookings.ConfirmBooking(ctx, b.ID, env.ownerID)
	require.NoError(t, err)

	host, err := env.dashboards.HostDashboard(ctx, env.ownerID)
	require.NoError(t, err)
	assert.Equal(t, 1, host.Properties)
	assert.Equal(t, int64(1), host.PendingRequests)
	assert.Equal(t, int64(0), host.BookingsByStatus["completed"])
	assert.True(t, host.TotalRevenue.Equal(b.TotalPrice))
	assert.True(t, host.OutstandingPayments.GreaterThan(decimal.Zero))

	tenant, err := env.dashboards.TenantDashboard(ctx, env.renterID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), tenant.BookingsByStatus["confirmed"])
	assert.True(t, tenant.OutstandingPayments.Equal(host.OutstandingPayments))
}
