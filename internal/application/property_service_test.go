package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estatery/service-rental/internal/domain/booking"
	"github.com/estatery/service-rental/internal/domain/payment"
	"github.com/estatery/service-rental/internal/platform/domain"
)

func TestCreateProperty_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.properties.CreateProperty(ctx, env.ownerID, CreatePropertyRequest{Title: "Flat", DailyPrice: "abc"})
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)

	p, err := env.properties.CreateProperty(ctx, env.ownerID, CreatePropertyRequest{Title: "Studio", DailyPrice: "40"})
	require.NoError(t, err)
	assert.Equal(t, 12, p.MinStayMonths)
	assert.Equal(t, 1, p.MonthlyCycleStart)
	assert.Equal(t, "ghs", p.Currency)
	assert.Equal(t, "1217.6", p.EffectiveMonthlyPrice.String())

	page, err := env.properties.ListOwnerProperties(ctx, env.ownerID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}

func TestWithdrawProperty_CancelsPendingOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.listProperty(t)

	confirmed := env.book(t, p.ID, "2026-02-01", "2026-05-01")
	_, err := env.bookings.ConfirmBooking(ctx, confirmed.ID, env.ownerID)
	require.NoError(t, err)
	pending := env.book(t, p.ID, "2026-06-01", "2026-09-01")

	_, err = env.properties.WithdrawProperty(ctx, p.ID, uuid.New())
	var pe *domain.PermissionError
	assert.ErrorAs(t, err, &pe)

	withdrawn, err := env.properties.WithdrawProperty(ctx, p.ID, env.ownerID)
	require.NoError(t, err)
	assert.Equal(t, "maintenance", withdrawn.Status)

	kept, err := env.bookings.GetBooking(ctx, confirmed.ID, env.ownerID)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", kept.Status)

	gone, err := env.bookings.GetBooking(ctx, pending.ID, env.renterID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", gone.Status)
	assert.Equal(t, booking.WithdrawnReason, gone.Reason)

	schedule, err := env.payments.ListPayments(ctx, pending.ID, env.renterID)
	require.NoError(t, err)
	for _, pay := range schedule.Payments {
		assert.Equal(t, string(payment.StatusCancelled), pay.Status)
	}

	_, err = env.bookings.CreateBooking(ctx, uuid.New(), stay(p.ID, "2027-01-01", "2027-04-01"))
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve, "withdrawn listing is not bookable")

	assert.Contains(t, env.notifier.events(), booking.EventCancelled)
}

func TestUpdateProperty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.listProperty(t)
	b := env.book(t, p.ID, "2026-02-01", "2026-05-01")

	monthly := "1200"
	req := UpdatePropertyRequest{CreatePropertyRequest{
		Title:             "Garden flat, renovated",
		City:              "Accra",
		DailyPrice:        "45",
		MonthlyPrice:      &monthly,
		MinStayMonths:     6,
		MonthlyCycleStart: 1,
	}}

	_, err := env.properties.UpdateProperty(ctx, p.ID, env.renterID, req)
	var pe *domain.PermissionError
	assert.ErrorAs(t, err, &pe)

	bad := req
	bad.MonthlyCycleStart = 30
	_, err = env.properties.UpdateProperty(ctx, p.ID, env.ownerID, bad)
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)

	updated, err := env.properties.UpdateProperty(ctx, p.ID, env.ownerID, req)
	require.NoError(t, err)
	assert.Equal(t, "Garden flat, renovated", updated.Title)
	assert.Equal(t, "1200", updated.EffectiveMonthlyPrice.String())
	assert.Equal(t, 6, updated.MinStayMonths)

	got, err := env.properties.GetProperty(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.MinStayMonths)

	existing, err := env.bookings.GetBooking(ctx, b.ID, env.renterID)
	require.NoError(t, err)
	assert.Equal(t, "1000", existing.MonthlyRate.String(), "bookings keep their agreed rate")
}
