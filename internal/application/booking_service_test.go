package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estatery/service-rental/internal/domain/booking"
	"github.com/estatery/service-rental/internal/domain/payment"
	"github.com/estatery/service-rental/internal/platform/domain"
)

func TestQuoteBooking(t *testing.T) {
	env := newTestEnv(t)
	p := env.listProperty(t)

	q, err := env.bookings.QuoteBooking(context.Background(), StayRequest{PropertyID: p.ID, CheckIn: "2026-02-01", CheckOut: "2027-02-01"})
	require.NoError(t, err)
	assert.True(t, q.Available)
	assert.Equal(t, 12, q.Quote.Months)
	assert.True(t, q.Quote.Total.Equal(decimal.NewFromInt(10200)))

	_, err = env.bookings.QuoteBooking(context.Background(), StayRequest{PropertyID: p.ID, CheckIn: "2026-02-03", CheckOut: "2027-02-03"})
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve, "off-cycle check-in")

	_, err = env.bookings.QuoteBooking(context.Background(), StayRequest{PropertyID: p.ID, CheckIn: "02/01/2026", CheckOut: "2027-02-01"})
	assert.ErrorAs(t, err, &ve, "bad date format")
}

func TestCreateBooking_CreatesSchedule(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.listProperty(t)

	b := env.book(t, p.ID, "2026-02-01", "2026-07-01")
	assert.Equal(t, "pending", b.Status)
	assert.Equal(t, 5, b.MonthsBooked)
	assert.True(t, b.TotalPrice.Equal(decimal.NewFromInt(4750)))

	schedule, err := env.payments.ListPayments(ctx, b.ID, env.renterID)
	require.NoError(t, err)

	deposits, rents := 0, 0
	seen := map[int]bool{}
	for _, pay := range schedule.Payments {
		switch pay.PaymentType {
		case string(payment.TypeDeposit):
			deposits++
			assert.Equal(t, 0, pay.MonthNumber)
			assert.Equal(t, "2026-01-13", pay.DueDate)
		case string(payment.TypeRent):
			rents++
			assert.False(t, seen[pay.MonthNumber])
			seen[pay.MonthNumber] = true
		}
	}
	assert.Equal(t, 1, deposits)
	assert.Equal(t, b.MonthsBooked, rents)
	assert.True(t, schedule.Summary.Outstanding.Equal(decimal.NewFromInt(5*1000+2000)))

	assert.Equal(t, []booking.Event{booking.EventRequested}, env.notifier.events())
}

func TestCreateBooking_Rules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.listProperty(t)

	_, err := env.bookings.CreateBooking(ctx, env.ownerID, stay(p.ID, "2026-02-01", "2026-08-01"))
	var pe *domain.PermissionError
	assert.ErrorAs(t, err, &pe, "owner booking own property")

	_, err = env.bookings.CreateBooking(ctx, env.renterID, stay(uuid.New(), "2026-02-01", "2026-08-01"))
	assert.True(t, domain.IsNotFound(err))

	env.book(t, p.ID, "2026-02-01", "2026-08-01")

	_, err = env.bookings.CreateBooking(ctx, uuid.New(), stay(p.ID, "2026-05-01", "2026-09-01"))
	var ce *domain.ConflictError
	assert.ErrorAs(t, err, &ce, "pending request holds its dates")

	_, err = env.bookings.CreateBooking(ctx, uuid.New(), stay(p.ID, "2026-08-01", "2026-11-01"))
	assert.NoError(t, err, "back-to-back stay")
}

func TestCreateBooking_ConcurrentOverlapOneWins(t *testing.T) {
	env := newTestEnv(t)
	p := env.listProperty(t)

	const attempts = 2
	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		errs    = make([]error, attempts)
		renters = []uuid.UUID{uuid.New(), uuid.New()}
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			in, out := "2026-03-01", "2026-09-01"
			if i == 1 {
				in, out = "2026-04-01", "2026-10-01"
			}
			_, errs[i] = env.bookings.CreateBooking(context.Background(), renters[i], stay(p.ID, in, out))
		}(i)
	}
	close(start)
	wg.Wait()

	successes, conflicts := 0, 0
	for _, err := range errs {
		var ce *domain.ConflictError
		switch {
		case err == nil:
			successes++
		case assert.ErrorAs(t, err, &ce):
			conflicts++
			assert.True(t, domain.IsRetryable(err))
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)
}

func TestConfirmRejectCancel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.listProperty(t)

	b := env.book(t, p.ID, "2026-02-01", "2026-08-01")

	_, err := env.bookings.ConfirmBooking(ctx, b.ID, env.renterID)
	var pe *domain.PermissionError
	assert.ErrorAs(t, err, &pe)

	confirmed, err := env.bookings.ConfirmBooking(ctx, b.ID, env.ownerID)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", confirmed.Status)
	assert.NotNil(t, confirmed.ConfirmedAt)
	assert.Equal(t, int64(2), confirmed.Version)

	_, err = env.bookings.RejectBooking(ctx, b.ID, env.ownerID, "")
	var ite *domain.InvalidTransitionError
	assert.ErrorAs(t, err, &ite)

	env.clock.Set(time.Date(2026, 1, 28, 8, 0, 0, 0, time.UTC))
	_, err = env.bookings.CancelBooking(ctx, b.ID, env.renterID, "job moved")
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve, "inside 7-day window")

	second := env.book(t, p.ID, "2026-08-01", "2026-11-01")
	rejected, err := env.bookings.RejectBooking(ctx, second.ID, env.ownerID, "")
	require.NoError(t, err)
	assert.Equal(t, booking.DefaultRejectionReason, rejected.Reason)

	schedule, err := env.payments.ListPayments(ctx, second.ID, env.ownerID)
	require.NoError(t, err)
	for _, pay := range schedule.Payments {
		assert.Equal(t, string(payment.StatusCancelled), pay.Status)
	}

	assert.Equal(t, []booking.Event{
		booking.EventRequested, booking.EventConfirmed, booking.EventRequested, booking.EventRejected,
	}, env.notifier.events())
}

func TestNotifierFailureDoesNotRollBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.listProperty(t)
	env.notifier.fail = true

	b := env.book(t, p.ID, "2026-02-01", "2026-08-01")
	confirmed, err := env.bookings.ConfirmBooking(ctx, b.ID, env.ownerID)
	require.NoError(t, err)

	stored, err := env.bookings.GetBooking(ctx, confirmed.ID, env.renterID)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", stored.Status)
}

func TestActivateAndComplete_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.listProperty(t)
	b := env.book(t, p.ID, "2026-02-01", "2026-05-01")
	_, err := env.bookings.ConfirmBooking(ctx, b.ID, env.ownerID)
	require.NoError(t, err)

	_, err = env.bookings.ActivateBooking(ctx, b.ID)
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve, "before check-in")

	env.clock.Set(time.Date(2026, 2, 1, 0, 10, 0, 0, time.UTC))
	first, err := env.bookings.ActivateBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "active", first.Status)

	env.clock.Set(time.Date(2026, 2, 2, 0, 10, 0, 0, time.UTC))
	second, err := env.bookings.ActivateBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ActivatedAt, second.ActivatedAt)
	assert.Equal(t, first.UpdatedAt, second.UpdatedAt)
	assert.Equal(t, first.Version, second.Version)

	env.clock.Set(time.Date(2026, 5, 1, 1, 0, 0, 0, time.UTC))
	done, err := env.bookings.CompleteBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", done.Status)
	again, err := env.bookings.CompleteBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, done.CompletedAt, again.CompletedAt)
}

func TestRegenerateSchedule(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.listProperty(t)
	b := env.book(t, p.ID, "2026-02-01", "2026-05-01")

	_, err := env.bookings.RegenerateSchedule(ctx, b.ID, env.renterID)
	var pe *domain.PermissionError
	assert.ErrorAs(t, err, &pe)

	env.clock.Set(time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC))
	regenerated, err := env.bookings.RegenerateSchedule(ctx, b.ID, env.ownerID)
	require.NoError(t, err)
	require.Len(t, regenerated, 4)
	assert.Equal(t, "2026-01-23", regenerated[0].DueDate)

	schedule, err := env.payments.ListPayments(ctx, b.ID, env.ownerID)
	require.NoError(t, err)
	assert.Len(t, schedule.Payments, 4)

	_, err = env.payments.MarkPaymentPaid(ctx, schedule.Payments[0].ID, env.ownerID, "tx")
	require.NoError(t, err)
	_, err = env.bookings.RegenerateSchedule(ctx, b.ID, env.ownerID)
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestAvailabilityAndCalendar(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.listProperty(t)
	b := env.book(t, p.ID, "2026-02-01", "2026-05-01")

	avail, err := env.bookings.CheckAvailability(ctx, StayRequest{PropertyID: p.ID, CheckIn: "2026-03-01", CheckOut: "2026-06-01"}, nil)
	require.NoError(t, err)
	assert.True(t, avail.Available, "pending requests do not block the public check")

	_, err = env.bookings.ConfirmBooking(ctx, b.ID, env.ownerID)
	require.NoError(t, err)

	avail, err = env.bookings.CheckAvailability(ctx, StayRequest{PropertyID: p.ID, CheckIn: "2026-03-01", CheckOut: "2026-06-01"}, nil)
	require.NoError(t, err)
	assert.False(t, avail.Available)

	avail, err = env.bookings.CheckAvailability(ctx, StayRequest{PropertyID: p.ID, CheckIn: "2026-03-01", CheckOut: "2026-06-01"}, &b.ID)
	require.NoError(t, err)
	assert.True(t, avail.Available)

	cal, err := env.bookings.MonthlyCalendar(ctx, p.ID, 2026, 4)
	require.NoError(t, err)
	require.Len(t, cal.Days, 30)
	assert.False(t, cal.Days[29].Available)

	cal, err = env.bookings.MonthlyCalendar(ctx, p.ID, 2026, 5)
	require.NoError(t, err)
	assert.True(t, cal.Days[0].Available, "check-out day is free")
}

func TestListAndGetBookings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.listProperty(t)
	b := env.book(t, p.ID, "2026-02-01", "2026-05-01")

	_, err := env.bookings.GetBooking(ctx, b.ID, uuid.New())
	var pe *domain.PermissionError
	assert.ErrorAs(t, err, &pe)

	renter, err := env.bookings.ListRenterBookings(ctx, env.renterID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), renter.Total)

	host, err := env.bookings.ListHostBookings(ctx, env.ownerID, 1, 10)
	require.NoError(t, err)
	require.Len(t, host.Items, 1)
	assert.Equal(t, b.ID, host.Items[0].ID)

	stats, err := env.bookings.GetBookingStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalBookings)
}

func TestUpdateBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.listProperty(t)
	b := env.book(t, p.ID, "2026-02-01", "2026-05-01")
	_, err := env.bookings.CreateBooking(ctx, uuid.New(), stay(p.ID, "2026-06-01", "2026-09-01"))
	require.NoError(t, err)

	move := func(actor uuid.UUID, in, out string) (*BookingDTO, error) {
		return env.bookings.UpdateBooking(ctx, b.ID, actor, UpdateBookingRequest{CheckIn: in, CheckOut: out})
	}

	_, err = move(env.ownerID, "2026-03-01", "2026-06-01")
	var pe *domain.PermissionError
	assert.ErrorAs(t, err, &pe)

	_, err = move(env.renterID, "2026-04-01", "2026-07-01")
	var ce *domain.ConflictError
	assert.ErrorAs(t, err, &ce, "another renter holds June")

	_, err = move(env.renterID, "2026-03-15", "2026-06-01")
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve, "off-cycle check-in")

	updated, err := move(env.renterID, "2026-03-01", "2026-06-01")
	require.NoError(t, err, "overlapping its own dates is allowed")
	assert.Equal(t, "2026-03-01", updated.CheckIn)
	assert.Equal(t, "2026-06-01", updated.CheckOut)
	assert.Equal(t, 3, updated.MonthsBooked)
	assert.True(t, updated.TotalPrice.Equal(decimal.NewFromInt(2850)))

	schedule, err := env.payments.ListPayments(ctx, b.ID, env.renterID)
	require.NoError(t, err)
	require.Len(t, schedule.Payments, 4)
	assert.Equal(t, "2026-03-01", schedule.Payments[1].DueDate)
	assert.Equal(t, "2026-05-01", schedule.Payments[3].DueDate)

	assert.Contains(t, env.notifier.events(), booking.EventUpdated)

	_, err = env.bookings.ConfirmBooking(ctx, b.ID, env.ownerID)
	require.NoError(t, err)
	_, err = move(env.renterID, "2026-03-01", "2026-05-01")
	assert.ErrorAs(t, err, &ve, "confirmed bookings are fixed")
}

func TestUpdateBooking_RefusedOncePaid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.listProperty(t)
	b := env.book(t, p.ID, "2026-02-01", "2026-05-01")

	schedule, err := env.payments.ListPayments(ctx, b.ID, env.renterID)
	require.NoError(t, err)
	_, err = env.payments.MarkPaymentPaid(ctx, schedule.Payments[0].ID, env.ownerID, "tx-dep")
	require.NoError(t, err)

	_, err = env.bookings.UpdateBooking(ctx, b.ID, env.renterID, UpdateBookingRequest{CheckIn: "2026-03-01", CheckOut: "2026-06-01"})
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)

	got, err := env.bookings.GetBooking(ctx, b.ID, env.renterID)
	require.NoError(t, err)
	assert.Equal(t, "2026-02-01", got.CheckIn)
}
