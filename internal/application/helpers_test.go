package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/estatery/service-rental/internal/domain/booking"
	"github.com/estatery/service-rental/internal/repository/memory"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type sentNotice struct {
	event      booking.Event
	recipients []uuid.UUID
	data       BookingNotification
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotice
	fail bool
}

func (n *recordingNotifier) Notify(_ context.Context, event booking.Event, recipients []uuid.UUID, data BookingNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("smtp unavailable")
	}
	n.sent = append(n.sent, sentNotice{event: event, recipients: recipients, data: data})
	return nil
}

func (n *recordingNotifier) events() []booking.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]booking.Event, len(n.sent))
	for i, s := range n.sent {
		out[i] = s.event
	}
	return out
}

type testEnv struct {
	store      *memory.Store
	clock      *fixedClock
	notifier   *recordingNotifier
	bookings   *BookingService
	payments   *PaymentService
	reviews    *ReviewService
	properties *PropertyService
	dashboards *DashboardService
	sweeper    *LifecycleSweeper

	ownerID  uuid.UUID
	renterID uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	clock := &fixedClock{now: time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC)}
	notifier := &recordingNotifier{}
	log := zap.NewNop()

	bookings := NewBookingService(store, booking.NewMonthlyPricingStrategy(), notifier, clock, log)
	payments := NewPaymentService(store, clock, log)
	return &testEnv{
		store:      store,
		clock:      clock,
		notifier:   notifier,
		bookings:   bookings,
		payments:   payments,
		reviews:    NewReviewService(store, clock, log),
		properties: NewPropertyService(store, notifier, clock, log),
		dashboards: NewDashboardService(store),
		sweeper:    NewLifecycleSweeper(bookings, payments, clock, log),
		ownerID:    uuid.New(),
		renterID:   uuid.New(),
	}
}

func (e *testEnv) listProperty(t *testing.T) *PropertyDTO {
	t.Helper()
	monthly := "1000"
	p, err := e.properties.CreateProperty(context.Background(), e.ownerID, CreatePropertyRequest{
		Title:             "Garden flat",
		City:              "Accra",
		DailyPrice:        "40",
		MonthlyPrice:      &monthly,
		MinStayMonths:     3,
		MonthlyCycleStart: 1,
	})
	require.NoError(t, err)
	return p
}

func stay(propertyID uuid.UUID, in, out string) CreateBookingRequest {
	return CreateBookingRequest{StayRequest: StayRequest{PropertyID: propertyID, CheckIn: in, CheckOut: out}}
}

func (e *testEnv) book(t *testing.T, propertyID uuid.UUID, in, out string) *BookingDTO {
	t.Helper()
	b, err := e.bookings.CreateBooking(context.Background(), e.renterID, stay(propertyID, in, out))
	require.NoError(t, err)
	return b
}
