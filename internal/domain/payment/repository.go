package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRepository defines the persistence contract for booking payments.
type PaymentRepository interface {
	// SaveAll inserts a schedule in one batch.
	SaveAll(ctx context.Context, payments []*BookingPayment) error

	// DeleteByBookingID removes a booking's whole schedule.
	DeleteByBookingID(ctx context.Context, bookingID uuid.UUID) error

	FindByID(ctx context.Context, id uuid.UUID) (*BookingPayment, error)

	// LockByID retrieves a payment and holds an exclusive row lock until the transaction ends.
	LockByID(ctx context.Context, id uuid.UUID) (*BookingPayment, error)

	// FindByBookingID returns the schedule ordered by due date and month number.
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*BookingPayment, error)

	// FindPendingDueBefore returns pending payments due strictly before the date.
	FindPendingDueBefore(ctx context.Context, date time.Time) ([]*BookingPayment, error)

	Update(ctx context.Context, p *BookingPayment) error

	// SumOutstandingForHost totals pending and overdue payments on a host's bookings.
	SumOutstandingForHost(ctx context.Context, hostID uuid.UUID) (decimal.Decimal, error)

	// SumOutstandingForRenter totals pending and overdue payments owed by a renter.
	SumOutstandingForRenter(ctx context.Context, renterID uuid.UUID) (decimal.Decimal, error)
}
