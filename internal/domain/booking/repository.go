package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// LockByID retrieves a booking and holds an exclusive row lock until the transaction ends.
	LockByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindOverlapping returns bookings of the property in one of the statuses whose stay
	// overlaps [checkIn, checkOut), optionally excluding one booking.
	FindOverlapping(ctx context.Context, propertyID uuid.UUID, checkIn, checkOut time.Time, statuses []BookingStatus, exclude *uuid.UUID) ([]*Booking, error)

	// FindByPropertyAndStatus returns a property's bookings in the given statuses.
	FindByPropertyAndStatus(ctx context.Context, propertyID uuid.UUID, statuses []BookingStatus) ([]*Booking, error)

	// FindByRenterID retrieves bookings made by a renter with pagination.
	FindByRenterID(ctx context.Context, renterID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindByHostID retrieves bookings on properties owned by a host with pagination.
	FindByHostID(ctx context.Context, hostID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindDueForActivation returns confirmed bookings whose check-in is on or before the date.
	FindDueForActivation(ctx context.Context, date time.Time) ([]*Booking, error)

	// FindDueForCompletion returns active bookings whose check-out is on or before the date.
	FindDueForCompletion(ctx context.Context, date time.Time) ([]*Booking, error)

	// CountByStatusForHost returns booking counts grouped by status for a host.
	CountByStatusForHost(ctx context.Context, hostID uuid.UUID) (map[string]int64, error)

	// CountByStatusForRenter returns booking counts grouped by status for a renter.
	CountByStatusForRenter(ctx context.Context, renterID uuid.UUID) (map[string]int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// SumRevenueForHost totals the price of a host's bookings in the statuses.
	SumRevenueForHost(ctx context.Context, hostID uuid.UUID, statuses []BookingStatus) (decimal.Decimal, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error
}
