package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/estatery/service-rental/internal/domain/booking"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// BookingNotification is the context handed to the notifier for a lifecycle event.
type BookingNotification struct {
	BookingID  uuid.UUID `json:"booking_id"`
	PropertyID uuid.UUID `json:"property_id"`
	RenterID   uuid.UUID `json:"renter_id"`
	HostID     uuid.UUID `json:"host_id"`
	Status     string    `json:"status"`
	CheckIn    string    `json:"check_in"`
	CheckOut   string    `json:"check_out"`
	Reason     string    `json:"reason,omitempty"`
}

// Notifier tells parties about booking events. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, event booking.Event, recipients []uuid.UUID, data BookingNotification) error
}
