package booking

import (
	"time"

	"github.com/google/uuid"
)

// BlockingStatuses are the statuses that make dates unavailable to other renters.
var BlockingStatuses = []BookingStatus{StatusConfirmed, StatusActive}

// HoldingStatuses are the statuses that prevent a new request from being created over
// the same dates. A pending request holds its dates until the owner decides on it.
var HoldingStatuses = []BookingStatus{StatusPending, StatusConfirmed, StatusActive}

// Overlaps tests two half-open date ranges. Back-to-back stays sharing a boundary day do not overlap.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aOut.After(bIn) && aIn.Before(bOut)
}

// Conflicting returns the bookings with one of the statuses whose stay overlaps [checkIn, checkOut).
func Conflicting(existing []*Booking, checkIn, checkOut time.Time, exclude *uuid.UUID, statuses []BookingStatus) []*Booking {
	var out []*Booking
	for _, b := range existing {
		if exclude != nil && b.ID() == *exclude {
			continue
		}
		if !hasStatus(statuses, b.Status()) {
			continue
		}
		if b.OverlapsWith(checkIn, checkOut) {
			out = append(out, b)
		}
	}
	return out
}

// IsAvailable reports whether no confirmed or active booking overlaps [checkIn, checkOut).
func IsAvailable(existing []*Booking, checkIn, checkOut time.Time, exclude *uuid.UUID) bool {
	return len(Conflicting(existing, checkIn, checkOut, exclude, BlockingStatuses)) == 0
}

// DayAvailability is one day of a property calendar.
type DayAvailability struct {
	Date      time.Time  `json:"date"`
	Available bool       `json:"available"`
	BookingID *uuid.UUID `json:"booking_id,omitempty"`
}

// MonthCalendar lays out a calendar month, marking days covered by a blocking booking.
func MonthCalendar(year int, month time.Month, bookings []*Booking) []DayAvailability {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)

	var days []DayAvailability
	for d := first; d.Before(next); d = d.AddDate(0, 0, 1) {
		day := DayAvailability{Date: d, Available: true}
		for _, b := range bookings {
			if !hasStatus(BlockingStatuses, b.Status()) {
				continue
			}
			if !d.Before(b.CheckIn()) && d.Before(b.CheckOut()) {
				id := b.ID()
				day.Available = false
				day.BookingID = &id
				break
			}
		}
		days = append(days, day)
	}
	return days
}

func hasStatus(statuses []BookingStatus, s BookingStatus) bool {
	for _, st := range statuses {
		if st == s {
			return true
		}
	}
	return false
}
